package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/user/podboard/internal/model"
)

// CacheRow is one normalized record as held in the cache. The categorical
// columns are kept alongside the JSON document for summary queries.
type CacheRow struct {
	ID        string
	Hash      string
	Status    string
	Platform  string
	AccountID string
	StoreID   string
	Data      json.RawMessage
}

// SQLiteCache provides a SQLite cache of normalized collection rows.
type SQLiteCache struct {
	db      *sql.DB
	dbPath  string
	baseDir string // .podboard directory
}

// NewSQLiteCache opens (creating if needed) cache.db under baseDir.
func NewSQLiteCache(baseDir string) (*SQLiteCache, error) {
	dbPath := filepath.Join(baseDir, "cache.db")

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	cache := &SQLiteCache{
		db:      db,
		dbPath:  dbPath,
		baseDir: baseDir,
	}

	if err := cache.initMetaTable(); err != nil {
		db.Close()
		return nil, err
	}

	return cache, nil
}

// initMetaTable creates the metadata table if it doesn't exist.
func (c *SQLiteCache) initMetaTable() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS _collection_meta (
			name TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			config_json TEXT NOT NULL,
			source_stamp TEXT,
			last_sync TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create meta table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (c *SQLiteCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// sanitizeTableName converts a collection name to a safe table name.
func sanitizeTableName(name string) string {
	return "c_" + strings.ReplaceAll(name, "-", "_")
}

// CreateCollectionTable creates the row table and metadata for a collection.
func (c *SQLiteCache) CreateCollectionTable(col *model.Collection) error {
	tableName := sanitizeTableName(col.Name)

	createSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s" (
			seq INTEGER PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			hash TEXT NOT NULL,
			status TEXT,
			platform TEXT,
			account_id TEXT,
			store_id TEXT,
			data TEXT NOT NULL
		)
	`, tableName)
	if _, err := c.db.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create collection table: %w", err)
	}

	indexes := []string{
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS "idx_%s_status" ON "%s"(status)`, tableName, tableName),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS "idx_%s_platform" ON "%s"(platform)`, tableName, tableName),
	}
	for _, idx := range indexes {
		if _, err := c.db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	configJSON, err := json.Marshal(col)
	if err != nil {
		return fmt.Errorf("failed to marshal collection config: %w", err)
	}
	_, err = c.db.Exec(`
		INSERT OR REPLACE INTO _collection_meta (name, kind, config_json, source_stamp, last_sync)
		VALUES (?, ?, ?, NULL, NULL)
	`, col.Name, string(col.Kind), string(configJSON))
	if err != nil {
		return fmt.Errorf("failed to store collection metadata: %w", err)
	}
	return nil
}

// DropCollectionTable drops the table and metadata for a collection.
func (c *SQLiteCache) DropCollectionTable(name string) error {
	if _, err := c.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS "%s"`, sanitizeTableName(name))); err != nil {
		return fmt.Errorf("failed to drop collection table: %w", err)
	}
	if _, err := c.db.Exec(`DELETE FROM _collection_meta WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete collection metadata: %w", err)
	}
	return nil
}

// GetCollection retrieves collection configuration from metadata.
func (c *SQLiteCache) GetCollection(name string) (*model.Collection, error) {
	var configJSON string
	err := c.db.QueryRow(`SELECT config_json FROM _collection_meta WHERE name = ?`, name).Scan(&configJSON)
	if err == sql.ErrNoRows {
		return nil, model.ErrCollectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	var col model.Collection
	if err := json.Unmarshal([]byte(configJSON), &col); err != nil {
		return nil, fmt.Errorf("failed to unmarshal collection config: %w", err)
	}
	return &col, nil
}

// UpdateCollectionConfig replaces the stored configuration.
func (c *SQLiteCache) UpdateCollectionConfig(col *model.Collection) error {
	configJSON, err := json.Marshal(col)
	if err != nil {
		return fmt.Errorf("failed to marshal collection config: %w", err)
	}
	result, err := c.db.Exec(`UPDATE _collection_meta SET config_json = ? WHERE name = ?`, string(configJSON), col.Name)
	if err != nil {
		return fmt.Errorf("failed to update collection config: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrCollectionNotFound
	}
	return nil
}

// ListCollections returns all collection configurations ordered by name.
func (c *SQLiteCache) ListCollections() ([]*model.Collection, error) {
	rows, err := c.db.Query(`SELECT config_json FROM _collection_meta ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var cols []*model.Collection
	for rows.Next() {
		var configJSON string
		if err := rows.Scan(&configJSON); err != nil {
			return nil, err
		}
		var col model.Collection
		if err := json.Unmarshal([]byte(configJSON), &col); err != nil {
			return nil, fmt.Errorf("failed to unmarshal collection config: %w", err)
		}
		cols = append(cols, &col)
	}
	return cols, rows.Err()
}

// ReplaceRows swaps the whole content of a collection table inside one
// transaction and records the source stamp the rows were built from.
func (c *SQLiteCache) ReplaceRows(name string, rows []CacheRow, stamp string) error {
	tableName := sanitizeTableName(name)

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM "%s"`, tableName)); err != nil {
		return fmt.Errorf("failed to clear collection table: %w", err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO "%s" (seq, id, hash, status, platform, account_id, store_id, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, tableName))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		_, err := stmt.Exec(i+1, r.ID, r.Hash,
			nullString(r.Status), nullString(r.Platform), nullString(r.AccountID), nullString(r.StoreID),
			string(r.Data))
		if err != nil {
			return fmt.Errorf("failed to insert row %s: %w", r.ID, err)
		}
	}

	result, err := tx.Exec(`UPDATE _collection_meta SET source_stamp = ?, last_sync = ? WHERE name = ?`,
		stamp, time.Now().UTC().Format(time.RFC3339), name)
	if err != nil {
		return fmt.Errorf("failed to update sync metadata: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return model.ErrCollectionNotFound
	}

	return tx.Commit()
}

// ListRows returns the JSON documents of a collection in insertion order.
func (c *SQLiteCache) ListRows(name string) ([]json.RawMessage, error) {
	rows, err := c.db.Query(fmt.Sprintf(`SELECT data FROM "%s" ORDER BY seq`, sanitizeTableName(name)))
	if err != nil {
		return nil, fmt.Errorf("failed to list rows: %w", err)
	}
	defer rows.Close()

	out := []json.RawMessage{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		out = append(out, json.RawMessage(data))
	}
	return out, rows.Err()
}

// SourceStamp returns the stamp recorded by the last ReplaceRows.
func (c *SQLiteCache) SourceStamp(name string) (string, error) {
	var stamp sql.NullString
	err := c.db.QueryRow(`SELECT source_stamp FROM _collection_meta WHERE name = ?`, name).Scan(&stamp)
	if err == sql.ErrNoRows {
		return "", model.ErrCollectionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read source stamp: %w", err)
	}
	return stamp.String, nil
}

// LastSync returns when a collection's rows were last replaced.
func (c *SQLiteCache) LastSync(name string) (time.Time, error) {
	var lastSync sql.NullString
	err := c.db.QueryRow(`SELECT last_sync FROM _collection_meta WHERE name = ?`, name).Scan(&lastSync)
	if err == sql.ErrNoRows {
		return time.Time{}, model.ErrCollectionNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last sync time: %w", err)
	}
	if !lastSync.Valid || lastSync.String == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, lastSync.String)
}

// CountBy returns row counts grouped by one of the categorical columns.
// Rows without a value are counted under "".
func (c *SQLiteCache) CountBy(name, column string) (map[string]int, error) {
	switch column {
	case "status", "platform", "account_id", "store_id":
	default:
		return nil, fmt.Errorf("cannot group by %q", column)
	}

	rows, err := c.db.Query(fmt.Sprintf(`SELECT COALESCE(%s, ''), COUNT(*) FROM "%s" GROUP BY 1`, column, sanitizeTableName(name)))
	if err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var value string
		var n int
		if err := rows.Scan(&value, &n); err != nil {
			return nil, err
		}
		counts[value] = n
	}
	return counts, rows.Err()
}

// CountRows returns the number of rows in a collection.
func (c *SQLiteCache) CountRows(name string) (int, error) {
	var count int
	err := c.db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM "%s"`, sanitizeTableName(name))).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}

// TableExists checks if a collection table exists.
func (c *SQLiteCache) TableExists(name string) (bool, error) {
	var found string
	err := c.db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, sanitizeTableName(name)).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// nullString converts empty string to NULL.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
