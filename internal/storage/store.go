package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/podboard/internal/filter"
	"github.com/user/podboard/internal/model"
	"github.com/user/podboard/internal/selection"
	"github.com/user/podboard/internal/session"
)

// Store implements the Storage interface using JSONL files and a SQLite cache.
type Store struct {
	baseDir string // .podboard directory
	actor   string
	jsonl   *JSONLStore
	sqlite  *SQLiteCache
	config  *ConfigStore
	roles   *RoleStore
	logf    LogFunc
}

// ImportResult counts what an import did to a collection.
type ImportResult struct {
	Added     int `json:"added"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Total     int `json:"total"`
}

// Stats summarizes a collection.
type Stats struct {
	Name       string         `json:"name"`
	Kind       model.Kind     `json:"kind"`
	Count      int            `json:"count"`
	ByStatus   map[string]int `json:"by_status"`
	ByPlatform map[string]int `json:"by_platform"`
	LastSync   time.Time      `json:"last_sync,omitempty"`
}

// Open creates a store for the session's workspace. Writes are recorded
// under the session actor.
func Open(sess *session.Session) (*Store, error) {
	if sess == nil || sess.Dir == "" {
		return nil, session.ErrNoWorkspace
	}
	s, err := NewStore(sess.Dir)
	if err != nil {
		return nil, err
	}
	s.actor = sess.Actor
	return s, nil
}

// NewStore creates a new storage instance.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}

	sqlite, err := NewSQLiteCache(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite cache: %w", err)
	}

	return &Store{
		baseDir: baseDir,
		actor:   "unknown",
		jsonl:   NewJSONLStore(baseDir),
		sqlite:  sqlite,
		config:  NewConfigStore(baseDir),
		roles:   NewRoleStore(baseDir),
		logf:    func(string, ...interface{}) {},
	}, nil
}

// SetLogger sets where rebuild progress is reported.
func (s *Store) SetLogger(fn LogFunc) {
	if fn == nil {
		fn = func(string, ...interface{}) {}
	}
	s.logf = fn
}

// Close releases resources.
func (s *Store) Close() error {
	return s.sqlite.Close()
}

// BaseDir returns the base directory path.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// CreateCollection creates an empty collection.
func (s *Store) CreateCollection(col *model.Collection) error {
	if err := model.ValidateCollectionName(col.Name); err != nil {
		return err
	}
	if _, err := model.ParseKind(string(col.Kind)); err != nil {
		return err
	}
	if s.config.Exists(col.Name) {
		return model.ErrCollectionExists
	}
	if col.Created.IsZero() {
		col.Created = time.Now().UTC()
	}
	if col.CreatedBy == "" {
		col.CreatedBy = s.actor
	}

	if err := s.config.WriteConfig(col); err != nil {
		return err
	}
	if err := s.sqlite.CreateCollectionTable(col); err != nil {
		// Rollback config on failure
		s.config.DeleteConfig(col.Name)
		return err
	}
	return nil
}

// DropCollection removes a collection and all its data.
func (s *Store) DropCollection(name string) error {
	if !s.config.Exists(name) {
		return model.ErrCollectionNotFound
	}
	if err := s.sqlite.DropCollectionTable(name); err != nil {
		return err
	}
	return s.config.DeleteConfig(name)
}

// GetCollection retrieves collection configuration. config.json is
// authoritative; the cache copy is only a fallback.
func (s *Store) GetCollection(name string) (*model.Collection, error) {
	col, err := s.config.ReadConfig(name)
	if err == nil {
		return col, nil
	}
	if cached, cerr := s.sqlite.GetCollection(name); cerr == nil && s.config.Exists(name) {
		return cached, nil
	}
	return nil, err
}

// ListCollections returns all collection configurations sorted by name.
func (s *Store) ListCollections() ([]*model.Collection, error) {
	names, err := s.config.ListCollectionDirs()
	if err != nil {
		return nil, err
	}

	cols := make([]*model.Collection, 0, len(names))
	for _, name := range names {
		col, err := s.config.ReadConfig(name)
		if err != nil {
			s.logf("skipping collection %s: %v", name, err)
			continue
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// UpdateCollection rewrites a collection's configuration.
func (s *Store) UpdateCollection(col *model.Collection) error {
	if !s.config.Exists(col.Name) {
		return model.ErrCollectionNotFound
	}
	if err := s.config.WriteConfig(col); err != nil {
		return err
	}
	if err := s.sqlite.UpdateCollectionConfig(col); err != nil {
		// The cache copy is rebuilt on next read.
		s.logf("cache config update for %s failed: %v", col.Name, err)
	}
	return nil
}

// ImportOrders normalizes payloads as orders and merges them into the
// collection by ID.
func (s *Store) ImportOrders(name string, payloads []model.Payload) (ImportResult, error) {
	col, err := s.collectionOfKind(name, model.KindOrders)
	if err != nil {
		return ImportResult{}, err
	}
	orders, err := model.NormalizeAll(payloads, model.NormalizeOrder)
	if err != nil {
		return ImportResult{}, err
	}
	return importRecords(s, col, orders, func(o model.Order) string { return o.ID })
}

// ImportStores normalizes payloads as stores and merges them into the
// collection by ID.
func (s *Store) ImportStores(name string, payloads []model.Payload) (ImportResult, error) {
	col, err := s.collectionOfKind(name, model.KindStores)
	if err != nil {
		return ImportResult{}, err
	}
	stores, err := model.NormalizeAll(payloads, model.NormalizeStore)
	if err != nil {
		return ImportResult{}, err
	}
	return importRecords(s, col, stores, func(st model.Store) string { return st.ID })
}

// Import dispatches on the collection's kind.
func (s *Store) Import(name string, payloads []model.Payload) (ImportResult, error) {
	col, err := s.GetCollection(name)
	if err != nil {
		return ImportResult{}, err
	}
	if col.Kind == model.KindStores {
		return s.ImportStores(name, payloads)
	}
	return s.ImportOrders(name, payloads)
}

// importRecords upserts records into the collection's JSONL. Existing
// rows keep their position; new rows are appended.
func importRecords[T filter.Record](s *Store, col *model.Collection, records []T, idOf func(T) string) (ImportResult, error) {
	existing, err := s.jsonl.ReadAll(col.Name)
	if err != nil {
		return ImportResult{}, err
	}

	index := make(map[string]int, len(existing))
	for i, row := range existing {
		id, err := rowID(row)
		if err != nil {
			return ImportResult{}, fmt.Errorf("collection %s row %d: %w", col.Name, i+1, err)
		}
		index[id] = i
	}

	var result ImportResult
	rows := existing
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return ImportResult{}, fmt.Errorf("failed to marshal record: %w", err)
		}
		id := idOf(rec)
		if i, ok := index[id]; ok {
			if model.CalculateHash(rows[i]) == model.CalculateHash(json.RawMessage(data)) {
				result.Unchanged++
				continue
			}
			rows[i] = data
			result.Updated++
			continue
		}
		index[id] = len(rows)
		rows = append(rows, data)
		result.Added++
	}
	result.Total = len(rows)

	if result.Added+result.Updated > 0 {
		if err := s.jsonl.WriteAll(col.Name, rows); err != nil {
			return ImportResult{}, err
		}
	}
	if err := s.RebuildCache(col.Name); err != nil {
		return ImportResult{}, err
	}
	return result, nil
}

// Orders returns the orders of a collection in import order.
func (s *Store) Orders(name string) ([]model.Order, error) {
	if _, err := s.collectionOfKind(name, model.KindOrders); err != nil {
		return nil, err
	}
	return readRecords[model.Order](s, name)
}

// Stores returns the stores of a collection in import order.
func (s *Store) Stores(name string) ([]model.Store, error) {
	if _, err := s.collectionOfKind(name, model.KindStores); err != nil {
		return nil, err
	}
	return readRecords[model.Store](s, name)
}

func readRecords[T any](s *Store, name string) ([]T, error) {
	if err := s.ensureFresh(name); err != nil {
		return nil, err
	}
	rows, err := s.sqlite.ListRows(name)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(rows))
	for i, row := range rows {
		var rec T
		if err := json.Unmarshal(row, &rec); err != nil {
			return nil, fmt.Errorf("collection %s row %d: %w", name, i+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// ensureFresh rebuilds the cache when it is missing or older than the
// records file.
func (s *Store) ensureFresh(name string) error {
	exists, err := s.sqlite.TableExists(name)
	if err != nil {
		return err
	}
	if exists {
		want, err := s.jsonl.Stamp(name)
		if err != nil {
			return err
		}
		got, err := s.sqlite.SourceStamp(name)
		if err == nil && got == want {
			return nil
		}
	}
	return s.RebuildCache(name)
}

// RebuildCache rebuilds a collection's SQLite table from its JSONL file.
func (s *Store) RebuildCache(name string) error {
	col, err := s.GetCollection(name)
	if err != nil {
		return err
	}

	// Recreates the table and metadata if cache.db was removed.
	if err := s.sqlite.CreateCollectionTable(col); err != nil {
		return err
	}

	stamp, err := s.jsonl.Stamp(name)
	if err != nil {
		return err
	}
	raw, err := s.jsonl.ReadAll(name)
	if err != nil {
		return err
	}

	var rows []CacheRow
	if col.Kind == model.KindStores {
		rows, err = cacheRows[model.Store](raw)
	} else {
		rows, err = cacheRows[model.Order](raw)
	}
	if err != nil {
		return fmt.Errorf("collection %s: %w", name, err)
	}

	if err := s.sqlite.ReplaceRows(name, rows, stamp); err != nil {
		return err
	}
	s.logf("rebuilt cache for %s (%d rows)", name, len(rows))
	return nil
}

func cacheRows[T filter.Record](raw []json.RawMessage) ([]CacheRow, error) {
	rows := make([]CacheRow, 0, len(raw))
	for i, data := range raw {
		var rec T
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		id, err := rowID(data)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rows = append(rows, CacheRow{
			ID:        id,
			Hash:      model.CalculateHash(data),
			Status:    rec.Dimension(filter.DimStatus),
			Platform:  rec.Dimension(filter.DimPlatform),
			AccountID: rec.Dimension(filter.DimAccount),
			StoreID:   rec.Dimension(filter.DimStore),
			Data:      data,
		})
	}
	return rows, nil
}

func rowID(row json.RawMessage) (string, error) {
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(row, &head); err != nil {
		return "", err
	}
	if head.ID == "" {
		return "", fmt.Errorf("%w: row has no id", model.ErrInvalidPayload)
	}
	return head.ID, nil
}

// Stats returns counts for a collection, grouped by status and platform.
func (s *Store) Stats(name string) (*Stats, error) {
	col, err := s.GetCollection(name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureFresh(name); err != nil {
		return nil, err
	}

	st := &Stats{Name: col.Name, Kind: col.Kind}
	if st.Count, err = s.sqlite.CountRows(name); err != nil {
		return nil, err
	}
	if st.ByStatus, err = s.sqlite.CountBy(name, "status"); err != nil {
		return nil, err
	}
	if st.ByPlatform, err = s.sqlite.CountBy(name, "platform"); err != nil {
		return nil, err
	}
	if st.LastSync, err = s.sqlite.LastSync(name); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Store) collectionOfKind(name string, kind model.Kind) (*model.Collection, error) {
	col, err := s.GetCollection(name)
	if err != nil {
		return nil, err
	}
	if col.Kind != kind {
		return nil, fmt.Errorf("%w: collection %s holds %s, not %s", model.ErrInvalidKind, name, col.Kind, kind)
	}
	return col, nil
}

// Roles returns all roles sorted by name.
func (s *Store) Roles() ([]*model.Role, error) {
	return s.roles.ReadAll()
}

// GetRole finds a role by ID or name.
func (s *Store) GetRole(ref string) (*model.Role, error) {
	return s.roles.Find(ref)
}

// CreateRole adds a role with a generated ID.
func (s *Store) CreateRole(name string, permissions []string) (*model.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: role name", model.ErrEmptyValue)
	}
	roles, err := s.roles.ReadAll()
	if err != nil {
		return nil, err
	}
	if existing := findRole(roles, name); existing != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrRoleExists, name)
	}

	id, err := s.newRoleID(roles)
	if err != nil {
		return nil, err
	}
	if permissions == nil {
		permissions = []string{}
	}
	role := &model.Role{ID: id, Name: name, Permissions: permissions}
	s.stamp(role)

	if err := s.roles.WriteAll(append(roles, role)); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *Store) newRoleID(roles []*model.Role) (string, error) {
	taken := make(map[string]bool, len(roles))
	for _, r := range roles {
		taken[r.ID] = true
	}
	for attempt := 0; attempt < 10; attempt++ {
		id, err := model.GenerateID(model.RolePrefix)
		if err != nil {
			return "", err
		}
		if !taken[id] {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique role ID")
}

// SaveRole inserts or replaces a role by ID.
func (s *Store) SaveRole(role *model.Role) error {
	if role.ID == "" {
		return fmt.Errorf("%w: role id", model.ErrEmptyValue)
	}
	roles, err := s.roles.ReadAll()
	if err != nil {
		return err
	}
	s.stamp(role)

	replaced := false
	for i, r := range roles {
		if r.ID == role.ID {
			roles[i] = role
			replaced = true
			break
		}
	}
	if !replaced {
		roles = append(roles, role)
	}
	return s.roles.WriteAll(roles)
}

// DeleteRole removes a role by ID or name.
func (s *Store) DeleteRole(ref string) error {
	roles, err := s.roles.ReadAll()
	if err != nil {
		return err
	}
	target := findRole(roles, ref)
	if target == nil {
		return fmt.Errorf("%w: %s", model.ErrRoleNotFound, ref)
	}
	kept := roles[:0]
	for _, r := range roles {
		if r.ID != target.ID {
			kept = append(kept, r)
		}
	}
	return s.roles.WriteAll(kept)
}

// ImportRoles normalizes payloads as roles and upserts them by ID.
func (s *Store) ImportRoles(payloads []model.Payload) (ImportResult, error) {
	incoming, err := model.NormalizeAll(payloads, model.NormalizeRole)
	if err != nil {
		return ImportResult{}, err
	}
	roles, err := s.roles.ReadAll()
	if err != nil {
		return ImportResult{}, err
	}

	index := make(map[string]int, len(roles))
	for i, r := range roles {
		index[r.ID] = i
	}

	var result ImportResult
	for i := range incoming {
		role := incoming[i]
		if at, ok := index[role.ID]; ok {
			cur := roles[at]
			if cur.Name == role.Name && equalStrings(cur.Permissions, role.Permissions) {
				result.Unchanged++
				continue
			}
			s.stamp(&role)
			roles[at] = &role
			result.Updated++
			continue
		}
		s.stamp(&role)
		index[role.ID] = len(roles)
		roles = append(roles, &role)
		result.Added++
	}
	result.Total = len(roles)

	if result.Added+result.Updated == 0 {
		return result, nil
	}
	return result, s.roles.WriteAll(roles)
}

func (s *Store) stamp(role *model.Role) {
	role.UpdatedAt = time.Now().UTC()
	role.UpdatedBy = s.actor
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// CatalogPath is where a workspace may override the permission catalog.
func (s *Store) CatalogPath() string {
	return filepath.Join(s.baseDir, "catalog.yaml")
}

// Catalog returns the permission catalog: the workspace override when
// present, otherwise the built-in one.
func (s *Store) Catalog() ([]selection.Module, error) {
	f, err := os.Open(s.CatalogPath())
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultCatalog(), nil
		}
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return model.LoadCatalog(f)
}
