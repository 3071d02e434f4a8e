package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// maxLineSize bounds a single JSONL row.
const maxLineSize = 4 * 1024 * 1024

// JSONLStore keeps the normalized rows of each collection, one JSON
// document per line, in import order. It is the source of truth the
// SQLite cache is rebuilt from.
type JSONLStore struct {
	baseDir string // .podboard directory
}

// NewJSONLStore creates a new JSONL store.
func NewJSONLStore(baseDir string) *JSONLStore {
	return &JSONLStore{baseDir: baseDir}
}

// getRecordsPath returns the path to records.jsonl for a collection.
func (s *JSONLStore) getRecordsPath(name string) string {
	return filepath.Join(s.baseDir, name, "records.jsonl")
}

// ReadAll reads every row of a collection.
// Returns an empty slice if the file doesn't exist.
func (s *JSONLStore) ReadAll(name string) ([]json.RawMessage, error) {
	file, err := os.Open(s.getRecordsPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return []json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("failed to open records file: %w", err)
	}
	defer file.Close()

	rows := []json.RawMessage{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			return nil, fmt.Errorf("failed to parse record at line %d: invalid JSON", lineNum)
		}
		// The scanner reuses its buffer.
		rows = append(rows, json.RawMessage(append([]byte(nil), line...)))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading records file: %w", err)
	}
	return rows, nil
}

// WriteAll overwrites the records file with rows.
func (s *JSONLStore) WriteAll(name string, rows []json.RawMessage) error {
	if err := os.MkdirAll(filepath.Join(s.baseDir, name), 0755); err != nil {
		return fmt.Errorf("failed to create collection directory: %w", err)
	}

	return writeAtomic(s.getRecordsPath(name), "records-*.tmp", func(w *bufio.Writer) error {
		for _, row := range rows {
			var buf bytes.Buffer
			// Compact keeps one document per line whatever the input layout.
			if err := json.Compact(&buf, row); err != nil {
				return fmt.Errorf("failed to compact record: %w", err)
			}
			buf.WriteByte('\n')
			if _, err := w.Write(buf.Bytes()); err != nil {
				return err
			}
		}
		return nil
	})
}

// Stamp identifies the current content of the records file by size and
// modification time. It is empty when the file does not exist.
func (s *JSONLStore) Stamp(name string) (string, error) {
	info, err := os.Stat(s.getRecordsPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to stat records file: %w", err)
	}
	return fmt.Sprintf("%d:%d", info.ModTime().UnixNano(), info.Size()), nil
}

// DeleteFile removes the records.jsonl file for a collection.
func (s *JSONLStore) DeleteFile(name string) error {
	err := os.Remove(s.getRecordsPath(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete records file: %w", err)
	}
	return nil
}

// Exists returns true if the records file exists.
func (s *JSONLStore) Exists(name string) bool {
	_, err := os.Stat(s.getRecordsPath(name))
	return err == nil
}
