package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/podboard/internal/model"
)

// ConfigStore manages collection configuration files.
type ConfigStore struct {
	baseDir string // .podboard directory
}

// NewConfigStore creates a new config store.
func NewConfigStore(baseDir string) *ConfigStore {
	return &ConfigStore{baseDir: baseDir}
}

// getConfigPath returns the path to config.json for a collection.
func (s *ConfigStore) getConfigPath(name string) string {
	return filepath.Join(s.baseDir, name, "config.json")
}

// getCollectionDir returns the collection directory path.
func (s *ConfigStore) getCollectionDir(name string) string {
	return filepath.Join(s.baseDir, name)
}

// WriteConfig writes a collection configuration to config.json.
func (s *ConfigStore) WriteConfig(col *model.Collection) error {
	dir := s.getCollectionDir(col.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create collection directory: %w", err)
	}

	data, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	return writeAtomic(s.getConfigPath(col.Name), "config-*.tmp", func(w *bufio.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// ReadConfig reads a collection configuration from config.json.
func (s *ConfigStore) ReadConfig(name string) (*model.Collection, error) {
	data, err := os.ReadFile(s.getConfigPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.ErrCollectionNotFound
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var col model.Collection
	if err := json.Unmarshal(data, &col); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &col, nil
}

// DeleteConfig removes a collection's directory, records included.
func (s *ConfigStore) DeleteConfig(name string) error {
	if err := os.RemoveAll(s.getCollectionDir(name)); err != nil {
		return fmt.Errorf("failed to delete collection directory: %w", err)
	}
	return nil
}

// Exists returns true if the collection config exists.
func (s *ConfigStore) Exists(name string) bool {
	_, err := os.Stat(s.getConfigPath(name))
	return err == nil
}

// ListCollectionDirs returns all collection directory names.
func (s *ConfigStore) ListCollectionDirs() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read workspace directory: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() && !isHiddenOrMeta(entry.Name()) && s.Exists(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// isHiddenOrMeta returns true for hidden or meta directories.
func isHiddenOrMeta(name string) bool {
	return name[0] == '.' || name[0] == '_'
}

// writeAtomic writes path through a temp file in the same directory and
// renames it into place, so readers never see a partial file.
func writeAtomic(path, pattern string, write func(w *bufio.Writer) error) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), pattern)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	w := bufio.NewWriter(tmpFile)
	if err := write(w); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := w.Flush(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
