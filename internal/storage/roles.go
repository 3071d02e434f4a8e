package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/user/podboard/internal/model"
)

// RoleStore keeps roles in roles.json at the workspace root.
type RoleStore struct {
	baseDir string
}

// NewRoleStore creates a new role store.
func NewRoleStore(baseDir string) *RoleStore {
	return &RoleStore{baseDir: baseDir}
}

func (s *RoleStore) path() string {
	return filepath.Join(s.baseDir, "roles.json")
}

// ReadAll returns every role sorted by name. A missing file is no roles.
func (s *RoleStore) ReadAll() ([]*model.Role, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return []*model.Role{}, nil
		}
		return nil, fmt.Errorf("failed to read roles: %w", err)
	}

	roles := []*model.Role{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return roles, nil
	}
	if err := json.Unmarshal(data, &roles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal roles: %w", err)
	}
	sortRoles(roles)
	return roles, nil
}

// WriteAll replaces roles.json with roles.
func (s *RoleStore) WriteAll(roles []*model.Role) error {
	sortRoles(roles)
	data, err := json.MarshalIndent(roles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal roles: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	return writeAtomic(s.path(), "roles-*.tmp", func(w *bufio.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// Find returns the role whose ID or name (case-insensitively) is ref.
func (s *RoleStore) Find(ref string) (*model.Role, error) {
	roles, err := s.ReadAll()
	if err != nil {
		return nil, err
	}
	if r := findRole(roles, ref); r != nil {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s", model.ErrRoleNotFound, ref)
}

func findRole(roles []*model.Role, ref string) *model.Role {
	for _, r := range roles {
		if r.ID == ref {
			return r
		}
	}
	for _, r := range roles {
		if strings.EqualFold(r.Name, ref) {
			return r
		}
	}
	return nil
}

func sortRoles(roles []*model.Role) {
	sort.SliceStable(roles, func(i, j int) bool {
		a, b := strings.ToLower(roles[i].Name), strings.ToLower(roles[j].Name)
		if a != b {
			return a < b
		}
		return roles[i].ID < roles[j].ID
	})
}
