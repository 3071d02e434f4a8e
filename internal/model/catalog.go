package model

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/podboard/internal/selection"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Modules []selection.Module `yaml:"modules"`
}

// LoadCatalog parses a YAML permission catalog. Module keys and leaf IDs
// must be non-empty and unique across the whole catalog.
func LoadCatalog(r io.Reader) ([]selection.Module, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return []selection.Module{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	keys := make(map[string]bool)
	leaves := make(map[string]string)
	for i, m := range f.Modules {
		m.Key = strings.TrimSpace(m.Key)
		if m.Key == "" {
			return nil, fmt.Errorf("%w: module %d has no key", ErrInvalidCatalog, i)
		}
		if keys[m.Key] {
			return nil, fmt.Errorf("%w: duplicate module %q", ErrInvalidCatalog, m.Key)
		}
		keys[m.Key] = true
		if m.Label == "" {
			m.Label = m.Key
		}
		for j, l := range m.Leaves {
			if strings.TrimSpace(l.ID) == "" {
				return nil, fmt.Errorf("%w: module %q leaf %d has no id", ErrInvalidCatalog, m.Key, j)
			}
			if owner, dup := leaves[l.ID]; dup {
				return nil, fmt.Errorf("%w: permission %q listed in %q and %q", ErrInvalidCatalog, l.ID, owner, m.Key)
			}
			leaves[l.ID] = m.Key
			if l.Label == "" {
				m.Leaves[j].Label = l.ID
			}
		}
		f.Modules[i] = m
	}
	if f.Modules == nil {
		f.Modules = []selection.Module{}
	}
	return f.Modules, nil
}

// DefaultCatalog returns the built-in permission catalog.
func DefaultCatalog() []selection.Module {
	modules, err := LoadCatalog(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(fmt.Errorf("model.DefaultCatalog: %w", err))
	}
	return modules
}
