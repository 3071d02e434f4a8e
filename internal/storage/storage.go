// Package storage provides persistent storage for podboard collections.
//
// Each collection lives in .podboard/<name>/ as a config.json and a
// records.jsonl holding normalized rows. cache.db is a SQLite cache of
// those rows and can always be rebuilt from the JSONL files.
package storage

import (
	"github.com/user/podboard/internal/model"
	"github.com/user/podboard/internal/selection"
)

// LogFunc receives progress and warning messages.
type LogFunc func(format string, args ...interface{})

// Storage defines the interface for collection persistence.
type Storage interface {
	// Collection management
	CreateCollection(col *model.Collection) error
	DropCollection(name string) error
	GetCollection(name string) (*model.Collection, error)
	ListCollections() ([]*model.Collection, error)
	UpdateCollection(col *model.Collection) error

	// Record operations
	Import(name string, payloads []model.Payload) (ImportResult, error)
	ImportOrders(name string, payloads []model.Payload) (ImportResult, error)
	ImportStores(name string, payloads []model.Payload) (ImportResult, error)
	Orders(name string) ([]model.Order, error)
	Stores(name string) ([]model.Store, error)
	Stats(name string) (*Stats, error)

	// Sync operations
	RebuildCache(name string) error

	// Roles and permissions
	Roles() ([]*model.Role, error)
	GetRole(ref string) (*model.Role, error)
	CreateRole(name string, permissions []string) (*model.Role, error)
	SaveRole(role *model.Role) error
	DeleteRole(ref string) error
	ImportRoles(payloads []model.Payload) (ImportResult, error)
	Catalog() ([]selection.Module, error)

	// Close releases resources.
	Close() error
}

var _ Storage = (*Store)(nil)
