package model

import (
	"fmt"
	"regexp"
	"time"
)

// Kind says which record type a collection holds.
type Kind string

const (
	KindOrders Kind = "orders"
	KindStores Kind = "stores"
)

// Collection name validation:
// - Must start with a letter
// - Can contain letters, numbers, hyphens, underscores
// - Max 64 characters
var collectionNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]{0,63}$`)

// Collection is a named local snapshot of one backend listing.
type Collection struct {
	Name      string    `json:"name"`
	Kind      Kind      `json:"kind"`
	Created   time.Time `json:"created"`
	CreatedBy string    `json:"created_by"`
	// PageSize overrides the default rows per page (0 = default).
	PageSize int    `json:"page_size,omitempty"`
	Source   string `json:"source,omitempty"` // backend path the snapshot was fetched from
}

// ValidateCollectionName checks if a collection name is valid.
func ValidateCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: collection name cannot be empty", ErrInvalidName)
	}
	if !collectionNameRegex.MatchString(name) {
		return fmt.Errorf("%w: collection name must start with a letter and contain only letters, numbers, hyphens, and underscores", ErrInvalidName)
	}
	return nil
}

// ParseKind validates a kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindOrders, KindStores:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q (expected orders or stores)", ErrInvalidKind, s)
}

// EffectivePageSize returns PageSize, or def when unset.
func (c *Collection) EffectivePageSize(def int) int {
	if c.PageSize > 0 {
		return c.PageSize
	}
	return def
}
