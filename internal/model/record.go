package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/user/podboard/internal/filter"
)

// Order statuses the backend is known to send. Other values pass through.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusCancelled  = "cancelled"
)

// PlatformUnknown is used when a payload names no sales platform.
const PlatformUnknown = "unknown"

// StoreRef is the reference an order carries to the store it was placed in.
type StoreRef struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	AccountID string `json:"account_id,omitempty"`
}

// Order is one print-on-demand order.
type Order struct {
	ID        string    `json:"id"`
	Number    string    `json:"number"`
	Customer  string    `json:"customer,omitempty"`
	Email     string    `json:"email,omitempty"`
	Product   string    `json:"product,omitempty"`
	Status    string    `json:"status"`
	Platform  string    `json:"platform"`
	AccountID string    `json:"account_id,omitempty"`
	Store     *StoreRef `json:"store,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// SearchFields returns the fields free-text search looks at.
func (o Order) SearchFields() []string {
	return []string{o.Number, o.Customer, o.Email, o.Product, o.ID}
}

// Dimension returns the order's value for d. An order without its own
// account inherits the account of its store.
func (o Order) Dimension(d filter.Dimension) string {
	switch d {
	case filter.DimStatus:
		return o.Status
	case filter.DimPlatform:
		return o.Platform
	case filter.DimAccount:
		if o.AccountID == "" && o.Store != nil {
			return o.Store.AccountID
		}
		return o.AccountID
	case filter.DimStore:
		if o.Store != nil {
			return o.Store.ID
		}
	}
	return ""
}

// StoreID returns the referenced store's ID, or "".
func (o Order) StoreID() string {
	if o.Store == nil {
		return ""
	}
	return o.Store.ID
}

// Store is a shop front on a sales platform, owned by an account.
type Store struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Platform  string `json:"platform"`
	AccountID string `json:"account_id,omitempty"`
	Status    string `json:"status,omitempty"`
}

// SearchFields returns the fields free-text search looks at.
func (s Store) SearchFields() []string {
	return []string{s.Name, s.ID}
}

// Dimension returns the store's value for d.
func (s Store) Dimension(d filter.Dimension) string {
	switch d {
	case filter.DimStatus:
		return s.Status
	case filter.DimPlatform:
		return s.Platform
	case filter.DimAccount:
		return s.AccountID
	case filter.DimStore:
		return s.ID
	}
	return ""
}

// Role is a named set of granted permission IDs.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
	UpdatedBy   string    `json:"updated_by,omitempty"`
}

// CalculateHash computes a deterministic hash of v's JSON form, returning
// the first 12 hex characters. Import uses it to tell unchanged rows from
// updated ones.
func CalculateHash(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])[:12]
}
