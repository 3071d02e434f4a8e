// Package filter holds the dashboard's multi-field filter state and the
// predicate it applies to records.
package filter

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// All is the sentinel value meaning "no constraint on this dimension".
const All = "all"

// Dimension names a categorical filter field.
type Dimension string

const (
	DimStatus   Dimension = "status"
	DimPlatform Dimension = "platform"
	DimAccount  Dimension = "account"
	DimStore    Dimension = "store"
)

// ErrUnknownDimension is returned by State.Set for names outside Dimensions().
var ErrUnknownDimension = errors.New("unknown filter dimension")

// Dimensions returns the categorical dimensions in cascade order.
func Dimensions() []Dimension {
	return []Dimension{DimStatus, DimPlatform, DimAccount, DimStore}
}

// Record is anything the filter can be applied to.
// Dimension returns the record's value for d, resolving one level of
// reference where the record carries one (e.g. a store's parent account).
type Record interface {
	SearchFields() []string
	Dimension(d Dimension) string
}

// State is the current set of filter values. It is comparable, so callers
// can detect a change with !=.
type State struct {
	Query    string
	Status   string
	Platform string
	Account  string
	Store    string
}

// New returns a State with every dimension unconstrained.
func New() State {
	return State{
		Status:   All,
		Platform: All,
		Account:  All,
		Store:    All,
	}
}

// SetQuery sets the free-text query. No other field changes.
func (s *State) SetQuery(q string) {
	s.Query = q
}

// SetStatus sets the status filter. No other field changes.
func (s *State) SetStatus(v string) {
	s.Status = v
}

// SetPlatform sets the platform and resets account and store.
func (s *State) SetPlatform(v string) {
	s.Platform = v
	s.Account = All
	s.Store = All
}

// SetAccount sets the account and resets store.
func (s *State) SetAccount(v string) {
	s.Account = v
	s.Store = All
}

// SetStore sets the store filter. No other field changes.
func (s *State) SetStore(v string) {
	s.Store = v
}

// Set dispatches to the setter for dim, so cascade rules still apply.
func (s *State) Set(dim Dimension, v string) error {
	switch dim {
	case DimStatus:
		s.SetStatus(v)
	case DimPlatform:
		s.SetPlatform(v)
	case DimAccount:
		s.SetAccount(v)
	case DimStore:
		s.SetStore(v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDimension, dim)
	}
	return nil
}

// Value returns the stored value for dim ("" for unknown dimensions).
func (s State) Value(dim Dimension) string {
	switch dim {
	case DimStatus:
		return s.Status
	case DimPlatform:
		return s.Platform
	case DimAccount:
		return s.Account
	case DimStore:
		return s.Store
	}
	return ""
}

// IsZero reports whether the state places no constraint at all.
func (s State) IsZero() bool {
	return s == New()
}

// Match reports whether r passes every clause of s.
func (s State) Match(r Record) bool {
	if !matchQuery(s.Query, r.SearchFields()) {
		return false
	}
	for _, dim := range Dimensions() {
		want := s.Value(dim)
		if want != All && want != r.Dimension(dim) {
			return false
		}
	}
	return true
}

func matchQuery(query string, fields []string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Apply returns the records matching s in their original order.
// The input slice is never modified.
func Apply[T Record](records []T, s State) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if s.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Options returns the distinct non-empty values dim takes among records
// that match s once dim and everything it cascades into are released.
// These are the choices a dependent dropdown for dim should offer.
func Options[T Record](records []T, s State, dim Dimension) ([]string, error) {
	if err := s.Set(dim, All); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	out := []string{}
	for _, r := range records {
		if !s.Match(r) {
			continue
		}
		v := r.Dimension(dim)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// String renders the non-default parts of s, e.g. `q="mug" platform=etsy`.
func (s State) String() string {
	var parts []string
	if s.Query != "" {
		parts = append(parts, fmt.Sprintf("q=%q", s.Query))
	}
	for _, dim := range Dimensions() {
		if v := s.Value(dim); v != All {
			parts = append(parts, fmt.Sprintf("%s=%s", dim, v))
		}
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, " ")
}
