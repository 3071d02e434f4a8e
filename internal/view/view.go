// Package view derives the filtered, paginated slice of a record collection.
package view

import (
	"github.com/user/podboard/internal/filter"
	"github.com/user/podboard/internal/pagination"
)

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 10

// Page is one page of a filtered collection.
type Page[T any] struct {
	Items      []T
	TotalCount int
	TotalPages int
	Page       int
	PerPage    int
}

// Build filters records with s and slices out the given 1-based page.
// A page outside [1, TotalPages] yields no items rather than an error.
// Build has no side effects: equal inputs always produce equal output.
func Build[T filter.Record](records []T, s filter.State, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	filtered := filter.Apply(records, s)

	out := Page[T]{
		Items:      []T{},
		TotalCount: len(filtered),
		TotalPages: pagination.TotalPages(len(filtered), pageSize),
		Page:       page,
		PerPage:    pageSize,
	}
	if page < 1 || page > out.TotalPages {
		return out
	}
	lo := (page - 1) * pageSize
	hi := min(lo+pageSize, len(filtered))
	out.Items = filtered[lo:hi:hi]
	return out
}

type memoKey struct {
	gen      uint64
	state    filter.State
	page     int
	pageSize int
}

// Memo caches the most recent Build. The generation identifies the record
// collection: bump it whenever a newer collection resolves and the next
// Get recomputes against it, whatever order the loads finished in.
type Memo[T filter.Record] struct {
	key   memoKey
	valid bool
	page  Page[T]
	hits  int
}

// Get returns the page for the inputs, recomputing only when they differ
// from the previous call.
func (m *Memo[T]) Get(gen uint64, records []T, s filter.State, page, pageSize int) Page[T] {
	k := memoKey{gen: gen, state: s, page: page, pageSize: pageSize}
	if m.valid && m.key == k {
		m.hits++
		return m.page
	}
	m.page = Build(records, s, page, pageSize)
	m.key = k
	m.valid = true
	return m.page
}

// Hits returns how many Get calls were served from the cache.
func (m *Memo[T]) Hits() int {
	return m.hits
}

// Invalidate drops the cached page.
func (m *Memo[T]) Invalidate() {
	m.valid = false
}
