// Package board is one interactive view over a record collection: the
// filter, the current page and the derived page of results, kept
// consistent as any of them changes.
package board

import (
	"github.com/user/podboard/internal/filter"
	"github.com/user/podboard/internal/pagination"
	"github.com/user/podboard/internal/view"
)

// Board combines filter state, a pager and a memoized page view.
//
// Changing the filter always returns to page 1. A page that no longer
// exists after the records or filter change is shown clamped to the last
// page; the pager itself is left alone until the user navigates.
type Board[T filter.Record] struct {
	records  []T
	gen      uint64
	state    filter.State
	pager    *pagination.Pager
	pageSize int
	memo     view.Memo[T]
}

// New creates a board driven by pager. A nil pager keeps the page in
// memory. pageSize <= 0 selects view.DefaultPageSize.
func New[T filter.Record](pager *pagination.Pager, pageSize int) *Board[T] {
	if pager == nil {
		pager = pagination.Controlled(1, nil)
	}
	if pageSize <= 0 {
		pageSize = view.DefaultPageSize
	}
	return &Board[T]{
		records:  []T{},
		state:    filter.New(),
		pager:    pager,
		pageSize: pageSize,
	}
}

// SetRecords replaces the collection. Each call starts a new generation,
// so a page computed from older records is never served again.
func (b *Board[T]) SetRecords(records []T) {
	if records == nil {
		records = []T{}
	}
	b.records = records
	b.gen++
}

// Records returns the current collection.
func (b *Board[T]) Records() []T {
	return b.records
}

// Generation identifies the current collection.
func (b *Board[T]) Generation() uint64 {
	return b.gen
}

// State returns the current filter state.
func (b *Board[T]) State() filter.State {
	return b.state
}

// PageSize returns the rows per page.
func (b *Board[T]) PageSize() int {
	return b.pageSize
}

// SetQuery sets the free-text query. It reports whether the filter changed.
func (b *Board[T]) SetQuery(q string) bool {
	next := b.state
	next.SetQuery(q)
	return b.apply(next)
}

// Filter sets one categorical dimension, with the cascade that dimension
// implies. It reports whether the filter changed.
func (b *Board[T]) Filter(dim filter.Dimension, value string) (bool, error) {
	next := b.state
	if err := next.Set(dim, value); err != nil {
		return false, err
	}
	return b.apply(next), nil
}

// ClearFilters drops every constraint.
func (b *Board[T]) ClearFilters() bool {
	return b.apply(filter.New())
}

func (b *Board[T]) apply(next filter.State) bool {
	if next == b.state {
		return false
	}
	b.state = next
	b.pager.Reset()
	return true
}

// Options lists the values the dropdown for dim should offer.
func (b *Board[T]) Options(dim filter.Dimension) ([]string, error) {
	return filter.Options(b.records, b.state, dim)
}

// Page returns the current page of filtered records.
func (b *Board[T]) Page() view.Page[T] {
	cur := b.pager.Current()
	p := b.memo.Get(b.gen, b.records, b.state, cur, b.pageSize)
	if clamped := pagination.Clamp(cur, p.TotalPages); clamped != cur {
		p = b.memo.Get(b.gen, b.records, b.state, clamped, b.pageSize)
	}
	return p
}

// Controls returns the pagination bar for the current page.
func (b *Board[T]) Controls() pagination.Control {
	p := b.Page()
	return pagination.Controls(p.Page, p.TotalPages)
}

// GoTo navigates to page, clamped into range.
func (b *Board[T]) GoTo(page int) bool {
	return b.pager.GoTo(page, b.Page().TotalPages)
}

// Next moves one page forward.
func (b *Board[T]) Next() bool {
	return b.pager.Next(b.Page().TotalPages)
}

// Prev moves one page back.
func (b *Board[T]) Prev() bool {
	return b.pager.Prev(b.Page().TotalPages)
}

// MemoHits reports how many page reads were served without recomputing.
func (b *Board[T]) MemoHits() int {
	return b.memo.Hits()
}
