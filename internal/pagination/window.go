// Package pagination computes windowed page lists and keeps the current page
// in sync with a navigable location.
package pagination

import "strconv"

// maxFullWindow is the largest page count rendered without abbreviation.
const maxFullWindow = 7

// EllipsisMark is how an abbreviated gap renders.
const EllipsisMark = "…"

// Entry is one slot in a page window: either a page number or a gap.
type Entry struct {
	Page     int
	Ellipsis bool
}

// String renders the page number or the ellipsis mark.
func (e Entry) String() string {
	if e.Ellipsis {
		return EllipsisMark
	}
	return strconv.Itoa(e.Page)
}

func page(p int) Entry { return Entry{Page: p} }

var gap = Entry{Ellipsis: true}

// TotalPages returns ceil(count/size), or 0 for an empty collection.
func TotalPages(count, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

// Clamp forces p into [1, max(total, 1)].
func Clamp(p, total int) int {
	if total < 1 {
		total = 1
	}
	return min(max(p, 1), total)
}

// Window returns the abbreviated page list for the given position.
//
// Up to seven pages are listed in full. Past that the list always starts
// with 1, 2 and ends with total-1, total, around a run of current-1..current+1
// bounded to [3, total-2]. Gaps are marked when current > 4 and when
// current < total-3.
func Window(current, total int) []Entry {
	if total <= 0 {
		return []Entry{}
	}
	if total <= maxFullWindow {
		out := make([]Entry, 0, total)
		for p := 1; p <= total; p++ {
			out = append(out, page(p))
		}
		return out
	}

	current = Clamp(current, total)

	start := max(3, current-1)
	end := min(total-2, current+1)
	// At either edge the run would be empty; keep the page next to the pair.
	if end < start {
		if current <= 3 {
			end = start
		} else {
			start = end
		}
	}

	out := []Entry{page(1), page(2)}
	if current > 4 {
		out = append(out, gap)
	}
	for p := start; p <= end; p++ {
		out = append(out, page(p))
	}
	if current < total-3 {
		out = append(out, gap)
	}
	return append(out, page(total-1), page(total))
}

// Control describes how a pagination bar should render.
type Control struct {
	Visible      bool
	Current      int
	Total        int
	PrevDisabled bool
	NextDisabled bool
	Entries      []Entry
}

// Controls returns the render state for a pagination bar. Nothing is
// visible for a single page or fewer; the current page is clamped into
// range so a stale page never renders past the end.
func Controls(current, total int) Control {
	if total <= 1 {
		return Control{Current: 1, Total: max(total, 0)}
	}
	current = Clamp(current, total)
	return Control{
		Visible:      true,
		Current:      current,
		Total:        total,
		PrevDisabled: current <= 1,
		NextDisabled: current >= total,
		Entries:      Window(current, total),
	}
}
