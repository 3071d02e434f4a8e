package pagination

// Pager owns the current page for one view. In controlled mode the caller
// supplies the page and a change callback; otherwise the page lives in a
// Location.
type Pager struct {
	current  int
	onChange func(int)
	loc      Location
}

// Controlled returns a Pager whose page is owned by the caller.
// onChange receives every accepted page change.
func Controlled(current int, onChange func(int)) *Pager {
	return &Pager{current: max(current, 1), onChange: onChange}
}

// Located returns a Pager that reads and writes the page parameter of loc.
func Located(loc Location) *Pager {
	return &Pager{loc: loc}
}

// IsControlled reports whether the page is owned by the caller.
func (p *Pager) IsControlled() bool {
	return p.loc == nil
}

// Current returns the raw current page. It may point past the end after
// the underlying collection shrinks; use Clamp or Controls to reconcile.
func (p *Pager) Current() int {
	if p.loc != nil {
		return ReadPage(p.loc.URL())
	}
	return p.current
}

// SetCurrent updates the caller-owned page without firing the callback.
// It is a no-op for located pagers, whose page lives in the location.
func (p *Pager) SetCurrent(page int) {
	if p.loc == nil {
		p.current = max(page, 1)
	}
}

// GoTo moves to page clamped into [1, total]. It reports whether the page
// actually changed; an unchanged page writes nothing.
func (p *Pager) GoTo(page, total int) bool {
	target := Clamp(page, total)
	if target == p.Current() {
		return false
	}
	if p.loc != nil {
		p.loc.Replace(WithPage(p.loc.URL(), target))
		return true
	}
	p.current = target
	if p.onChange != nil {
		p.onChange(target)
	}
	return true
}

// Prev moves one page back. It is a no-op on the first page.
func (p *Pager) Prev(total int) bool {
	cur := Clamp(p.Current(), total)
	if cur <= 1 {
		return false
	}
	return p.GoTo(cur-1, total)
}

// Next moves one page forward. It is a no-op on the last page.
func (p *Pager) Next(total int) bool {
	cur := Clamp(p.Current(), total)
	if cur >= total {
		return false
	}
	return p.GoTo(cur+1, total)
}

// Reset returns to page 1.
func (p *Pager) Reset() bool {
	return p.GoTo(1, 1)
}
