package pagination

import (
	"net/url"
	"strconv"
	"strings"
)

// PageParam is the query parameter holding the current page.
const PageParam = "page"

// Location is the navigable, addressable view state. Replace updates it in
// place; it must not trigger a reload of the view.
type Location interface {
	URL() *url.URL
	Replace(u *url.URL)
}

// MemoryLocation is a Location kept in memory. It records how many times
// it was replaced, which callers can use to observe navigation.
type MemoryLocation struct {
	u        *url.URL
	replaced int
}

// NewMemoryLocation parses raw into a MemoryLocation.
func NewMemoryLocation(raw string) (*MemoryLocation, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &MemoryLocation{u: u}, nil
}

// URL returns a copy of the current location.
func (l *MemoryLocation) URL() *url.URL {
	c := *l.u
	return &c
}

// Replace swaps the current location for u.
func (l *MemoryLocation) Replace(u *url.URL) {
	c := *u
	l.u = &c
	l.replaced++
}

// Replacements returns the number of Replace calls so far.
func (l *MemoryLocation) Replacements() int {
	return l.replaced
}

// String returns the current location as a string.
func (l *MemoryLocation) String() string {
	return l.u.String()
}

// ReadPage returns the page stored in u, falling back to 1 when the
// parameter is missing, not a plain decimal number, or below 1.
func ReadPage(u *url.URL) int {
	if u == nil {
		return 1
	}
	raw := u.Query().Get(PageParam)
	if raw == "" || strings.HasPrefix(raw, "+") || strings.HasPrefix(raw, "-") {
		return 1
	}
	p, err := strconv.Atoi(raw)
	if err != nil || p < 1 {
		return 1
	}
	return p
}

// WithPage returns a copy of u carrying page p. Page 1 is written by
// removing the parameter so canonical URLs stay clean. Every other query
// pair keeps its position and encoding; a missing page parameter is
// appended.
func WithPage(u *url.URL, p int) *url.URL {
	c := *u
	var pairs []string
	written := false
	if c.RawQuery != "" {
		for _, pair := range strings.Split(c.RawQuery, "&") {
			if !isPagePair(pair) {
				pairs = append(pairs, pair)
				continue
			}
			if !written && p > 1 {
				pairs = append(pairs, PageParam+"="+strconv.Itoa(p))
			}
			written = true
		}
	}
	if !written && p > 1 {
		pairs = append(pairs, PageParam+"="+strconv.Itoa(p))
	}
	c.RawQuery = strings.Join(pairs, "&")
	c.ForceQuery = false
	return &c
}

func isPagePair(pair string) bool {
	key, _, _ := strings.Cut(pair, "=")
	if k, err := url.QueryUnescape(key); err == nil {
		key = k
	}
	return key == PageParam
}
