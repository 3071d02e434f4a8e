package board

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/user/podboard/internal/pagination"
)

// Column is one rendered table column.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// Render writes the current page as a table followed by a summary line
// and, when there is more than one page, the pagination bar.
func (b *Board[T]) Render(w io.Writer, columns []Column[T]) error {
	p := b.Page()

	if len(p.Items) == 0 {
		if _, err := fmt.Fprintf(w, "No records match (filter: %s)\n", b.state); err != nil {
			return err
		}
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		headers := make([]string, len(columns))
		for i, c := range columns {
			headers[i] = c.Header
		}
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
		for _, item := range p.Items {
			cells := make([]string, len(columns))
			for i, c := range columns {
				cells[i] = sanitizeCell(c.Value(item))
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	first, last := 0, 0
	if len(p.Items) > 0 {
		first = (p.Page-1)*p.PerPage + 1
		last = first + len(p.Items) - 1
	}
	if _, err := fmt.Fprintf(w, "Showing %d-%d of %d (filter: %s)\n", first, last, p.TotalCount, b.state); err != nil {
		return err
	}

	if c := pagination.Controls(p.Page, p.TotalPages); c.Visible {
		if _, err := fmt.Fprintln(w, FormatControl(c)); err != nil {
			return err
		}
	}
	return nil
}

// FormatControl renders a pagination bar on one line, e.g.
// "(prev) [1] 2 3 … 9 10 next". Disabled buttons are parenthesized.
func FormatControl(c pagination.Control) string {
	if !c.Visible {
		return ""
	}
	parts := make([]string, 0, len(c.Entries)+2)
	parts = append(parts, button("prev", c.PrevDisabled))
	for _, e := range c.Entries {
		if !e.Ellipsis && e.Page == c.Current {
			parts = append(parts, "["+e.String()+"]")
			continue
		}
		parts = append(parts, e.String())
	}
	parts = append(parts, button("next", c.NextDisabled))
	return strings.Join(parts, " ")
}

func button(label string, disabled bool) string {
	if disabled {
		return "(" + label + ")"
	}
	return label
}

// sanitizeCell keeps a value on one table row.
func sanitizeCell(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}
