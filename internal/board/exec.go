package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/user/podboard/internal/filter"
)

var (
	// ErrQuit is returned by Exec for quit and exit.
	ErrQuit = errors.New("quit")
	// ErrHelp is returned by Exec when the user asks for Help.
	ErrHelp = errors.New("help requested")
	// ErrUnknownCommand is returned for a command Exec does not know.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUsage is returned when a known command gets bad arguments.
	ErrUsage = errors.New("usage")
)

// Help describes the commands Exec understands.
const Help = `Commands:
  q [text]                 search (empty text clears the search)
  status|platform [value]  filter by value ("all" or empty clears)
  account|store [value]    filter by value ("all" or empty clears)
  page N                   go to page N
  next, prev, first, last  move between pages
  reset                    clear every filter
  help                     show this text
  quit                     leave`

// Exec runs one command line against the board. Blank lines do nothing.
func (b *Board[T]) Exec(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "q", "query", "search", "/":
		b.SetQuery(arg)
	case "status", "platform", "account", "store":
		if arg == "" {
			arg = filter.All
		}
		if _, err := b.Filter(filter.Dimension(strings.ToLower(cmd)), arg); err != nil {
			return err
		}
	case "page", "p", "goto":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("%w: page N (got %q)", ErrUsage, arg)
		}
		b.GoTo(n)
	case "next", "n", ">":
		b.Next()
	case "prev", "<":
		b.Prev()
	case "first":
		b.GoTo(1)
	case "last":
		b.GoTo(b.Page().TotalPages)
	case "reset", "clear":
		b.ClearFilters()
	case "help", "?":
		return ErrHelp
	case "quit", "exit":
		return ErrQuit
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
	return nil
}
