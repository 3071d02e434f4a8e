package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/podboard/internal/board"
	"github.com/user/podboard/internal/filter"
	"github.com/user/podboard/internal/model"
	"github.com/user/podboard/internal/pagination"
)

var (
	browseLocation string
	browsePageSize int
)

var browseCmd = &cobra.Command{
	Use:   "browse [collection]",
	Short: "Page through a collection interactively",
	Long: `Open a collection as an interactive board reading commands from stdin.

The current page lives in a location URL, as it would in the address bar:
moving between pages rewrites ?page=, and changing any filter sends the
board back to page 1.

` + board.Help + `
  reload                   re-read the collection from disk
  url                      print the current location

Examples:
  podboard browse orders
  podboard browse orders --location "/orders?page=4"
  printf 'platform etsy\nnext\n' | podboard browse orders`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&browseLocation, "location", "", "Starting location URL (default: /<collection>)")
	browseCmd.Flags().IntVar(&browsePageSize, "page-size", 0, "Rows per page (0 = collection default)")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if browsePageSize < 0 {
		ExitValidationError("--page-size cannot be negative", map[string]interface{}{"page_size": browsePageSize})
		return nil
	}

	sess, store, ok := openWorkspace()
	if !ok {
		return nil
	}
	defer store.Close()

	name, ok := targetCollection(sess, args)
	if !ok {
		return nil
	}
	col, err := store.GetCollection(name)
	if err != nil {
		exitForError(err, map[string]interface{}{"collection": name})
		return nil
	}

	raw := browseLocation
	if raw == "" {
		raw = "/" + name
	}
	loc, err := pagination.NewMemoryLocation(raw)
	if err != nil {
		ExitValidationError(fmt.Sprintf("invalid --location: %v", err), map[string]interface{}{"location": raw})
		return nil
	}

	pageSize := browsePageSize
	if pageSize == 0 {
		pageSize = col.EffectivePageSize(defaultPageSize)
	}

	s := browseSession{
		in:       cmd.InOrStdin(),
		out:      cmd.OutOrStdout(),
		loc:      loc,
		pageSize: pageSize,
		prompt:   !IsQuiet(),
	}
	if col.Kind == model.KindStores {
		return browseRecords(s, func() ([]model.Store, error) { return store.Stores(name) }, board.StoreColumns())
	}
	return browseRecords(s, func() ([]model.Order, error) { return store.Orders(name) }, board.OrderColumns())
}

type browseSession struct {
	in       io.Reader
	out      io.Writer
	loc      *pagination.MemoryLocation
	pageSize int
	prompt   bool
}

// browseRecords runs the read-eval-render loop until quit or end of input.
func browseRecords[T filter.Record](s browseSession, load func() ([]T, error), columns []board.Column[T]) error {
	records, err := load()
	if err != nil {
		return err
	}
	b := board.New[T](pagination.Located(s.loc), s.pageSize)
	b.SetRecords(records)

	render := func() error {
		if err := b.Render(s.out, columns); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Location: %s\n", s.loc)
		return nil
	}
	if err := render(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(s.in)
	for {
		if s.prompt {
			fmt.Fprint(s.out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "reload":
			fresh, err := load()
			if err != nil {
				fmt.Fprintf(s.out, "Error: %v\n", err)
				continue
			}
			b.SetRecords(fresh)
			logf("reloaded %d records", len(fresh))
		case "url", "location":
			fmt.Fprintln(s.out, s.loc)
			continue
		default:
			err := b.Exec(line)
			switch {
			case errors.Is(err, board.ErrQuit):
				return nil
			case errors.Is(err, board.ErrHelp):
				fmt.Fprintln(s.out, board.Help)
				continue
			case err != nil:
				fmt.Fprintf(s.out, "Error: %v\n", err)
				continue
			}
		}
		if err := render(); err != nil {
			return err
		}
	}
	return scanner.Err()
}
