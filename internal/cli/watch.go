package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/user/podboard/internal/board"
	"github.com/user/podboard/internal/filter"
	"github.com/user/podboard/internal/model"
	"github.com/user/podboard/internal/pagination"
	"github.com/user/podboard/internal/reload"
)

var (
	watchFilters  []string
	watchQuery    string
	watchPage     int
	watchTimeout  time.Duration
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [collection]",
	Short: "Redraw a page whenever the collection changes on disk",
	Long: `Show one page of a collection and redraw it each time the collection's
files change, e.g. after 'podboard import' runs in another terminal.

A shrinking collection never leaves the view past the end: the last page
that still exists is shown instead.

Examples:
  podboard watch orders
  podboard watch orders --filter platform=etsy --filter status=pending
  podboard watch orders --page 3 --timeout 10m`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringArrayVar(&watchFilters, "filter", nil, "Filter as dimension=value (can be repeated)")
	watchCmd.Flags().StringVar(&watchQuery, "q", "", "Free-text search")
	watchCmd.Flags().IntVar(&watchPage, "page", 1, "Page to show")
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", 0, "Stop watching after this long (0 = until interrupted)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", reload.DefaultDebounce, "Quiet period before a change is redrawn")
	rootCmd.AddCommand(watchCmd)
}

// parseFilterArgs builds a filter from dimension=value pairs, applied in
// the order given.
func parseFilterArgs(query string, pairs []string) (filter.State, error) {
	s := filter.New()
	s.SetQuery(query)
	for _, pair := range pairs {
		dim, value, found := strings.Cut(pair, "=")
		if !found {
			return s, fmt.Errorf("%w: filter %q must be dimension=value", model.ErrEmptyValue, pair)
		}
		value = strings.TrimSpace(value)
		if value == "" {
			value = filter.All
		}
		if err := s.Set(filter.Dimension(strings.ToLower(strings.TrimSpace(dim))), value); err != nil {
			return s, err
		}
	}
	return s, nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	state, err := parseFilterArgs(watchQuery, watchFilters)
	if err != nil {
		exitForError(err, map[string]interface{}{"filter": watchFilters})
		return nil
	}
	if watchPage < 1 {
		ExitValidationError("--page must be at least 1", map[string]interface{}{"page": watchPage})
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

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if watchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, watchTimeout)
		defer cancel()
	}

	w := watchRequest{
		ctx:      ctx,
		baseDir:  sess.Dir,
		name:     name,
		state:    state,
		page:     watchPage,
		pageSize: col.EffectivePageSize(defaultPageSize),
	}
	if col.Kind == model.KindStores {
		err = watchRecords(w, func() ([]model.Store, error) { return store.Stores(name) }, board.StoreColumns())
	} else {
		err = watchRecords(w, func() ([]model.Order, error) { return store.Orders(name) }, board.OrderColumns())
	}
	if err != nil {
		exitForError(err, map[string]interface{}{"collection": name})
	}
	return nil
}

type watchRequest struct {
	ctx      context.Context
	baseDir  string
	name     string
	state    filter.State
	page     int
	pageSize int
}

func watchRecords[T filter.Record](req watchRequest, load func() ([]T, error), columns []board.Column[T]) error {
	pager := pagination.Controlled(1, nil)
	b := board.New[T](pager, req.pageSize)
	if err := applyState(b, req.state); err != nil {
		return err
	}
	pager.SetCurrent(req.page)

	var mu sync.Mutex
	redraw := func() error {
		records, err := load()
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		b.SetRecords(records)
		if GetJSONOutput() {
			p := b.Page()
			printJSON(map[string]interface{}{
				"collection":  req.name,
				"generation":  b.Generation(),
				"total_count": p.TotalCount,
				"total_pages": p.TotalPages,
				"page":        p.Page,
				"items":       p.Items,
			})
			return nil
		}
		fmt.Printf("== %s (%s) ==\n", req.name, time.Now().Format("15:04:05"))
		return b.Render(os.Stdout, columns)
	}
	if err := redraw(); err != nil {
		return err
	}

	watcher, err := reload.NewWatcher(req.baseDir,
		func(string) error { return redraw() },
		reload.LogFunc(logf),
		reload.Only(req.name),
		reload.WithDebounce(watchDebounce))
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	logf("watching %s", req.name)

	<-req.ctx.Done()
	return nil
}
