package cli

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/podboard/internal/board"
	"github.com/user/podboard/internal/filter"
	"github.com/user/podboard/internal/model"
	"github.com/user/podboard/internal/pagination"
	"github.com/user/podboard/internal/view"
)

const defaultPageSize = view.DefaultPageSize

var (
	listQuery    string
	listStatus   string
	listPlatform string
	listAccount  string
	listStore    string
	listPage     int
	listLocation string
	listPageSize int
	listOptions  string
)

var listCmd = &cobra.Command{
	Use:   "list [collection]",
	Short: "List one page of filtered records",
	Long: `List one page of a collection, filtered the way the dashboard filters.

Filters:
  --q TEXT           case-insensitive search over number, customer, email, product, id
  --status VALUE     exact match ("all" = any)
  --platform VALUE   exact match; a platform filter implies any account and store
  --account VALUE    exact match; an account filter implies any store
  --store VALUE      exact match

Pages:
  --page N           page to show (pages past the end show the last page)
  --location URL     read the page from the URL's ?page= parameter
  --page-size N      rows per page (default: collection setting or 10)

Use --options DIMENSION to print the values a dropdown for that dimension
would offer under the other filters.

Examples:
  podboard list orders
  podboard list orders --platform etsy --status pending --page 2
  podboard list orders --location "https://ops.example.com/orders?page=3"
  podboard list orders --platform etsy --options account`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listQuery, "q", "", "Free-text search")
	listCmd.Flags().StringVar(&listStatus, "status", filter.All, "Filter by status")
	listCmd.Flags().StringVar(&listPlatform, "platform", filter.All, "Filter by platform")
	listCmd.Flags().StringVar(&listAccount, "account", filter.All, "Filter by account")
	listCmd.Flags().StringVar(&listStore, "store", filter.All, "Filter by store")
	listCmd.Flags().IntVar(&listPage, "page", 1, "Page to show")
	listCmd.Flags().StringVar(&listLocation, "location", "", "URL whose ?page= parameter selects the page")
	listCmd.Flags().IntVar(&listPageSize, "page-size", 0, "Rows per page (0 = collection default)")
	listCmd.Flags().StringVar(&listOptions, "options", "", "Print dropdown options for a dimension instead of records")
	rootCmd.AddCommand(listCmd)
}

// filterFlags returns the filter as given on the command line. Setters
// run in cascade order so an explicit account survives its platform.
func filterFlags() (filter.State, error) {
	s := filter.New()
	s.SetQuery(listQuery)
	s.SetStatus(listStatus)
	s.SetPlatform(listPlatform)
	s.SetAccount(listAccount)
	s.SetStore(listStore)
	for _, dim := range filter.Dimensions() {
		if s.Value(dim) == "" {
			return s, fmt.Errorf("%w: --%s cannot be empty (use %q for any)", model.ErrEmptyValue, dim, filter.All)
		}
	}
	return s, nil
}

func runList(cmd *cobra.Command, args []string) error {
	state, err := filterFlags()
	if err != nil {
		ExitValidationError(err.Error(), nil)
		return nil
	}
	if listPageSize < 0 {
		ExitValidationError("--page-size cannot be negative", map[string]interface{}{"page_size": listPageSize})
		return nil
	}
	if cmd.Flags().Changed("page") && listPage < 1 {
		ExitValidationError("--page must be at least 1", map[string]interface{}{"page": listPage})
		return nil
	}

	var loc *url.URL
	if listLocation != "" {
		loc, err = url.Parse(listLocation)
		if err != nil {
			ExitValidationError(fmt.Sprintf("invalid --location: %v", err), map[string]interface{}{"location": listLocation})
			return nil
		}
	}
	page := listPage
	if loc != nil && !cmd.Flags().Changed("page") {
		page = pagination.ReadPage(loc)
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
	pageSize := listPageSize
	if pageSize == 0 {
		pageSize = col.EffectivePageSize(defaultPageSize)
	}

	req := listRequest{
		collection: name,
		state:      state,
		page:       page,
		pageSize:   pageSize,
		location:   loc,
		options:    filter.Dimension(strings.ToLower(listOptions)),
	}
	if col.Kind == model.KindStores {
		stores, err := store.Stores(name)
		if err != nil {
			exitForError(err, map[string]interface{}{"collection": name})
			return nil
		}
		return listRecords(req, stores, board.StoreColumns())
	}
	orders, err := store.Orders(name)
	if err != nil {
		exitForError(err, map[string]interface{}{"collection": name})
		return nil
	}
	return listRecords(req, orders, board.OrderColumns())
}

type listRequest struct {
	collection string
	state      filter.State
	page       int
	pageSize   int
	location   *url.URL
	options    filter.Dimension
}

func listRecords[T filter.Record](req listRequest, records []T, columns []board.Column[T]) error {
	pager := pagination.Controlled(1, nil)
	b := board.New[T](pager, req.pageSize)
	b.SetRecords(records)
	if err := applyState(b, req.state); err != nil {
		exitForError(err, nil)
		return nil
	}
	pager.SetCurrent(req.page)

	if req.options != "" {
		opts, err := b.Options(req.options)
		if err != nil {
			exitForError(err, map[string]interface{}{"options": string(req.options)})
			return nil
		}
		if GetJSONOutput() {
			printJSON(map[string]interface{}{"dimension": req.options, "options": opts})
			return nil
		}
		for _, o := range opts {
			fmt.Println(o)
		}
		return nil
	}

	p := b.Page()
	if GetJSONOutput() {
		out := map[string]interface{}{
			"collection":  req.collection,
			"filter":      stateJSON(b.State()),
			"items":       p.Items,
			"total_count": p.TotalCount,
			"total_pages": p.TotalPages,
			"page":        p.Page,
			"per_page":    p.PerPage,
			"controls":    controlJSON(b.Controls()),
		}
		if req.location != nil {
			out["location"] = pagination.WithPage(req.location, p.Page).String()
		}
		printJSON(out)
		return nil
	}

	if err := b.Render(os.Stdout, columns); err != nil {
		return err
	}
	if req.location != nil && IsVerbose() {
		fmt.Printf("Location: %s\n", pagination.WithPage(req.location, p.Page))
	}
	return nil
}

// applyState replays s onto b through the board's setters.
func applyState[T filter.Record](b *board.Board[T], s filter.State) error {
	b.SetQuery(s.Query)
	for _, dim := range filter.Dimensions() {
		if _, err := b.Filter(dim, s.Value(dim)); err != nil {
			return err
		}
	}
	return nil
}

func stateJSON(s filter.State) map[string]string {
	return map[string]string{
		"q":        s.Query,
		"status":   s.Status,
		"platform": s.Platform,
		"account":  s.Account,
		"store":    s.Store,
	}
}

func controlJSON(c pagination.Control) map[string]interface{} {
	entries := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		entries = append(entries, e.String())
	}
	return map[string]interface{}{
		"visible":       c.Visible,
		"current":       c.Current,
		"total":         c.Total,
		"prev_disabled": c.PrevDisabled,
		"next_disabled": c.NextDisabled,
		"entries":       entries,
	}
}
