package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/user/podboard/internal/model"
)

var (
	collectionKind     string
	collectionPageSize int
	collectionSource   string
	collectionYes      bool
)

var collectionCmd = &cobra.Command{
	Use:     "collection",
	Aliases: []string{"col"},
	Short:   "Manage collections",
	Long: `A collection is a named local snapshot of one backend listing,
holding either orders or stores.`,
}

var collectionCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a collection",
	Long: `Create an empty collection.

Examples:
  podboard collection create orders --kind orders
  podboard collection create shops --kind stores --source /v1/stores --page-size 25`,
	Args: cobra.ExactArgs(1),
	RunE: runCollectionCreate,
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	Args:  cobra.NoArgs,
	RunE:  runCollectionList,
}

var collectionInfoCmd = &cobra.Command{
	Use:   "info [name]",
	Short: "Show collection details and counts",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCollectionInfo,
}

var collectionDropCmd = &cobra.Command{
	Use:   "drop <name>",
	Short: "Delete a collection and its records",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionDrop,
}

func init() {
	collectionCreateCmd.Flags().StringVar(&collectionKind, "kind", string(model.KindOrders), "Record kind: orders or stores")
	collectionCreateCmd.Flags().IntVar(&collectionPageSize, "page-size", 0, "Rows per page (0 = default)")
	collectionCreateCmd.Flags().StringVar(&collectionSource, "source", "", "Backend path the collection is fetched from")
	collectionDropCmd.Flags().BoolVarP(&collectionYes, "yes", "y", false, "Confirm deletion")

	collectionCmd.AddCommand(collectionCreateCmd, collectionListCmd, collectionInfoCmd, collectionDropCmd)
	rootCmd.AddCommand(collectionCmd)
}

// parseCollectionArg parses "name:kind" (kind defaults to orders).
func parseCollectionArg(arg string) (*model.Collection, error) {
	name, kindStr, found := strings.Cut(arg, ":")
	if !found {
		kindStr = string(model.KindOrders)
	}
	if err := model.ValidateCollectionName(name); err != nil {
		return nil, err
	}
	kind, err := model.ParseKind(kindStr)
	if err != nil {
		return nil, err
	}
	return &model.Collection{Name: name, Kind: kind}, nil
}

func runCollectionCreate(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := model.ValidateCollectionName(name); err != nil {
		ExitValidationError(err.Error(), map[string]interface{}{"collection": name})
		return nil
	}
	kind, err := model.ParseKind(collectionKind)
	if err != nil {
		ExitValidationError(err.Error(), map[string]interface{}{"kind": collectionKind})
		return nil
	}
	if collectionPageSize < 0 {
		ExitValidationError("--page-size cannot be negative", map[string]interface{}{"page_size": collectionPageSize})
		return nil
	}

	sess, store, ok := openWorkspace()
	if !ok {
		return nil
	}
	defer store.Close()

	col := &model.Collection{
		Name:      name,
		Kind:      kind,
		Created:   time.Now().UTC(),
		CreatedBy: sess.Actor,
		PageSize:  collectionPageSize,
		Source:    collectionSource,
	}
	if err := store.CreateCollection(col); err != nil {
		exitForError(err, map[string]interface{}{"collection": name})
		return nil
	}

	if GetJSONOutput() {
		printJSON(col)
	} else if !IsQuiet() {
		fmt.Printf("Created %s collection '%s'\n", col.Kind, col.Name)
	}
	return nil
}

func runCollectionList(cmd *cobra.Command, args []string) error {
	_, store, ok := openWorkspace()
	if !ok {
		return nil
	}
	defer store.Close()

	cols, err := store.ListCollections()
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if GetJSONOutput() {
		printJSON(cols)
		return nil
	}
	if len(cols) == 0 {
		if !IsQuiet() {
			fmt.Println("No collections (create one with 'podboard collection create')")
		}
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tSOURCE\tCREATED BY")
	for _, c := range cols {
		source := c.Source
		if source == "" {
			source = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, c.Kind, source, c.CreatedBy)
	}
	return tw.Flush()
}

func runCollectionInfo(cmd *cobra.Command, args []string) error {
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
	stats, err := store.Stats(name)
	if err != nil {
		exitForError(err, map[string]interface{}{"collection": name})
		return nil
	}

	if GetJSONOutput() {
		printJSON(map[string]interface{}{
			"collection": col,
			"stats":      stats,
		})
		return nil
	}

	fmt.Printf("Collection: %s (%s)\n", col.Name, col.Kind)
	fmt.Printf("Records:    %d\n", stats.Count)
	fmt.Printf("Page size:  %d\n", col.EffectivePageSize(defaultPageSize))
	if col.Source != "" {
		fmt.Printf("Source:     %s\n", col.Source)
	}
	if !stats.LastSync.IsZero() {
		fmt.Printf("Last sync:  %s\n", stats.LastSync.Format(time.RFC3339))
	}
	printCounts("Status", stats.ByStatus)
	printCounts("Platform", stats.ByPlatform)
	return nil
}

func printCounts(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("%s:\n", title)
	for _, k := range keys {
		label := k
		if label == "" {
			label = "(none)"
		}
		fmt.Printf("  %-12s %d\n", label, counts[k])
	}
}

func runCollectionDrop(cmd *cobra.Command, args []string) error {
	name := args[0]
	if !collectionYes {
		ExitValidationError(fmt.Sprintf("dropping '%s' deletes its records; pass --yes to confirm", name),
			map[string]interface{}{"collection": name})
		return nil
	}

	_, store, ok := openWorkspace()
	if !ok {
		return nil
	}
	defer store.Close()

	if err := store.DropCollection(name); err != nil {
		exitForError(err, map[string]interface{}{"collection": name})
		return nil
	}

	if GetJSONOutput() {
		printJSON(map[string]interface{}{"dropped": name})
	} else if !IsQuiet() {
		fmt.Printf("Dropped collection '%s'\n", name)
	}
	return nil
}
