package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/user/podboard/internal/fetch"
	"github.com/user/podboard/internal/model"
	"github.com/user/podboard/internal/session"
)

var importURL string

var importCmd = &cobra.Command{
	Use:   "import <collection> [file]",
	Short: "Import records into a collection",
	Long: `Import a listing into a collection, merging records by id.

The listing is a JSON array of records or a {"data": [...]} envelope.
It is read from a file ("-" for stdin), fetched from --url, or fetched
from the collection's source path when neither is given.

Relative URLs are resolved against $PODBOARD_API and sent with
$PODBOARD_TOKEN as a bearer token.

Examples:
  podboard import orders orders.json
  curl -s $API/orders | podboard import orders -
  podboard import orders --url /v1/orders?status=pending
  podboard import shops`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importURL, "url", "", "Fetch the listing from this URL or API path")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	name := args[0]
	file := ""
	if len(args) == 2 {
		file = args[1]
	}
	if file != "" && importURL != "" {
		ExitValidationError("give either a file or --url, not both", nil)
		return nil
	}

	sess, store, ok := openWorkspace()
	if !ok {
		return nil
	}
	defer store.Close()

	col, err := store.GetCollection(name)
	if err != nil {
		exitForError(err, map[string]interface{}{"collection": name})
		return nil
	}

	source := file
	var payloads []model.Payload
	switch {
	case file != "":
		payloads, err = readListing(cmd, file)
	default:
		source = importURL
		if source == "" {
			source = col.Source
		}
		if source == "" {
			ExitValidationError(fmt.Sprintf("collection '%s' has no source; give a file or --url", name), nil)
			return nil
		}
		payloads, err = fetchListing(cmd.Context(), sess, source)
	}
	if err != nil {
		exitForError(err, map[string]interface{}{"collection": name, "source": source})
		return nil
	}
	logf("read %d payloads from %s", len(payloads), source)

	result, err := store.Import(name, payloads)
	if err != nil {
		exitForError(err, map[string]interface{}{"collection": name})
		return nil
	}

	if GetJSONOutput() {
		printJSON(map[string]interface{}{
			"collection": name,
			"source":     source,
			"added":      result.Added,
			"updated":    result.Updated,
			"unchanged":  result.Unchanged,
			"total":      result.Total,
		})
	} else if !IsQuiet() {
		fmt.Printf("Imported into '%s': %d added, %d updated, %d unchanged (%d total)\n",
			name, result.Added, result.Updated, result.Unchanged, result.Total)
	}
	return nil
}

// readListing reads a listing from path, or from stdin for "-".
func readListing(cmd *cobra.Command, path string) ([]model.Payload, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return fetch.DecodeListing(data)
}

// fetchListing GETs a listing from the backend, cancelled by Ctrl-C.
func fetchListing(parent context.Context, sess *session.Session, path string) ([]model.Payload, error) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	return fetch.NewClient(sess, nil).GetPayloads(ctx, path)
}
