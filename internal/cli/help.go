package cli

import (
	"github.com/spf13/cobra"
)

// helpTopicsCmd is a parent command for help topics
var helpTopicsCmd = &cobra.Command{
	Use:   "help-topic",
	Short: "Extended help topics",
	Long:  `Extended help topics for podboard. Use 'podboard help-topic <topic>' to view.`,
}

var helpFiltersCmd = &cobra.Command{
	Use:   "filters",
	Short: "How filters combine and cascade",
	Long: `Filters

DIMENSIONS
──────────
  q          free text, case-insensitive, matched anywhere in the order
             number, customer name, email, product name or id
  status     exact match
  platform   exact match (etsy, shopify, ...)
  account    exact match on the platform account id
  store      exact match on the store id

Every dimension defaults to "all", which matches anything. A record is
shown only when it passes every clause.

CASCADE
───────
Accounts belong to a platform and stores belong to an account, so
choosing an upstream value clears the ones below it:

  set platform  ->  account = all, store = all
  set account   ->  store = all
  set status, store or q  ->  nothing else changes

In 'podboard list' the flags are applied in that order, so
  --platform etsy --account acc-1
keeps both values.

DROPDOWN OPTIONS
────────────────
  podboard list orders --platform etsy --options account

prints the accounts that still have matching records under every other
filter, which is what a dropdown for that dimension would offer.

Related Topics:
  podboard help-topic pagination`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(cmd.Long)
	},
}

var helpPaginationCmd = &cobra.Command{
	Use:   "pagination",
	Short: "Page numbers, the ?page= parameter and the page bar",
	Long: `Pagination

PAGES
─────
Pages are numbered from 1. The page count is ceil(matches / page size),
and a page past the end is shown as the last page that exists. Changing
any filter returns to page 1.

THE LOCATION URL
────────────────
The current page can live in a URL, as in the dashboard's address bar:

  /orders            page 1 (page 1 is never written)
  /orders?page=3     page 3
  /orders?page=abc   page 1 (anything that is not a positive integer)

'podboard browse' keeps its page in such a URL and rewrites only the page
parameter; other query parameters are left alone.

THE PAGE BAR
────────────
Up to 7 pages are listed in full. Longer ranges show the first two, the
last two and the neighbours of the current page, with … for each gap:

  podboard pages 5 10     prev 1 2 … 4 [5] 6 … 9 10 next
  podboard pages 1 10     (prev) [1] 2 3 … 9 10 next

No bar is drawn for a single page.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(cmd.Long)
	},
}

var helpJSONCmd = &cobra.Command{
	Use:   "json",
	Short: "JSON output format and error codes",
	Long: `JSON Output

Every command accepts --json and then writes exactly one JSON document
per result to stdout.

LIST
────
  podboard list orders --page 2 --json

  {
    "collection": "orders",
    "filter": {"q": "", "status": "all", "platform": "etsy", ...},
    "items": [ ... ],
    "total_count": 42,
    "total_pages": 5,
    "page": 2,
    "per_page": 10,
    "controls": {"visible": true, "current": 2, "entries": ["1","2","3","4","5"], ...}
  }

With --location the canonical URL for the page shown is added as
"location".

ERRORS
──────
  {"error": true, "code": "COLLECTION_NOT_FOUND", "message": "...", "details": {...}}

Exit codes:
  0  Success
  1  Not found, conflict or internal error
  2  Validation error (bad flag, unknown permission, bad payload)
  3  Backend error (unreachable, rejected token)`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(cmd.Long)
	},
}

func init() {
	helpTopicsCmd.AddCommand(helpFiltersCmd)
	helpTopicsCmd.AddCommand(helpPaginationCmd)
	helpTopicsCmd.AddCommand(helpJSONCmd)
	rootCmd.AddCommand(helpTopicsCmd)
}
