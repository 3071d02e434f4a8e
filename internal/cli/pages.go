package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/user/podboard/internal/board"
	"github.com/user/podboard/internal/pagination"
)

var pagesCmd = &cobra.Command{
	Use:   "pages <current> <total>",
	Short: "Show the pagination bar for a page",
	Long: `Print the pagination bar the dashboard would draw for a page.

Nothing is printed when there is one page or fewer. A current page past
the end is clamped to the last page.

Examples:
  podboard pages 5 10     # prev 1 2 … 4 [5] 6 … 9 10 next
  podboard pages 1 3 --json`,
	Args: cobra.ExactArgs(2),
	RunE: runPages,
}

func init() {
	rootCmd.AddCommand(pagesCmd)
}

func runPages(cmd *cobra.Command, args []string) error {
	current, err := strconv.Atoi(args[0])
	if err != nil {
		ExitValidationError(fmt.Sprintf("invalid current page %q", args[0]), map[string]interface{}{"current": args[0]})
		return nil
	}
	total, err := strconv.Atoi(args[1])
	if err != nil || total < 0 {
		ExitValidationError(fmt.Sprintf("invalid page total %q", args[1]), map[string]interface{}{"total": args[1]})
		return nil
	}

	c := pagination.Controls(current, total)
	if GetJSONOutput() {
		printJSON(controlJSON(c))
		return nil
	}
	if c.Visible {
		fmt.Println(board.FormatControl(c))
	}
	return nil
}
