package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func browse(t *testing.T, input string, args ...string) string {
	t.Helper()
	resetFlags()
	rootCmd.SetIn(strings.NewReader(input))
	defer rootCmd.SetIn(nil)

	var err error
	out := captureStdout(t, func() {
		rootCmd.SetArgs(append([]string{"browse", "orders", "--quiet"}, args...))
		err = rootCmd.Execute()
	})
	require.NoError(t, err)
	require.Equal(t, 0, ExitCode, out)
	return out
}

func TestBrowse(t *testing.T) {
	_, cleanup := setupWorkspace(t, 25)
	defer cleanup()

	t.Run("starts at the location page", func(t *testing.T) {
		out := browse(t, "quit\n", "--location", "/orders?page=3")
		assert.Contains(t, out, "Showing 21-25 of 25")
		assert.Contains(t, out, "Location: /orders?page=3")
	})

	t.Run("filter change returns to page 1 and rewrites the URL", func(t *testing.T) {
		out := browse(t, "platform etsy\nnext\nurl\nquit\n", "--location", "/orders?page=3&view=compact")

		steps := strings.Split(out, "Location: ")
		require.Len(t, steps, 4, out)
		assert.Contains(t, steps[0], "Showing 21-25 of 25")
		assert.True(t, strings.HasPrefix(steps[1], "/orders?page=3&view=compact"))

		assert.Contains(t, steps[1], "Showing 1-10 of 13")
		assert.True(t, strings.HasPrefix(steps[2], "/orders?view=compact\n"), steps[2])

		assert.Contains(t, steps[2], "Showing 11-13 of 13")
		assert.True(t, strings.HasPrefix(steps[3], "/orders?view=compact&page=2\n"), steps[3])

		// "url" prints the location on its own
		assert.Contains(t, steps[3], "/orders?view=compact&page=2\n/orders?view=compact&page=2\n")
	})

	t.Run("navigation stops at the edges", func(t *testing.T) {
		out := browse(t, "prev\nlast\nnext\nurl\n")
		assert.Contains(t, out, "Location: /orders\n")
		assert.Contains(t, out, "Location: /orders?page=3\n")
		assert.NotContains(t, out, "page=4")
	})

	t.Run("errors do not end the session", func(t *testing.T) {
		out := browse(t, "bogus\npage x\nhelp\npage 2\n")
		assert.Contains(t, out, "Error: unknown command: bogus")
		assert.Contains(t, out, "Error: usage: page N")
		assert.Contains(t, out, "Commands:")
		assert.Contains(t, out, "Location: /orders?page=2")
	})

	t.Run("reload re-reads the collection", func(t *testing.T) {
		out := browse(t, "reload\n")
		assert.Equal(t, 2, strings.Count(out, "Showing 1-10 of 25"))
	})

	t.Run("prompt unless quiet", func(t *testing.T) {
		resetFlags()
		rootCmd.SetIn(strings.NewReader("quit\n"))
		defer rootCmd.SetIn(nil)
		out := captureStdout(t, func() {
			rootCmd.SetArgs([]string{"browse", "orders"})
			rootCmd.Execute()
		})
		assert.Contains(t, out, "> ")
	})
}
