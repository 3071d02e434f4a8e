package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPages(t *testing.T) {
	_, cleanup := setupTestEnv(t)
	defer cleanup()

	tests := []struct {
		current, total string
		want           string
	}{
		{"5", "10", "prev 1 2 … 4 [5] 6 … 9 10 next"},
		{"1", "10", "(prev) [1] 2 3 … 9 10 next"},
		{"10", "10", "prev 1 2 … 8 9 [10] (next)"},
		{"2", "3", "prev 1 [2] 3 next"},
		{"40", "7", "prev 1 2 3 4 5 6 [7] (next)"},
		{"1", "1", ""},
		{"1", "0", ""},
	}
	for _, tt := range tests {
		t.Run(tt.current+"/"+tt.total, func(t *testing.T) {
			out, err := run(t, "pages", tt.current, tt.total)
			require.NoError(t, err)
			assert.Equal(t, 0, ExitCode)
			assert.Equal(t, tt.want, strings.TrimSpace(out))
		})
	}

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "pages", "3", "8", "--json")
		require.NoError(t, err)
		var resp struct {
			Visible      bool     `json:"visible"`
			Current      int      `json:"current"`
			PrevDisabled bool     `json:"prev_disabled"`
			Entries      []string `json:"entries"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.True(t, resp.Visible)
		assert.Equal(t, 3, resp.Current)
		assert.False(t, resp.PrevDisabled)
		assert.Equal(t, []string{"1", "2", "3", "4", "…", "7", "8"}, resp.Entries)
	})

	t.Run("invalid numbers", func(t *testing.T) {
		run(t, "pages", "x", "3")
		assert.Equal(t, 2, ExitCode)
		run(t, "pages", "--", "1", "-1")
		assert.Equal(t, 2, ExitCode)
	})
}
