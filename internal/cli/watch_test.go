package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/podboard/internal/filter"
	"github.com/user/podboard/internal/model"
	"github.com/user/podboard/internal/storage"
)

func TestParseFilterArgs(t *testing.T) {
	s, err := parseFilterArgs("mug", []string{"platform=etsy", "account=acc-e", "status= "})
	require.NoError(t, err)
	assert.Equal(t, "mug", s.Query)
	assert.Equal(t, "etsy", s.Platform)
	assert.Equal(t, "acc-e", s.Account)
	assert.Equal(t, filter.All, s.Status)

	// Later upstream filters cascade over earlier dependents.
	s, err = parseFilterArgs("", []string{"account=acc-e", "platform=etsy"})
	require.NoError(t, err)
	assert.Equal(t, filter.All, s.Account)

	_, err = parseFilterArgs("", []string{"platform"})
	assert.ErrorIs(t, err, model.ErrEmptyValue)
	_, err = parseFilterArgs("", []string{"colour=red"})
	assert.ErrorIs(t, err, filter.ErrUnknownDimension)
}

func TestWatch(t *testing.T) {
	t.Run("renders once and stops at the timeout", func(t *testing.T) {
		_, cleanup := setupWorkspace(t, 25)
		defer cleanup()

		out, err := run(t, "watch", "orders", "--page", "3", "--timeout", "50ms")
		require.NoError(t, err)
		assert.Equal(t, 0, ExitCode)
		assert.Contains(t, out, "== orders")
		assert.Contains(t, out, "Showing 21-25 of 25")
	})

	t.Run("redraws when the collection shrinks and clamps the page", func(t *testing.T) {
		tempDir, cleanup := setupWorkspace(t, 25)
		defer cleanup()

		// Shrink the collection on disk while page 3 is on screen.
		go func() {
			time.Sleep(200 * time.Millisecond)
			jsonl := storage.NewJSONLStore(filepath.Join(tempDir, ".podboard"))
			rows, err := jsonl.ReadAll("orders")
			if err != nil || len(rows) < 5 {
				return
			}
			jsonl.WriteAll("orders", rows[:5])
		}()

		out, err := run(t, "watch", "orders", "--page", "3", "--timeout", "1500ms", "--debounce", "20ms", "--json")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.GreaterOrEqual(t, len(lines), 2, out)

		var first, last struct {
			TotalCount int `json:"total_count"`
			Page       int `json:"page"`
			Generation int `json:"generation"`
		}
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
		require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
		assert.Equal(t, 25, first.TotalCount)
		assert.Equal(t, 3, first.Page)
		assert.Equal(t, 5, last.TotalCount)
		assert.Equal(t, 1, last.Page)
		assert.Greater(t, last.Generation, first.Generation)
	})

	t.Run("bad filter", func(t *testing.T) {
		_, cleanup := setupWorkspace(t, 0)
		defer cleanup()

		run(t, "watch", "orders", "--filter", "colour=red", "--timeout", "10ms")
		assert.Equal(t, 2, ExitCode)
	})
}
