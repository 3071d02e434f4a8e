package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listResponse struct {
	Collection string            `json:"collection"`
	Filter     map[string]string `json:"filter"`
	Items      []struct {
		ID       string `json:"id"`
		Number   string `json:"number"`
		Platform string `json:"platform"`
	} `json:"items"`
	TotalCount int    `json:"total_count"`
	TotalPages int    `json:"total_pages"`
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	Location   string `json:"location"`
	Controls   struct {
		Visible      bool     `json:"visible"`
		PrevDisabled bool     `json:"prev_disabled"`
		NextDisabled bool     `json:"next_disabled"`
		Entries      []string `json:"entries"`
	} `json:"controls"`
}

func listJSON(t *testing.T, args ...string) listResponse {
	t.Helper()
	out, err := run(t, append([]string{"list", "orders", "--json"}, args...)...)
	require.NoError(t, err)
	require.Equal(t, 0, ExitCode, out)
	var resp listResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestList_Pages(t *testing.T) {
	_, cleanup := setupWorkspace(t, 25)
	defer cleanup()

	t.Run("first page by default", func(t *testing.T) {
		out, err := run(t, "list", "orders")
		require.NoError(t, err)
		assert.Equal(t, 0, ExitCode)
		assert.Contains(t, out, "NUMBER")
		assert.Contains(t, out, "#1001")
		assert.Contains(t, out, "#1010")
		assert.NotContains(t, out, "#1011")
		assert.Contains(t, out, "Showing 1-10 of 25")
		assert.Contains(t, out, "(prev) [1] 2 3 next")
	})

	t.Run("last page", func(t *testing.T) {
		out, err := run(t, "list", "orders", "--page", "3")
		require.NoError(t, err)
		assert.Contains(t, out, "#1021")
		assert.Contains(t, out, "Showing 21-25 of 25")
		assert.Contains(t, out, "prev 1 2 [3] (next)")
	})

	t.Run("page past the end shows the last page", func(t *testing.T) {
		resp := listJSON(t, "--page", "9")
		assert.Equal(t, 3, resp.Page)
		assert.Len(t, resp.Items, 5)
		assert.Equal(t, "o-21", resp.Items[0].ID)
	})

	t.Run("page size", func(t *testing.T) {
		resp := listJSON(t, "--page", "2", "--page-size", "5")
		assert.Equal(t, 2, resp.Page)
		assert.Equal(t, 5, resp.PerPage)
		assert.Equal(t, 5, resp.TotalPages)
		assert.Equal(t, 25, resp.TotalCount)
		assert.Equal(t, "o-06", resp.Items[0].ID)
		assert.True(t, resp.Controls.Visible)
		assert.Equal(t, []string{"1", "2", "3", "4", "5"}, resp.Controls.Entries)
	})

	t.Run("window with gaps", func(t *testing.T) {
		resp := listJSON(t, "--page", "5", "--page-size", "2")
		assert.Equal(t, 13, resp.TotalPages)
		assert.Equal(t, []string{"1", "2", "…", "4", "5", "6", "…", "12", "13"}, resp.Controls.Entries)
	})

	t.Run("invalid page flags", func(t *testing.T) {
		run(t, "list", "orders", "--page", "0")
		assert.Equal(t, 2, ExitCode)
		run(t, "list", "orders", "--page-size=-3")
		assert.Equal(t, 2, ExitCode)
	})
}

func TestList_Filters(t *testing.T) {
	_, cleanup := setupWorkspace(t, 25)
	defer cleanup()

	t.Run("platform and status", func(t *testing.T) {
		resp := listJSON(t, "--platform", "etsy", "--status", "pending")
		assert.Equal(t, 3, resp.TotalCount)
		assert.Equal(t, 1, resp.TotalPages)
		assert.False(t, resp.Controls.Visible)
		for _, item := range resp.Items {
			assert.Equal(t, "etsy", item.Platform)
		}
		assert.Equal(t, "etsy", resp.Filter["platform"])
		assert.Equal(t, "pending", resp.Filter["status"])
	})

	t.Run("account survives its platform", func(t *testing.T) {
		resp := listJSON(t, "--platform", "shopify", "--account", "acc-s")
		assert.Equal(t, 12, resp.TotalCount)
		assert.Equal(t, "acc-s", resp.Filter["account"])
	})

	t.Run("mismatched account matches nothing", func(t *testing.T) {
		out, err := run(t, "list", "orders", "--platform", "etsy", "--account", "acc-s")
		require.NoError(t, err)
		assert.Contains(t, out, "No records match")
		assert.Contains(t, out, "Showing 0-0 of 0")
	})

	t.Run("query is case-insensitive", func(t *testing.T) {
		resp := listJSON(t, "--q", "CUSTOMER 07")
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "#1007", resp.Items[0].Number)
	})

	t.Run("filtering goes back to page 1 unless a page is asked for", func(t *testing.T) {
		resp := listJSON(t, "--platform", "etsy")
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 13, resp.TotalCount)

		resp = listJSON(t, "--platform", "etsy", "--page", "2")
		assert.Equal(t, 2, resp.Page)
		assert.Equal(t, "o-21", resp.Items[0].ID)
	})

	t.Run("empty filter value", func(t *testing.T) {
		run(t, "list", "orders", "--status", "")
		assert.Equal(t, 2, ExitCode)
	})
}

func TestList_Location(t *testing.T) {
	_, cleanup := setupWorkspace(t, 25)
	defer cleanup()

	t.Run("page comes from the URL", func(t *testing.T) {
		resp := listJSON(t, "--location", "https://ops.example.com/orders?page=2&sort=asc")
		assert.Equal(t, 2, resp.Page)
		assert.Equal(t, "o-11", resp.Items[0].ID)
		assert.Equal(t, "https://ops.example.com/orders?page=2&sort=asc", resp.Location)
	})

	t.Run("out of range page is canonicalized", func(t *testing.T) {
		resp := listJSON(t, "--location", "/orders?page=99")
		assert.Equal(t, 3, resp.Page)
		assert.Equal(t, "/orders?page=3", resp.Location)
	})

	t.Run("malformed page means page 1", func(t *testing.T) {
		for _, raw := range []string{"/orders?page=abc", "/orders?page=-2", "/orders?page=0", "/orders"} {
			resp := listJSON(t, "--location", raw)
			assert.Equal(t, 1, resp.Page, raw)
			assert.Equal(t, "/orders", resp.Location, raw)
		}
	})

	t.Run("empty result shows page 1 and keeps other parameters", func(t *testing.T) {
		resp := listJSON(t, "--status", "nomatch", "--location", "https://x/orders?page=3&z=1&a=2")
		assert.Equal(t, 0, resp.TotalPages)
		assert.Equal(t, 1, resp.Page)
		assert.Empty(t, resp.Items)
		assert.Equal(t, "https://x/orders?z=1&a=2", resp.Location)
	})

	t.Run("page flag wins over the URL", func(t *testing.T) {
		resp := listJSON(t, "--location", "/orders?page=2", "--page", "3")
		assert.Equal(t, 3, resp.Page)
		assert.Equal(t, "/orders?page=3", resp.Location)
	})
}

func TestList_Options(t *testing.T) {
	_, cleanup := setupWorkspace(t, 25)
	defer cleanup()

	t.Run("accounts under a platform", func(t *testing.T) {
		out, err := run(t, "list", "orders", "--platform", "etsy", "--options", "account")
		require.NoError(t, err)
		assert.Equal(t, []string{"acc-e"}, strings.Fields(out))
	})

	t.Run("own dimension is released", func(t *testing.T) {
		out, err := run(t, "list", "orders", "--platform", "etsy", "--options", "platform", "--json")
		require.NoError(t, err)
		var resp struct {
			Dimension string   `json:"dimension"`
			Options   []string `json:"options"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, "platform", resp.Dimension)
		assert.Equal(t, []string{"etsy", "shopify"}, resp.Options)
	})

	t.Run("unknown dimension", func(t *testing.T) {
		run(t, "list", "orders", "--options", "colour")
		assert.Equal(t, 2, ExitCode)
	})
}

func TestList_Stores(t *testing.T) {
	_, cleanup := setupWorkspace(t, 0)
	defer cleanup()

	out, err := run(t, "list", "shops")
	require.NoError(t, err)
	assert.Contains(t, out, "No records match")

	rootCmd.SetIn(strings.NewReader(`[
		{"storeId": "S1", "name": "Mugs", "platform": "Etsy", "accountId": "A1"},
		{"storeId": "S2", "name": "Tees", "platform": "Shopify", "accountId": "A2"}
	]`))
	_, err = run(t, "import", "shops", "-")
	require.NoError(t, err)
	rootCmd.SetIn(nil)

	out, err = run(t, "list", "shops", "--platform", "shopify")
	require.NoError(t, err)
	assert.Contains(t, out, "ACCOUNT")
	assert.Contains(t, out, "Tees")
	assert.NotContains(t, out, "Mugs")
	assert.Contains(t, out, "Showing 1-1 of 1")
}
