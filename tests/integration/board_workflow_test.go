package integration

import (
	"strings"
	"testing"

	"github.com/user/podboard/tests/testutil"
)

// TestOrderBoardWorkflow drives a full session against an order collection:
// import, filter, paginate, and browse with a URL-backed page.
func TestOrderBoardWorkflow(t *testing.T) {
	testutil.RequireBinary(t)
	dir := testutil.SetupWorkspace(t, "orders:orders")
	testutil.AssertWorkspaceInitialized(t, dir, "orders")

	t.Log("Phase 1: import 25 orders")
	listing := testutil.WriteOrders(t, dir, "orders.json", 25)
	result := testutil.MustSucceedInDir(t, dir, "import", "orders", listing)
	testutil.AssertContains(t, result, "25 added")
	testutil.AssertRowCount(t, dir, "orders", 25)

	t.Log("Phase 2: unfiltered pages")
	page := testutil.ListPage(t, dir, "orders")
	if page.TotalCount != 25 || page.TotalPages != 3 {
		t.Errorf("expected 25 orders over 3 pages, got %d over %d", page.TotalCount, page.TotalPages)
	}
	if !page.Controls.Visible {
		t.Error("expected page controls to be visible")
	}
	last := testutil.ListPage(t, dir, "orders", "--page", "3")
	testutil.AssertPage(t, last, 3, "ord-021", "ord-022", "ord-023", "ord-024", "ord-025")

	t.Log("Phase 3: a page past the end is clamped")
	clamped := testutil.ListPage(t, dir, "orders", "--page", "9")
	if clamped.Page != 3 {
		t.Errorf("expected page 9 to clamp to 3, got %d", clamped.Page)
	}

	t.Log("Phase 4: page from a location URL")
	located := testutil.ListPage(t, dir, "orders", "--location", "/orders?page=2")
	if located.Page != 2 {
		t.Errorf("expected page 2 from location, got %d", located.Page)
	}
	if !strings.Contains(located.Location, "page=2") {
		t.Errorf("expected location to keep page=2, got %q", located.Location)
	}

	t.Log("Phase 5: filters narrow the result")
	etsy := testutil.ListPage(t, dir, "orders", "--platform", "etsy")
	if etsy.TotalCount != 13 || etsy.TotalPages != 2 {
		t.Errorf("expected 13 etsy orders over 2 pages, got %d over %d", etsy.TotalCount, etsy.TotalPages)
	}
	pending := testutil.ListPage(t, dir, "orders", "--status", "pending", "--platform", "shopify")
	testutil.AssertPage(t, pending, 1, "ord-006", "ord-012", "ord-018", "ord-024")
	if pending.Controls.Visible {
		t.Error("expected no page controls for a single page")
	}
	search := testutil.ListPage(t, dir, "orders", "--q", "buyer 7")
	testutil.AssertPage(t, search, 1, "ord-007")

	t.Log("Phase 6: dropdown options")
	result = testutil.MustSucceedInDir(t, dir, "list", "orders", "--options", "platform")
	testutil.AssertContains(t, result, "etsy")
	testutil.AssertContains(t, result, "shopify")

	t.Log("Phase 7: browse moves pages and a filter resets them")
	result = testutil.RunWithInput(t, dir, "next\nplatform etsy\nquit\n", "browse", "orders", "--quiet")
	testutil.AssertExitCode(t, result, 0)
	testutil.AssertContains(t, result, "Location: /orders?page=2")
	lines := strings.Split(strings.TrimSpace(result.Stdout), "\n")
	if final := lines[len(lines)-1]; final != "Location: /orders" {
		t.Errorf("expected filter change to drop the page param, last line %q", final)
	}
}

// TestListValidation covers the argument errors list reports.
func TestListValidation(t *testing.T) {
	testutil.RequireBinary(t)
	dir := testutil.SetupWorkspace(t, "orders:orders")

	result := testutil.MustFailInDir(t, dir, "list", "orders", "--page", "0", "--json")
	testutil.AssertExitCode(t, result, 2)
	testutil.AssertErrorCode(t, result, "VALIDATION_ERROR")

	result = testutil.MustFailInDir(t, dir, "list", "missing", "--json")
	testutil.AssertExitCode(t, result, 1)
	testutil.AssertErrorCode(t, result, "COLLECTION_NOT_FOUND")
}

// TestPagesCommand checks the stateless control renderer.
func TestPagesCommand(t *testing.T) {
	testutil.RequireBinary(t)
	dir := testutil.TempDir(t)

	result := testutil.MustSucceedInDir(t, dir, "pages", "5", "10")
	testutil.AssertContains(t, result, "[5]")
	testutil.AssertContains(t, result, "…")

	result = testutil.MustSucceedInDir(t, dir, "pages", "1", "1")
	if strings.TrimSpace(result.Stdout) != "" {
		t.Errorf("expected no controls for a single page, got %q", result.Stdout)
	}
}

// TestRoleWorkflow grants and revokes permissions and checks module state.
func TestRoleWorkflow(t *testing.T) {
	testutil.RequireBinary(t)
	dir := testutil.SetupWorkspace(t)

	t.Log("Phase 1: create a role with one permission")
	testutil.MustSucceedInDir(t, dir, "role", "create", "support", "--grant", "order.view")

	view := roleModules(t, dir, "support")
	if view["order"] != "partial" {
		t.Errorf("expected order module partial, got %q", view["order"])
	}
	if view["product"] != "empty" {
		t.Errorf("expected product module empty, got %q", view["product"])
	}

	t.Log("Phase 2: grant a whole module")
	testutil.MustSucceedInDir(t, dir, "role", "grant", "support", "order")
	if state := roleModules(t, dir, "support")["order"]; state != "full" {
		t.Errorf("expected order module full, got %q", state)
	}

	t.Log("Phase 3: grant and revoke everything")
	testutil.MustSucceedInDir(t, dir, "role", "grant", "support", "all")
	obj := testutil.ParseJSONObject(t, testutil.MustSucceedInDir(t, dir, "role", "show", "support", "--json").Stdout)
	if obj["all_selected"] != true {
		t.Error("expected all permissions selected")
	}
	testutil.MustSucceedInDir(t, dir, "role", "revoke", "support", "all")
	for key, state := range roleModules(t, dir, "support") {
		if state != "empty" {
			t.Errorf("expected module %s empty after revoking all, got %q", key, state)
		}
	}

	t.Log("Phase 4: unknown permission is rejected")
	result := testutil.MustFailInDir(t, dir, "role", "grant", "support", "nope.nothing")
	testutil.AssertExitCode(t, result, 2)
}

func roleModules(t *testing.T, dir, role string) map[string]string {
	t.Helper()

	obj := testutil.ParseJSONObject(t, testutil.MustSucceedInDir(t, dir, "role", "show", role, "--json").Stdout)
	modules, ok := obj["modules"].([]interface{})
	if !ok {
		t.Fatalf("expected modules array in role view: %v", obj)
	}
	states := make(map[string]string, len(modules))
	for _, m := range modules {
		mod := m.(map[string]interface{})
		states[testutil.GetField(mod, "key")] = testutil.GetField(mod, "state")
	}
	return states
}
