package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/podboard/internal/model"
	"github.com/user/podboard/internal/session"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(&session.Session{Dir: filepath.Join(t.TempDir(), ".podboard"), Actor: "test-user"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func payloads(t *testing.T, raw string) []model.Payload {
	t.Helper()
	var out []model.Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestOpen_RequiresWorkspace(t *testing.T) {
	_, err := Open(&session.Session{})
	assert.ErrorIs(t, err, session.ErrNoWorkspace)
	_, err = Open(nil)
	assert.ErrorIs(t, err, session.ErrNoWorkspace)
}

func TestStore_Collections(t *testing.T) {
	store := newTestStore(t)

	t.Run("create collection", func(t *testing.T) {
		col := &model.Collection{Name: "orders", Kind: model.KindOrders}
		require.NoError(t, store.CreateCollection(col))
		assert.Equal(t, "test-user", col.CreatedBy)
		assert.False(t, col.Created.IsZero())
	})

	t.Run("create duplicate fails", func(t *testing.T) {
		err := store.CreateCollection(&model.Collection{Name: "orders", Kind: model.KindOrders})
		assert.ErrorIs(t, err, model.ErrCollectionExists)
	})

	t.Run("create validates", func(t *testing.T) {
		assert.ErrorIs(t, store.CreateCollection(&model.Collection{Name: "9lives", Kind: model.KindOrders}), model.ErrInvalidName)
		assert.ErrorIs(t, store.CreateCollection(&model.Collection{Name: "teams", Kind: "teams"}), model.ErrInvalidKind)
	})

	t.Run("list and update", func(t *testing.T) {
		require.NoError(t, store.CreateCollection(&model.Collection{Name: "stores", Kind: model.KindStores}))
		cols, err := store.ListCollections()
		require.NoError(t, err)
		require.Len(t, cols, 2)
		assert.Equal(t, "orders", cols[0].Name)

		cols[1].PageSize = 5
		require.NoError(t, store.UpdateCollection(cols[1]))
		got, err := store.GetCollection("stores")
		require.NoError(t, err)
		assert.Equal(t, 5, got.PageSize)
	})

	t.Run("drop", func(t *testing.T) {
		require.NoError(t, store.DropCollection("stores"))
		_, err := store.GetCollection("stores")
		assert.ErrorIs(t, err, model.ErrCollectionNotFound)
		assert.ErrorIs(t, store.DropCollection("stores"), model.ErrCollectionNotFound)
	})
}

func TestStore_ImportOrders(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateCollection(&model.Collection{Name: "orders", Kind: model.KindOrders}))

	first := payloads(t, `[
		{"id": "o-1", "status": "pending", "platform": "etsy", "customer": "Alice"},
		{"id": "o-2", "status": "shipped", "platform": "shopify", "customer": "Bob"}
	]`)

	res, err := store.ImportOrders("orders", first)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Added: 2, Total: 2}, res)

	t.Run("re-import merges by id", func(t *testing.T) {
		second := payloads(t, `[
			{"id": "o-2", "status": "cancelled", "platform": "shopify", "customer": "Bob"},
			{"id": "o-1", "status": "pending", "platform": "etsy", "customer": "Alice"},
			{"id": "o-3", "status": "pending", "platform": "etsy", "customer": "Cleo"}
		]`)
		res, err := store.ImportOrders("orders", second)
		require.NoError(t, err)
		assert.Equal(t, ImportResult{Added: 1, Updated: 1, Unchanged: 1, Total: 3}, res)

		orders, err := store.Orders("orders")
		require.NoError(t, err)
		require.Len(t, orders, 3)
		assert.Equal(t, []string{"o-1", "o-2", "o-3"}, []string{orders[0].ID, orders[1].ID, orders[2].ID})
		assert.Equal(t, model.StatusCancelled, orders[1].Status)
	})

	t.Run("invalid payload rejects the whole batch", func(t *testing.T) {
		_, err := store.ImportOrders("orders", payloads(t, `[{"id": "o-9"}, {"status": "x"}]`))
		assert.ErrorIs(t, err, model.ErrInvalidPayload)

		orders, err := store.Orders("orders")
		require.NoError(t, err)
		assert.Len(t, orders, 3)
	})

	t.Run("kind mismatch", func(t *testing.T) {
		_, err := store.ImportStores("orders", first)
		assert.ErrorIs(t, err, model.ErrInvalidKind)
		_, err = store.Stores("orders")
		assert.ErrorIs(t, err, model.ErrInvalidKind)
	})

	t.Run("stats", func(t *testing.T) {
		st, err := store.Stats("orders")
		require.NoError(t, err)
		assert.Equal(t, 3, st.Count)
		assert.Equal(t, map[string]int{"pending": 2, "cancelled": 1}, st.ByStatus)
		assert.Equal(t, map[string]int{"etsy": 2, "shopify": 1}, st.ByPlatform)
		assert.False(t, st.LastSync.IsZero())
	})
}

func TestStore_ImportDispatchesOnKind(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateCollection(&model.Collection{Name: "shops", Kind: model.KindStores}))

	res, err := store.Import("shops", payloads(t, `[{"storeId": "S1", "name": "Mugs", "platform": "Etsy"}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)

	stores, err := store.Stores("shops")
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, "etsy", stores[0].Platform)

	_, err = store.Import("missing", nil)
	assert.ErrorIs(t, err, model.ErrCollectionNotFound)
}

func TestStore_CacheFollowsJSONL(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateCollection(&model.Collection{Name: "orders", Kind: model.KindOrders}))
	_, err := store.ImportOrders("orders", payloads(t, `[{"id": "o-1"}]`))
	require.NoError(t, err)

	t.Run("edited JSONL is picked up", func(t *testing.T) {
		path := filepath.Join(store.BaseDir(), "orders", "records.jsonl")
		data := "{\"id\":\"o-1\",\"number\":\"o-1\",\"status\":\"pending\",\"platform\":\"unknown\"}\n" +
			"{\"id\":\"o-2\",\"number\":\"o-2\",\"status\":\"shipped\",\"platform\":\"etsy\"}\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		orders, err := store.Orders("orders")
		require.NoError(t, err)
		assert.Len(t, orders, 2)
	})

	t.Run("deleted cache is rebuilt", func(t *testing.T) {
		store.Close()
		require.NoError(t, os.Remove(filepath.Join(store.BaseDir(), "cache.db")))

		reopened, err := NewStore(store.BaseDir())
		require.NoError(t, err)
		defer reopened.Close()

		var logged []string
		reopened.SetLogger(func(format string, args ...interface{}) {
			logged = append(logged, format)
		})

		orders, err := reopened.Orders("orders")
		require.NoError(t, err)
		assert.Len(t, orders, 2)
		assert.NotEmpty(t, logged)
	})
}

func TestStore_Roles(t *testing.T) {
	store := newTestStore(t)

	support, err := store.CreateRole("Support", []string{"order.view"})
	require.NoError(t, err)
	assert.NoError(t, model.ValidateID(support.ID))
	assert.Equal(t, "test-user", support.UpdatedBy)

	_, err = store.CreateRole("support", nil)
	assert.ErrorIs(t, err, model.ErrRoleExists)
	_, err = store.CreateRole("  ", nil)
	assert.ErrorIs(t, err, model.ErrEmptyValue)

	t.Run("save replaces by id", func(t *testing.T) {
		support.Permissions = append(support.Permissions, "order.manage")
		require.NoError(t, store.SaveRole(support))

		got, err := store.GetRole(support.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"order.view", "order.manage"}, got.Permissions)

		roles, err := store.Roles()
		require.NoError(t, err)
		assert.Len(t, roles, 1)
	})

	t.Run("import upserts", func(t *testing.T) {
		res, err := store.ImportRoles(payloads(t, `[
			{"id": "`+support.ID+`", "name": "Support", "permissions": ["order.view", "order.manage"]},
			{"id": "ext-1", "name": "Viewer", "permissions": [{"permissionId": "order.view"}]}
		]`))
		require.NoError(t, err)
		assert.Equal(t, ImportResult{Added: 1, Unchanged: 1, Total: 2}, res)

		viewer, err := store.GetRole("viewer")
		require.NoError(t, err)
		assert.Equal(t, []string{"order.view"}, viewer.Permissions)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteRole("Viewer"))
		_, err := store.GetRole("Viewer")
		assert.ErrorIs(t, err, model.ErrRoleNotFound)
		assert.ErrorIs(t, store.DeleteRole("Viewer"), model.ErrRoleNotFound)
	})
}

func TestStore_Catalog(t *testing.T) {
	store := newTestStore(t)

	modules, err := store.Catalog()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCatalog(), modules)

	override := "modules:\n  - key: billing\n    leaves:\n      - id: billing.view\n"
	require.NoError(t, os.WriteFile(store.CatalogPath(), []byte(override), 0644))
	modules, err = store.Catalog()
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, "billing", modules[0].Key)

	require.NoError(t, os.WriteFile(store.CatalogPath(), []byte("modules: [\n"), 0644))
	_, err = store.Catalog()
	assert.ErrorIs(t, err, model.ErrInvalidCatalog)
}
