package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/podboard/internal/reload"
	"github.com/user/podboard/internal/session"
)

// setupTestEnv creates a temp directory, changes into it and mocks the
// exit function.
func setupTestEnv(t *testing.T) (tempDir string, cleanup func()) {
	t.Helper()
	tempDir = t.TempDir()
	origDir, _ := os.Getwd()
	os.Chdir(tempDir)

	t.Setenv(session.EnvCollection, "")
	t.Setenv(session.EnvAPI, "")
	t.Setenv(session.EnvToken, "")
	t.Setenv(session.EnvActor, "test-user")

	// Mock the exit function to capture exit code instead of exiting
	origExitFunc := ExitFunc
	ExitFunc = func(code int) {
		ExitCode = code
		// Don't actually exit in tests
	}
	ExitCode = 0 // Reset exit code
	resetFlags()

	cleanup = func() {
		os.Chdir(origDir)
		ExitFunc = origExitFunc
		ExitCode = 0
		rootCmd.SetIn(nil)
		resetFlags()
	}
	return tempDir, cleanup
}

// resetFlags restores every flag variable to its default. cobra reuses
// the same commands across Execute calls, so Changed is cleared as well.
func resetFlags() {
	jsonOutput = false
	collectionName = ""
	actorName = ""
	quiet = false
	verbose = false

	initCollections = nil
	collectionKind = "orders"
	collectionPageSize = 0
	collectionSource = ""
	collectionYes = false
	importURL = ""

	listQuery = ""
	listStatus = "all"
	listPlatform = "all"
	listAccount = "all"
	listStore = "all"
	listPage = 1
	listLocation = ""
	listPageSize = 0
	listOptions = ""

	browseLocation = ""
	browsePageSize = 0

	watchFilters = nil
	watchQuery = ""
	watchPage = 1
	watchTimeout = 0
	watchDebounce = reload.DefaultDebounce

	roleGrants = nil
	roleYes = false
	roleURL = ""
	catalogValidate = ""

	clearChanged(rootCmd)
}

func clearChanged(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	cmd.PersistentFlags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	for _, c := range cmd.Commands() {
		clearChanged(c)
	}
}

// captureStdout runs fn with os.Stdout redirected and returns what it wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		done <- buf.String()
	}()

	defer func() {
		w.Close()
		os.Stdout = oldStdout
	}()
	fn()
	w.Close()
	os.Stdout = oldStdout
	return <-done
}

// run executes the root command with args and returns stdout. Flag
// variables are reset first so each call starts from defaults.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	ExitCode = 0
	var err error
	out := captureStdout(t, func() {
		rootCmd.SetArgs(args)
		err = rootCmd.Execute()
	})
	return out, err
}

// orderFixture writes n orders as a JSON listing. Odd orders are on etsy
// under account acc-e, even ones on shopify under acc-s; every fifth order
// is pending and the rest shipped.
func orderFixture(t *testing.T, dir string, n int) string {
	t.Helper()
	orders := make([]map[string]interface{}, 0, n)
	for i := 1; i <= n; i++ {
		platform, account, store := "Shopify", "acc-s", "st-s"
		if i%2 == 1 {
			platform, account, store = "Etsy", "acc-e", "st-e"
		}
		status := "shipped"
		if i%5 == 0 {
			status = "pending"
		}
		orders = append(orders, map[string]interface{}{
			"id":           fmt.Sprintf("o-%02d", i),
			"orderNumber":  fmt.Sprintf("#%d", 1000+i),
			"customerName": fmt.Sprintf("Customer %02d", i),
			"productName":  "Mug",
			"status":       status,
			"platform":     platform,
			"store":        map[string]interface{}{"id": store, "name": "Store " + store, "accountId": account},
		})
	}
	data, err := json.Marshal(orders)
	require.NoError(t, err)
	path := filepath.Join(dir, "orders.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// setupWorkspace initializes a workspace with an "orders" collection
// holding n imported orders and an empty "shops" store collection.
func setupWorkspace(t *testing.T, n int) (tempDir string, cleanup func()) {
	t.Helper()
	tempDir, cleanup = setupTestEnv(t)

	_, err := run(t, "init", "--create", "orders:orders", "--create", "shops:stores")
	require.NoError(t, err)
	require.Equal(t, 0, ExitCode)

	if n > 0 {
		path := orderFixture(t, tempDir, n)
		_, err = run(t, "import", "orders", path)
		require.NoError(t, err)
		require.Equal(t, 0, ExitCode)
	}
	return tempDir, cleanup
}

func TestInit(t *testing.T) {
	t.Run("creates workspace", func(t *testing.T) {
		tempDir, cleanup := setupTestEnv(t)
		defer cleanup()

		out, err := run(t, "init")
		require.NoError(t, err)
		assert.Equal(t, 0, ExitCode)
		assert.Contains(t, out, "Initialized podboard workspace")

		info, err := os.Stat(filepath.Join(tempDir, ".podboard"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("creates starter collections", func(t *testing.T) {
		tempDir, cleanup := setupTestEnv(t)
		defer cleanup()

		out, err := run(t, "init", "--create", "orders:orders", "--create", "shops:stores", "--json")
		require.NoError(t, err)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, []interface{}{"orders", "shops"}, resp["collections"])
		assert.Equal(t, "test-user", resp["actor"])

		for _, name := range []string{"orders", "shops"} {
			_, err := os.Stat(filepath.Join(tempDir, ".podboard", name, "config.json"))
			assert.NoError(t, err, name)
		}
	})

	t.Run("existing workspace is a conflict", func(t *testing.T) {
		_, cleanup := setupTestEnv(t)
		defer cleanup()

		_, err := run(t, "init")
		require.NoError(t, err)

		out, _ := run(t, "init", "--json")
		assert.Equal(t, 1, ExitCode)
		var resp JSONError
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, ErrCodeConflict, resp.Code)
	})

	t.Run("bad collection argument", func(t *testing.T) {
		tempDir, cleanup := setupTestEnv(t)
		defer cleanup()

		run(t, "init", "--create", "orders:widgets")
		assert.Equal(t, 2, ExitCode)
		_, err := os.Stat(filepath.Join(tempDir, ".podboard"))
		assert.True(t, os.IsNotExist(err), "nothing is created for an invalid argument")
	})
}

func TestNoWorkspace(t *testing.T) {
	_, cleanup := setupTestEnv(t)
	defer cleanup()

	for _, args := range [][]string{
		{"list", "orders"},
		{"collection", "list"},
		{"role", "list"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			out, _ := run(t, append(args, "--json")...)
			assert.Equal(t, 1, ExitCode)
			var resp JSONError
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, ErrCodeNoWorkspace, resp.Code)
		})
	}
}
