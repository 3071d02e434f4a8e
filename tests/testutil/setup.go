package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// TempDir creates a temporary directory that is cleaned up after the test.
func TempDir(t *testing.T) string {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "podboard-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	return tmpDir
}

// SetupWorkspace creates a temp directory with an initialized workspace.
// Each collection is given as name:kind.
func SetupWorkspace(t *testing.T, collections ...string) string {
	t.Helper()

	tmpDir := TempDir(t)
	args := []string{"init"}
	for _, c := range collections {
		args = append(args, "--create", c)
	}
	MustSucceedInDir(t, tmpDir, args...)
	return tmpDir
}

// WorkspaceDir returns the .podboard directory under baseDir.
func WorkspaceDir(baseDir string) string {
	return filepath.Join(baseDir, ".podboard")
}

// ConfigPath returns the path to a collection's config.json.
func ConfigPath(baseDir, collection string) string {
	return filepath.Join(WorkspaceDir(baseDir), collection, "config.json")
}

// RecordsPath returns the path to a collection's records.jsonl.
func RecordsPath(baseDir, collection string) string {
	return filepath.Join(WorkspaceDir(baseDir), collection, "records.jsonl")
}

// WriteFile writes content to dir/filename and returns the full path.
func WriteFile(t *testing.T, dir, filename, content string) string {
	t.Helper()

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// WriteOrders writes a listing of n orders the way the backend returns
// them. Order i is on etsy when i is odd and shopify otherwise, and every
// third order is pending.
func WriteOrders(t *testing.T, dir, filename string, n int) string {
	t.Helper()

	orders := make([]map[string]interface{}, 0, n)
	for i := 1; i <= n; i++ {
		platform, account := "shopify", "acc-shop"
		if i%2 == 1 {
			platform, account = "etsy", "acc-etsy"
		}
		status := "fulfilled"
		if i%3 == 0 {
			status = "pending"
		}
		orders = append(orders, map[string]interface{}{
			"_id":         fmt.Sprintf("ord-%03d", i),
			"orderNumber": fmt.Sprintf("PO-%04d", i),
			"customer":    map[string]interface{}{"name": fmt.Sprintf("Buyer %d", i), "email": fmt.Sprintf("buyer%d@example.com", i)},
			"productName": "Poster",
			"orderStatus": status,
			"channel":     platform,
			"accountId":   account,
			"storeId":     "st-" + platform,
		})
	}
	data, err := json.Marshal(map[string]interface{}{"data": orders})
	if err != nil {
		t.Fatalf("failed to marshal orders: %v", err)
	}
	return WriteFile(t, dir, filename, string(data))
}
