package testutil

import (
	"os"
	"reflect"
	"strings"
	"testing"
)

// AssertExitCode checks the exit code of a result.
func AssertExitCode(t *testing.T, result Result, expected int) {
	t.Helper()

	if result.ExitCode != expected {
		t.Fatalf("expected exit code %d, got %d\nstdout: %s\nstderr: %s",
			expected, result.ExitCode, result.Stdout, result.Stderr)
	}
}

// AssertContains checks stdout contains substring.
func AssertContains(t *testing.T, result Result, substr string) {
	t.Helper()

	if !strings.Contains(result.Stdout, substr) {
		t.Fatalf("expected stdout to contain %q, but it didn't\nstdout: %s", substr, result.Stdout)
	}
}

// AssertStderrContains checks stderr contains substring.
func AssertStderrContains(t *testing.T, result Result, substr string) {
	t.Helper()

	if !strings.Contains(result.Stderr, substr) {
		t.Fatalf("expected stderr to contain %q, but it didn't\nstderr: %s", substr, result.Stderr)
	}
}

// AssertNotContains checks stdout does not contain substring.
func AssertNotContains(t *testing.T, result Result, substr string) {
	t.Helper()

	if strings.Contains(result.Stdout, substr) {
		t.Fatalf("expected stdout to not contain %q, but it did\nstdout: %s", substr, result.Stdout)
	}
}

// AssertErrorCode checks a --json failure carries the given error code.
func AssertErrorCode(t *testing.T, result Result, code string) {
	t.Helper()

	obj := ParseJSONObject(t, result.Stdout)
	if got := GetField(obj, "code"); got != code {
		t.Fatalf("expected error code %s, got %q\nstdout: %s", code, got, result.Stdout)
	}
}

// AssertPage checks which page is shown and which ids it holds.
func AssertPage(t *testing.T, page Page, number int, ids ...string) {
	t.Helper()

	if page.Page != number {
		t.Errorf("expected page %d, got %d", number, page.Page)
	}
	if got := page.IDs(); !reflect.DeepEqual(got, ids) {
		t.Errorf("expected ids %v on page %d, got %v", ids, number, got)
	}
}

// AssertRowCount checks how many rows a collection holds on disk.
func AssertRowCount(t *testing.T, dir, collection string, expected int) {
	t.Helper()

	if got := len(ReadJSONL(t, dir, collection)); got != expected {
		t.Fatalf("expected %d rows in %s, got %d", expected, collection, got)
	}
}

// AssertWorkspaceInitialized checks that dir holds a workspace and that
// each named collection has its config.
func AssertWorkspaceInitialized(t *testing.T, dir string, collections ...string) {
	t.Helper()

	if info, err := os.Stat(WorkspaceDir(dir)); err != nil || !info.IsDir() {
		t.Fatalf("expected workspace at %s", WorkspaceDir(dir))
	}
	for _, name := range collections {
		if _, err := os.Stat(ConfigPath(dir, name)); err != nil {
			t.Fatalf("expected collection %s to have a config: %v", name, err)
		}
	}
}
