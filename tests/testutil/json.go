package testutil

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
)

// Page is the --json output of 'podboard list'.
type Page struct {
	Collection string                   `json:"collection"`
	Filter     map[string]string        `json:"filter"`
	Items      []map[string]interface{} `json:"items"`
	TotalCount int                      `json:"total_count"`
	TotalPages int                      `json:"total_pages"`
	Page       int                      `json:"page"`
	PerPage    int                      `json:"per_page"`
	Location   string                   `json:"location"`
	Controls   struct {
		Visible bool     `json:"visible"`
		Entries []string `json:"entries"`
	} `json:"controls"`
}

// IDs returns the id of every item on the page, in order.
func (p Page) IDs() []string {
	ids := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		ids = append(ids, GetField(item, "id"))
	}
	return ids
}

// ListPage runs 'podboard list <collection> --json' with extra args.
func ListPage(t *testing.T, dir, collection string, args ...string) Page {
	t.Helper()

	result := MustSucceedInDir(t, dir, append([]string{"list", collection, "--json"}, args...)...)
	var page Page
	if err := json.Unmarshal([]byte(result.Stdout), &page); err != nil {
		t.Fatalf("failed to parse list output: %v\noutput: %s", err, result.Stdout)
	}
	return page
}

// ParseJSONObject parses single JSON object output.
func ParseJSONObject(t *testing.T, output string) map[string]interface{} {
	t.Helper()

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON object: %v\noutput: %s", err, output)
	}
	return result
}

// ParseJSONLines parses output holding one JSON object per line, as
// 'podboard watch --json' writes it.
func ParseJSONLines(t *testing.T, output string) []map[string]interface{} {
	t.Helper()

	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" {
			continue
		}
		out = append(out, ParseJSONObject(t, line))
	}
	return out
}

// GetField returns obj[key] as a string. Whole numbers print without a
// decimal point; a missing key gives "".
func GetField(obj map[string]interface{}, key string) string {
	switch v := obj[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ReadConfig reads and parses a collection's config.json.
func ReadConfig(t *testing.T, dir, collection string) map[string]interface{} {
	t.Helper()

	data, err := os.ReadFile(ConfigPath(dir, collection))
	if err != nil {
		t.Fatalf("failed to read config for %s: %v", collection, err)
	}
	return ParseJSONObject(t, string(data))
}

// ReadJSONL reads every normalized row of a collection. A missing file
// gives no rows.
func ReadJSONL(t *testing.T, dir, collection string) []map[string]interface{} {
	t.Helper()

	file, err := os.Open(RecordsPath(dir, collection))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("failed to open records for %s: %v", collection, err)
	}
	defer file.Close()

	var rows []map[string]interface{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			rows = append(rows, ParseJSONObject(t, line))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error reading records file: %v", err)
	}
	return rows
}
