package commands

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cros-webui/webui-go/pkg/log"
)

func exportEvents(t *testing.T) string {
	ts := time.Date(2026, 3, 2, 10, 15, 32, 123456000, time.UTC)
	return createTestLogFile(t, []log.Event{
		{Timestamp: ts, ModelID: "m1", Layer: log.LayerNavList, Category: log.CategoryPermutation,
			Permutation: &log.PermutationEvent{Trigger: log.LayerShortcut, Permutation: []int{0, 1, 3}, NewLength: 4}},
		{Timestamp: ts, ModelID: "m1", Layer: log.LayerNavList, Category: log.CategoryResolve,
			Resolve: &log.ResolveEvent{Path: "/dl/Photos", Found: true}},
	})
}

func TestExportToJSONL(t *testing.T) {
	path := exportEvents(t)
	out := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var event log.Event
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if event.Permutation == nil || event.Permutation.NewLength != 4 {
		t.Errorf("unexpected permutation: %+v", event.Permutation)
	}
}

func TestExportToCSV(t *testing.T) {
	path := exportEvents(t)
	out := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][4] != "Permutation" || rows[1][6] != "4" {
		t.Errorf("unexpected permutation row: %v", rows[1])
	}
	if rows[2][5] != "/dl/Photos" {
		t.Errorf("unexpected resolve row: %v", rows[2])
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := exportEvents(t)
	if err := RunExport(path, "xml", filepath.Join(t.TempDir(), "out")); err == nil {
		t.Error("expected error for unknown format")
	}
}
