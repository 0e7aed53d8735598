package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/cros-webui/webui-go/pkg/log"
)

func TestFormatPermutationEvent(t *testing.T) {
	ts := time.Date(2026, 3, 2, 9, 30, 15, 250000000, time.UTC)
	event := log.Event{
		Timestamp: ts,
		ModelID:   "5f0c1d2e-3a4b-4c5d-8e9f-0a1b2c3d4e5f",
		Layer:     log.LayerNavList,
		Category:  log.CategoryPermutation,
		Permutation: &log.PermutationEvent{
			Trigger:     log.LayerVolume,
			Permutation: []int{0, -1, 1, 2},
			NewLength:   3,
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	for _, want := range []string{
		"2026-03-02T09:30:15.250000Z",
		"[model:5f0c1d2e]",
		"NAVLIST Permutation",
		"Trigger: VOLUME",
		"[0 -1 1 2] -> 3 items",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestFormatResolveAndError(t *testing.T) {
	ts := time.Date(2026, 3, 2, 9, 30, 15, 0, time.UTC)

	var buf bytes.Buffer
	formatEvent(&buf, log.Event{
		Timestamp: ts,
		Layer:     log.LayerNavList,
		Category:  log.CategoryResolve,
		Resolve:   &log.ResolveEvent{Path: "/media/usb/Work", Found: false, Duration: 1500 * time.Microsecond},
	})
	formatEvent(&buf, log.Event{
		Timestamp: ts,
		Layer:     log.LayerNavList,
		Category:  log.CategoryError,
		Error:     &log.ErrorEventData{Layer: log.LayerNavList, Message: "boom", Path: "/x", Context: "resolve"},
	})
	output := buf.String()

	for _, want := range []string{
		"Path: /media/usb/Work (missing)",
		"Duration: 1.500ms",
		"Message: boom",
		"Context: resolve",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Nanosecond, "0.500us"},
		{2 * time.Millisecond, "2.000ms"},
		{1500 * time.Millisecond, "1.500s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestParseFlags(t *testing.T) {
	if l, err := ParseLayerFlag("NavList"); err != nil || l != log.LayerNavList {
		t.Errorf("ParseLayerFlag(NavList) = %v, %v", l, err)
	}
	if _, err := ParseLayerFlag("wire"); err == nil {
		t.Error("expected error for unknown layer")
	}
	if c, err := ParseCategoryFlag("resolve"); err != nil || c != log.CategoryResolve {
		t.Errorf("ParseCategoryFlag(resolve) = %v, %v", c, err)
	}
	if _, err := ParseCategoryFlag("message"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestRunViewFilters(t *testing.T) {
	ts := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	state := log.CategoryState
	path := createTestLogFile(t, []log.Event{
		{Timestamp: ts, Layer: log.LayerVolume, Category: log.CategoryState,
			StateChange: &log.StateChangeEvent{Entity: log.StateEntityVolume, ID: "usb-1", NewState: "mounted"}},
		{Timestamp: ts, Layer: log.LayerNavList, Category: log.CategoryResolve,
			Resolve: &log.ResolveEvent{Path: "/dl", Found: true}},
	})

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{Category: &state}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "VOLUME usb-1") {
		t.Errorf("expected volume state event, got: %s", output)
	}
	if strings.Contains(output, "/dl") {
		t.Errorf("resolve event should be filtered out, got: %s", output)
	}
}
