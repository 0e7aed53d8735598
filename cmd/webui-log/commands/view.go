// Package commands implements the webui-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cros-webui/webui-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Layer    *log.Layer
	Category *log.Category
	Path     string
}

func (f ViewFilter) toLogFilter() log.Filter {
	return log.Filter{Layer: f.Layer, Category: f.Category, Path: f.Path}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [model:%s] %s %s\n", ts, shortenID(event.ModelID), event.Layer, typeLabel(event))

	switch {
	case event.Permutation != nil:
		formatPermutationDetails(w, event.Permutation)
	case event.Resolve != nil:
		formatResolveDetails(w, event.Resolve)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

func typeLabel(event log.Event) string {
	switch {
	case event.Permutation != nil:
		return "Permutation"
	case event.Resolve != nil:
		return "Resolve"
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// shortenID returns the first 8 characters of a model ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatPermutationDetails(w io.Writer, p *log.PermutationEvent) {
	fmt.Fprintf(w, "  Trigger: %s\n", p.Trigger)
	fmt.Fprintf(w, "  Permutation: %v -> %d items\n", p.Permutation, p.NewLength)
}

func formatResolveDetails(w io.Writer, r *log.ResolveEvent) {
	status := "found"
	if !r.Found {
		status = "missing"
	}
	fmt.Fprintf(w, "  Path: %s (%s)\n", r.Path, status)
	if r.Duration > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(r.Duration))
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s %s\n", sc.Entity, sc.ID)
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, e *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", e.Layer)
	fmt.Fprintf(w, "  Message: %s\n", e.Message)
	if e.Path != "" {
		fmt.Fprintf(w, "  Path: %s\n", e.Path)
	}
	if e.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", e.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseLayerFlag parses a layer name from a command-line flag.
func ParseLayerFlag(s string) (log.Layer, error) {
	l, ok := log.ParseLayer(s)
	if !ok {
		return 0, fmt.Errorf("invalid layer: %s (must be volume, shortcut, navlist, capability or printer)", s)
	}
	return l, nil
}

// ParseCategoryFlag parses a category name from a command-line flag.
func ParseCategoryFlag(s string) (log.Category, error) {
	c, ok := log.ParseCategory(strings.TrimSpace(s))
	if !ok {
		return 0, fmt.Errorf("invalid category: %s (must be permutation, resolve, state or error)", s)
	}
	return c, nil
}

// RunView prints matching events in human-readable form.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.toLogFilter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
}
