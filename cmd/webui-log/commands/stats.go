package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/cros-webui/webui-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents      int
	EventsByLayer    map[log.Layer]int
	EventsByCategory map[log.Category]int
	Models           map[string]*ModelStats
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// ModelStats holds statistics for one model instance.
type ModelStats struct {
	FirstSeen    time.Time
	LastSeen     time.Time
	Events       int
	Permutations int
	Resolves     int
	Missing      int
	ResolveTime  time.Duration
}

// CollectStats reads the log file and aggregates its events.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:    make(map[log.Layer]int),
		EventsByCategory: make(map[log.Category]int),
		Models:           make(map[string]*ModelStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}
	return stats, nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	m, ok := s.Models[event.ModelID]
	if !ok {
		m = &ModelStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
		s.Models[event.ModelID] = m
	}
	m.Events++
	if event.Timestamp.After(m.LastSeen) {
		m.LastSeen = event.Timestamp
	}

	switch {
	case event.Permutation != nil:
		m.Permutations++
	case event.Resolve != nil:
		m.Resolves++
		m.ResolveTime += event.Resolve.Duration
		if !event.Resolve.Found {
			m.Missing++
		}
	case event.Error != nil:
		s.Errors++
	}
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Model Event Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for l := log.LayerVolume; l <= log.LayerPrinter; l++ {
		if count := stats.EventsByLayer[l]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", l.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for c := log.CategoryPermutation; c <= log.CategoryError; c++ {
		if count := stats.EventsByCategory[c]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", c.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Models: %d\n", len(stats.Models))
	ids := make([]string, 0, len(stats.Models))
	for id := range stats.Models {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return stats.Models[ids[i]].FirstSeen.Before(stats.Models[ids[j]].FirstSeen)
	})
	for _, id := range ids {
		m := stats.Models[id]
		fmt.Fprintf(w, "  [%s] %d events, %d permutations, %d resolves",
			shortenID(id), m.Events, m.Permutations, m.Resolves)
		if m.Resolves > 0 {
			fmt.Fprintf(w, " (avg %s, %d missing)", formatDuration(m.ResolveTime/time.Duration(m.Resolves)), m.Missing)
		}
		fmt.Fprintln(w)
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
