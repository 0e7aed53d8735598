package log

import (
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func writeEvents(t *testing.T, events ...Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.wlog")
	fl, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	for _, e := range events {
		fl.Log(e)
	}
	if err := fl.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return path
}

func TestFileLoggerAndReader(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	path := writeEvents(t,
		Event{Timestamp: base, ModelID: "a", Layer: LayerVolume, Category: CategoryState,
			StateChange: &StateChangeEvent{Entity: StateEntityVolume, ID: "usb", NewState: "mounted"}},
		Event{Timestamp: base.Add(time.Second), ModelID: "a", Layer: LayerNavList, Category: CategoryResolve,
			Resolve: &ResolveEvent{Path: "/media/usb/x", Found: true}},
		Event{Timestamp: base.Add(2 * time.Second), ModelID: "b", Layer: LayerNavList, Category: CategoryError,
			Error: &ErrorEventData{Message: "entry not found", Path: "/media/usb/x"}},
	)

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	all, err := r.ReadAll()
	_ = r.Close()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"model", Filter{ModelID: "a"}, 2},
		{"layer", Filter{Layer: ptr(LayerNavList)}, 2},
		{"category", Filter{Category: ptr(CategoryError)}, 1},
		{"path", Filter{Path: "/media/usb/x"}, 2},
		{"time window", Filter{TimeStart: ptr(base.Add(time.Second)), TimeEnd: ptr(base.Add(2 * time.Second))}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader() error = %v", err)
			}
			defer r.Close()

			n := 0
			for {
				_, err := r.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("Next() error = %v", err)
				}
				n++
			}
			if n != tt.want {
				t.Errorf("got %d events, want %d", n, tt.want)
			}
		})
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := writeEvents(t, Event{ModelID: "first"})

	fl, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	fl.Log(Event{ModelID: "second"})
	_ = fl.Close()

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	defer r.Close()
	events, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(events) != 2 || events[0].ModelID != "first" || events[1].ModelID != "second" {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestFileLoggerCloseIsIdempotent(t *testing.T) {
	fl, err := NewFileLogger(filepath.Join(t.TempDir(), "x.wlog"))
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	if err := fl.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := fl.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	fl.Log(Event{})
	if fl.Dropped() != 0 {
		t.Errorf("Dropped() = %d, events after Close are ignored, not dropped", fl.Dropped())
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.wlog")
	fl, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fl.Log(Event{Layer: LayerShortcut})
		}()
	}
	wg.Wait()
	_ = fl.Close()

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	defer r.Close()
	events, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(events) != 20 {
		t.Errorf("got %d events, want 20", len(events))
	}
}

func ptr[T any](v T) *T { return &v }
