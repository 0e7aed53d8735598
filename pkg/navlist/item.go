package navlist

import (
	"context"
	"errors"
	"sync"

	"github.com/cros-webui/webui-go/pkg/volume"
)

// ErrItemDropped is reported when an item leaves the list while its
// resolution is still running. The result is discarded.
var ErrItemDropped = errors.New("item dropped before resolution completed")

// Kind distinguishes volume items from shortcut items.
type Kind uint8

const (
	KindVolume Kind = iota
	KindShortcut
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindVolume:
		return "volume"
	case KindShortcut:
		return "shortcut"
	default:
		return "unknown"
	}
}

type resolveFunc func(ctx context.Context, path string) (*volume.Entry, error)

// flight is one running resolution shared by every caller waiting on it.
type flight struct {
	done    chan struct{}
	entry   *volume.Entry
	err     error
	waiters int
}

// Item is an element of the navigation list.
type Item struct {
	path    string
	kind    Kind
	resolve resolveFunc

	mu       sync.Mutex
	info     *volume.Info
	entry    *volume.Entry
	inflight *flight
	dropped  bool
}

func newItem(path string, kind Kind, info *volume.Info, resolve resolveFunc) *Item {
	return &Item{path: path, kind: kind, info: info, resolve: resolve}
}

// Path returns the item path. It is unique within the list.
func (it *Item) Path() string { return it.path }

// Kind returns the item kind.
func (it *Item) Kind() Kind { return it.kind }

// Volume returns the volume of a volume item, nil for shortcuts.
func (it *Item) Volume() *volume.Info {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.info
}

// Label returns a display label: the volume label for volumes and the base
// name of the folder for shortcuts.
func (it *Item) Label() string {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.info != nil && it.info.Label != "" {
		return it.info.Label
	}
	if it.entry != nil {
		return it.entry.Name
	}
	return it.path
}

// Entry returns the resolved entry, or nil while unresolved or after a
// failed resolution.
func (it *Item) Entry() *volume.Entry {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.entry
}

// Pending reports whether a resolution is in flight.
func (it *Item) Pending() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.inflight != nil
}

// Dropped reports whether the item has left the list.
func (it *Item) Dropped() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.dropped
}

// Resolve resolves the item's entry. If a resolution is already in flight,
// Resolve waits for it and returns its result instead of starting another.
func (it *Item) Resolve(ctx context.Context) (*volume.Entry, error) {
	it.mu.Lock()
	if it.dropped {
		it.mu.Unlock()
		return nil, ErrItemDropped
	}
	if f := it.inflight; f != nil {
		f.waiters++
		it.mu.Unlock()
		select {
		case <-f.done:
			return f.entry, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	it.inflight = f
	it.mu.Unlock()

	entry, err := it.resolve(ctx, it.path)

	it.mu.Lock()
	switch {
	case it.dropped:
		entry, err = nil, ErrItemDropped
	case err != nil:
		entry = nil
		it.entry = nil
	default:
		it.entry = entry
	}
	f.entry, f.err = entry, err
	it.inflight = nil
	close(f.done)
	it.mu.Unlock()

	return entry, err
}

// waiting returns the number of callers sharing the current flight.
func (it *Item) waiting() int {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.inflight == nil {
		return 0
	}
	return it.inflight.waiters
}

func (it *Item) setVolume(info *volume.Info) {
	it.mu.Lock()
	it.info = info
	it.mu.Unlock()
}

func (it *Item) drop() {
	it.mu.Lock()
	it.dropped = true
	it.mu.Unlock()
}
