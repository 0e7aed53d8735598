package shortcut

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cros-webui/webui-go/pkg/observable"
)

// Shortcut errors.
var (
	ErrExists   = errors.New("shortcut already exists")
	ErrNotFound = errors.New("shortcut not found")
)

// Compare orders shortcut paths case-insensitively. Paths that differ only
// in case are ordered by their bytes so the order stays total.
func Compare(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// Store persists shortcuts.
type Store interface {
	// Load returns all stored shortcut paths in any order.
	Load(ctx context.Context) ([]string, error)

	// Add stores a path. Adding an existing path is not an error.
	Add(ctx context.Context, path string) error

	// Remove deletes a path. Removing a missing path is not an error.
	Remove(ctx context.Context, path string) error
}

// List is the sorted, observable shortcut list.
type List struct {
	mu     sync.RWMutex
	paths  []string
	store  Store
	events observable.Dispatcher[observable.Permuted[string]]
}

// NewList creates an empty list. A nil store keeps shortcuts in memory only.
func NewList(store Store) *List {
	return &List{store: store}
}

// Load replaces the list with the contents of the store.
func (l *List) Load(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	paths, err := l.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load shortcuts: %w", err)
	}

	seen := make(map[string]bool, len(paths))
	loaded := make([]string, 0, len(paths))
	for _, p := range paths {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			loaded = append(loaded, p)
		}
	}
	sort.Slice(loaded, func(i, j int) bool { return Compare(loaded[i], loaded[j]) < 0 })

	l.mu.Lock()
	index := make(map[string]int, len(loaded))
	for i, p := range loaded {
		index[p] = i
	}
	perm := make([]int, len(l.paths))
	for i, p := range l.paths {
		if j, ok := index[p]; ok {
			perm[i] = j
		} else {
			perm[i] = -1
		}
	}
	l.paths = loaded
	l.publishLocked(perm)
	l.mu.Unlock()

	l.events.Flush()
	return nil
}

// Add pins a path. Returns ErrExists if it is already pinned.
func (l *List) Add(ctx context.Context, path string) error {
	path = filepath.Clean(path)

	l.mu.RLock()
	_, found := l.searchLocked(path)
	l.mu.RUnlock()
	if found {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}

	if l.store != nil {
		if err := l.store.Add(ctx, path); err != nil {
			return fmt.Errorf("store shortcut %s: %w", path, err)
		}
	}

	l.mu.Lock()
	pos, found := l.searchLocked(path)
	if found {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrExists, path)
	}
	perm := make([]int, len(l.paths))
	for i := range perm {
		if i < pos {
			perm[i] = i
		} else {
			perm[i] = i + 1
		}
	}
	paths := make([]string, 0, len(l.paths)+1)
	paths = append(paths, l.paths[:pos]...)
	paths = append(paths, path)
	l.paths = append(paths, l.paths[pos:]...)
	l.publishLocked(perm)
	l.mu.Unlock()

	l.events.Flush()
	return nil
}

// Remove unpins a path. Returns ErrNotFound if it is not pinned.
func (l *List) Remove(ctx context.Context, path string) error {
	path = filepath.Clean(path)

	l.mu.RLock()
	_, found := l.searchLocked(path)
	l.mu.RUnlock()
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	if l.store != nil {
		if err := l.store.Remove(ctx, path); err != nil {
			return fmt.Errorf("remove shortcut %s: %w", path, err)
		}
	}

	l.mu.Lock()
	pos, found := l.searchLocked(path)
	if !found {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	perm := make([]int, len(l.paths))
	for i := range perm {
		switch {
		case i < pos:
			perm[i] = i
		case i == pos:
			perm[i] = -1
		default:
			perm[i] = i - 1
		}
	}
	paths := make([]string, 0, len(l.paths)-1)
	paths = append(paths, l.paths[:pos]...)
	l.paths = append(paths, l.paths[pos+1:]...)
	l.publishLocked(perm)
	l.mu.Unlock()

	l.events.Flush()
	return nil
}

func (l *List) publishLocked(perm []int) {
	snapshot := make([]string, len(l.paths))
	copy(snapshot, l.paths)
	l.events.Publish(observable.Permuted[string]{
		Permutation: perm,
		NewLength:   len(snapshot),
		Items:       snapshot,
	})
}

// searchLocked returns the insertion position of path and whether it is
// already present.
func (l *List) searchLocked(path string) (int, bool) {
	pos := sort.Search(len(l.paths), func(i int) bool {
		return Compare(l.paths[i], path) >= 0
	})
	return pos, pos < len(l.paths) && l.paths[pos] == path
}

// Compare orders paths the same way the list does.
func (l *List) Compare(a, b string) int {
	return Compare(a, b)
}

// Subscribe registers fn for list changes.
func (l *List) Subscribe(fn func(observable.Permuted[string])) *observable.Subscription {
	return l.events.Subscribe(fn)
}

// Len returns the number of shortcuts.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.paths)
}

// Item returns the shortcut at index i, or "" if out of range.
func (l *List) Item(i int) string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.paths) {
		return ""
	}
	return l.paths[i]
}

// Items returns a sorted snapshot of all shortcuts.
func (l *List) Items() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.paths))
	copy(out, l.paths)
	return out
}

// Contains reports whether path is pinned.
func (l *List) Contains(path string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, found := l.searchLocked(filepath.Clean(path))
	return found
}
