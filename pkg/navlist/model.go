package navlist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/cros-webui/webui-go/pkg/log"
	"github.com/cros-webui/webui-go/pkg/observable"
	"github.com/cros-webui/webui-go/pkg/shortcut"
	"github.com/cros-webui/webui-go/pkg/volume"
)

// ErrMissingSource is returned by New when a collaborator is not set.
var ErrMissingSource = errors.New("navlist: missing source")

// VolumeSource is the ordered list of volumes.
type VolumeSource interface {
	Items() []*volume.Info
	Subscribe(fn func(observable.Permuted[*volume.Info])) *observable.Subscription
}

// ShortcutSource is the sorted list of shortcut paths.
type ShortcutSource interface {
	Items() []string
	Compare(a, b string) int
	Remove(ctx context.Context, path string) error
	Subscribe(fn func(observable.Permuted[string])) *observable.Subscription
}

// VolumeResolver answers which volume holds a path and resolves paths to
// entries.
type VolumeResolver interface {
	GetVolumeInfo(path string) *volume.Info
	ResolvePath(ctx context.Context, path string) (*volume.Entry, error)
}

// Config holds the model's collaborators.
type Config struct {
	Volumes   VolumeSource
	Shortcuts ShortcutSource
	Resolver  VolumeResolver

	// Logger receives model events. Optional.
	Logger log.Logger

	// OnError is called for resolution failures. Optional.
	OnError func(path string, err error)
}

// Model is the combined navigation list: volume items followed by shortcut
// items.
type Model struct {
	id        string
	volumes   VolumeSource
	shortcuts ShortcutSource
	resolver  VolumeResolver
	logger    log.Logger
	onError   func(path string, err error)

	mu          sync.RWMutex
	items       []*Item
	volumeCount int
	paths       []string // last shortcut snapshot
	closed      bool
	subs        []*observable.Subscription

	events observable.Dispatcher[observable.Permuted[*Item]]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds the initial list from the current source contents and
// subscribes to both sources.
func New(cfg Config) (*Model, error) {
	if cfg.Volumes == nil || cfg.Shortcuts == nil || cfg.Resolver == nil {
		return nil, ErrMissingSource
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		id:        uuid.New().String(),
		volumes:   cfg.Volumes,
		shortcuts: cfg.Shortcuts,
		resolver:  cfg.Resolver,
		logger:    log.OrNoop(cfg.Logger),
		onError:   cfg.OnError,
		ctx:       ctx,
		cancel:    cancel,
	}

	// Handlers block on m.mu until the initial list is built. Events that
	// raced with the snapshot are reconciled by volume ID.
	m.mu.Lock()
	m.subs = []*observable.Subscription{
		cfg.Volumes.Subscribe(m.HandleVolumesPermuted),
		cfg.Shortcuts.Subscribe(m.HandleShortcutsPermuted),
	}
	var created []*Item
	for _, info := range cfg.Volumes.Items() {
		it := m.newVolumeItem(info)
		m.items = append(m.items, it)
		created = append(created, it)
	}
	m.volumeCount = len(m.items)
	m.paths = cfg.Shortcuts.Items()
	var discard []int
	secondary := m.mergeShortcuts(nil, m.paths, m.items, &discard, &created)
	m.items = append(m.items, secondary...)
	m.mu.Unlock()

	m.resolveAsync(created)
	return m, nil
}

// ID returns the model instance ID used in log events.
func (m *Model) ID() string { return m.id }

// Subscribe registers fn for list changes. Events are delivered in order and
// never while the model's lock is held, so fn may read the model.
func (m *Model) Subscribe(fn func(observable.Permuted[*Item])) *observable.Subscription {
	return m.events.Subscribe(fn)
}

// Len returns the number of items.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Item returns the item at index i, or nil if i is out of range.
func (m *Model) Item(i int) *Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i < 0 || i >= len(m.items) {
		return nil
	}
	return m.items[i]
}

// Items returns a snapshot of all items.
func (m *Model) Items() []*Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Item, len(m.items))
	copy(out, m.items)
	return out
}

// VolumeCount returns the number of volume items at the head of the list.
func (m *Model) VolumeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.volumeCount
}

// IndexOf returns the index of the item with the given path, or -1.
func (m *Model) IndexOf(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, idx, ok := lo.FindIndexOf(m.items, func(it *Item) bool { return it.path == path })
	if !ok {
		return -1
	}
	return idx
}

// HandleVolumesPermuted applies a volume list change.
func (m *Model) HandleVolumesPermuted(ev observable.Permuted[*volume.Info]) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	old := m.items
	oldPrimary := old[:m.volumeCount]

	perm := ev.Permutation
	if !matchesVolumes(oldPrimary, ev) {
		perm = reconcileVolumes(oldPrimary, ev.Items)
	}

	out := make([]int, 0, len(old))
	primary := make([]*Item, len(ev.Items))
	var created []*Item
	for i, it := range oldPrimary {
		j := perm[i]
		if j < 0 || primary[j] != nil {
			it.drop()
			out = append(out, -1)
			continue
		}
		it.setVolume(ev.Items[j])
		primary[j] = it
		out = append(out, j)
	}
	for j, info := range ev.Items {
		if primary[j] == nil {
			primary[j] = m.newVolumeItem(info)
			created = append(created, primary[j])
		}
	}

	secondary := m.mergeShortcuts(old[m.volumeCount:], m.paths, primary, &out, &created)
	m.commitLocked(primary, secondary, out)
	m.mu.Unlock()

	m.finish(log.LayerVolume, out, len(primary)+len(secondary), created)
}

// HandleShortcutsPermuted applies a shortcut list change. Volume items keep
// their positions.
func (m *Model) HandleShortcutsPermuted(ev observable.Permuted[string]) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	primary := m.items[:m.volumeCount:m.volumeCount]
	m.paths = ev.Items

	out := observable.Identity(len(primary))
	var created []*Item
	secondary := m.mergeShortcuts(m.items[m.volumeCount:], m.paths, primary, &out, &created)
	m.commitLocked(primary, secondary, out)
	m.mu.Unlock()

	m.finish(log.LayerShortcut, out, len(primary)+len(secondary), created)
}

// mergeShortcuts walks the previous shortcut items and the sorted candidate
// paths in step. Both are sorted by the source comparator, so one pass
// decides for every item whether it stays, goes or is new. Destinations are
// appended to out with the primary length as offset.
func (m *Model) mergeShortcuts(old []*Item, candidates []string, primary []*Item, out *[]int, created *[]*Item) []*Item {
	offset := len(primary)
	roots := lo.SliceToMap(primary, func(it *Item) (string, struct{}) {
		return it.path, struct{}{}
	})
	visible := func(path string) bool {
		if _, ok := roots[path]; ok {
			return false
		}
		return m.resolver.GetVolumeInfo(path).IsMounted()
	}

	next := make([]*Item, 0, len(candidates))
	keep := func(it *Item) {
		*out = append(*out, offset+len(next))
		next = append(next, it)
	}
	remove := func(it *Item) {
		it.drop()
		*out = append(*out, -1)
	}
	insert := func(path string) {
		it := newItem(path, KindShortcut, nil, m.resolver.ResolvePath)
		next = append(next, it)
		*created = append(*created, it)
	}

	i, j := 0, 0
	for i < len(old) && j < len(candidates) {
		switch c := m.shortcuts.Compare(old[i].path, candidates[j]); {
		case c < 0:
			remove(old[i])
			i++
		case c == 0:
			if visible(candidates[j]) {
				keep(old[i])
			} else {
				remove(old[i])
			}
			i++
			j++
		default:
			if visible(candidates[j]) {
				insert(candidates[j])
			}
			j++
		}
	}
	for ; j < len(candidates); j++ {
		if visible(candidates[j]) {
			insert(candidates[j])
		}
	}
	for ; i < len(old); i++ {
		remove(old[i])
	}
	return next
}

// commitLocked installs the new list and queues the change event. Updates
// that change nothing still publish an identity permutation.
func (m *Model) commitLocked(primary, secondary []*Item, perm []int) {
	items := make([]*Item, 0, len(primary)+len(secondary))
	items = append(items, primary...)
	items = append(items, secondary...)
	m.items = items
	m.volumeCount = len(primary)

	snapshot := make([]*Item, len(items))
	copy(snapshot, items)
	m.events.Publish(observable.Permuted[*Item]{
		Permutation: perm,
		NewLength:   len(snapshot),
		Items:       snapshot,
	})
}

// finish delivers queued events, logs the change and starts resolving new
// items. Runs without the model lock.
func (m *Model) finish(trigger log.Layer, perm []int, newLength int, created []*Item) {
	m.events.Flush()
	m.logger.Log(log.Event{
		Timestamp: time.Now(),
		ModelID:   m.id,
		Layer:     log.LayerNavList,
		Category:  log.CategoryPermutation,
		Permutation: &log.PermutationEvent{
			Trigger:     trigger,
			Permutation: perm,
			NewLength:   newLength,
		},
	})
	m.resolveAsync(created)
}

func (m *Model) newVolumeItem(info *volume.Info) *Item {
	return newItem(info.MountPath, KindVolume, info, m.resolver.ResolvePath)
}

// resolveAsync starts resolving items in the background. The wait group is
// raised under the model lock so Close either sees the work or prevents it.
func (m *Model) resolveAsync(items []*Item) {
	if len(items) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.wg.Add(len(items))
	for _, it := range items {
		go func(it *Item) {
			defer m.wg.Done()
			m.resolveItem(it)
		}(it)
	}
}

func (m *Model) resolveItem(it *Item) {
	start := time.Now()
	entry, err := it.Resolve(m.ctx)
	m.logger.Log(log.Event{
		Timestamp: time.Now(),
		ModelID:   m.id,
		Layer:     log.LayerNavList,
		Category:  log.CategoryResolve,
		Resolve: &log.ResolveEvent{
			Path:     it.path,
			Found:    entry != nil,
			Duration: time.Since(start),
		},
	})
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) && m.ctx.Err() != nil {
		return
	}
	m.reportError(it.path, "resolve", err)

	if it.kind == KindShortcut && errors.Is(err, fs.ErrNotExist) {
		m.removeShortcut(it.path)
	}
}

// removeShortcut removes a shortcut whose folder is gone. The removal runs on
// its own goroutine and is not retried.
func (m *Model) removeShortcut(path string) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		err := m.shortcuts.Remove(m.ctx, path)
		if err != nil && !errors.Is(err, shortcut.ErrNotFound) {
			m.reportError(path, "remove shortcut", fmt.Errorf("remove stale shortcut: %w", err))
		}
	}()
}

func (m *Model) reportError(path, op string, err error) {
	m.logger.Log(log.Event{
		Timestamp: time.Now(),
		ModelID:   m.id,
		Layer:     log.LayerNavList,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerNavList,
			Message: err.Error(),
			Path:    path,
			Context: op,
		},
	})
	if m.onError != nil {
		m.onError(path, err)
	}
}

// Wait blocks until all background resolutions and shortcut removals have
// finished.
func (m *Model) Wait() {
	m.wg.Wait()
}

// Close unsubscribes from the sources, cancels pending resolutions and waits
// for background work to stop.
func (m *Model) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	subs := m.subs
	m.subs = nil
	m.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
	m.cancel()
	m.wg.Wait()
}

// matchesVolumes reports whether ev describes a change of exactly the volume
// items in old: every old index is covered and each mapped item keeps its
// volume ID.
func matchesVolumes(old []*Item, ev observable.Permuted[*volume.Info]) bool {
	if len(ev.Permutation) != len(old) || len(ev.Items) != ev.NewLength || !ev.Valid() {
		return false
	}
	for i, j := range ev.Permutation {
		if j < 0 {
			continue
		}
		info := old[i].Volume()
		if info == nil || ev.Items[j] == nil || info.VolumeID != ev.Items[j].VolumeID {
			return false
		}
	}
	return true
}

// reconcileVolumes maps old volume items to new positions by volume ID. Used
// when an event does not line up with the model's view of the volume list.
func reconcileVolumes(old []*Item, infos []*volume.Info) []int {
	pos := make(map[string]int, len(infos))
	for j, info := range infos {
		pos[info.VolumeID] = j
	}
	perm := make([]int, len(old))
	for i, it := range old {
		perm[i] = -1
		if info := it.Volume(); info != nil {
			if j, ok := pos[info.VolumeID]; ok {
				perm[i] = j
			}
		}
	}
	return perm
}
