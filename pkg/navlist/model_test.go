package navlist

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cros-webui/webui-go/pkg/log"
	"github.com/cros-webui/webui-go/pkg/observable"
	"github.com/cros-webui/webui-go/pkg/shortcut"
	"github.com/cros-webui/webui-go/pkg/volume"
)

// fixture wires a model to a real volume manager and shortcut list. The
// resolver is mocked so tests control mount state and resolution results.
type fixture struct {
	t         *testing.T
	volumes   *volume.Manager
	shortcuts *shortcut.List
	resolver  *MockResolver
	logger    *recordingLogger

	mu     sync.Mutex
	broken map[string]bool
	errs   map[string]error
	events []observable.Permuted[*Item]
}

func newFixture(t *testing.T, volumeIDs []string, paths []string) *fixture {
	t.Helper()
	f := &fixture{
		t:         t,
		volumes:   volume.NewManager(),
		shortcuts: shortcut.NewList(nil),
		resolver:  &MockResolver{},
		logger:    &recordingLogger{},
		broken:    make(map[string]bool),
		errs:      make(map[string]error),
	}
	for _, id := range volumeIDs {
		f.mount(id)
	}
	for _, p := range paths {
		require.NoError(t, f.shortcuts.Add(context.Background(), p))
	}
	f.resolver.On("GetVolumeInfo", mock.Anything).Return(func(path string) *volume.Info {
		info := f.volumes.GetVolumeInfo(path)
		f.mu.Lock()
		defer f.mu.Unlock()
		if info != nil && f.broken[info.VolumeID] {
			c := *info
			c.Error = "unmounted"
			return &c
		}
		return info
	})
	return f
}

// start creates the model. Expectations for ResolvePath registered before
// start take precedence over the default, which always succeeds.
func (f *fixture) start() *Model {
	f.t.Helper()
	f.resolver.On("ResolvePath", mock.Anything, mock.Anything).Return(
		func(_ context.Context, path string) (*volume.Entry, error) {
			return &volume.Entry{Path: path, Name: filepath.Base(path), IsDir: true}, nil
		})

	m, err := New(Config{
		Volumes:   f.volumes,
		Shortcuts: f.shortcuts,
		Resolver:  f.resolver,
		Logger:    f.logger,
		OnError: func(path string, err error) {
			f.mu.Lock()
			f.errs[path] = err
			f.mu.Unlock()
		},
	})
	require.NoError(f.t, err)
	m.Subscribe(func(ev observable.Permuted[*Item]) {
		f.mu.Lock()
		f.events = append(f.events, ev)
		f.mu.Unlock()
	})
	f.t.Cleanup(m.Close)
	return m
}

func (f *fixture) mount(id string) {
	_, err := f.volumes.Mount(volume.Info{
		VolumeID:  id,
		Label:     id,
		Type:      volume.TypeRemovable,
		MountPath: "/vol/" + id,
	})
	require.NoError(f.t, err)
}

func (f *fixture) setBroken(id string) {
	f.mu.Lock()
	f.broken[id] = true
	f.mu.Unlock()
}

func (f *fixture) lastEvent() observable.Permuted[*Item] {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(f.t, f.events)
	return f.events[len(f.events)-1]
}

func (f *fixture) eventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func (f *fixture) errFor(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[path]
}

type recordingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recordingLogger) Log(event log.Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recordingLogger) byCategory(c log.Category) []log.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []log.Event
	for _, e := range r.events {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

func paths(items []*Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Path()
	}
	return out
}

func TestNewMissingSource(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrMissingSource)

	_, err = New(Config{Volumes: volume.NewManager(), Shortcuts: shortcut.NewList(nil)})
	assert.ErrorIs(t, err, ErrMissingSource)
}

func TestInitialList(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, []string{"/vol/A/y", "/vol/A/x", "/vol/A"})
	m := f.start()
	m.Wait()

	// The pinned volume root is not listed twice.
	assert.Equal(t, []string{"/vol/A", "/vol/B", "/vol/A/x", "/vol/A/y"}, paths(m.Items()))
	assert.Equal(t, 2, m.VolumeCount())
	assert.Equal(t, 4, m.Len())
	assert.Equal(t, KindVolume, m.Item(1).Kind())
	assert.Equal(t, KindShortcut, m.Item(2).Kind())
	assert.Equal(t, "B", m.Item(1).Volume().VolumeID)
	assert.Equal(t, 3, m.IndexOf("/vol/A/y"))
	assert.Equal(t, -1, m.IndexOf("/nope"))
	assert.Nil(t, m.Item(4))

	for _, it := range m.Items() {
		require.NotNil(t, it.Entry(), it.Path())
		assert.False(t, it.Pending())
	}
	assert.Equal(t, "x", m.Item(2).Label())
	assert.Equal(t, "B", m.Item(1).Label())
}

func TestUnmountVolumeScenario(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, []string{"/vol/A/x", "/vol/A/y"})
	m := f.start()
	before := m.Items()

	require.NoError(t, f.volumes.Unmount("B"))

	ev := f.lastEvent()
	assert.Equal(t, []int{0, -1, 1, 2}, ev.Permutation)
	assert.Equal(t, 3, ev.NewLength)
	assert.True(t, ev.Valid())
	assert.Equal(t, []string{"/vol/A", "/vol/A/x", "/vol/A/y"}, paths(ev.Items))

	after := m.Items()
	assert.Same(t, before[0], after[0])
	assert.Same(t, before[2], after[1])
	assert.Same(t, before[3], after[2])
	assert.True(t, before[1].Dropped())
	assert.Equal(t, 1, m.VolumeCount())

	perms := f.logger.byCategory(log.CategoryPermutation)
	require.NotEmpty(t, perms)
	last := perms[len(perms)-1]
	assert.Equal(t, log.LayerVolume, last.Permutation.Trigger)
	assert.Equal(t, []int{0, -1, 1, 2}, last.Permutation.Permutation)
	assert.Equal(t, m.ID(), last.ModelID)
}

func TestNoOpUpdateIsIdentity(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, []string{"/vol/A/x", "/vol/B/y"})
	m := f.start()
	before := m.Items()

	m.HandleShortcutsPermuted(observable.Permuted[string]{
		Permutation: observable.Identity(2),
		NewLength:   2,
		Items:       f.shortcuts.Items(),
	})
	ev := f.lastEvent()
	assert.True(t, ev.IsIdentity())
	assert.Equal(t, 4, ev.NewLength)

	// Clearing a non-existent error is an identity volume event.
	require.NoError(t, f.volumes.SetError("A", ""))
	ev = f.lastEvent()
	assert.True(t, ev.IsIdentity())
	for i, it := range m.Items() {
		assert.Same(t, before[i], it)
	}
	assert.Equal(t, 2, f.eventCount())
}

func TestUnrelatedVolumeEventDropsUnmountedShortcut(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, []string{"/vol/A/x", "/vol/B/z"})
	m := f.start()
	before := m.Items()

	f.setBroken("B")
	f.mount("C")

	ev := f.lastEvent()
	assert.Equal(t, []int{0, 1, 3, -1}, ev.Permutation)
	assert.Equal(t, 4, ev.NewLength)
	assert.Equal(t, []string{"/vol/A", "/vol/B", "/vol/C", "/vol/A/x"}, paths(ev.Items))
	assert.Same(t, before[2], m.Item(3))
	assert.True(t, before[3].Dropped())
}

func TestSetErrorDropsShortcutsOnVolume(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, []string{"/vol/A/x", "/vol/B/z"})
	m := f.start()

	require.NoError(t, f.volumes.SetError("B", "device removed"))
	assert.Equal(t, []int{0, 1, 2, -1}, f.lastEvent().Permutation)
	// The volume item stays and sees the updated info.
	assert.Equal(t, "device removed", m.Item(1).Volume().Error)

	require.NoError(t, f.volumes.SetError("B", ""))
	ev := f.lastEvent()
	assert.Equal(t, []int{0, 1, 2}, ev.Permutation)
	assert.Equal(t, 4, ev.NewLength)
	assert.Equal(t, 3, m.IndexOf("/vol/B/z"))
}

func TestEmptyShortcutList(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, nil)
	m := f.start()

	require.NoError(t, f.volumes.Unmount("B"))
	ev := f.lastEvent()
	assert.Equal(t, []int{0, -1}, ev.Permutation)
	assert.Equal(t, 1, ev.NewLength)
	assert.Equal(t, 1, m.Len())
}

func TestShortcutAddAndRemove(t *testing.T) {
	f := newFixture(t, []string{"A"}, []string{"/vol/A/b", "/vol/A/d"})
	m := f.start()
	ctx := context.Background()

	require.NoError(t, f.shortcuts.Add(ctx, "/vol/A/c"))
	ev := f.lastEvent()
	assert.Equal(t, []int{0, 1, 3}, ev.Permutation)
	assert.Equal(t, 4, ev.NewLength)
	assert.Equal(t, "/vol/A/c", m.Item(2).Path())

	// Shortcuts outside any volume are not shown.
	require.NoError(t, f.shortcuts.Add(ctx, "/elsewhere"))
	ev = f.lastEvent()
	assert.True(t, ev.IsIdentity())

	require.NoError(t, f.shortcuts.Remove(ctx, "/vol/A/b"))
	ev = f.lastEvent()
	assert.Equal(t, []int{0, -1, 1, 2}, ev.Permutation)
	assert.Equal(t, 3, ev.NewLength)
}

func TestListenerMutationIsQueued(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, []string{"/vol/A/x", "/vol/A/y"})
	m := f.start()

	var once sync.Once
	var addErr error
	m.Subscribe(func(ev observable.Permuted[*Item]) {
		once.Do(func() {
			// Runs while the model is delivering the volume event.
			addErr = f.shortcuts.Add(context.Background(), "/vol/A/z")
		})
	})

	f.mount("C")
	require.NoError(t, addErr)

	f.mu.Lock()
	events := append([]observable.Permuted[*Item](nil), f.events...)
	f.mu.Unlock()
	require.Len(t, events, 2)
	assert.Equal(t, []int{0, 1, 3, 4}, events[0].Permutation)
	assert.Equal(t, 5, events[0].NewLength)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, events[1].Permutation)
	assert.Equal(t, 6, events[1].NewLength)
	assert.Equal(t, []string{"/vol/A", "/vol/B", "/vol/C", "/vol/A/x", "/vol/A/y", "/vol/A/z"}, paths(m.Items()))
}

func TestNotFoundRemovesShortcut(t *testing.T) {
	f := newFixture(t, []string{"A"}, []string{"/vol/A/gone", "/vol/A/x"})
	f.resolver.On("ResolvePath", mock.Anything, "/vol/A/gone").
		Return(nil, fmt.Errorf("%w: /vol/A/gone", volume.ErrNotFound))
	m := f.start()
	m.Wait()

	assert.False(t, f.shortcuts.Contains("/vol/A/gone"))
	assert.Equal(t, -1, m.IndexOf("/vol/A/gone"))
	assert.Equal(t, []string{"/vol/A", "/vol/A/x"}, paths(m.Items()))
	assert.ErrorIs(t, f.errFor("/vol/A/gone"), volume.ErrNotFound)

	ev := f.lastEvent()
	assert.Equal(t, []int{0, -1, 1}, ev.Permutation)
	assert.Equal(t, 2, ev.NewLength)
}

func TestOtherErrorKeepsShortcut(t *testing.T) {
	f := newFixture(t, []string{"A"}, []string{"/vol/A/locked"})
	denied := errors.New("permission denied")
	f.resolver.On("ResolvePath", mock.Anything, "/vol/A/locked").Return(nil, denied).Once()
	m := f.start()
	m.Wait()

	it := m.Item(m.IndexOf("/vol/A/locked"))
	require.NotNil(t, it)
	assert.Nil(t, it.Entry())
	assert.ErrorIs(t, f.errFor("/vol/A/locked"), denied)
	assert.True(t, f.shortcuts.Contains("/vol/A/locked"))

	// Only an explicit Resolve retries.
	entry, err := it.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/vol/A/locked", entry.Path)
	assert.Same(t, entry, it.Entry())
}

func TestResolveIsSerialized(t *testing.T) {
	f := newFixture(t, []string{"A"}, []string{"/vol/A/slow"})
	release := make(chan struct{})
	var calls atomic.Int32
	f.resolver.On("ResolvePath", mock.Anything, "/vol/A/slow").Return(
		func(_ context.Context, path string) (*volume.Entry, error) {
			calls.Add(1)
			<-release
			return &volume.Entry{Path: path, Name: "slow", IsDir: true}, nil
		})
	m := f.start()
	it := m.Item(m.IndexOf("/vol/A/slow"))
	require.NotNil(t, it)

	results := make(chan *volume.Entry, 3)
	for range 3 {
		go func() {
			entry, err := it.Resolve(context.Background())
			assert.NoError(t, err)
			results <- entry
		}()
	}

	// The background resolution plus three callers share one flight.
	require.Eventually(t, func() bool { return it.waiting() == 3 }, time.Second, time.Millisecond)
	close(release)

	var got []*volume.Entry
	for range 3 {
		got = append(got, <-results)
	}
	m.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, e := range got {
		assert.Same(t, got[0], e)
	}
	assert.Same(t, got[0], it.Entry())
}

func TestResolveHonorsContext(t *testing.T) {
	f := newFixture(t, []string{"A"}, []string{"/vol/A/slow"})
	release := make(chan struct{})
	f.resolver.On("ResolvePath", mock.Anything, "/vol/A/slow").Return(
		func(_ context.Context, path string) (*volume.Entry, error) {
			<-release
			return &volume.Entry{Path: path}, nil
		})
	m := f.start()
	it := m.Item(m.IndexOf("/vol/A/slow"))
	require.Eventually(t, it.Pending, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := it.Resolve(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	m.Wait()
	assert.NotNil(t, it.Entry())
}

func TestDroppedDuringResolution(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, nil)
	release := make(chan struct{})
	f.resolver.On("ResolvePath", mock.Anything, "/vol/B").Return(
		func(_ context.Context, path string) (*volume.Entry, error) {
			<-release
			return &volume.Entry{Path: path, IsDir: true}, nil
		})
	m := f.start()
	it := m.Item(1)
	require.Eventually(t, it.Pending, time.Second, time.Millisecond)

	require.NoError(t, f.volumes.Unmount("B"))
	close(release)
	m.Wait()

	assert.True(t, it.Dropped())
	assert.Nil(t, it.Entry())
	assert.ErrorIs(t, f.errFor("/vol/B"), ErrItemDropped)

	_, err := it.Resolve(context.Background())
	assert.ErrorIs(t, err, ErrItemDropped)
}

func TestCloseStopsUpdates(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, nil)
	m := f.start()
	n := f.eventCount()

	m.Close()
	require.NoError(t, f.volumes.Unmount("B"))
	assert.Equal(t, n, f.eventCount())
	assert.Equal(t, 2, m.Len())
}

func TestReconcileVolumes(t *testing.T) {
	a := newItem("/vol/A", KindVolume, &volume.Info{VolumeID: "A"}, nil)
	b := newItem("/vol/B", KindVolume, &volume.Info{VolumeID: "B"}, nil)
	infos := []*volume.Info{{VolumeID: "C"}, {VolumeID: "A"}}
	assert.Equal(t, []int{1, -1}, reconcileVolumes([]*Item{a, b}, infos))
}

func TestCloseWaitsForUpdateInProgress(t *testing.T) {
	f := newFixture(t, []string{"A"}, nil)
	m := f.start()
	m.Wait()

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	m.Subscribe(func(observable.Permuted[*Item]) {
		once.Do(func() {
			close(entered)
			<-release
		})
	})

	mounted := make(chan error, 1)
	go func() {
		_, err := f.volumes.Mount(volume.Info{VolumeID: "C", Type: volume.TypeRemovable, MountPath: "/vol/C"})
		mounted <- err
	}()

	<-entered
	m.Close()
	close(release)
	require.NoError(t, <-mounted)
	m.Wait()

	f.resolver.AssertNotCalled(t, "ResolvePath", mock.Anything, "/vol/C")
}

func TestStaleVolumeEventIsReconciled(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, nil)
	m := f.start()
	before := m.Items()

	// Same length and a valid mapping, but index 1 now holds another volume.
	m.HandleVolumesPermuted(observable.Permuted[*volume.Info]{
		Permutation: []int{0, 1},
		NewLength:   2,
		Items: []*volume.Info{
			before[0].Volume(),
			{VolumeID: "C", Type: volume.TypeRemovable, MountPath: "/vol/C"},
		},
	})

	ev := f.lastEvent()
	assert.Equal(t, []int{0, -1}, ev.Permutation)
	assert.Equal(t, []string{"/vol/A", "/vol/C"}, paths(m.Items()))
	assert.Same(t, before[0], m.Item(0))
	assert.True(t, before[1].Dropped())
	assert.Equal(t, "C", m.Item(1).Volume().VolumeID)
}

// TestRandomSequencesKeepMappingConsistent drives the sources through seeded
// random operations and checks every event against the list it replaces.
func TestRandomSequencesKeepMappingConsistent(t *testing.T) {
	ids := []string{"A", "B", "C", "D"}
	names := []string{"", "a", "B", "c", "d/e"}

	for seed := uint64(1); seed <= 50; seed++ {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, seed))
			f := newFixture(t, []string{"A"}, nil)
			m := f.start()
			ctx := context.Background()

			prev := m.Items()
			seen := 0
			for step := 0; step < 60; step++ {
				id := ids[rng.IntN(len(ids))]
				path := "/vol/" + id
				if name := names[rng.IntN(len(names))]; name != "" {
					path += "/" + name
				}

				switch rng.IntN(5) {
				case 0:
					_, _ = f.volumes.Mount(volume.Info{VolumeID: id, Type: volume.TypeRemovable, MountPath: "/vol/" + id})
				case 1:
					_ = f.volumes.Unmount(id)
				case 2:
					msg := ""
					if rng.IntN(2) == 0 {
						msg = "unavailable"
					}
					_ = f.volumes.SetError(id, msg)
				case 3:
					_ = f.shortcuts.Add(ctx, path)
				case 4:
					_ = f.shortcuts.Remove(ctx, path)
				}

				f.mu.Lock()
				events := append([]observable.Permuted[*Item](nil), f.events[seen:]...)
				seen = len(f.events)
				f.mu.Unlock()

				for _, ev := range events {
					require.True(t, ev.Valid(), "step %d: %v", step, ev.Permutation)
					require.Len(t, ev.Permutation, len(prev), "step %d", step)
					require.Len(t, ev.Items, ev.NewLength, "step %d", step)
					for i, j := range ev.Permutation {
						if j >= 0 {
							require.Same(t, prev[i], ev.Items[j], "step %d: index %d", step, i)
						} else {
							require.True(t, prev[i].Dropped(), "step %d: index %d", step, i)
						}
					}
					prev = ev.Items
				}

				items := m.Items()
				assert.Equal(t, paths(prev), paths(items), "step %d", step)
				unique := make(map[string]bool, len(items))
				for i, it := range items {
					require.False(t, unique[it.Path()], "step %d: duplicate %s", step, it.Path())
					unique[it.Path()] = true
					if i < m.VolumeCount() {
						require.Equal(t, KindVolume, it.Kind())
						continue
					}
					require.Equal(t, KindShortcut, it.Kind())
					require.True(t, f.volumes.GetVolumeInfo(it.Path()).IsMounted(),
						"step %d: %s shown on an unmounted volume", step, it.Path())
				}
			}
			m.Wait()
		})
	}
}
