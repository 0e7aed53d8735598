package volume

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cros-webui/webui-go/pkg/observable"
)

// Manager keeps the ordered list of volumes.
type Manager struct {
	mu      sync.RWMutex
	volumes []*Info
	events  observable.Dispatcher[observable.Permuted[*Info]]
}

// NewManager creates an empty volume manager.
func NewManager() *Manager {
	return &Manager{}
}

// Mount adds a volume. The returned Info is the published copy.
// Returns ErrVolumeExists if the ID or mount path is already in use.
func (m *Manager) Mount(info Info) (*Info, error) {
	if info.VolumeID == "" || info.MountPath == "" {
		return nil, fmt.Errorf("mount %q: volume ID and mount path are required", info.VolumeID)
	}
	info.MountPath = filepath.Clean(info.MountPath)
	published := &info

	m.mu.Lock()
	for _, v := range m.volumes {
		if v.VolumeID == info.VolumeID || v.MountPath == info.MountPath {
			m.mu.Unlock()
			return nil, fmt.Errorf("%w: %s", ErrVolumeExists, info.VolumeID)
		}
	}

	pos := len(m.volumes)
	for i, v := range m.volumes {
		if v.Type > info.Type {
			pos = i
			break
		}
	}

	perm := make([]int, len(m.volumes))
	for i := range perm {
		if i < pos {
			perm[i] = i
		} else {
			perm[i] = i + 1
		}
	}

	volumes := make([]*Info, 0, len(m.volumes)+1)
	volumes = append(volumes, m.volumes[:pos]...)
	volumes = append(volumes, published)
	m.volumes = append(volumes, m.volumes[pos:]...)
	m.publishLocked(perm)
	m.mu.Unlock()

	m.events.Flush()
	return published, nil
}

// Unmount removes a volume.
func (m *Manager) Unmount(volumeID string) error {
	m.mu.Lock()
	pos := m.indexLocked(volumeID)
	if pos < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrVolumeNotFound, volumeID)
	}

	perm := make([]int, len(m.volumes))
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

	volumes := make([]*Info, 0, len(m.volumes)-1)
	volumes = append(volumes, m.volumes[:pos]...)
	m.volumes = append(volumes, m.volumes[pos+1:]...)
	m.publishLocked(perm)
	m.mu.Unlock()

	m.events.Flush()
	return nil
}

// SetError records a mount error for a volume, or clears it when msg is
// empty. The volume keeps its position and an identity permutation is
// published so observers can re-evaluate anything that depends on it.
func (m *Manager) SetError(volumeID, msg string) error {
	m.mu.Lock()
	pos := m.indexLocked(volumeID)
	if pos < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrVolumeNotFound, volumeID)
	}

	updated := *m.volumes[pos]
	updated.Error = msg
	volumes := make([]*Info, len(m.volumes))
	copy(volumes, m.volumes)
	volumes[pos] = &updated
	m.volumes = volumes
	m.publishLocked(observable.Identity(len(volumes)))
	m.mu.Unlock()

	m.events.Flush()
	return nil
}

func (m *Manager) publishLocked(perm []int) {
	snapshot := make([]*Info, len(m.volumes))
	copy(snapshot, m.volumes)
	m.events.Publish(observable.Permuted[*Info]{
		Permutation: perm,
		NewLength:   len(snapshot),
		Items:       snapshot,
	})
}

func (m *Manager) indexLocked(volumeID string) int {
	for i, v := range m.volumes {
		if v.VolumeID == volumeID {
			return i
		}
	}
	return -1
}

// Subscribe registers fn for volume list changes.
func (m *Manager) Subscribe(fn func(observable.Permuted[*Info])) *observable.Subscription {
	return m.events.Subscribe(fn)
}

// Len returns the number of volumes.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.volumes)
}

// Item returns the volume at index i, or nil if out of range.
func (m *Manager) Item(i int) *Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i < 0 || i >= len(m.volumes) {
		return nil
	}
	return m.volumes[i]
}

// Items returns a snapshot of all volumes in display order.
func (m *Manager) Items() []*Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Info, len(m.volumes))
	copy(out, m.volumes)
	return out
}

// Get returns a volume by ID.
func (m *Manager) Get(volumeID string) (*Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if pos := m.indexLocked(volumeID); pos >= 0 {
		return m.volumes[pos], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrVolumeNotFound, volumeID)
}

// GetVolumeInfo returns the volume containing path, preferring the deepest
// mount path. Returns nil if no volume contains it.
func (m *Manager) GetVolumeInfo(path string) *Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best *Info
	for _, v := range m.volumes {
		if !v.Contains(path) {
			continue
		}
		if best == nil || len(v.MountPath) > len(best.MountPath) {
			best = v
		}
	}
	return best
}

// ResolvePath looks up the entry at path.
// Returns an error wrapping ErrNotFound if nothing exists there.
func (m *Manager) ResolvePath(ctx context.Context, path string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info := m.GetVolumeInfo(path)
	if info == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotInVolume, path)
	}
	if !info.IsMounted() {
		return nil, fmt.Errorf("%w: %s: %s", ErrVolumeUnavailable, info.VolumeID, info.Error)
	}

	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	entry := &Entry{
		Path:     filepath.Clean(path),
		Name:     fi.Name(),
		IsDir:    fi.IsDir(),
		ModTime:  fi.ModTime(),
		VolumeID: info.VolumeID,
	}
	if !fi.IsDir() {
		entry.Size = fi.Size()
	}
	return entry, nil
}
