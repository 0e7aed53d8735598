package volume

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// RemovableIDPrefix prefixes the IDs of volumes mounted by a Watcher.
const RemovableIDPrefix = "removable:"

// Watcher mounts the subdirectories of a media root as removable volumes.
type Watcher struct {
	root    string
	manager *Manager
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// NewWatcher creates a watcher for root. Call Run to start it.
func NewWatcher(root string, manager *Manager, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media root: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(abs); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", abs, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		root:    abs,
		manager: manager,
		watcher: fsw,
		logger:  logger,
		done:    make(chan struct{}),
	}, nil
}

// VolumeIDFor returns the volume ID the watcher uses for a media directory.
func VolumeIDFor(name string) string {
	return RemovableIDPrefix + name
}

// Scan mounts every directory already present below the root.
func (w *Watcher) Scan() error {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", w.root, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			w.mount(filepath.Join(w.root, e.Name()))
		}
	}
	return nil
}

// Run scans the root and processes file system events until ctx is
// cancelled or Close is called.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Scan(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("media watcher error", "root", w.root, "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if filepath.Dir(event.Name) != w.root {
		return
	}
	switch {
	case event.Has(fsnotify.Create):
		fi, err := os.Stat(event.Name)
		if err != nil || !fi.IsDir() {
			return
		}
		w.mount(event.Name)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		id := VolumeIDFor(filepath.Base(event.Name))
		if err := w.manager.Unmount(id); err != nil && !errors.Is(err, ErrVolumeNotFound) {
			w.logger.Warn("failed to unmount removable volume", "volume", id, "error", err)
			return
		}
		w.logger.Debug("removable volume detached", "volume", id)
	}
}

func (w *Watcher) mount(path string) {
	name := filepath.Base(path)
	info, err := w.manager.Mount(Info{
		VolumeID:  VolumeIDFor(name),
		Label:     name,
		Type:      TypeRemovable,
		MountPath: path,
		Source:    w.root,
	})
	if err != nil {
		if !errors.Is(err, ErrVolumeExists) {
			w.logger.Warn("failed to mount removable volume", "path", path, "error", err)
		}
		return
	}
	w.logger.Debug("removable volume attached", "volume", info.VolumeID, "path", info.MountPath)
}

// Close stops the watcher. It is safe to call Close multiple times.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
