package shortcut

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StateVersion is the current version of the shortcut state file format.
const StateVersion = 1

// State is the content of a shortcut state file.
type State struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Shortcuts holds the pinned paths.
	Shortcuts []string `json:"shortcuts,omitempty"`
}

// FileStore persists shortcuts to a JSON file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a new file store.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save persists the state to disk.
func (s *FileStore) Save(state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(state)
}

func (s *FileStore) saveLocked(state *State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	state.SavedAt = time.Now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// LoadState reads the state from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *FileStore) LoadState() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *FileStore) loadLocked() (*State, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &State{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Clear removes the state file.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Load implements Store.
func (s *FileStore) Load(context.Context) ([]string, error) {
	state, err := s.LoadState()
	if err != nil || state == nil {
		return nil, err
	}
	return state.Shortcuts, nil
}

// Add implements Store.
func (s *FileStore) Add(_ context.Context, path string) error {
	return s.update(func(state *State) {
		for _, p := range state.Shortcuts {
			if p == path {
				return
			}
		}
		state.Shortcuts = append(state.Shortcuts, path)
	})
}

// Remove implements Store.
func (s *FileStore) Remove(_ context.Context, path string) error {
	return s.update(func(state *State) {
		kept := state.Shortcuts[:0]
		for _, p := range state.Shortcuts {
			if p != path {
				kept = append(kept, p)
			}
		}
		state.Shortcuts = kept
	})
}

func (s *FileStore) update(fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadLocked()
	if err != nil {
		return err
	}
	if state == nil {
		state = &State{}
	}
	fn(state)
	return s.saveLocked(state)
}

// Compile-time interface satisfaction check.
var _ Store = (*FileStore)(nil)
