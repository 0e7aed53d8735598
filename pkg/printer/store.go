package printer

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/cros-webui/webui-go/pkg/log"
	"github.com/cros-webui/webui-go/pkg/observable"
)

// Store is the sorted list of known destinations.
type Store struct {
	mu     sync.RWMutex
	dests  []*Destination
	events observable.Dispatcher[observable.Permuted[*Destination]]
	logger log.Logger
	id     string
}

// NewStore creates an empty store. Changes are logged to logger with the
// given model ID; logger may be nil.
func NewStore(logger log.Logger, modelID string) *Store {
	return &Store{logger: log.OrNoop(logger), id: modelID}
}

// Put adds a destination or replaces the one with the same ID.
func (s *Store) Put(dest *Destination) {
	s.mu.Lock()
	old := s.dests
	idx := slices.IndexFunc(old, func(d *Destination) bool { return d.ID == dest.ID })
	next := make([]*Destination, 0, len(old)+1)
	for i, d := range old {
		if i != idx {
			next = append(next, d)
		}
	}
	next = append(next, dest)
	slices.SortStableFunc(next, compareDestinations)
	s.commitLocked(next)
	s.mu.Unlock()

	s.events.Flush()
	state := "available"
	if idx >= 0 {
		state = "updated"
	}
	s.logState(dest.ID, state)
}

// Remove drops a destination. Returns false if it was not in the store.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	next := lo.Reject(s.dests, func(d *Destination, _ int) bool { return d.ID == id })
	if len(next) == len(s.dests) {
		s.mu.Unlock()
		return false
	}
	s.commitLocked(next)
	s.mu.Unlock()

	s.events.Flush()
	s.logState(id, "gone")
	return true
}

// commitLocked replaces the list and publishes the permutation from the old
// positions to the new ones, matching entries by ID.
func (s *Store) commitLocked(next []*Destination) {
	pos := make(map[string]int, len(next))
	for j, d := range next {
		pos[d.ID] = j
	}
	perm := make([]int, len(s.dests))
	for i, d := range s.dests {
		if j, ok := pos[d.ID]; ok {
			perm[i] = j
		} else {
			perm[i] = -1
		}
	}
	s.dests = next

	snapshot := make([]*Destination, len(next))
	copy(snapshot, next)
	s.events.Publish(observable.Permuted[*Destination]{
		Permutation: perm,
		NewLength:   len(snapshot),
		Items:       snapshot,
	})
}

func (s *Store) logState(id, state string) {
	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		ModelID:   s.id,
		Layer:     log.LayerPrinter,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityDestination,
			ID:       id,
			NewState: state,
		},
	})
}

// Track applies browse results until both channels are closed or ctx is
// done.
func (s *Store) Track(ctx context.Context, added <-chan *Destination, removed <-chan string) {
	for added != nil || removed != nil {
		select {
		case d, ok := <-added:
			if !ok {
				added = nil
				continue
			}
			s.Put(d)
		case id, ok := <-removed:
			if !ok {
				removed = nil
				continue
			}
			s.Remove(id)
		case <-ctx.Done():
			return
		}
	}
}

// Subscribe registers fn for list changes.
func (s *Store) Subscribe(fn func(observable.Permuted[*Destination])) *observable.Subscription {
	return s.events.Subscribe(fn)
}

// Len returns the number of destinations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dests)
}

// Items returns a snapshot of the destinations in display order.
func (s *Store) Items() []*Destination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.dests)
}

// Get returns the destination with the given ID.
func (s *Store) Get(id string) (*Destination, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Find(s.dests, func(d *Destination) bool { return d.ID == id })
}
