// Package observable implements ordered event delivery for list models.
//
// A Dispatcher delivers events to subscribers synchronously, on the goroutine
// that flushes the queue. Publishers enqueue events while holding their own
// lock, which fixes the delivery order, and flush after releasing it:
//
//	l.mu.Lock()
//	// mutate
//	l.events.Publish(ev)
//	l.mu.Unlock()
//	l.events.Flush()
//
// # Re-entrancy
//
// A subscriber may mutate the publisher from inside its callback. The nested
// event is queued and delivered by the outer Flush once the current event has
// reached every subscriber, so no subscriber ever sees events out of order and
// no lock is held while callbacks run.
//
// The same holds across goroutines: whichever goroutine flushes first delivers
// every queued event, and concurrent flushers return immediately.
//
// # Permutations
//
// List models announce changes with a Permuted event. Permutation[i] is the
// new index of the element that was at old index i, or -1 if it was removed.
package observable
