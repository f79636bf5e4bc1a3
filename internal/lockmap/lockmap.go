// Package lockmap provides keyed mutual exclusion for the booking
// check-then-insert sequence.  Each (workspace, date) pair maps to its own
// lock so unrelated workspaces stay fully concurrent.  Acquisition is bounded
// by the caller's context; a timeout surfaces ErrBusy, which handlers report
// separately from a slot conflict so clients know to retry the same interval.
package lockmap

import (
	"context"
	"errors"
	"sync"
)

// ErrBusy is returned when a lock cannot be acquired before the context
// deadline.  It signals contention, not a business-rule rejection.
var ErrBusy = errors.New("resource busy, retry")

type entry struct {
	ch   chan struct{} // 1-slot semaphore
	refs int
}

// Map hands out per-key locks on demand and discards them once the last
// holder releases, so the map does not grow with the key space.
type Map struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New returns an empty lock map.
func New() *Map {
	return &Map{entries: make(map[string]*entry)}
}

// Acquire blocks until the lock for key is held or ctx is done.  On success
// it returns a release function that must be called exactly once.  When the
// context expires first it returns ErrBusy.
func (m *Map) Acquire(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return func() {
			<-e.ch
			m.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(m.entries, key)
			}
			m.mu.Unlock()
		}, nil
	case <-ctx.Done():
		m.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, ErrBusy
	}
}
