package reservation

import (
	"context"
	"log"
	"time"
)

// sweepBatchSize bounds how many overdue bookings one sweep pass processes.
const sweepBatchSize = 100

// Sweeper periodically transitions overdue confirmed bookings to completed
// (with the no-show annotation when nobody ever checked in).  It is the only
// background activity the engine performs.
type Sweeper struct {
	manager  *Manager
	bookings BookingStore
	interval time.Duration
	now      Clock
}

// NewSweeper builds a sweeper running every interval.
func NewSweeper(manager *Manager, bookings BookingStore, interval time.Duration, now Clock) *Sweeper {
	if now == nil {
		now = time.Now
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{manager: manager, bookings: bookings, interval: interval, now: now}
}

// Run blocks until ctx is cancelled, sweeping once immediately and then on
// every tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep completes every due booking it can and logs the rest; one failing
// booking never stops the pass.
func (s *Sweeper) sweep(ctx context.Context) {
	due, err := s.bookings.ListDue(ctx, s.now().UTC(), sweepBatchSize)
	if err != nil {
		log.Printf("sweeper: list due bookings: %v", err)
		return
	}
	for i := range due {
		if err := s.manager.Complete(ctx, due[i].ID); err != nil {
			log.Printf("sweeper: complete booking %d: %v", due[i].ID, err)
		}
	}
}
