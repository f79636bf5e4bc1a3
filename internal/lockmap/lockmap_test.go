package lockmap

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestAcquireRelease(t *testing.T) {
	m := New()
	release, err := m.Acquire(context.Background(), "ws-1:2024-07-01")
	if err != nil {
		t.Fatal(err)
	}
	release()
	// Re-acquire after release must succeed immediately.
	release2, err := m.Acquire(context.Background(), "ws-1:2024-07-01")
	if err != nil {
		t.Fatal(err)
	}
	release2()
}

func TestContendedAcquireTimesOutWithBusy(t *testing.T) {
	m := New()
	release, err := m.Acquire(context.Background(), "k")
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := m.Acquire(ctx, "k"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy on contended acquire, got %v", err)
	}
}

func TestDifferentKeysDoNotContend(t *testing.T) {
	m := New()
	r1, err := m.Acquire(context.Background(), "ws-1:2024-07-01")
	if err != nil {
		t.Fatal(err)
	}
	defer r1()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	r2, err := m.Acquire(ctx, "ws-2:2024-07-01")
	if err != nil {
		t.Fatalf("unrelated key blocked: %v", err)
	}
	r2()
}

func TestMutualExclusion(t *testing.T) {
	m := New()
	const workers = 16
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := m.Acquire(context.Background(), "k")
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			// Unsynchronized increment; the lock is the only guard.
			v := counter
			time.Sleep(time.Millisecond)
			counter = v + 1
			release()
		}()
	}
	wg.Wait()
	if counter != workers {
		t.Fatalf("counter = %d, want %d (lost updates)", counter, workers)
	}
}

func TestEntriesAreDiscardedWhenIdle(t *testing.T) {
	m := New()
	release, err := m.Acquire(context.Background(), "k")
	if err != nil {
		t.Fatal(err)
	}
	release()
	m.mu.Lock()
	n := len(m.entries)
	m.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected empty lock map after release, have %d entries", n)
	}
}
