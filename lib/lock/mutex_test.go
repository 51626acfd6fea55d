package lock

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// eventLog collects sentinel strings from concurrent continuations.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(event string) {
	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	copy(out, l.events)
	return out
}

func TestMutexExtendsContext(t *testing.T) {
	m := NewMutex(RankUser)

	err := m.Acquire(EmptyContext(), func(ctx Context) error {
		if !ctx.HasRank(RankUser) {
			t.Errorf("Expected continuation context to hold %s, got %v", RankUser, ctx)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
}

func TestMutexFIFOOrder(t *testing.T) {
	m := NewMutex(RankUser)
	log := &eventLog{}

	var wg sync.WaitGroup
	for i := 1; i <= 3; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.Acquire(EmptyContext(), func(Context) error {
				log.add(fmt.Sprintf("%d-before", i))
				time.Sleep(10 * time.Millisecond) // internal suspension
				log.add(fmt.Sprintf("%d-after", i))
				return nil
			})
			if err != nil {
				t.Errorf("Acquire %d failed: %v", i, err)
			}
		}()
		// Give each submission time to either run or park, so the
		// submission order is deterministic.
		time.Sleep(3 * time.Millisecond)
	}
	wg.Wait()

	want := []string{"1-before", "1-after", "2-before", "2-after", "3-before", "3-after"}
	got := log.snapshot()
	if len(got) != len(want) {
		t.Fatalf("Expected %d events, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected strict submission order %v, got %v", want, got)
		}
	}
}

func TestMutexReleasesOnError(t *testing.T) {
	m := NewMutex(RankUser)
	boom := errors.New("boom")

	if err := m.Acquire(EmptyContext(), func(Context) error {
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("Expected continuation error to propagate, got %v", err)
	}

	// The failed continuation must have released the lock.
	done := make(chan struct{})
	go func() {
		_ = m.Acquire(EmptyContext(), func(Context) error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Mutex was left locked after a continuation error")
	}
}

func TestMutexRejectsBeforeQueueing(t *testing.T) {
	m := NewMutex(RankUser)

	// A nested acquisition of the same mutex must fail with AlreadyHeld
	// instead of deadlocking in the wait queue.
	err := m.Acquire(EmptyContext(), func(ctx Context) error {
		return m.Acquire(ctx, func(Context) error {
			t.Errorf("Nested continuation must not run")
			return nil
		})
	})
	if CodeOf(err) != RetCAlreadyHeld {
		t.Errorf("Expected AlreadyHeld, got %v", err)
	}

	// A nested acquisition of a lower-ranked mutex is an ordering violation.
	lower := NewMutex(RankCache)
	err = m.Acquire(EmptyContext(), func(ctx Context) error {
		return lower.Acquire(ctx, func(Context) error {
			t.Errorf("Nested continuation must not run")
			return nil
		})
	})
	if CodeOf(err) != RetCOrderingViolation {
		t.Errorf("Expected OrderingViolation, got %v", err)
	}
}

func TestWithMutexValue(t *testing.T) {
	m := NewMutex(RankUser)

	value, err := WithMutex(m, EmptyContext(), func(Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("WithMutex failed: %v", err)
	}
	if value != 42 {
		t.Errorf("Expected 42, got %d", value)
	}

	_, err = WithMutex(m, EmptyContext(), func(Context) (int, error) {
		return 0, errors.New("load failed")
	})
	if err == nil {
		t.Errorf("Expected continuation error to propagate")
	}
}
