package lock

import (
	"fmt"
	"sync"

	"github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Async Exclusive Lock
// --------------------------------------------------------------------------

// Mutex serializes exclusive access to the resource identified by its rank.
// It is acquired scoped: the caller hands in its context and a continuation,
// the continuation runs with the extended context and the lock is released
// on every exit path, including a continuation error or panic. Continuations
// submitted to the same Mutex run in strict submission order and never
// overlap, regardless of how long each one blocks internally.
type Mutex struct {
	rank Rank

	mu    sync.Mutex      // guards held and queue
	held  bool            // whether the lock is currently owned
	queue []chan struct{} // FIFO of parked waiters

	acquires *metrics.Counter
	waits    *metrics.Counter
}

// NewMutex creates the guard for the given rank. One Mutex is created per
// resource and lives for the process lifetime.
func NewMutex(rank Rank) *Mutex {
	return &Mutex{
		rank:     rank,
		acquires: metrics.GetOrCreateCounter(fmt.Sprintf(`tycho_lock_acquires_total{rank=%q}`, rank.String())),
		waits:    metrics.GetOrCreateCounter(fmt.Sprintf(`tycho_lock_waits_total{rank=%q}`, rank.String())),
	}
}

// Rank returns the rank the mutex guards.
func (m *Mutex) Rank() Rank {
	return m.rank
}

// Acquire validates the rank ordering against ctx, waits for its FIFO turn
// on the lock and runs fn with the extended context. The ordering check
// happens before the caller is queued, so an OrderingViolation or
// AlreadyHeld error is returned without ever touching the lock state.
//
// There is no timeout: a queued acquisition waits indefinitely for its turn.
func (m *Mutex) Acquire(ctx Context, fn func(Context) error) error {
	extended, err := ctx.Acquire(m.rank)
	if err != nil {
		return err
	}

	m.acquires.Inc()
	m.lock()
	defer m.unlock()
	return fn(extended)
}

// WithMutex is Mutex.Acquire for continuations that produce a value. Methods
// cannot have their own type parameters, hence the package-level function.
func WithMutex[T any](m *Mutex, ctx Context, fn func(Context) (T, error)) (T, error) {
	var result T
	err := m.Acquire(ctx, func(inner Context) error {
		var fnErr error
		result, fnErr = fn(inner)
		return fnErr
	})
	return result, err
}

// --------------------------------------------------------------------------
// Internal lock state machine
// --------------------------------------------------------------------------

// lock takes ownership immediately if the mutex is free, otherwise parks the
// caller at the tail of the FIFO queue until unlock hands ownership over.
func (m *Mutex) lock() {
	m.mu.Lock()
	if !m.held {
		m.held = true
		m.mu.Unlock()
		return
	}

	turn := make(chan struct{})
	m.queue = append(m.queue, turn)
	m.mu.Unlock()

	m.waits.Inc()
	<-turn // ownership is transferred by unlock, held stays true
}

// unlock hands ownership to the next queued waiter or returns the mutex to
// the unlocked state.
func (m *Mutex) unlock() {
	m.mu.Lock()
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		close(next)
		return
	}
	m.held = false
	m.mu.Unlock()
}
