package lock

import (
	"fmt"
	"sync"

	"github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Async Reader/Writer Lock
// --------------------------------------------------------------------------

// RWLock guards one resource with two ranks: a read rank and a write rank,
// with the write rank ordered after the read rank. Any number of read
// acquisitions run their continuations concurrently as long as no writer is
// active or queued ahead of them. A write acquisition waits for all active
// readers, then runs exclusively.
//
// Release policy: when a writer releases, a queued writer is granted before
// any queued readers, so writers are not starved by a continuous stream of
// reads. Only when no writer is queued are all queued readers admitted
// together as a batch. When the last active reader releases, a queued writer
// is granted. This makes write-then-read and read-then-write deterministic
// for callers alternating physics writes and snapshot queries.
//
// Acquiring the read rank while already holding the write rank is rejected
// as an ordering violation since the write rank is the higher one. There is
// no downgrade.
type RWLock struct {
	readRank  Rank
	writeRank Rank

	mu             sync.Mutex // guards all state below
	activeReaders  int
	writerActive   bool
	waitingReaders []chan struct{}
	waitingWriters []chan struct{}

	readAcquires  *metrics.Counter
	writeAcquires *metrics.Counter
	waits         *metrics.Counter
}

// NewRWLock creates the guard for a reader/writer protected resource. The
// read rank must be lower than the write rank, anything else is a registry
// bug and panics at construction.
func NewRWLock(readRank, writeRank Rank) *RWLock {
	if readRank >= writeRank {
		panic(fmt.Sprintf("lock: read rank %s must be lower than write rank %s", readRank, writeRank))
	}
	return &RWLock{
		readRank:  readRank,
		writeRank: writeRank,
		readAcquires: metrics.GetOrCreateCounter(
			fmt.Sprintf(`tycho_lock_acquires_total{rank=%q}`, readRank.String())),
		writeAcquires: metrics.GetOrCreateCounter(
			fmt.Sprintf(`tycho_lock_acquires_total{rank=%q}`, writeRank.String())),
		waits: metrics.GetOrCreateCounter(
			fmt.Sprintf(`tycho_lock_waits_total{rank=%q}`, writeRank.String())),
	}
}

// ReadRank returns the rank held by read acquisitions.
func (l *RWLock) ReadRank() Rank {
	return l.readRank
}

// WriteRank returns the rank held by write acquisitions.
func (l *RWLock) WriteRank() Rank {
	return l.writeRank
}

// AcquireRead validates the read rank against ctx and runs fn with the
// extended context, concurrently with other readers. The lock is released on
// every exit path.
func (l *RWLock) AcquireRead(ctx Context, fn func(Context) error) error {
	extended, err := ctx.Acquire(l.readRank)
	if err != nil {
		return err
	}

	l.readAcquires.Inc()
	l.lockRead()
	defer l.unlockRead()
	return fn(extended)
}

// AcquireWrite validates the write rank against ctx and runs fn exclusively
// with the extended context. The lock is released on every exit path.
func (l *RWLock) AcquireWrite(ctx Context, fn func(Context) error) error {
	extended, err := ctx.Acquire(l.writeRank)
	if err != nil {
		return err
	}

	l.writeAcquires.Inc()
	l.lockWrite()
	defer l.unlockWrite()
	return fn(extended)
}

// WithRead is RWLock.AcquireRead for continuations that produce a value.
func WithRead[T any](l *RWLock, ctx Context, fn func(Context) (T, error)) (T, error) {
	var result T
	err := l.AcquireRead(ctx, func(inner Context) error {
		var fnErr error
		result, fnErr = fn(inner)
		return fnErr
	})
	return result, err
}

// WithWrite is RWLock.AcquireWrite for continuations that produce a value.
func WithWrite[T any](l *RWLock, ctx Context, fn func(Context) (T, error)) (T, error) {
	var result T
	err := l.AcquireWrite(ctx, func(inner Context) error {
		var fnErr error
		result, fnErr = fn(inner)
		return fnErr
	})
	return result, err
}

// --------------------------------------------------------------------------
// Internal lock state machine
// --------------------------------------------------------------------------

// lockRead admits the reader immediately unless a writer is active or
// queued. A queued reader is counted as active by whoever wakes it.
func (l *RWLock) lockRead() {
	l.mu.Lock()
	if !l.writerActive && len(l.waitingWriters) == 0 {
		l.activeReaders++
		l.mu.Unlock()
		return
	}

	turn := make(chan struct{})
	l.waitingReaders = append(l.waitingReaders, turn)
	l.mu.Unlock()

	l.waits.Inc()
	<-turn
}

func (l *RWLock) unlockRead() {
	l.mu.Lock()
	l.activeReaders--
	// The last reader out hands the lock to a queued writer.
	if l.activeReaders == 0 && len(l.waitingWriters) > 0 {
		next := l.waitingWriters[0]
		l.waitingWriters = l.waitingWriters[1:]
		l.writerActive = true
		l.mu.Unlock()
		close(next)
		return
	}
	l.mu.Unlock()
}

// lockWrite takes the lock immediately if it is completely free, otherwise
// parks at the tail of the writer queue.
func (l *RWLock) lockWrite() {
	l.mu.Lock()
	if !l.writerActive && l.activeReaders == 0 {
		l.writerActive = true
		l.mu.Unlock()
		return
	}

	turn := make(chan struct{})
	l.waitingWriters = append(l.waitingWriters, turn)
	l.mu.Unlock()

	l.waits.Inc()
	<-turn
}

// unlockWrite grants a queued writer first. Only when no writer is queued
// are all queued readers admitted as one batch.
func (l *RWLock) unlockWrite() {
	l.mu.Lock()
	if len(l.waitingWriters) > 0 {
		next := l.waitingWriters[0]
		l.waitingWriters = l.waitingWriters[1:]
		l.mu.Unlock()
		close(next) // writerActive stays true, ownership is transferred
		return
	}

	l.writerActive = false
	if len(l.waitingReaders) > 0 {
		batch := l.waitingReaders
		l.waitingReaders = nil
		l.activeReaders += len(batch)
		l.mu.Unlock()
		for _, turn := range batch {
			close(turn)
		}
		return
	}
	l.mu.Unlock()
}
