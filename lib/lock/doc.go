// Package lock implements the deadlock-prevention framework for the shared
// game-state heap. Many concurrently interleaved request handlers touch
// several caches (world state, users, messages, inventories, persistent
// storage) inside one logical operation, and ad-hoc locking of several such
// resources is a classic deadlock source. This package makes a cycle of
// waiters structurally impossible by forcing every call path to take its
// locks in one global order.
//
// Core Concepts:
//
//   - Rank: every lockable resource is assigned a fixed numeric rank. The
//     set of ranks is total and published once, ranks are never reused and
//     their relative order never changes. Gaps between the values allow
//     future resources to be inserted without renumbering.
//
//   - Context: an immutable, append-only capability value carrying the
//     ordered list of ranks proven held along the current call path. It is
//     created empty at the top of a request and extended one rank at a time,
//     and extending it with a rank that is not strictly greater than the
//     current maximum fails. A Context has no ownership of any lock, it only
//     documents what was acquired; the guards below enforce the exclusion.
//
//   - Mutex: the async exclusive lock. Acquisition is scoped: the guard is
//     invoked with the caller's context and a continuation, the continuation
//     receives the extended context and the lock is released on every exit
//     path. Queued acquisitions run in strict FIFO submission order.
//
//   - RWLock: the reader/writer variant with two ranks. Concurrent readers,
//     exclusive writers, and writer priority on release so a continuous
//     stream of reads cannot starve a queued writer.
//
// Deadlock-Freedom Argument:
//
//	Any two call paths that both need ranks {A, B} must acquire them in the
//	same relative order, since an acquisition that does not ascend fails
//	immediately with an OrderingViolation before the caller is ever queued.
//	A cycle of waiters therefore cannot form. Skipping ranks is legal
//	(acquire 10, then jump to 100); going sideways or down is not.
//
// Error Handling:
//
//	All failures carry a RetCode. RetCOrderingViolation and RetCAlreadyHeld
//	are programmer errors surfaced immediately, they are never retried. The
//	guards guarantee release-on-error: an error returned by a continuation
//	unwinds through the release logic before it propagates.
//
// Concurrency Model:
//
//	Lock waits carry no timeout or cancellation. The workload is a single
//	process serving short-lived requests, so a queued acquisition simply
//	waits for its turn.
package lock
