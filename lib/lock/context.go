package lock

import "fmt"

// --------------------------------------------------------------------------
// Lock Context
// --------------------------------------------------------------------------

// Context is an immutable record of the ranks proven held along the current
// call path. It is a pure value: holding a context that includes a rank is a
// claim, the actual mutual exclusion is enforced by the Mutex or RWLock
// guarding the resource. A context is created empty at the top of a request,
// threaded through every nested acquisition and discarded when the request
// completes. The guards release the locks, never the context.
//
// Thread-safety: a Context is never mutated after creation, extending it
// returns a new value. It may be copied and read concurrently.
type Context struct {
	ranks []Rank // strictly increasing, no duplicates
}

// EmptyContext returns a context with no ranks.
func EmptyContext() Context {
	return Context{}
}

// Acquire returns a new context with the rank appended. The receiver is left
// unchanged. Acquire fails with RetCAlreadyHeld if the rank is already part
// of the context and with RetCOrderingViolation if the rank is not strictly
// greater than the highest rank held.
func (c Context) Acquire(r Rank) (Context, error) {
	if c.HasRank(r) {
		return Context{}, NewError(RetCAlreadyHeld, r,
			fmt.Sprintf("rank already held (held: %v)", c.ranks))
	}
	if n := len(c.ranks); n > 0 && r <= c.ranks[n-1] {
		return Context{}, NewError(RetCOrderingViolation, r,
			fmt.Sprintf("rank must be greater than %s (held: %v)", c.ranks[n-1], c.ranks))
	}

	// Copy so the original backing array is never shared with the extension.
	next := make([]Rank, len(c.ranks)+1)
	copy(next, c.ranks)
	next[len(c.ranks)] = r
	return Context{ranks: next}, nil
}

// HasRank reports whether the rank is part of the context.
func (c Context) HasRank(r Rank) bool {
	for _, held := range c.ranks {
		if held == r {
			return true
		}
	}
	return false
}

// HasAnyRank reports whether at least one of the given ranks is part of the
// context. Used by caches that accept either the read or the write rank of a
// reader/writer guarded resource.
func (c Context) HasAnyRank(ranks ...Rank) bool {
	for _, r := range ranks {
		if c.HasRank(r) {
			return true
		}
	}
	return false
}

// HeldRanks returns the held ranks in acquisition order. The returned slice
// is a copy and may be retained by the caller.
func (c Context) HeldRanks() []Rank {
	out := make([]Rank, len(c.ranks))
	copy(out, c.ranks)
	return out
}

// String returns the held ranks for diagnostics, e.g. "[World User]".
func (c Context) String() string {
	return fmt.Sprintf("%v", c.ranks)
}
