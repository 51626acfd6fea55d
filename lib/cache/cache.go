package cache

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
	"github.com/tychodev/tycho/lib/lock"
)

// --------------------------------------------------------------------------
// Rank-Gated Cache
// --------------------------------------------------------------------------

// Cache stores live, mutable domain objects in a process-wide map, keyed by
// a domain id. Every accessor is "unsafe": it performs no locking of its own
// and instead demands a lock.Context proving that the right rank is held.
// A call without that proof fails loudly with RetCRankNotHeld.
//
// The map itself is a plain map on purpose. All mutation happens under the
// cache's exclusive (or write) rank and reads happen under the read rank of
// the same guard, so the rank protocol is the synchronization.
type Cache[V any] struct {
	name     string
	getRanks []lock.Rank // any of these ranks grants read access
	setRank  lock.Rank   // this rank grants mutation
	entries  map[uint64]V

	hits   *metrics.Counter
	misses *metrics.Counter
}

// NewMutexCache creates a cache guarded by a single exclusive rank: both
// reads and mutation require it.
func NewMutexCache[V any](name string, rank lock.Rank) *Cache[V] {
	return newCache[V](name, []lock.Rank{rank}, rank)
}

// NewRWCache creates a cache guarded by a reader/writer lock: reads accept
// either the read or the write rank, mutation requires the write rank.
func NewRWCache[V any](name string, readRank, writeRank lock.Rank) *Cache[V] {
	return newCache[V](name, []lock.Rank{readRank, writeRank}, writeRank)
}

func newCache[V any](name string, getRanks []lock.Rank, setRank lock.Rank) *Cache[V] {
	return &Cache[V]{
		name:     name,
		getRanks: getRanks,
		setRank:  setRank,
		entries:  make(map[uint64]V),
		hits:     metrics.GetOrCreateCounter(fmt.Sprintf(`tycho_cache_hits_total{cache=%q}`, name)),
		misses:   metrics.GetOrCreateCounter(fmt.Sprintf(`tycho_cache_misses_total{cache=%q}`, name)),
	}
}

// Name returns the cache name used for diagnostics and metrics.
func (c *Cache[V]) Name() string {
	return c.name
}

// GetUnsafe returns the live object for id, or false if the cache holds no
// entry. ctx must prove one of the cache's read ranks.
func (c *Cache[V]) GetUnsafe(id uint64, ctx lock.Context) (V, bool, error) {
	var zero V
	if !ctx.HasAnyRank(c.getRanks...) {
		return zero, false, c.rankError(c.getRanks[0], ctx)
	}
	v, ok := c.entries[id]
	if ok {
		c.hits.Inc()
	} else {
		c.misses.Inc()
	}
	return v, ok, nil
}

// SetUnsafe inserts or replaces the entry for id. ctx must prove the
// cache's mutation rank.
func (c *Cache[V]) SetUnsafe(id uint64, v V, ctx lock.Context) error {
	if !ctx.HasRank(c.setRank) {
		return c.rankError(c.setRank, ctx)
	}
	c.entries[id] = v
	return nil
}

// DeleteUnsafe removes the entry for id. Removing a nonexistent entry is a
// no-op. ctx must prove the cache's mutation rank.
func (c *Cache[V]) DeleteUnsafe(id uint64, ctx lock.Context) error {
	if !ctx.HasRank(c.setRank) {
		return c.rankError(c.setRank, ctx)
	}
	delete(c.entries, id)
	return nil
}

// EachUnsafe calls fn for every entry until fn returns false. ctx must
// prove one of the cache's read ranks. fn must not mutate the cache.
func (c *Cache[V]) EachUnsafe(ctx lock.Context, fn func(id uint64, v V) bool) error {
	if !ctx.HasAnyRank(c.getRanks...) {
		return c.rankError(c.getRanks[0], ctx)
	}
	for id, v := range c.entries {
		if !fn(id, v) {
			return nil
		}
	}
	return nil
}

// LenUnsafe returns the number of cached entries. ctx must prove one of the
// cache's read ranks.
func (c *Cache[V]) LenUnsafe(ctx lock.Context) (int, error) {
	if !ctx.HasAnyRank(c.getRanks...) {
		return 0, c.rankError(c.getRanks[0], ctx)
	}
	return len(c.entries), nil
}

// ClearUnsafe drops every entry. ctx must prove the cache's mutation rank.
func (c *Cache[V]) ClearUnsafe(ctx lock.Context) error {
	if !ctx.HasRank(c.setRank) {
		return c.rankError(c.setRank, ctx)
	}
	c.entries = make(map[uint64]V)
	return nil
}

func (c *Cache[V]) rankError(want lock.Rank, ctx lock.Context) error {
	return lock.NewError(lock.RetCRankNotHeld, want,
		fmt.Sprintf("cache %q requires rank %s, context holds %v", c.name, want, ctx.HeldRanks()))
}

// --------------------------------------------------------------------------
// Single-Flight Load
// --------------------------------------------------------------------------

// GetOrLoad is the canonical get-or-load contract used by every call site.
// The caller already holds the cache's rank in ctx. On a hit the live object
// is returned as-is. On a miss a Database-rank acquisition is nested inside
// the already-held cache rank, the loader runs, and the result is stored
// while the cache rank is still held.
//
// Because the cache rank is held for the whole miss-handling window, two
// concurrent callers requesting the same key serialize on the cache's guard
// and the second one observes the first's freshly populated entry instead of
// issuing a duplicate load. The single-flight guarantee is a corollary of
// the rank protocol, not a separate deduplication structure.
//
// A loader failure (not-found, storage error) propagates without populating
// the cache, so a later call retries the load instead of observing a cached
// negative.
func GetOrLoad[V any](c *Cache[V], ctx lock.Context, id uint64, db *lock.Mutex, loader func(lock.Context, uint64) (V, error)) (V, error) {
	cached, ok, err := c.GetUnsafe(id, ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	if ok {
		return cached, nil
	}

	loaded, err := lock.WithMutex(db, ctx, func(dbCtx lock.Context) (V, error) {
		return loader(dbCtx, id)
	})
	if err != nil {
		var zero V
		return zero, err
	}

	if err := c.SetUnsafe(id, loaded, ctx); err != nil {
		var zero V
		return zero, err
	}
	return loaded, nil
}
