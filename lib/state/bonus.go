package state

import (
	"errors"
	"fmt"

	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/tychodev/tycho/lib/cache"
	"github.com/tychodev/tycho/lib/game"
	"github.com/tychodev/tycho/lib/lock"
	"github.com/tychodev/tycho/lib/storage"
)

// ErrBonusDepsNotConfigured is returned when the bonus cache is asked to
// compute before its input caches have been wired.
var ErrBonusDepsNotConfigured = errors.New("bonus cache: dependencies not configured")

// BonusDependencies names the inputs the bonus computation reads through.
// They are injected after construction so the manager can build its caches
// first and wire the derived cache last.
type BonusDependencies struct {
	Users          *cache.Cache[*game.User]
	Inventories    *cache.Cache[*game.Inventory]
	InventoryMutex *lock.Mutex
	DatabaseMutex  *lock.Mutex
	Storage        storage.IStorage
}

// BonusCache memoizes the derived per-user bonus aggregate. Reads go through
// GetBonuses under the User rank; invalidation is synchronous and lock-free
// so any mutation path can call it without touching the rank protocol.
type BonusCache struct {
	memo       *xsync.MapOf[uint64, *game.Bonuses]
	deps       BonusDependencies
	configured bool

	recomputes *metrics.Counter
	hits       *metrics.Counter
}

// NewBonusCache creates an unconfigured bonus cache. ConfigureDependencies
// must run before the first GetBonuses.
func NewBonusCache() *BonusCache {
	return &BonusCache{
		memo:       xsync.NewMapOf[uint64, *game.Bonuses](),
		recomputes: metrics.GetOrCreateCounter(`tycho_bonus_recomputes_total`),
		hits:       metrics.GetOrCreateCounter(`tycho_bonus_hits_total`),
	}
}

// ConfigureDependencies wires the input caches and guards. Calling it twice
// replaces the previous wiring.
func (b *BonusCache) ConfigureDependencies(deps BonusDependencies) {
	b.deps = deps
	b.configured = true
}

// GetBonuses returns the memoized bonus aggregate for a user, computing and
// memoizing it on a miss. The caller must already hold the User rank: the
// computation reads through the user cache and nests an Inventory-rank
// acquisition for the equipment inputs.
func (b *BonusCache) GetBonuses(ctx lock.Context, id uint64) (*game.Bonuses, error) {
	if !ctx.HasRank(lock.RankUser) {
		return nil, lock.NewError(lock.RetCRankNotHeld, lock.RankUser,
			fmt.Sprintf("bonus read for user %d without the user rank", id))
	}
	if memoized, ok := b.memo.Load(id); ok {
		b.hits.Inc()
		return memoized, nil
	}
	return b.recompute(ctx, id)
}

// UpdateBonuses unconditionally recomputes the aggregate, overwrites the
// memo and returns the fresh value. Same rank requirement as GetBonuses.
func (b *BonusCache) UpdateBonuses(ctx lock.Context, id uint64) (*game.Bonuses, error) {
	if !ctx.HasRank(lock.RankUser) {
		return nil, lock.NewError(lock.RetCRankNotHeld, lock.RankUser,
			fmt.Sprintf("bonus update for user %d without the user rank", id))
	}
	return b.recompute(ctx, id)
}

// InvalidateBonuses drops the memo entry for one user. It never blocks and
// invalidating an absent entry is a no-op, so every mutation path that
// changes a bonus input can call it unconditionally.
func (b *BonusCache) InvalidateBonuses(id uint64) {
	b.memo.Delete(id)
}

// DiscardAllBonuses clears the whole memo table.
func (b *BonusCache) DiscardAllBonuses() {
	b.memo.Clear()
}

func (b *BonusCache) recompute(ctx lock.Context, id uint64) (*game.Bonuses, error) {
	if !b.configured {
		return nil, ErrBonusDepsNotConfigured
	}
	b.recomputes.Inc()

	user, err := cache.GetOrLoad(b.deps.Users, ctx, id, b.deps.DatabaseMutex,
		func(_ lock.Context, id uint64) (*game.User, error) {
			return b.deps.Storage.LoadUser(id)
		})
	if err != nil {
		return nil, err
	}

	// The inventory guard ranks above User, so nesting here follows the
	// ascending protocol. A user without a stored inventory just has no
	// equipment contribution.
	inv, err := lock.WithMutex(b.deps.InventoryMutex, ctx, func(invCtx lock.Context) (*game.Inventory, error) {
		return cache.GetOrLoad(b.deps.Inventories, invCtx, id, b.deps.DatabaseMutex,
			func(_ lock.Context, id uint64) (*game.Inventory, error) {
				return b.deps.Storage.LoadInventory(id)
			})
	})
	if err != nil {
		if !storage.IsNotFound(err) {
			return nil, err
		}
		inv = nil
	}

	bonuses := game.ComputeBonuses(user, inv)
	b.memo.Store(id, bonuses)
	return bonuses, nil
}
