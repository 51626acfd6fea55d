package state

import (
	"errors"
	"math"
	"testing"

	"github.com/tychodev/tycho/lib/cache"
	"github.com/tychodev/tycho/lib/game"
	"github.com/tychodev/tycho/lib/lock"
	"github.com/tychodev/tycho/lib/storage/memory"
)

// newTestBonusCache wires a bonus cache against fresh guards and a memory
// backend pre-seeded with the given users.
func newTestBonusCache(t *testing.T, users ...*game.User) (*BonusCache, *lock.Mutex) {
	t.Helper()
	store := memory.NewMemoryStorage()
	for _, u := range users {
		if err := store.SaveUser(u); err != nil {
			t.Fatalf("SaveUser failed: %v", err)
		}
	}

	b := NewBonusCache()
	b.ConfigureDependencies(BonusDependencies{
		Users:          cache.NewMutexCache[*game.User]("user", lock.RankUser),
		Inventories:    cache.NewMutexCache[*game.Inventory]("inventory", lock.RankInventory),
		InventoryMutex: lock.NewMutex(lock.RankInventory),
		DatabaseMutex:  lock.NewMutex(lock.RankDatabase),
		Storage:        store,
	})
	return b, lock.NewMutex(lock.RankUser)
}

func TestGetBonusesMemoizes(t *testing.T) {
	b, userMutex := newTestBonusCache(t, &game.User{ID: 7, Level: 3})

	err := userMutex.Acquire(lock.EmptyContext(), func(ctx lock.Context) error {
		first, err := b.GetBonuses(ctx, 7)
		if err != nil {
			t.Fatalf("first GetBonuses failed: %v", err)
		}
		second, err := b.GetBonuses(ctx, 7)
		if err != nil {
			t.Fatalf("second GetBonuses failed: %v", err)
		}
		if first != second {
			t.Errorf("expected the identical memoized object, got %p and %p", first, second)
		}
		if math.Abs(first.XPRate-1.02) > 1e-9 {
			t.Errorf("expected xp rate 1.02 at level 3, got %v", first.XPRate)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
}

func TestInvalidateForcesRecompute(t *testing.T) {
	b, userMutex := newTestBonusCache(t,
		&game.User{ID: 7, Level: 1},
		&game.User{ID: 8, Level: 1},
	)

	err := userMutex.Acquire(lock.EmptyContext(), func(ctx lock.Context) error {
		before7, err := b.GetBonuses(ctx, 7)
		if err != nil {
			t.Fatalf("GetBonuses(7) failed: %v", err)
		}
		before8, err := b.GetBonuses(ctx, 8)
		if err != nil {
			t.Fatalf("GetBonuses(8) failed: %v", err)
		}

		b.InvalidateBonuses(7)

		after7, err := b.GetBonuses(ctx, 7)
		if err != nil {
			t.Fatalf("GetBonuses(7) after invalidate failed: %v", err)
		}
		if after7 == before7 {
			t.Errorf("expected a fresh object for user 7 after invalidation")
		}

		// The other key keeps its memo.
		after8, err := b.GetBonuses(ctx, 8)
		if err != nil {
			t.Fatalf("GetBonuses(8) failed: %v", err)
		}
		if after8 != before8 {
			t.Errorf("invalidation of user 7 must not touch user 8")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
}

func TestInvalidateAbsentIsNoOp(t *testing.T) {
	b, _ := newTestBonusCache(t)
	b.InvalidateBonuses(404) // must not panic or error
}

func TestUpdateBonusesAlwaysRecomputes(t *testing.T) {
	b, userMutex := newTestBonusCache(t, &game.User{ID: 7, Level: 1})

	err := userMutex.Acquire(lock.EmptyContext(), func(ctx lock.Context) error {
		first, err := b.GetBonuses(ctx, 7)
		if err != nil {
			t.Fatalf("GetBonuses failed: %v", err)
		}
		second, err := b.UpdateBonuses(ctx, 7)
		if err != nil {
			t.Fatalf("UpdateBonuses failed: %v", err)
		}
		if first == second {
			t.Errorf("UpdateBonuses must replace the memoized object")
		}

		// The replacement is what later gets served.
		third, err := b.GetBonuses(ctx, 7)
		if err != nil {
			t.Fatalf("GetBonuses failed: %v", err)
		}
		if third != second {
			t.Errorf("expected the recomputed object to be memoized")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
}

func TestDiscardAllBonuses(t *testing.T) {
	b, userMutex := newTestBonusCache(t, &game.User{ID: 7, Level: 1})

	err := userMutex.Acquire(lock.EmptyContext(), func(ctx lock.Context) error {
		before, err := b.GetBonuses(ctx, 7)
		if err != nil {
			t.Fatalf("GetBonuses failed: %v", err)
		}

		b.DiscardAllBonuses()

		after, err := b.GetBonuses(ctx, 7)
		if err != nil {
			t.Fatalf("GetBonuses after discard failed: %v", err)
		}
		if after == before {
			t.Errorf("expected a recompute after discarding the memo table")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
}

func TestGetBonusesRequiresUserRank(t *testing.T) {
	b, _ := newTestBonusCache(t, &game.User{ID: 7, Level: 1})

	_, err := b.GetBonuses(lock.EmptyContext(), 7)
	if lock.CodeOf(err) != lock.RetCRankNotHeld {
		t.Errorf("expected RetCRankNotHeld without the user rank, got %v", err)
	}
}

func TestUnconfiguredBonusCacheFailsFast(t *testing.T) {
	b := NewBonusCache()
	userMutex := lock.NewMutex(lock.RankUser)

	err := userMutex.Acquire(lock.EmptyContext(), func(ctx lock.Context) error {
		_, err := b.GetBonuses(ctx, 1)
		return err
	})
	if !errors.Is(err, ErrBonusDepsNotConfigured) {
		t.Errorf("expected ErrBonusDepsNotConfigured, got %v", err)
	}
}
