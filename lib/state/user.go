package state

import (
	"math"

	"github.com/tychodev/tycho/lib/cache"
	"github.com/tychodev/tycho/lib/game"
	"github.com/tychodev/tycho/lib/lock"
)

// User returns the live user object, loading it single-flight on a miss.
// The continuation model means the object is only safe to touch while the
// User rank is held; callers outside the lock receive it for reading the
// just-observed state.
func (m *Manager) User(ctx lock.Context, id uint64) (*game.User, error) {
	return lock.WithMutex(m.userMutex, ctx, func(userCtx lock.Context) (*game.User, error) {
		return cache.GetOrLoad(m.users, userCtx, id, m.databaseMutex, m.loadUser)
	})
}

// CreateUser registers a new user with an empty inventory and persists
// both.
func (m *Manager) CreateUser(ctx lock.Context, u *game.User) error {
	if u.Level == 0 {
		u.Level = game.LevelForExperience(u.Experience)
	}
	return m.userMutex.Acquire(ctx, func(userCtx lock.Context) error {
		if err := m.users.SetUnsafe(u.ID, u, userCtx); err != nil {
			return err
		}
		inv := &game.Inventory{UserID: u.ID}
		err := m.inventoryMutex.Acquire(userCtx, func(invCtx lock.Context) error {
			return m.inventories.SetUnsafe(u.ID, inv, invCtx)
		})
		if err != nil {
			return err
		}
		return m.databaseMutex.Acquire(userCtx, func(lock.Context) error {
			if err := m.store.SaveUser(u); err != nil {
				return err
			}
			return m.store.SaveInventory(inv)
		})
	})
}

// GainExperience awards experience scaled by the user's current XP bonus
// rate. A level-up invalidates the memoized bonuses, so the next bonus
// query observes the new level. The updated user is persisted before the
// rank is released.
func (m *Manager) GainExperience(ctx lock.Context, id uint64, amount uint64) (*game.User, error) {
	return lock.WithMutex(m.userMutex, ctx, func(userCtx lock.Context) (*game.User, error) {
		u, err := cache.GetOrLoad(m.users, userCtx, id, m.databaseMutex, m.loadUser)
		if err != nil {
			return nil, err
		}

		b, err := m.bonuses.GetBonuses(userCtx, id)
		if err != nil {
			return nil, err
		}

		scaled := uint64(math.Round(float64(amount) * b.XPRate))
		if u.Gain(scaled) {
			m.bonuses.InvalidateBonuses(id)
		}

		err = m.databaseMutex.Acquire(userCtx, func(lock.Context) error {
			return m.store.SaveUser(u)
		})
		if err != nil {
			return nil, err
		}
		return u, nil
	})
}

// CompleteResearch marks a research topic as finished, invalidates the
// derived bonuses and persists the user. Completing an already-finished
// topic is a no-op.
func (m *Manager) CompleteResearch(ctx lock.Context, id uint64, topic string) (*game.User, error) {
	return lock.WithMutex(m.userMutex, ctx, func(userCtx lock.Context) (*game.User, error) {
		u, err := cache.GetOrLoad(m.users, userCtx, id, m.databaseMutex, m.loadUser)
		if err != nil {
			return nil, err
		}

		if !u.CompleteResearch(topic) {
			return u, nil
		}
		m.bonuses.InvalidateBonuses(id)

		err = m.databaseMutex.Acquire(userCtx, func(lock.Context) error {
			return m.store.SaveUser(u)
		})
		if err != nil {
			return nil, err
		}
		return u, nil
	})
}

// UserBonuses returns the derived bonus aggregate for a user. The User rank
// is taken here so callers outside the lock protocol (request handlers) can
// query bonuses directly.
func (m *Manager) UserBonuses(ctx lock.Context, id uint64) (*game.Bonuses, error) {
	return lock.WithMutex(m.userMutex, ctx, func(userCtx lock.Context) (*game.Bonuses, error) {
		return m.bonuses.GetBonuses(userCtx, id)
	})
}

func (m *Manager) loadUser(_ lock.Context, id uint64) (*game.User, error) {
	return m.store.LoadUser(id)
}
