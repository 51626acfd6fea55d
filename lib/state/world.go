package state

import (
	"github.com/tychodev/tycho/lib/cache"
	"github.com/tychodev/tycho/lib/game"
	"github.com/tychodev/tycho/lib/lock"
)

// WorldSnapshot returns a copy of the world's current state. Snapshots of a
// cached world run concurrently under the read rank; a miss retries under
// the write rank, which may populate the cache from storage.
func (m *Manager) WorldSnapshot(ctx lock.Context, id uint64) (*game.World, error) {
	snapshot, err := lock.WithRead(m.worldLock, ctx, func(readCtx lock.Context) (*game.World, error) {
		w, ok, err := m.worlds.GetUnsafe(id, readCtx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil // miss, populate below
		}
		return copyWorld(w), nil
	})
	if err != nil || snapshot != nil {
		return snapshot, err
	}

	// The read rank is released here; populating requires the write rank
	// and upgrading in place would deadlock behind our own read hold.
	return lock.WithWrite(m.worldLock, ctx, func(writeCtx lock.Context) (*game.World, error) {
		w, err := cache.GetOrLoad(m.worlds, writeCtx, id, m.databaseMutex, m.loadWorld)
		if err != nil {
			return nil, err
		}
		return copyWorld(w), nil
	})
}

// AdvanceWorld runs the physics of one world forward by dt ticks and
// persists the result. It returns the tick the world ended on.
func (m *Manager) AdvanceWorld(ctx lock.Context, id uint64, dt uint64) (uint64, error) {
	return lock.WithWrite(m.worldLock, ctx, func(writeCtx lock.Context) (uint64, error) {
		w, err := cache.GetOrLoad(m.worlds, writeCtx, id, m.databaseMutex, m.loadWorld)
		if err != nil {
			return 0, err
		}

		w.Advance(dt)

		err = m.databaseMutex.Acquire(writeCtx, func(lock.Context) error {
			return m.store.SaveWorld(w)
		})
		if err != nil {
			return 0, err
		}
		return w.Tick, nil
	})
}

// CreateWorld registers a new world and persists it.
func (m *Manager) CreateWorld(ctx lock.Context, w *game.World) error {
	return m.worldLock.AcquireWrite(ctx, func(writeCtx lock.Context) error {
		if err := m.worlds.SetUnsafe(w.ID, w, writeCtx); err != nil {
			return err
		}
		return m.databaseMutex.Acquire(writeCtx, func(lock.Context) error {
			return m.store.SaveWorld(w)
		})
	})
}

func (m *Manager) loadWorld(_ lock.Context, id uint64) (*game.World, error) {
	return m.store.LoadWorld(id)
}

// copyWorld clones the live object so callers outside the lock scope never
// alias cached state.
func copyWorld(w *game.World) *game.World {
	out := &game.World{ID: w.ID, Tick: w.Tick}
	out.Ships = make([]game.Ship, len(w.Ships))
	copy(out.Ships, w.Ships)
	return out
}
