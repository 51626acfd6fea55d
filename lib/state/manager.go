package state

import (
	"sync/atomic"

	"github.com/tychodev/tycho/lib/cache"
	"github.com/tychodev/tycho/lib/game"
	"github.com/tychodev/tycho/lib/lock"
	"github.com/tychodev/tycho/lib/storage"
)

// Manager owns the guards and caches of the game-state heap. All access to
// the live domain objects goes through its operations, which enforce the
// ascending-rank protocol from lib/lock.
type Manager struct {
	// Guards, one per resource, ordered by rank.
	cacheMutex     *lock.Mutex  // RankCache
	worldLock      *lock.RWLock // RankWorldRead / RankWorldWrite
	userMutex      *lock.Mutex  // RankUser
	messageLock    *lock.RWLock // RankMessageRead / RankMessageWrite
	inventoryMutex *lock.Mutex  // RankInventory
	databaseMutex  *lock.Mutex  // RankDatabase

	// Caches of live domain objects.
	worlds      *cache.Cache[*game.World]
	users       *cache.Cache[*game.User]
	messages    *cache.Cache[*game.Message]
	inboxes     *cache.Cache[[]uint64] // per-user ordered message ids; present = inbox loaded
	inventories *cache.Cache[*game.Inventory]
	bonuses     *BonusCache

	store         storage.IStorage
	nextMessageID atomic.Uint64
}

// NewManager wires a state heap on top of the given storage backend.
func NewManager(store storage.IStorage) *Manager {
	m := &Manager{
		cacheMutex:     lock.NewMutex(lock.RankCache),
		worldLock:      lock.NewRWLock(lock.RankWorldRead, lock.RankWorldWrite),
		userMutex:      lock.NewMutex(lock.RankUser),
		messageLock:    lock.NewRWLock(lock.RankMessageRead, lock.RankMessageWrite),
		inventoryMutex: lock.NewMutex(lock.RankInventory),
		databaseMutex:  lock.NewMutex(lock.RankDatabase),

		worlds:      cache.NewRWCache[*game.World]("world", lock.RankWorldRead, lock.RankWorldWrite),
		users:       cache.NewMutexCache[*game.User]("user", lock.RankUser),
		messages:    cache.NewRWCache[*game.Message]("message", lock.RankMessageRead, lock.RankMessageWrite),
		inboxes:     cache.NewRWCache[[]uint64]("inbox", lock.RankMessageRead, lock.RankMessageWrite),
		inventories: cache.NewMutexCache[*game.Inventory]("inventory", lock.RankInventory),

		store: store,
	}

	m.bonuses = NewBonusCache()
	m.bonuses.ConfigureDependencies(BonusDependencies{
		Users:          m.users,
		Inventories:    m.inventories,
		InventoryMutex: m.inventoryMutex,
		DatabaseMutex:  m.databaseMutex,
		Storage:        store,
	})

	// nextMessageID stays 0 until the first send seeds it from the highest
	// stored id, keeping ids ascending across restarts.

	return m
}

// Bonuses exposes the derived bonus cache.
func (m *Manager) Bonuses() *BonusCache {
	return m.bonuses
}

// Storage exposes the persistence backend, for shutdown.
func (m *Manager) Storage() storage.IStorage {
	return m.store
}

// Reset drops every cached object and memoized bonus. It acquires the
// Cache rank first and then every mutation rank in ascending order, so a
// reset cannot interleave with a running operation.
func (m *Manager) Reset(ctx lock.Context) error {
	return m.cacheMutex.Acquire(ctx, func(cacheCtx lock.Context) error {
		return m.worldLock.AcquireWrite(cacheCtx, func(worldCtx lock.Context) error {
			return m.userMutex.Acquire(worldCtx, func(userCtx lock.Context) error {
				return m.messageLock.AcquireWrite(userCtx, func(msgCtx lock.Context) error {
					return m.inventoryMutex.Acquire(msgCtx, func(invCtx lock.Context) error {
						if err := m.worlds.ClearUnsafe(invCtx); err != nil {
							return err
						}
						if err := m.users.ClearUnsafe(invCtx); err != nil {
							return err
						}
						if err := m.messages.ClearUnsafe(invCtx); err != nil {
							return err
						}
						if err := m.inboxes.ClearUnsafe(invCtx); err != nil {
							return err
						}
						if err := m.inventories.ClearUnsafe(invCtx); err != nil {
							return err
						}
						m.bonuses.DiscardAllBonuses()
						return nil
					})
				})
			})
		})
	})
}
