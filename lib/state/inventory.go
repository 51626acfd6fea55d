package state

import (
	"github.com/tychodev/tycho/lib/cache"
	"github.com/tychodev/tycho/lib/game"
	"github.com/tychodev/tycho/lib/lock"
)

// Inventory returns the live inventory for a user, loading it single-flight
// on a miss.
func (m *Manager) Inventory(ctx lock.Context, userID uint64) (*game.Inventory, error) {
	return lock.WithMutex(m.inventoryMutex, ctx, func(invCtx lock.Context) (*game.Inventory, error) {
		return cache.GetOrLoad(m.inventories, invCtx, userID, m.databaseMutex, m.loadInventory)
	})
}

// GrantItem adds an item to a user's inventory and persists it. Equipped
// items change the bonus computation, so the memo is invalidated either
// way; the invalidation of an unaffected entry is a cheap no-op.
func (m *Manager) GrantItem(ctx lock.Context, userID uint64, item game.Item) error {
	err := m.inventoryMutex.Acquire(ctx, func(invCtx lock.Context) error {
		inv, err := cache.GetOrLoad(m.inventories, invCtx, userID, m.databaseMutex, m.loadInventory)
		if err != nil {
			return err
		}
		inv.Items = append(inv.Items, item)
		return m.databaseMutex.Acquire(invCtx, func(lock.Context) error {
			return m.store.SaveInventory(inv)
		})
	})
	if err != nil {
		return err
	}
	if item.Equipped {
		m.bonuses.InvalidateBonuses(userID)
	}
	return nil
}

// EquipItem marks an item as equipped and invalidates the user's memoized
// bonuses, since equipment modifiers are an input to the computation.
func (m *Manager) EquipItem(ctx lock.Context, userID, itemID uint64) (*game.Inventory, error) {
	inv, err := lock.WithMutex(m.inventoryMutex, ctx, func(invCtx lock.Context) (*game.Inventory, error) {
		inv, err := cache.GetOrLoad(m.inventories, invCtx, userID, m.databaseMutex, m.loadInventory)
		if err != nil {
			return nil, err
		}
		if !inv.Equip(itemID) {
			return inv, nil
		}
		err = m.databaseMutex.Acquire(invCtx, func(lock.Context) error {
			return m.store.SaveInventory(inv)
		})
		if err != nil {
			return nil, err
		}
		return inv, nil
	})
	if err != nil {
		return nil, err
	}

	m.bonuses.InvalidateBonuses(userID)
	return inv, nil
}

func (m *Manager) loadInventory(_ lock.Context, userID uint64) (*game.Inventory, error) {
	return m.store.LoadInventory(userID)
}
