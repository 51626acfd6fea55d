// Package game holds the plain domain objects of the space game and the
// pure functions operating on them: worlds with their ships and physics
// step, users with experience, levels and research, inventories with
// equippable items, messages, and the derived bonus aggregate.
//
// Nothing in this package locks or caches. The objects are live, mutable
// values owned by the state layer (lib/state), which gates every access
// behind the rank protocol from lib/lock. Keeping the types free of any
// synchronization makes the ownership rules explicit: whoever holds the
// right rank may touch the object, nobody else may.
package game
