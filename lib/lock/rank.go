package lock

// --------------------------------------------------------------------------
// Rank Registry
// --------------------------------------------------------------------------

// Rank identifies one lockable resource and fixes its position in the global
// acquisition order. Locks with a higher rank must be taken after locks with
// a lower rank. The numeric values are part of the public contract: they are
// never reused for a different resource and their relative order never
// changes once published. The gaps between values leave room for future
// resources without renumbering.
type Rank uint8

const (
	// RankCache guards the cache table itself (resets, bulk maintenance).
	RankCache Rank = 10

	// RankWorldRead and RankWorldWrite guard the world/physics state.
	// Read admits concurrent snapshot queries, Write is exclusive.
	RankWorldRead  Rank = 20
	RankWorldWrite Rank = 30

	// RankUser guards the per-user state cache.
	RankUser Rank = 40

	// RankMessageRead and RankMessageWrite guard the message queue.
	RankMessageRead  Rank = 50
	RankMessageWrite Rank = 60

	// RankInventory guards per-user inventories.
	RankInventory Rank = 70

	// RankDatabase guards the persistence backend. It is the highest rank so
	// a storage load can always be nested inside any cache's rank.
	RankDatabase Rank = 100
)

// String returns the resource name of the rank.
func (r Rank) String() string {
	switch r {
	case RankCache:
		return "Cache"
	case RankWorldRead:
		return "WorldRead"
	case RankWorldWrite:
		return "WorldWrite"
	case RankUser:
		return "User"
	case RankMessageRead:
		return "MessageRead"
	case RankMessageWrite:
		return "MessageWrite"
	case RankInventory:
		return "Inventory"
	case RankDatabase:
		return "Database"
	default:
		return "Unknown"
	}
}
