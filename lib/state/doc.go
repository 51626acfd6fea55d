// Package state assembles the shared game-state heap: one guard and one
// rank-gated cache per domain resource, the derived bonus cache, and the
// operations request handlers call. A Manager is an explicitly constructed,
// dependency-injected object, there is no package-level singleton; tests
// build a throwaway Manager per case and the serve command builds one for
// the process.
//
// Every operation follows the same data flow: acquire ranks in ascending
// order via nested scoped continuations, touch the corresponding cache
// through its unsafe accessor, nest a Database-rank acquisition on a miss
// to load-and-populate, and let the guards release everything in reverse
// order on the way out.
//
// Rank assignment per resource:
//
//	Cache        10  maintenance over the cache table itself (Reset)
//	WorldRead    20  concurrent world snapshots
//	WorldWrite   30  physics ticks, world population
//	User         40  per-user state
//	MessageRead  50  inbox queries
//	MessageWrite 60  sends, inbox population
//	Inventory    70  per-user items
//	Database    100  the persistence accessor
//
// Read paths of reader/writer guarded resources never populate their cache:
// upgrading read to write on the same guard would deadlock behind the own
// read hold. A miss on the read path releases the read rank and retries the
// whole operation under the write rank, which may populate.
package state
