// Package storage defines the persistence accessor behind the game-state
// caches and its unified error reporting. The state layer populates a cache
// from storage exactly once per miss, always inside a Database-rank
// acquisition, and maps RetCNotFound to the domain-level "not found".
//
// Implementations:
//
//   - Memory Store (memory): an in-process implementation backed by
//     concurrent maps that stores encoded snapshots, so a load never hands
//     out an object aliased by a previous caller. The default for tests and
//     single-node serving without persistence.
//     Available in "github.com/tychodev/tycho/lib/storage/memory".
//
//   - SQLite Store (sqlite): a durable implementation on modernc.org/sqlite
//     (pure Go, no cgo) with WAL journaling. Nested structures are stored as
//     JSON columns, scalar fields as proper columns.
//     Available in "github.com/tychodev/tycho/lib/storage/sqlite".
//
// The shared conformance suite in "lib/storage/testing" runs the same tests
// against any IStorage implementation.
package storage
