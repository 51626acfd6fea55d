// Package cache implements the rank-gated cache manager pattern shared by
// every domain cache of the game state: a process-wide map of live objects
// whose accessors require a lock.Context proving that the guarding rank is
// held, plus the single-flight get-or-load contract that populates a cache
// from persistent storage on a miss.
//
// The package deliberately contains no locks. The guards live with their
// resource owners (lib/state) and the cache only checks the capability the
// caller presents. This split keeps the deadlock-freedom argument in one
// place: lib/lock enforces the ascending order, and every cache accessor is
// a pure map operation once the proof checks out.
//
// Population Pattern:
//
//	acquire cache rank
//	    GetUnsafe -> miss
//	    acquire Database rank          (nested, higher rank)
//	        load object from storage
//	    release Database rank
//	    SetUnsafe                      (cache rank still held)
//	release cache rank
//
// Holding the cache rank across the nested load is what makes concurrent
// misses for the same key collapse into exactly one load.
package cache
