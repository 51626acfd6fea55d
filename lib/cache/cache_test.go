package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/tychodev/tycho/lib/lock"
)

type testObj struct {
	id    uint64
	value string
}

func userCtx(t testing.TB) lock.Context {
	t.Helper()
	ctx, err := lock.EmptyContext().Acquire(lock.RankUser)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	return ctx
}

func TestAccessorsRequireRank(t *testing.T) {
	c := NewMutexCache[*testObj]("test", lock.RankUser)
	empty := lock.EmptyContext()

	if _, _, err := c.GetUnsafe(1, empty); lock.CodeOf(err) != lock.RetCRankNotHeld {
		t.Errorf("GetUnsafe without rank: expected RankNotHeld, got %v", err)
	}
	if err := c.SetUnsafe(1, &testObj{}, empty); lock.CodeOf(err) != lock.RetCRankNotHeld {
		t.Errorf("SetUnsafe without rank: expected RankNotHeld, got %v", err)
	}
	if err := c.DeleteUnsafe(1, empty); lock.CodeOf(err) != lock.RetCRankNotHeld {
		t.Errorf("DeleteUnsafe without rank: expected RankNotHeld, got %v", err)
	}

	// A context holding a different rank is rejected just as loudly.
	wrong, _ := lock.EmptyContext().Acquire(lock.RankCache)
	if _, _, err := c.GetUnsafe(1, wrong); lock.CodeOf(err) != lock.RetCRankNotHeld {
		t.Errorf("GetUnsafe with wrong rank: expected RankNotHeld, got %v", err)
	}
}

func TestGetSetDelete(t *testing.T) {
	c := NewMutexCache[*testObj]("test", lock.RankUser)
	ctx := userCtx(t)

	if _, ok, err := c.GetUnsafe(1, ctx); err != nil || ok {
		t.Fatalf("Expected clean miss, got ok=%v err=%v", ok, err)
	}

	obj := &testObj{id: 1, value: "alpha"}
	if err := c.SetUnsafe(1, obj, ctx); err != nil {
		t.Fatalf("SetUnsafe failed: %v", err)
	}

	got, ok, err := c.GetUnsafe(1, ctx)
	if err != nil || !ok {
		t.Fatalf("Expected hit, got ok=%v err=%v", ok, err)
	}
	if got != obj {
		t.Errorf("Expected the identical live object back")
	}

	if err := c.DeleteUnsafe(1, ctx); err != nil {
		t.Fatalf("DeleteUnsafe failed: %v", err)
	}
	if _, ok, _ := c.GetUnsafe(1, ctx); ok {
		t.Errorf("Expected entry to be gone after delete")
	}
	// Deleting again is a no-op, never an error.
	if err := c.DeleteUnsafe(1, ctx); err != nil {
		t.Errorf("Deleting a nonexistent entry failed: %v", err)
	}
}

func TestRWCacheRanks(t *testing.T) {
	c := NewRWCache[*testObj]("world", lock.RankWorldRead, lock.RankWorldWrite)

	readCtx, _ := lock.EmptyContext().Acquire(lock.RankWorldRead)
	writeCtx, _ := lock.EmptyContext().Acquire(lock.RankWorldWrite)

	// Mutation needs the write rank.
	if err := c.SetUnsafe(1, &testObj{}, readCtx); lock.CodeOf(err) != lock.RetCRankNotHeld {
		t.Errorf("SetUnsafe under read rank: expected RankNotHeld, got %v", err)
	}
	if err := c.SetUnsafe(1, &testObj{}, writeCtx); err != nil {
		t.Fatalf("SetUnsafe under write rank failed: %v", err)
	}

	// Reads accept either rank.
	if _, ok, err := c.GetUnsafe(1, readCtx); err != nil || !ok {
		t.Errorf("GetUnsafe under read rank: ok=%v err=%v", ok, err)
	}
	if _, ok, err := c.GetUnsafe(1, writeCtx); err != nil || !ok {
		t.Errorf("GetUnsafe under write rank: ok=%v err=%v", ok, err)
	}
}

func TestEachAndLen(t *testing.T) {
	c := NewMutexCache[*testObj]("test", lock.RankUser)
	ctx := userCtx(t)

	for id := uint64(1); id <= 3; id++ {
		if err := c.SetUnsafe(id, &testObj{id: id}, ctx); err != nil {
			t.Fatalf("SetUnsafe failed: %v", err)
		}
	}

	n, err := c.LenUnsafe(ctx)
	if err != nil || n != 3 {
		t.Fatalf("Expected 3 entries, got %d (%v)", n, err)
	}

	seen := 0
	err = c.EachUnsafe(ctx, func(id uint64, v *testObj) bool {
		if v.id != id {
			t.Errorf("Entry %d carries id %d", id, v.id)
		}
		seen++
		return true
	})
	if err != nil || seen != 3 {
		t.Errorf("Expected to visit 3 entries, visited %d (%v)", seen, err)
	}

	if err := c.ClearUnsafe(ctx); err != nil {
		t.Fatalf("ClearUnsafe failed: %v", err)
	}
	if n, _ := c.LenUnsafe(ctx); n != 0 {
		t.Errorf("Expected empty cache after clear, got %d entries", n)
	}
}

func TestGetOrLoadSingleFlight(t *testing.T) {
	c := NewMutexCache[*testObj]("user", lock.RankUser)
	userMutex := lock.NewMutex(lock.RankUser)
	dbMutex := lock.NewMutex(lock.RankDatabase)

	var loaderCalls atomic.Int64
	loader := func(_ lock.Context, id uint64) (*testObj, error) {
		loaderCalls.Add(1)
		return &testObj{id: id, value: "loaded"}, nil
	}

	// Two concurrent callers miss on the same key. They serialize on the
	// user mutex, so the loader must run exactly once and both callers get
	// a reference to the same cached object.
	results := make([]*testObj, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			obj, err := lock.WithMutex(userMutex, lock.EmptyContext(), func(ctx lock.Context) (*testObj, error) {
				return GetOrLoad(c, ctx, 42, dbMutex, loader)
			})
			if err != nil {
				t.Errorf("GetOrLoad failed: %v", err)
				return
			}
			results[i] = obj
		}()
	}
	wg.Wait()

	if calls := loaderCalls.Load(); calls != 1 {
		t.Errorf("Expected exactly one load, got %d", calls)
	}
	if results[0] == nil || results[0] != results[1] {
		t.Errorf("Expected both callers to share the same object, got %p and %p", results[0], results[1])
	}
}

func TestGetOrLoadFailureNotCached(t *testing.T) {
	c := NewMutexCache[*testObj]("user", lock.RankUser)
	userMutex := lock.NewMutex(lock.RankUser)
	dbMutex := lock.NewMutex(lock.RankDatabase)

	var calls atomic.Int64
	failing := errors.New("storage down")
	loader := func(_ lock.Context, id uint64) (*testObj, error) {
		calls.Add(1)
		if calls.Load() == 1 {
			return nil, failing
		}
		return &testObj{id: id}, nil
	}

	_, err := lock.WithMutex(userMutex, lock.EmptyContext(), func(ctx lock.Context) (*testObj, error) {
		return GetOrLoad(c, ctx, 7, dbMutex, loader)
	})
	if !errors.Is(err, failing) {
		t.Fatalf("Expected loader error to propagate, got %v", err)
	}

	// The failure must not have populated the cache: the next call retries.
	obj, err := lock.WithMutex(userMutex, lock.EmptyContext(), func(ctx lock.Context) (*testObj, error) {
		return GetOrLoad(c, ctx, 7, dbMutex, loader)
	})
	if err != nil || obj == nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("Expected two loader calls, got %d", calls.Load())
	}
}

func TestGetOrLoadHitSkipsLoader(t *testing.T) {
	c := NewMutexCache[*testObj]("user", lock.RankUser)
	userMutex := lock.NewMutex(lock.RankUser)
	dbMutex := lock.NewMutex(lock.RankDatabase)

	loader := func(lock.Context, uint64) (*testObj, error) {
		t.Errorf("Loader must not run on a hit")
		return nil, nil
	}

	err := userMutex.Acquire(lock.EmptyContext(), func(ctx lock.Context) error {
		if err := c.SetUnsafe(1, &testObj{id: 1}, ctx); err != nil {
			return err
		}
		_, err := GetOrLoad(c, ctx, 1, dbMutex, loader)
		return err
	})
	if err != nil {
		t.Fatalf("GetOrLoad failed: %v", err)
	}
}
