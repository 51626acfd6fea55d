package lock

import (
	"testing"
)

func TestEmptyContext(t *testing.T) {
	ctx := EmptyContext()

	if got := ctx.HeldRanks(); len(got) != 0 {
		t.Errorf("Expected empty context to hold no ranks, got %v", got)
	}
	if ctx.HasRank(RankUser) {
		t.Errorf("Expected empty context to not hold %s", RankUser)
	}
}

func TestAscendingAcquisition(t *testing.T) {
	sequences := [][]Rank{
		{RankCache, RankWorldRead, RankUser, RankDatabase},
		{RankWorldWrite, RankUser, RankDatabase},
		{RankCache, RankDatabase}, // skipping ranks is legal
		{RankUser},
		{RankWorldRead, RankWorldWrite, RankMessageRead, RankMessageWrite, RankInventory},
	}

	for _, seq := range sequences {
		ctx := EmptyContext()
		for _, r := range seq {
			next, err := ctx.Acquire(r)
			if err != nil {
				t.Fatalf("Acquire(%s) after %v failed: %v", r, ctx.HeldRanks(), err)
			}
			ctx = next
		}

		held := ctx.HeldRanks()
		if len(held) != len(seq) {
			t.Fatalf("Expected %d held ranks, got %v", len(seq), held)
		}
		for i, r := range seq {
			if held[i] != r {
				t.Errorf("Expected rank %s at position %d, got %s", r, i, held[i])
			}
			if !ctx.HasRank(r) {
				t.Errorf("Expected HasRank(%s) to be true", r)
			}
		}
	}
}

func TestOrderingViolation(t *testing.T) {
	ctx, err := EmptyContext().Acquire(RankUser)
	if err != nil {
		t.Fatalf("Acquire(%s) failed: %v", RankUser, err)
	}

	// Anything <= the current maximum must be rejected.
	for _, r := range []Rank{RankCache, RankWorldRead, RankWorldWrite} {
		if _, err := ctx.Acquire(r); CodeOf(err) != RetCOrderingViolation {
			t.Errorf("Acquire(%s) after %s: expected OrderingViolation, got %v", r, RankUser, err)
		}
	}
}

func TestAlreadyHeld(t *testing.T) {
	ctx, err := EmptyContext().Acquire(RankWorldRead)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	ctx, err = ctx.Acquire(RankUser)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	// Re-acquiring a held rank is AlreadyHeld, not OrderingViolation,
	// even though it also violates the ascending order.
	for _, r := range []Rank{RankWorldRead, RankUser} {
		if _, err := ctx.Acquire(r); CodeOf(err) != RetCAlreadyHeld {
			t.Errorf("Acquire(%s): expected AlreadyHeld, got %v", r, err)
		}
	}
}

func TestContextImmutability(t *testing.T) {
	base, err := EmptyContext().Acquire(RankCache)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	// Two independent extensions of the same base must not interfere.
	left, err := base.Acquire(RankUser)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	right, err := base.Acquire(RankDatabase)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if got := base.HeldRanks(); len(got) != 1 || got[0] != RankCache {
		t.Errorf("Base context was mutated by extension: %v", got)
	}
	if left.HasRank(RankDatabase) || right.HasRank(RankUser) {
		t.Errorf("Extensions leaked into each other: left=%v right=%v", left, right)
	}
}

func TestHasAnyRank(t *testing.T) {
	ctx, _ := EmptyContext().Acquire(RankWorldWrite)

	if !ctx.HasAnyRank(RankWorldRead, RankWorldWrite) {
		t.Errorf("Expected HasAnyRank to accept the write rank")
	}
	if ctx.HasAnyRank(RankMessageRead, RankMessageWrite) {
		t.Errorf("Expected HasAnyRank to reject unheld ranks")
	}
}
