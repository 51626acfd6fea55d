package game

import (
	"math"
	"testing"
)

func TestLevelForExperience(t *testing.T) {
	cases := []struct {
		xp    uint64
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{199, 2},
		{200, 3},
		{399, 3},
		{400, 4},
		{800, 5},
	}
	for _, c := range cases {
		if got := LevelForExperience(c.xp); got != c.level {
			t.Errorf("LevelForExperience(%d): expected %d, got %d", c.xp, c.level, got)
		}
	}
}

func TestUserGain(t *testing.T) {
	u := &User{ID: 1, Level: 1}

	if u.Gain(50) {
		t.Errorf("Expected no level-up at 50 xp")
	}
	if !u.Gain(60) {
		t.Errorf("Expected level-up at 110 xp")
	}
	if u.Level != 2 {
		t.Errorf("Expected level 2, got %d", u.Level)
	}
}

func TestCompleteResearch(t *testing.T) {
	u := &User{ID: 1}

	if !u.CompleteResearch("weapons") {
		t.Errorf("Expected first completion to report true")
	}
	if u.CompleteResearch("weapons") {
		t.Errorf("Expected repeated completion to report false")
	}
}

func TestWorldAdvance(t *testing.T) {
	w := &World{
		ID:    1,
		Tick:  10,
		Ships: []Ship{{ID: 1, X: 0, Y: 0, VX: 2, VY: -1}},
	}

	w.Advance(5)

	if w.Tick != 15 {
		t.Errorf("Expected tick 15, got %d", w.Tick)
	}
	if w.Ships[0].X != 10 || w.Ships[0].Y != -5 {
		t.Errorf("Expected ship at (10,-5), got (%v,%v)", w.Ships[0].X, w.Ships[0].Y)
	}
}

func TestComputeBonuses(t *testing.T) {
	u := &User{
		ID:       7,
		Level:    3,
		Research: map[string]bool{"propulsion": true, "academy": true},
	}
	inv := &Inventory{
		UserID: 7,
		Items: []Item{
			{ID: 1, Equipped: true, AttackMod: 0.5},
			{ID: 2, Equipped: false, AttackMod: 9.0}, // unequipped, must not count
		},
	}

	b := ComputeBonuses(u, inv)

	if math.Abs(b.XPRate-(1.0+0.02+0.10)) > 1e-9 {
		t.Errorf("Unexpected XPRate %v", b.XPRate)
	}
	if math.Abs(b.SpeedRate-1.15) > 1e-9 {
		t.Errorf("Unexpected SpeedRate %v", b.SpeedRate)
	}
	if math.Abs(b.AttackRate-1.5) > 1e-9 {
		t.Errorf("Unexpected AttackRate %v", b.AttackRate)
	}

	// Nil inventory counts as empty.
	if ComputeBonuses(u, nil).AttackRate != 1.0 {
		t.Errorf("Expected nil inventory to contribute nothing")
	}
}

func TestInventoryEquip(t *testing.T) {
	inv := &Inventory{UserID: 1, Items: []Item{{ID: 5}}}

	if !inv.Equip(5) {
		t.Errorf("Expected equip to succeed")
	}
	if inv.Equip(5) {
		t.Errorf("Expected equipping an equipped item to report false")
	}
	if inv.Equip(99) {
		t.Errorf("Expected equipping a missing item to report false")
	}
}
