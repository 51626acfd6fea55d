// Package testing provides a conformance suite for IStorage backends. Each
// implementation runs the same tests with its own factory, so a new backend
// only needs a one-line test file.
package testing

import (
	"reflect"
	"testing"

	"github.com/tychodev/tycho/lib/game"
	"github.com/tychodev/tycho/lib/storage"
)

// StorageFactory creates a fresh, empty backend for one test.
type StorageFactory func(t *testing.T) storage.IStorage

// RunStorageTests runs the conformance suite for an IStorage implementation.
func RunStorageTests(t *testing.T, name string, factory StorageFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("WorldRoundTrip", func(t *testing.T) {
			testWorldRoundTrip(t, factory(t))
		})
		t.Run("UserRoundTrip", func(t *testing.T) {
			testUserRoundTrip(t, factory(t))
		})
		t.Run("InventoryRoundTrip", func(t *testing.T) {
			testInventoryRoundTrip(t, factory(t))
		})
		t.Run("Messages", func(t *testing.T) {
			testMessages(t, factory(t))
		})
		t.Run("EmptyMaxMessageID", func(t *testing.T) {
			testEmptyMaxMessageID(t, factory(t))
		})
		t.Run("NotFound", func(t *testing.T) {
			testNotFound(t, factory(t))
		})
		t.Run("Overwrite", func(t *testing.T) {
			testOverwrite(t, factory(t))
		})
		t.Run("LoadAliasing", func(t *testing.T) {
			testLoadAliasing(t, factory(t))
		})
	})
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testWorldRoundTrip(t *testing.T, s storage.IStorage) {
	defer s.Close()

	w := &game.World{
		ID:   3,
		Tick: 1200,
		Ships: []game.Ship{
			{ID: 1, X: 1.5, Y: -2, VX: 0.25, VY: 0},
			{ID: 2, X: 0, Y: 9, VX: -1, VY: 3},
		},
	}
	if err := s.SaveWorld(w); err != nil {
		t.Fatalf("SaveWorld failed: %v", err)
	}

	got, err := s.LoadWorld(3)
	if err != nil {
		t.Fatalf("LoadWorld failed: %v", err)
	}
	if !reflect.DeepEqual(got, w) {
		t.Errorf("Expected %+v, got %+v", w, got)
	}
}

func testUserRoundTrip(t *testing.T, s storage.IStorage) {
	defer s.Close()

	u := &game.User{
		ID:         7,
		Name:       "kepler",
		Experience: 450,
		Level:      4,
		Research:   map[string]bool{"weapons": true, "propulsion": true},
	}
	if err := s.SaveUser(u); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}

	got, err := s.LoadUser(7)
	if err != nil {
		t.Fatalf("LoadUser failed: %v", err)
	}
	if !reflect.DeepEqual(got, u) {
		t.Errorf("Expected %+v, got %+v", u, got)
	}
}

func testInventoryRoundTrip(t *testing.T, s storage.IStorage) {
	defer s.Close()

	inv := &game.Inventory{
		UserID: 7,
		Items: []game.Item{
			{ID: 1, Name: "ion drive", Equipped: true, SpeedMod: 0.3},
			{ID: 2, Name: "railgun", AttackMod: 0.5},
		},
	}
	if err := s.SaveInventory(inv); err != nil {
		t.Fatalf("SaveInventory failed: %v", err)
	}

	got, err := s.LoadInventory(7)
	if err != nil {
		t.Fatalf("LoadInventory failed: %v", err)
	}
	if !reflect.DeepEqual(got, inv) {
		t.Errorf("Expected %+v, got %+v", inv, got)
	}
}

func testMessages(t *testing.T, s storage.IStorage) {
	defer s.Close()

	msgs := []*game.Message{
		{ID: 1, FromID: 2, ToID: 7, Body: "incoming fleet"},
		{ID: 2, FromID: 3, ToID: 8, Body: "trade offer"},
		{ID: 3, FromID: 2, ToID: 7, Body: "retreat", Read: true},
	}
	for _, m := range msgs {
		if err := s.SaveMessage(m); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
	}

	got, err := s.LoadMessages(7)
	if err != nil {
		t.Fatalf("LoadMessages failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 messages for user 7, got %d", len(got))
	}
	// Ordered by id.
	if got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("Expected messages [1 3], got [%d %d]", got[0].ID, got[1].ID)
	}
	if !got[1].Read {
		t.Errorf("Expected read flag to round-trip")
	}

	// No messages is an empty result, not an error.
	none, err := s.LoadMessages(99)
	if err != nil {
		t.Fatalf("LoadMessages for empty inbox failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected empty inbox, got %d messages", len(none))
	}

	// Single-message load by id.
	one, err := s.LoadMessage(2)
	if err != nil {
		t.Fatalf("LoadMessage failed: %v", err)
	}
	if !reflect.DeepEqual(one, msgs[1]) {
		t.Errorf("Expected %+v, got %+v", msgs[1], one)
	}

	maxID, err := s.MaxMessageID()
	if err != nil {
		t.Fatalf("MaxMessageID failed: %v", err)
	}
	if maxID != 3 {
		t.Errorf("Expected max message id 3, got %d", maxID)
	}
}

func testEmptyMaxMessageID(t *testing.T, s storage.IStorage) {
	defer s.Close()

	maxID, err := s.MaxMessageID()
	if err != nil {
		t.Fatalf("MaxMessageID failed: %v", err)
	}
	if maxID != 0 {
		t.Errorf("Expected max message id 0 for empty backend, got %d", maxID)
	}
}

func testNotFound(t *testing.T, s storage.IStorage) {
	defer s.Close()

	if _, err := s.LoadWorld(1); !storage.IsNotFound(err) {
		t.Errorf("LoadWorld: expected NotFound, got %v", err)
	}
	if _, err := s.LoadUser(1); !storage.IsNotFound(err) {
		t.Errorf("LoadUser: expected NotFound, got %v", err)
	}
	if _, err := s.LoadInventory(1); !storage.IsNotFound(err) {
		t.Errorf("LoadInventory: expected NotFound, got %v", err)
	}
	if _, err := s.LoadMessage(1); !storage.IsNotFound(err) {
		t.Errorf("LoadMessage: expected NotFound, got %v", err)
	}
}

func testOverwrite(t *testing.T, s storage.IStorage) {
	defer s.Close()

	if err := s.SaveUser(&game.User{ID: 1, Name: "old", Level: 1}); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}
	if err := s.SaveUser(&game.User{ID: 1, Name: "new", Level: 2, Experience: 150}); err != nil {
		t.Fatalf("SaveUser overwrite failed: %v", err)
	}

	got, err := s.LoadUser(1)
	if err != nil {
		t.Fatalf("LoadUser failed: %v", err)
	}
	if got.Name != "new" || got.Level != 2 {
		t.Errorf("Expected overwritten user, got %+v", got)
	}
}

func testLoadAliasing(t *testing.T, s storage.IStorage) {
	defer s.Close()

	if err := s.SaveUser(&game.User{ID: 1, Name: "kepler", Level: 1}); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}

	first, err := s.LoadUser(1)
	if err != nil {
		t.Fatalf("LoadUser failed: %v", err)
	}
	first.Name = "mutated"

	// Mutating a loaded object must not leak into later loads.
	second, err := s.LoadUser(1)
	if err != nil {
		t.Fatalf("LoadUser failed: %v", err)
	}
	if second.Name != "kepler" {
		t.Errorf("Load handed out an aliased object: %+v", second)
	}
}
