package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/tychodev/tycho/lib/game"
	"github.com/tychodev/tycho/lib/storage"
	storagetesting "github.com/tychodev/tycho/lib/storage/testing"
)

var userFixture = game.User{ID: 12, Name: "brahe", Experience: 220, Level: 3}

func Test(t *testing.T) {
	storagetesting.RunStorageTests(t, "SQLiteStorage", func(t *testing.T) storage.IStorage {
		s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "tycho.db"))
		if err != nil {
			t.Fatalf("NewSQLiteStorage failed: %v", err)
		}
		return s
	})
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := NewSQLiteStorage(""); err == nil {
		t.Fatalf("Expected an error for an empty path")
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tycho.db")

	s, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("NewSQLiteStorage failed: %v", err)
	}
	if err := s.SaveUser(&userFixture); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.LoadUser(userFixture.ID)
	if err != nil {
		t.Fatalf("LoadUser after reopen failed: %v", err)
	}
	if got.Name != userFixture.Name {
		t.Errorf("Expected %q after reopen, got %q", userFixture.Name, got.Name)
	}
}
