package memory

import (
	"testing"

	"github.com/tychodev/tycho/lib/storage"
	storagetesting "github.com/tychodev/tycho/lib/storage/testing"
)

func Test(t *testing.T) {
	storagetesting.RunStorageTests(t, "MemoryStorage", func(t *testing.T) storage.IStorage {
		return NewMemoryStorage()
	})
}
