package memory

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/tychodev/tycho/lib/game"
	"github.com/tychodev/tycho/lib/storage"
)

// storeImpl keeps encoded snapshots in concurrent maps. Encoding on save
// and decoding on load guarantees that no live object is ever shared
// between storage and a cache, which mirrors what a real backend does.
type storeImpl struct {
	worlds      *xsync.MapOf[uint64, []byte]
	users       *xsync.MapOf[uint64, []byte]
	inventories *xsync.MapOf[uint64, []byte]
	messages    *xsync.MapOf[uint64, []byte]
}

// NewMemoryStorage creates an empty in-process storage backend.
func NewMemoryStorage() storage.IStorage {
	return &storeImpl{
		worlds:      xsync.NewMapOf[uint64, []byte](),
		users:       xsync.NewMapOf[uint64, []byte](),
		inventories: xsync.NewMapOf[uint64, []byte](),
		messages:    xsync.NewMapOf[uint64, []byte](),
	}
}

// --------------------------------------------------------------------------
// Encoding Helpers
// --------------------------------------------------------------------------

func save[T any](m *xsync.MapOf[uint64, []byte], id uint64, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return storage.NewError(storage.RetCInternalError, fmt.Sprintf("encode: %v", err))
	}
	m.Store(id, raw)
	return nil
}

func load[T any](m *xsync.MapOf[uint64, []byte], kind string, id uint64) (*T, error) {
	raw, ok := m.Load(id)
	if !ok {
		return nil, storage.NewNotFound(kind, id)
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, storage.NewError(storage.RetCInternalError, fmt.Sprintf("decode: %v", err))
	}
	return out, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see storage/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) LoadWorld(id uint64) (*game.World, error) {
	return load[game.World](s.worlds, "world", id)
}

func (s *storeImpl) SaveWorld(w *game.World) error {
	return save(s.worlds, w.ID, w)
}

func (s *storeImpl) LoadUser(id uint64) (*game.User, error) {
	return load[game.User](s.users, "user", id)
}

func (s *storeImpl) SaveUser(u *game.User) error {
	return save(s.users, u.ID, u)
}

func (s *storeImpl) LoadInventory(userID uint64) (*game.Inventory, error) {
	return load[game.Inventory](s.inventories, "inventory", userID)
}

func (s *storeImpl) SaveInventory(inv *game.Inventory) error {
	return save(s.inventories, inv.UserID, inv)
}

func (s *storeImpl) LoadMessage(id uint64) (*game.Message, error) {
	return load[game.Message](s.messages, "message", id)
}

func (s *storeImpl) LoadMessages(toID uint64) ([]*game.Message, error) {
	var out []*game.Message
	var rangeErr error
	s.messages.Range(func(id uint64, raw []byte) bool {
		msg := new(game.Message)
		if err := json.Unmarshal(raw, msg); err != nil {
			rangeErr = storage.NewError(storage.RetCInternalError, fmt.Sprintf("decode message %d: %v", id, err))
			return false
		}
		if msg.ToID == toID {
			out = append(out, msg)
		}
		return true
	})
	if rangeErr != nil {
		return nil, rangeErr
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *storeImpl) SaveMessage(m *game.Message) error {
	return save(s.messages, m.ID, m)
}

func (s *storeImpl) MaxMessageID() (uint64, error) {
	var max uint64
	s.messages.Range(func(id uint64, _ []byte) bool {
		if id > max {
			max = id
		}
		return true
	})
	return max, nil
}

func (s *storeImpl) Close() error {
	return nil
}
