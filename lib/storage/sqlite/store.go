package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tychodev/tycho/lib/game"
	"github.com/tychodev/tycho/lib/storage"

	_ "modernc.org/sqlite"
)

// Schema is idempotent so Open can run it unconditionally.
const schema = `
CREATE TABLE IF NOT EXISTS worlds (
	id     INTEGER PRIMARY KEY,
	tick   INTEGER NOT NULL,
	ships  TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS users (
	id         INTEGER PRIMARY KEY,
	name       TEXT    NOT NULL,
	experience INTEGER NOT NULL,
	level      INTEGER NOT NULL,
	research   TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS inventories (
	user_id INTEGER PRIMARY KEY,
	items   TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	id      INTEGER PRIMARY KEY,
	from_id INTEGER NOT NULL,
	to_id   INTEGER NOT NULL,
	body    TEXT    NOT NULL,
	was_read INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS messages_to_id ON messages (to_id);
`

type storeImpl struct {
	db *sql.DB
}

// NewSQLiteStorage opens (and if necessary bootstraps) a SQLite backend at
// the given path. WAL journaling keeps concurrent readers cheap.
func NewSQLiteStorage(path string) (storage.IStorage, error) {
	if path == "" {
		return nil, storage.NewError(storage.RetCInternalError, "sqlite path is required")
	}

	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, storage.NewError(storage.RetCInternalError, fmt.Sprintf("open sqlite db: %v", err))
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, storage.NewError(storage.RetCInternalError, fmt.Sprintf("ping sqlite db: %v", err))
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, storage.NewError(storage.RetCInternalError, fmt.Sprintf("bootstrap schema: %v", err))
	}

	return &storeImpl{db: db}, nil
}

// --------------------------------------------------------------------------
// Encoding Helpers
// --------------------------------------------------------------------------

func encode(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", storage.NewError(storage.RetCInternalError, fmt.Sprintf("encode: %v", err))
	}
	return string(raw), nil
}

func decode(raw string, out any) error {
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return storage.NewError(storage.RetCInternalError, fmt.Sprintf("decode: %v", err))
	}
	return nil
}

func internalf(format string, args ...any) error {
	return storage.NewError(storage.RetCInternalError, fmt.Sprintf(format, args...))
}

// --------------------------------------------------------------------------
// Interface Methods (docu see storage/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) LoadWorld(id uint64) (*game.World, error) {
	var tick uint64
	var ships string
	err := s.db.QueryRow(`SELECT tick, ships FROM worlds WHERE id = ?`, id).Scan(&tick, &ships)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NewNotFound("world", id)
	}
	if err != nil {
		return nil, internalf("load world %d: %v", id, err)
	}

	w := &game.World{ID: id, Tick: tick}
	if err := decode(ships, &w.Ships); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *storeImpl) SaveWorld(w *game.World) error {
	ships, err := encode(w.Ships)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO worlds (id, tick, ships) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET tick = excluded.tick, ships = excluded.ships`,
		w.ID, w.Tick, ships)
	if err != nil {
		return internalf("save world %d: %v", w.ID, err)
	}
	return nil
}

func (s *storeImpl) LoadUser(id uint64) (*game.User, error) {
	u := &game.User{ID: id}
	var research string
	err := s.db.QueryRow(`SELECT name, experience, level, research FROM users WHERE id = ?`, id).
		Scan(&u.Name, &u.Experience, &u.Level, &research)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NewNotFound("user", id)
	}
	if err != nil {
		return nil, internalf("load user %d: %v", id, err)
	}
	if err := decode(research, &u.Research); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *storeImpl) SaveUser(u *game.User) error {
	research, err := encode(u.Research)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO users (id, name, experience, level, research) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, experience = excluded.experience,
			level = excluded.level, research = excluded.research`,
		u.ID, u.Name, u.Experience, u.Level, research)
	if err != nil {
		return internalf("save user %d: %v", u.ID, err)
	}
	return nil
}

func (s *storeImpl) LoadInventory(userID uint64) (*game.Inventory, error) {
	var items string
	err := s.db.QueryRow(`SELECT items FROM inventories WHERE user_id = ?`, userID).Scan(&items)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NewNotFound("inventory", userID)
	}
	if err != nil {
		return nil, internalf("load inventory %d: %v", userID, err)
	}

	inv := &game.Inventory{UserID: userID}
	if err := decode(items, &inv.Items); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *storeImpl) SaveInventory(inv *game.Inventory) error {
	items, err := encode(inv.Items)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO inventories (user_id, items) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET items = excluded.items`,
		inv.UserID, items)
	if err != nil {
		return internalf("save inventory %d: %v", inv.UserID, err)
	}
	return nil
}

func (s *storeImpl) LoadMessage(id uint64) (*game.Message, error) {
	m := &game.Message{ID: id}
	err := s.db.QueryRow(`SELECT from_id, to_id, body, was_read FROM messages WHERE id = ?`, id).
		Scan(&m.FromID, &m.ToID, &m.Body, &m.Read)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NewNotFound("message", id)
	}
	if err != nil {
		return nil, internalf("load message %d: %v", id, err)
	}
	return m, nil
}

func (s *storeImpl) LoadMessages(toID uint64) ([]*game.Message, error) {
	rows, err := s.db.Query(`
		SELECT id, from_id, to_id, body, was_read FROM messages
		WHERE to_id = ? ORDER BY id`, toID)
	if err != nil {
		return nil, internalf("load messages for %d: %v", toID, err)
	}
	defer rows.Close()

	var out []*game.Message
	for rows.Next() {
		m := &game.Message{}
		if err := rows.Scan(&m.ID, &m.FromID, &m.ToID, &m.Body, &m.Read); err != nil {
			return nil, internalf("scan message: %v", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, internalf("iterate messages: %v", err)
	}
	return out, nil
}

func (s *storeImpl) SaveMessage(m *game.Message) error {
	_, err := s.db.Exec(`
		INSERT INTO messages (id, from_id, to_id, body, was_read) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			from_id = excluded.from_id, to_id = excluded.to_id,
			body = excluded.body, was_read = excluded.was_read`,
		m.ID, m.FromID, m.ToID, m.Body, m.Read)
	if err != nil {
		return internalf("save message %d: %v", m.ID, err)
	}
	return nil
}

func (s *storeImpl) MaxMessageID() (uint64, error) {
	var max uint64
	err := s.db.QueryRow(`SELECT COALESCE(MAX(id), 0) FROM messages`).Scan(&max)
	if err != nil {
		return 0, internalf("max message id: %v", err)
	}
	return max, nil
}

func (s *storeImpl) Close() error {
	return s.db.Close()
}
