package storage

import (
	"errors"
	"fmt"

	"github.com/tychodev/tycho/lib/game"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStorage is the persistence accessor consumed by the state layer. Loads
// return a freshly built object (never a reference shared with another
// caller) or a NotFound error; saves overwrite whatever is stored.
//
// Every method is only ever invoked inside a Database-rank acquisition, so
// implementations do not need to coordinate with the cache layer. They must
// still be safe for concurrent use: the Database rank serializes the callers
// of one state manager, not every user of the backend.
type IStorage interface {
	// LoadWorld returns the world with the given id.
	LoadWorld(id uint64) (*game.World, error)
	// SaveWorld inserts or overwrites a world.
	SaveWorld(w *game.World) error

	// LoadUser returns the user with the given id.
	LoadUser(id uint64) (*game.User, error)
	// SaveUser inserts or overwrites a user.
	SaveUser(u *game.User) error

	// LoadInventory returns the inventory owned by the given user.
	LoadInventory(userID uint64) (*game.Inventory, error)
	// SaveInventory inserts or overwrites an inventory.
	SaveInventory(inv *game.Inventory) error

	// LoadMessage returns the message with the given id.
	LoadMessage(id uint64) (*game.Message, error)
	// LoadMessages returns all messages addressed to the given user,
	// ordered by message id. An empty result is not an error.
	LoadMessages(toID uint64) ([]*game.Message, error)
	// SaveMessage inserts or overwrites a message.
	SaveMessage(m *game.Message) error
	// MaxMessageID returns the highest stored message id, or 0 when no
	// message is stored.
	MaxMessageID() (uint64, error)

	// Close releases the backend.
	Close() error
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the error type returned by all storage backends. It wraps a
// return code so the state layer can map a miss to a domain-level "not
// found" without string matching.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("StorageError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// NewNotFound creates the canonical miss error for a keyed load.
func NewNotFound(kind string, id uint64) *Error {
	return NewError(RetCNotFound, fmt.Sprintf("%s %d not found", kind, id))
}

// IsNotFound reports whether err is a storage miss. A miss is a normal,
// expected outcome, never a backend failure.
func IsNotFound(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == RetCNotFound
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess       RetCode = iota // 0: Operation executed successfully.
	RetCNotFound                     // 1: No object stored under the requested key.
	RetCInternalError                // 2: The backend failed.
)

// String returns the name of the return code.
func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCNotFound:
		return "NotFound"
	case RetCInternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}
