package lock

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the error type returned by all locking operations. It wraps a
// return code (of type RetCode) so callers can distinguish the failure modes
// programmatically instead of matching on the message.
type Error struct {
	Code RetCode // The return code
	Rank Rank    // The rank the failed operation was about
	Msg  string  // The error message
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("LockError (code %s, rank %s): %s", e.Code, e.Rank, e.Msg)
}

// NewError creates a new Error with the given code, rank and message.
func NewError(code RetCode, rank Rank, msg string) *Error {
	return &Error{
		Code: code,
		Rank: rank,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess           RetCode = iota // 0: Operation executed successfully.
	RetCOrderingViolation                // 1: Rank is <= the highest rank already held.
	RetCAlreadyHeld                      // 2: Rank is already part of the context.
	RetCRankNotHeld                      // 3: An unsafe accessor was called without proof of the required rank.
	RetCUnknown                          // 4: Not an error of this package.
)

// String returns the name of the return code.
func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCOrderingViolation:
		return "OrderingViolation"
	case RetCAlreadyHeld:
		return "AlreadyHeld"
	case RetCRankNotHeld:
		return "RankNotHeld"
	default:
		return "Unknown"
	}
}

// CodeOf returns the RetCode of an error produced by this package. It
// returns RetCSuccess for a nil error and RetCUnknown for a foreign one.
// Both acquisition failures are programmer errors: they indicate a call-site
// bug in lock sequencing and must never be retried or swallowed.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return RetCUnknown
}
