package store

import (
	"fmt"

	"github.com/ValentinKolb/tKV/lib/db"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// DBFactory builds the database a store will run on. Stores take a factory
// instead of a finished instance so engine selection stays with the caller.
// The returned database must not be initialized, the store manages its lifecycle.
type DBFactory func() db.KVDB

// IStore is the generic interface for interacting with a key–value store.
// All write operations return only an error (nil on success), while read
// operations return the requested data along with an error (nil on success).
//
// Errors from the underlying database are passed through unchanged, so
// callers can inspect their typed codes via db.CodeOf. Store-level errors
// (e.g. unsupported operations) are of type *Error.
type IStore interface {
	// Set inserts or updates a key–value pair.
	Set(key string, value []byte) (err error)
	// SetIfUnset inserts a key–value pair if the key does not hold a value yet.
	// If the key already holds a value, the old value is not updated.
	// No error is returned if the key already exists.
	SetIfUnset(key string, value []byte) (err error)
	// Delete deletes a key–value pair. For hierarchical keys the whole
	// subtree below the key is removed as well.
	Delete(key string) (err error)
	// Get returns the value for a key. The boolean return value indicates whether
	// a value for the key was found. A nil error with loaded=false means the key
	// addresses an existing path element that holds no value.
	Get(key string) (value []byte, loaded bool, err error)
	// Has returns whether a key currently holds a value.
	Has(key string) (loaded bool, err error)
	// GetDBInfo returns metadata about the database underlying the store.
	// It is not guaranteed that all fields are filled in or that the information is up-to-date!
	GetDBInfo() (info db.DatabaseInfo, err error)
	// Close tears down the underlying database and releases its storage.
	Close() (err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error pairs a RetCode with a message so callers can branch on the code
// instead of parsing error strings.
type Error struct {
	Code RetCode
	Msg  string
}

func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCInternalError:
		errorCode = "InternalError"
	case RetCUnsupportedOperation:
		errorCode = "UnsupportedOperation"
	case RetCInvalidOperation:
		errorCode = "InvalidOperation"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("KVStoreError (code %s): %s", errorCode, e.Msg)
}

// NewError returns an *Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // operation succeeded
	RetCInternalError                       // failure inside the store or its database
	RetCUnsupportedOperation                // the underlying database cannot serve this operation
	RetCInvalidOperation                    // the request itself was malformed
)
