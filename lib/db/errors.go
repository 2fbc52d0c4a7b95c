package db

import "fmt"

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCInvalidKey:
		errorCode = "InvalidKey"
	case RetCKeyNotFound:
		errorCode = "KeyNotFound"
	case RetCOutOfMemory:
		errorCode = "OutOfMemory"
	case RetCNotInitialized:
		errorCode = "NotInitialized"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("KVDBError (code %s): %s", errorCode, e.Msg)
}

// NewError creates a new KVDBError with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// CodeOf extracts the return code from an error returned by a KVDB.
// It returns RetCSuccess for a nil error and ok=false if the error was not
// created by this package.
func CodeOf(err error) (code RetCode, ok bool) {
	if err == nil {
		return RetCSuccess, true
	}
	if e, isDBError := err.(*Error); isDBError {
		return e.Code, true
	}
	return RetCSuccess, false
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess        RetCode = iota // 0: Command executed successfully.
	RetCInvalidKey                    // 1: Command failed because the key is malformed.
	RetCKeyNotFound                   // 2: Command failed because the key does not resolve.
	RetCOutOfMemory                   // 3: Command failed because the memory budget is exhausted.
	RetCNotInitialized                // 4: Command failed because the database is not initialized.
)
