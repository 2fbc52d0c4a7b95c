package common

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/tKV/lib/db"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message is the one wire structure shared by every request and response.
// MsgType decides which of the remaining fields carry meaning.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Key   string `json:"key,omitempty"`   // Used for: Set, SetIfUnset, Get, Has, Delete
	Value []byte `json:"value,omitempty"` // Used for: Set, SetIfUnset (request), Get (response)

	// Response only fields
	Ok    bool   `json:"ok,omitempty"`    // True if the operation succeeded
	Found bool   `json:"found,omitempty"` // Used for: Get, Has responses
	Code  uint64 `json:"code,omitempty"`  // Typed db error code, only set if Err is set
	Err   string `json:"err,omitempty"`   // Empty if no error, otherwise contains the error message

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Used for: Info responses, custom Adapters
}

// applyError stores an error message and, if present, its typed code on a
// response message.
func applyError(msg *Message, err error) *Message {
	if err == nil {
		msg.Ok = true
		return msg
	}
	msg.Err = err.Error()
	if code, ok := db.CodeOf(err); ok {
		msg.Code = uint64(code)
	}
	return msg
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewSetRequest creates a new Set request
func NewSetRequest(key string, value []byte) *Message {
	return &Message{MsgType: MsgTKVSet, Key: key, Value: value}
}

// NewSetResponse creates a new Set response
func NewSetResponse(err error) *Message {
	return applyError(&Message{MsgType: MsgTKVSet}, err)
}

// NewSetIfUnsetRequest creates a new SetIfUnset request
func NewSetIfUnsetRequest(key string, value []byte) *Message {
	return &Message{MsgType: MsgTKVSetIfUnset, Key: key, Value: value}
}

// NewSetIfUnsetResponse creates a new SetIfUnset response
func NewSetIfUnsetResponse(err error) *Message {
	return applyError(&Message{MsgType: MsgTKVSetIfUnset}, err)
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(key string) *Message {
	return &Message{MsgType: MsgTKVDelete, Key: key}
}

// NewDeleteResponse creates a new Delete response
func NewDeleteResponse(err error) *Message {
	return applyError(&Message{MsgType: MsgTKVDelete}, err)
}

// NewGetRequest creates a new Get request
func NewGetRequest(key string) *Message {
	return &Message{MsgType: MsgTKVGet, Key: key}
}

// NewGetResponse creates a new Get response. Found reports whether the key
// held a value; a response with neither a value nor an error describes an
// existing path element without a value.
func NewGetResponse(value []byte, found bool, err error) *Message {
	return applyError(&Message{MsgType: MsgTKVGet, Found: found, Value: value}, err)
}

// NewHasRequest creates a new Has request
func NewHasRequest(key string) *Message {
	return &Message{MsgType: MsgTKVHas, Key: key}
}

// NewHasResponse creates a new Has response
func NewHasResponse(found bool, err error) *Message {
	return applyError(&Message{MsgType: MsgTKVHas, Found: found}, err)
}

// NewInfoRequest creates a new Info request
func NewInfoRequest() *Message {
	return &Message{MsgType: MsgTKVInfo}
}

// NewInfoResponse creates a new Info response. The meta payload carries the
// JSON encoded db.DatabaseInfo of the addressed store.
func NewInfoResponse(meta []byte, err error) *Message {
	return applyError(&Message{MsgType: MsgTKVInfo, Meta: meta}, err)
}

// NewCustomRequest creates a new Custom request
func NewCustomRequest(meta []byte) *Message {
	return &Message{MsgType: MsgTCustom, Meta: meta}
}

// NewCustomResponse creates a new Custom response
func NewCustomResponse(meta []byte, err error) *Message {
	return applyError(&Message{MsgType: MsgTCustom, Meta: meta}, err)
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{MsgType: MsgTError, Err: err}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType tags a Message with the operation it belongs to.
type MessageType uint8

func (t MessageType) String() string {
	switch t {
	case MsgTKVSet:
		return "set"
	case MsgTKVSetIfUnset:
		return "setIfUnset"
	case MsgTKVDelete:
		return "delete"
	case MsgTKVGet:
		return "get"
	case MsgTKVHas:
		return "has"
	case MsgTKVInfo:
		return "info"
	case MsgTCustom:
		return "custom"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the type as its string name, which keeps JSON
// serialized messages readable.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses the string name back into a MessageType.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "set":
		*t = MsgTKVSet
	case "setIfUnset":
		*t = MsgTKVSetIfUnset
	case "delete":
		*t = MsgTKVDelete
	case "get":
		*t = MsgTKVGet
	case "has":
		*t = MsgTKVHas
	case "info":
		*t = MsgTKVInfo
	case "custom":
		*t = MsgTCustom
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// IStore operations

	MsgTKVSet         // Set a key-value pair
	MsgTKVSetIfUnset  // Set a key-value pair if the key holds no value yet
	MsgTKVDelete      // Delete a key-value pair (or a whole subtree)
	MsgTKVGet         // Get a value by key
	MsgTKVHas         // Check if a key holds a value
	MsgTKVInfo        // Fetch metadata about the addressed store

	// Custom operations

	MsgTCustom // Custom operation type
)
