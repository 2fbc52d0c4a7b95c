package serializer

import (
	"github.com/ValentinKolb/tKV/rpc/common"
	"reflect"
	"testing"
)

// testSerializers maps serializer names to factories, the shared tests and
// benchmarks run against every entry
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// roundTrip encodes msg and decodes it back, failing the test if either step errors
func roundTrip(t *testing.T, s IRPCSerializer, msg common.Message) common.Message {
	t.Helper()

	data, err := s.Serialize(msg)
	if err != nil {
		t.Fatalf("Failed to serialize %+v: %v", msg, err)
	}

	var result common.Message
	if err := s.Deserialize(data, &result); err != nil {
		t.Fatalf("Failed to deserialize %+v: %v", msg, err)
	}
	return result
}

func TestSerializerRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		msg  common.Message
	}{
		{
			name: "type only",
			msg:  common.Message{MsgType: common.MsgTSuccess},
		},
		{
			name: "set request",
			msg: common.Message{
				MsgType: common.MsgTKVSet,
				Key:     "test-key",
				Value:   []byte("test-value"),
			},
		},
		{
			name: "get response",
			msg: common.Message{
				MsgType: common.MsgTKVGet,
				Key:     "test-key",
				Value:   []byte("test-value"),
				Ok:      true,
				Found:   true,
			},
		},
		{
			// a path element that exists but holds no value
			name: "get response without value",
			msg: common.Message{
				MsgType: common.MsgTKVGet,
				Key:     "test-key",
				Ok:      true,
			},
		},
		{
			name: "error response with typed code",
			msg: common.Message{
				MsgType: common.MsgTError,
				Code:    2,
				Err:     "test error message",
			},
		},
		{
			name: "all fields",
			msg: common.Message{
				MsgType: common.MsgTKVInfo,
				Key:     "test-info-key",
				Value:   []byte("test-info-value"),
				Ok:      true,
				Found:   true,
				Code:    4,
				Err:     "test error",
				Meta:    []byte("test-meta-data"),
			},
		},
	}

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()
			for _, tc := range cases {
				t.Run(tc.name, func(t *testing.T) {
					result := roundTrip(t, s, tc.msg)
					if !reflect.DeepEqual(tc.msg, result) {
						t.Errorf("Message doesn't match after round trip:\nOriginal: %+v\nResult: %+v", tc.msg, result)
					}
				})
			}
		})
	}
}

// TestMessageTypes round-trips a bare message of every type. MsgTUnknown is
// left out on purpose, serializing it is a protocol violation.
func TestMessageTypes(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()
			for msgType := common.MsgTSuccess; msgType <= common.MsgTCustom; msgType++ {
				t.Run(msgType.String(), func(t *testing.T) {
					result := roundTrip(t, s, common.Message{MsgType: msgType})
					if result.MsgType != msgType {
						t.Errorf("Expected message type %s after round trip, got %s",
							msgType.String(), result.MsgType.String())
					}
				})
			}
		})
	}
}

// TestBinarySerializerSpecific covers the encodings the binary format has to
// get right by hand: zero values, absent fields and the difference between
// nil and empty byte slices.
func TestBinarySerializerSpecific(t *testing.T) {
	s := NewBinarySerializer()

	cases := []struct {
		name string
		msg  common.Message
	}{
		{
			name: "empty message",
			msg:  common.Message{},
		},
		{
			name: "empty strings and zero values",
			msg: common.Message{
				MsgType: common.MsgTKVSet,
				Key:     "",
				Value:   []byte{},
				Ok:      false,
				Found:   false,
				Code:    0,
				Err:     "",
				Meta:    []byte{},
			},
		},
		{
			name: "ok without key or value",
			msg: common.Message{
				MsgType: common.MsgTKVGet,
				Key:     "",
				Ok:      true,
				Value:   nil,
			},
		},
		{
			name: "found without value",
			msg: common.Message{
				MsgType: common.MsgTKVHas,
				Key:     "test",
				Ok:      true,
				Found:   true,
			},
		},
		{
			name: "code without error text",
			msg: common.Message{
				MsgType: common.MsgTError,
				Code:    3,
			},
		},
		{
			name: "empty but non-nil value",
			msg: common.Message{
				MsgType: common.MsgTKVSet,
				Key:     "test",
				Value:   []byte{},
			},
		},
		{
			name: "empty but non-nil meta",
			msg: common.Message{
				MsgType: common.MsgTCustom,
				Meta:    []byte{},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := roundTrip(t, s, tc.msg)

			// DeepEqual already distinguishes nil from empty slices, the
			// extra checks below just name the field when that breaks
			if (tc.msg.Value == nil) != (result.Value == nil) {
				t.Errorf("Value nil/non-nil mismatch: expected %v, got %v", tc.msg.Value, result.Value)
			}
			if (tc.msg.Meta == nil) != (result.Meta == nil) {
				t.Errorf("Meta nil/non-nil mismatch: expected %v, got %v", tc.msg.Meta, result.Meta)
			}
			if !reflect.DeepEqual(tc.msg, result) {
				t.Errorf("Message doesn't match after round trip:\nOriginal: %+v\nResult: %+v", tc.msg, result)
			}
		})
	}
}

// TestDeserializeTruncatedData feeds the binary serializer every strict
// prefix of a valid encoding, each must fail cleanly and never panic
func TestDeserializeTruncatedData(t *testing.T) {
	s := NewBinarySerializer()

	msg := common.Message{
		MsgType: common.MsgTKVSet,
		Key:     "truncation-test-key",
		Value:   []byte("truncation-test-value"),
	}

	data, err := s.Serialize(msg)
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}

	for cut := 0; cut < len(data); cut++ {
		var result common.Message
		if err := s.Deserialize(data[:cut], &result); err == nil {
			t.Errorf("Expected error for input truncated to %d bytes, got none", cut)
		}
	}
}
