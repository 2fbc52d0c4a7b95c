package serializer

import (
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/tKV/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present.
// The boolean fields Ok and Found carry their value in the flag itself,
// a set flag means true and no extra payload byte is written.
const (
	hasKey   byte = 1 << 0
	hasValue byte = 1 << 1
	hasOk    byte = 1 << 2
	hasFound byte = 1 << 3
	hasCode  byte = 1 << 4
	hasErr   byte = 1 << 5
	hasMeta  byte = 1 << 6
)

// Wire layout: 1 byte message type, 1 byte flags, then the present fields
// in fixed order (key, value, code, err, meta). Strings and byte fields are
// length-prefixed with 4 bytes big endian, code is 8 bytes big endian.

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// exact preallocation, the appends below never grow the buffer
	buf := make([]byte, 2, b.encodedSize(msg))
	buf[0] = byte(msg.MsgType)

	var flags byte

	if msg.Key != "" {
		flags |= hasKey
		buf = appendString(buf, msg.Key)
	}

	if msg.Value != nil {
		flags |= hasValue
		buf = appendBytes(buf, msg.Value)
	}

	if msg.Ok {
		flags |= hasOk
	}
	if msg.Found {
		flags |= hasFound
	}

	if msg.Code != 0 {
		flags |= hasCode
		buf = binary.BigEndian.AppendUint64(buf, msg.Code)
	}

	if msg.Err != "" {
		flags |= hasErr
		buf = appendString(buf, msg.Err)
	}

	if msg.Meta != nil {
		flags |= hasMeta
		buf = appendBytes(buf, msg.Meta)
	}

	buf[1] = flags
	return buf, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	msg.MsgType = common.MessageType(data[0])
	flags := data[1]
	r := fieldReader{data: data, pos: 2}

	// absent fields reset their slot in msg, so the same message struct
	// can be reused across calls

	msg.Key = ""
	if flags&hasKey != 0 {
		raw, err := r.next("key")
		if err != nil {
			return err
		}
		msg.Key = string(raw)
	}

	if flags&hasValue != 0 {
		raw, err := r.next("value")
		if err != nil {
			return err
		}
		msg.Value = copyInto(msg.Value, raw)
	} else {
		msg.Value = nil
	}

	msg.Ok = flags&hasOk != 0
	msg.Found = flags&hasFound != 0

	msg.Code = 0
	if flags&hasCode != 0 {
		code, err := r.code()
		if err != nil {
			return err
		}
		msg.Code = code
	}

	msg.Err = ""
	if flags&hasErr != 0 {
		raw, err := r.next("error")
		if err != nil {
			return err
		}
		msg.Err = string(raw)
	}

	if flags&hasMeta != 0 {
		raw, err := r.next("meta")
		if err != nil {
			return err
		}
		msg.Meta = copyInto(msg.Meta, raw)
	} else {
		msg.Meta = nil
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// encodedSize calculates the total size needed for serialization
func (b binarySerializerImpl) encodedSize(msg common.Message) int {
	size := 2 // message type + flags

	if msg.Key != "" {
		size += 4 + len(msg.Key)
	}
	if msg.Value != nil {
		size += 4 + len(msg.Value)
	}
	if msg.Code != 0 {
		size += 8
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta)
	}

	return size
}

// appendBytes writes a 4 byte big endian length followed by the raw bytes
func appendBytes(buf, p []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(p)))
	return append(buf, p...)
}

// appendString writes a string the same way without converting it first
func appendString(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// copyInto copies src into dst, reusing dst's backing array when possible.
// The result is never nil, so a present-but-empty field stays
// distinguishable from an absent one.
func copyInto(dst, src []byte) []byte {
	if dst == nil || cap(dst) < len(src) {
		dst = make([]byte, len(src))
	} else {
		dst = dst[:len(src)]
	}
	copy(dst, src)
	return dst
}

// fieldReader walks the encoded fields and bounds-checks every access, a
// truncated frame reports which field it was cut off in
type fieldReader struct {
	data []byte
	pos  int
}

// next reads one length-prefixed field and returns a view into the data
func (r *fieldReader) next(what string) ([]byte, error) {
	if r.pos+4 > len(r.data) {
		return nil, fmt.Errorf("data too short for %s length", what)
	}
	n := int(binary.BigEndian.Uint32(r.data[r.pos : r.pos+4]))
	r.pos += 4

	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("data too short for %s data", what)
	}
	field := r.data[r.pos : r.pos+n]
	r.pos += n
	return field, nil
}

// code reads the fixed width status code field
func (r *fieldReader) code() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, fmt.Errorf("data too short for code")
	}
	v := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}
