package base

import (
	"encoding/binary"
	"io"
	"net"
)

// Frame layout on the wire, all integers big endian:
//
//	8 bytes  storeID
//	8 bytes  requestID
//	4 bytes  payload length
//	N bytes  payload
const frameHeaderLen = 20

// writeFrame sends one frame. Header and payload go out in a single
// writev call so a frame is never interleaved with another writer's data
// at the syscall level.
func writeFrame(conn net.Conn, storeID, requestID uint64, payload []byte) error {
	var header [frameHeaderLen]byte
	binary.BigEndian.PutUint64(header[0:8], storeID)
	binary.BigEndian.PutUint64(header[8:16], requestID)
	binary.BigEndian.PutUint32(header[16:20], uint32(len(payload)))

	buffers := net.Buffers{header[:], payload}
	_, err := buffers.WriteTo(conn)
	return err
}

// readFrame reads one frame into buf and returns the payload as a slice of
// it. Frames larger than buf fall back to a one-off allocation, so callers
// can reuse pooled buffers sized for the common case.
func readFrame(conn net.Conn, buf []byte) (uint64, uint64, []byte, error) {
	if len(buf) < frameHeaderLen {
		buf = make([]byte, frameHeaderLen)
	}

	if _, err := io.ReadFull(conn, buf[:frameHeaderLen]); err != nil {
		return 0, 0, nil, err
	}

	storeID := binary.BigEndian.Uint64(buf[0:8])
	requestID := binary.BigEndian.Uint64(buf[8:16])
	size := binary.BigEndian.Uint32(buf[16:20])

	if size == 0 {
		return storeID, requestID, []byte{}, nil
	}

	if len(buf) < int(size) {
		buf = make([]byte, size)
	}
	if _, err := io.ReadFull(conn, buf[:size]); err != nil {
		return 0, 0, nil, err
	}

	return storeID, requestID, buf[:size], nil
}
