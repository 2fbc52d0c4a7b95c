// Package serializer encodes RPC messages for transport between the
// key-value store's clients and servers. One interface, three wire formats,
// chosen per deployment via configuration.
//
// Key Components:
//
//   - IRPCSerializer: the interface every format implements. Deserialize
//     takes the target message as a pointer so callers can reuse one struct
//     across calls.
//
//   - binarySerializerImpl: hand-rolled binary format. A flags byte records
//     which fields are present, booleans live directly in their flag bit and
//     everything else is length-prefixed. Produces the smallest frames and
//     the fewest allocations of the three.
//
//   - jsonSerializerImpl: standard library JSON. Human-readable frames,
//     handy when debugging a deployment with tcpdump or curl against the
//     HTTP transport.
//
//   - gobSerializerImpl: Go's gob encoding. Kept for completeness and
//     comparison benchmarks, it is both slower and larger than the binary
//     format here because every frame carries its own type information.
//
// Choosing a format:
//
//	The binary serializer is the default recommendation for production, it
//	outperforms the others on every message shape in the package benchmarks.
//	JSON trades speed for inspectability. GOB exists as a baseline and has
//	no deployment where it wins.
//
// Thread Safety:
//
//	All implementations are stateless, a single serializer instance may be
//	shared freely between goroutines.
//
// Usage:
//
//	  s := serializer.NewBinarySerializer()
//	  data, err := s.Serialize(message)
//	  // ... send data ...
//	  var reply common.Message
//	  err = s.Deserialize(received, &reply)
package serializer
