// Package base contains the protocol-independent core shared by all stream
// transports. A concrete transport (TCP, Unix sockets) only supplies a small
// connector that knows how to dial or listen; everything else lives here.
//
// What the package handles:
//   - Binary framing: every message travels as a 20 byte header (storeID,
//     requestID, payload length) followed by the payload.
//   - Response correlation: the client tags each request with a unique ID and
//     matches incoming frames back to the waiting caller, so a single
//     connection can carry many requests at once.
//   - Retries and transparent reconnects on the client side.
//   - A per-connection worker pool on the server side that bounds how many
//     requests one connection may process concurrently.
//
// Key Components:
//
//   - IClientConnector/IServerConnector: the two interfaces a protocol
//     implementation must satisfy.
//
//   - clientTransport: maintains one or more connections per endpoint and
//     spreads requests over them round-robin. More connections per endpoint
//     help with large payloads; for small messages a single connection is
//     usually faster because there is less bookkeeping.
//
//   - serverTransport: accepts connections, reads frames and dispatches them
//     to the registered handler keyed by storeID.
//
// The hot paths avoid allocations where they can: the server recycles read
// buffers through a sync.Pool, and frames are written with net.Buffers so
// header and payload go out in one syscall.
//
// Thread Safety:
//
//	All exported methods may be called concurrently. Writes to a shared
//	connection are serialized with a mutex; everything else relies on
//	atomics or per-connection goroutines.
package base
