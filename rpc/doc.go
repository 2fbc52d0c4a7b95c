// Package rpc makes a store usable over a network. A client side speaks the
// same store.IStore interface as a local store, so callers never notice
// whether the data lives in-process or behind a socket.
//
// Subpackages:
//
//   - common: the Message type every request and response is built from,
//     plus configuration and logging shared by both sides.
//
//   - serializer: converts Messages to bytes and back, in a binary format,
//     JSON or GOB.
//
//   - transport: moves those bytes, over HTTP, TCP or Unix sockets.
//
//   - client: the store.IStore implementation that turns method calls into
//     request messages.
//
//   - server: accepts requests and applies them to a local store via a
//     message adapter.
package rpc
