// Package transport declares the contract between the RPC layer and the
// wire. A transport moves opaque byte slices between client and server; it
// never looks inside them, so serialization and transport can be swapped
// independently.
//
// Key Components:
//
//   - IRPCClientTransport: connects to one or more endpoints and sends
//     requests, returning the raw response bytes.
//
//   - IRPCServerTransport: listens for requests and passes each one, along
//     with its target store ID, to a registered ServerHandleFunc.
//
// Concrete implementations live in the http, tcp and unix subpackages.
package transport
