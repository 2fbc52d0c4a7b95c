// Package unix provides a Unix domain socket transport for the RPC layer,
// intended for clients and servers that share a machine.
//
// The package contributes only the socket-specific pieces (dialing, listening
// and buffer tuning). Framing, request correlation, worker pools and
// reconnects all come from the base package.
//
// Key Components:
//
//   - clientConnector: dials the server's socket file
//
//   - serverConnector: binds the socket file and accepts connections
//
// Compared to TCP, a Unix socket skips the network stack entirely, which
// lowers both latency and per-message CPU cost. The default buffer size is
// 64 KB, a good fit for local traffic.
package unix
