// Package tcp is the TCP flavour of the stream transport. It plugs TCP
// dialing and listening into the base package, which supplies framing,
// correlation, retries and the server worker pool.
//
// Key Components:
//
//   - clientConnector: base.IClientConnector over net.Dial
//
//   - serverConnector: base.IServerConnector over net.Listen
//
// When a connection comes up, both sides apply the configured socket tuning:
// read/write buffer sizes, TCP_NODELAY, keep-alive and linger. The default
// server read buffer is 512 KB; workloads with very large values may want
// more.
package tcp
