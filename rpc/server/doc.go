// Package server hosts one or more stores behind an RPC transport.
//
// A server owns the stores it serves: on startup it builds each configured
// store together with its engine, registers a handler with the transport,
// and from then on every incoming message is deserialized, applied to the
// matching store and answered. Request handling never returns an error to
// the transport; failures travel back to the client inside the response
// message.
//
// Key Components:
//
//   - IRPCServerAdapter: translates a request Message into calls on a
//     store.IStore and builds the response. NewIStoreServerAdapter returns
//     the standard implementation.
//
//   - NewRPCServer: assembles config, transport and serializer into a
//     runnable server.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Stores: []common.ServerStore{
//	    {StoreID: 100, Type: common.StoreTypePlain},
//	    {StoreID: 200, Type: common.StoreTypeObserved},
//	  },
//	  Endpoint: "0.0.0.0:8080",
//	  TimeoutSecond: 5,
//	  LogLevel: "info",
//	}
//
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPDefaultServerTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Stores come in two flavours that can be mixed freely within one server:
// StoreTypePlain wires the engine in directly, while StoreTypeObserved
// wraps it with lifecycle hooks that count operations and record latencies.
// With MetricsEndpoint set, those numbers are published in Prometheus
// format.
//
// Thread Safety:
//
//	Requests are handled concurrently and independently. Serve blocks and
//	must only be called once per server.
package server
