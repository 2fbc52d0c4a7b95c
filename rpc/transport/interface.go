package transport

import (
	"github.com/ValentinKolb/tKV/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc processes one raw request addressed to a store and
// returns the raw response. The transport calls it for every frame it
// receives, possibly from many goroutines at once.
type ServerHandleFunc func(storeID uint64, req []byte) (resp []byte)

// IRPCServerTransport accepts connections and feeds incoming requests to
// the registered handler
type IRPCServerTransport interface {
	// RegisterHandler sets the function requests are dispatched to. Must be
	// called before Listen.
	RegisterHandler(handler ServerHandleFunc)
	// Listen binds the configured endpoint and serves until it fails
	Listen(config common.ServerConfig) error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport sends requests to a server and returns its responses
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration
	Connect(config common.ClientConfig) error
	// Send sends a request to the server and returns the response
	Send(storeID uint64, req []byte) (resp []byte, err error)
	// Close closes the transport connection
	Close() error
}
