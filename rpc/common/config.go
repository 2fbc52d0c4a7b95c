package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Shared transport tuning structs (embedded in server and client configs)
// --------------------------------------------------------------------------

// SocketConf holds socket buffer settings shared by all stream based
// transports (tcp, unix)
type SocketConf struct {
	// WriteBufferSize is the size of the socket write buffer in bytes (0 = OS default)
	WriteBufferSize int
	// ReadBufferSize is the size of the socket read buffer in bytes (0 = OS default)
	ReadBufferSize int
}

// TCPConf holds tuning settings that only apply to tcp connections
type TCPConf struct {
	// TCPKeepAliveSec is the keep-alive interval in seconds (0 = disabled)
	TCPKeepAliveSec int
	// TCPLingerSec is the linger time in seconds on close
	TCPLingerSec int
	// TCPNoDelay disables Nagle's algorithm if set to true
	TCPNoDelay bool
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

type ServerStoreType string

const (
	// StoreTypePlain is a plain local store
	StoreTypePlain ServerStoreType = "store"
	// StoreTypeObserved is a local store whose database is wrapped with the
	// hooks package so that every operation is counted and timed
	StoreTypeObserved ServerStoreType = "observed store"
)

// ServerStore configures a single store served by the RPC server
type ServerStore struct {
	// StoreID is the ID under which clients address the store
	StoreID uint64
	// Type decides how the store is assembled on startup
	Type ServerStoreType
}

// ServerTransportConfig holds the transport tuning options of the server
type ServerTransportConfig struct {
	SocketConf
	TCPConf
}

// ServerConfig holds all configuration parameters for the RPC server.
type ServerConfig struct {
	// Stores is the list of stores this server hosts
	Stores []ServerStore

	// Engine parameters
	Delimiter   string
	MaxMemoryMB uint64

	// RPC settings
	Endpoint      string
	TimeoutSecond int64

	// Logging configuration
	LogLevel string
	LogJSON  bool

	// MetricsEndpoint is the optional address for the prometheus scrape
	// endpoint ("" = disabled)
	MetricsEndpoint string

	// Transport tuning
	Transport ServerTransportConfig
}

// HasObservedStore checks if the configuration contains any observed stores
func (c *ServerConfig) HasObservedStore() bool {
	for _, s := range c.Stores {
		if s.Type == StoreTypeObserved {
			return true
		}
	}
	return false
}

// HasMetricsEndpoint checks if a prometheus scrape endpoint is configured
func (c *ServerConfig) HasMetricsEndpoint() bool {
	return c.MetricsEndpoint != ""
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	// Engine parameters
	addSection("Engine")
	addField("Delimiter", c.Delimiter)
	if c.MaxMemoryMB > 0 {
		addField("Max Memory", fmt.Sprintf("%d MB", c.MaxMemoryMB))
	} else {
		addField("Max Memory", "unlimited")
	}

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)
	addField("JSON Output", fmt.Sprintf("%t", c.LogJSON))

	// Metrics configuration
	if c.HasMetricsEndpoint() {
		addSection("Metrics")
		addField("Endpoint", c.MetricsEndpoint)
	}

	// Stores
	addSection("Stores")
	for _, s := range c.Stores {
		addField(strconv.FormatUint(s.StoreID, 10), string(s.Type))
	}

	// Transport tuning
	addSection("Transport")
	if c.Transport.WriteBufferSize > 0 {
		addField("Write Buffer", fmt.Sprintf("%d bytes", c.Transport.WriteBufferSize))
	}
	if c.Transport.ReadBufferSize > 0 {
		addField("Read Buffer", fmt.Sprintf("%d bytes", c.Transport.ReadBufferSize))
	}
	addField("TCP No Delay", fmt.Sprintf("%t", c.Transport.TCPNoDelay))
	addField("TCP Keep Alive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))
	addField("TCP Linger", fmt.Sprintf("%d sec", c.Transport.TCPLingerSec))

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientTransportConfig holds the transport options of the client
type ClientTransportConfig struct {
	// Endpoints is the list of server addresses the client connects to
	Endpoints []string
	// ConnectionsPerEndpoint is the number of parallel connections the
	// client opens per endpoint (for transports that support this)
	ConnectionsPerEndpoint int
	// RetryCount is how often a request is retried before giving up
	RetryCount int

	SocketConf
	TCPConf
}

type ClientConfig struct {
	// TimeoutSecond is the timeout for a single request in seconds
	TimeoutSecond int

	// Transport tuning
	Transport ClientTransportConfig
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.Transport.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(int(math.Max(1, float64(c.Transport.ConnectionsPerEndpoint)))))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Transport.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
