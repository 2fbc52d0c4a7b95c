package base

import (
	"fmt"
	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/ValentinKolb/tKV/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

var Logger = common.GetLogger("transport/rpc")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection based on the provided configuration
	Connect(endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// pendingReply carries one response frame (or read error) to the request
// waiting for it
type pendingReply struct {
	payload []byte
	err     error
}

// clientConnection is one socket plus the table of requests in flight on it.
// Multiple requests share the socket, responses are matched back to their
// callers via the requestID echoed by the server.
type clientConnection struct {
	conn     net.Conn
	endpoint string
	stopCh   chan struct{}
	pending  *xsync.MapOf[uint64, chan pendingReply]
	writeMu  sync.Mutex
	parent   *clientTransport
}

// clientTransport implements the frame loop shared by all socket transports,
// fanning requests out over a pool of connections
type clientTransport struct {
	connector     IClientConnector
	config        common.ClientConfig
	connections   []*clientConnection
	connectionsMu sync.RWMutex
	nextConnIndex uint64 // round robin counter
	nextRequestID uint64
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		connector:     connector,
		nextRequestID: 1,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if len(config.Transport.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	t.config = config

	// drop whatever a previous Connect left behind
	t.closeConnections()

	connectionsPerEP := 1
	if config.Transport.ConnectionsPerEndpoint > 0 {
		connectionsPerEP = config.Transport.ConnectionsPerEndpoint
	}

	t.connections = make([]*clientConnection, 0, len(config.Transport.Endpoints)*connectionsPerEP)

	for _, endpoint := range config.Transport.Endpoints {
		for i := 0; i < connectionsPerEP; i++ {
			conn, err := t.openConnection(endpoint)
			if err != nil {
				Logger.Warningf("Failed to connect to %s (connection %d/%d): %v", endpoint, i+1, connectionsPerEP, err)
				continue
			}

			t.connectionsMu.Lock()
			t.connections = append(t.connections, conn)
			t.connectionsMu.Unlock()

			Logger.Infof("Connected to %s (connection %d/%d)", endpoint, i+1, connectionsPerEP)
		}
	}

	if len(t.connections) == 0 {
		return fmt.Errorf("failed to connect to any endpoint")
	}

	Logger.Infof("Connected to %d out of %d connections to %d endpoints using %s transport",
		len(t.connections), len(config.Transport.Endpoints)*connectionsPerEP, len(config.Transport.Endpoints), t.connector.GetName())

	return nil
}

func (t *clientTransport) Send(storeID uint64, req []byte) ([]byte, error) {
	requestID := atomic.AddUint64(&t.nextRequestID, 1)

	maxAttempts := t.config.Transport.RetryCount
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	backoffMs := 50

	for attempt := 0; attempt < maxAttempts; attempt++ {
		conn := t.pickConnection()
		if conn == nil {
			return nil, fmt.Errorf("no active connections available")
		}

		data, err := conn.roundTrip(storeID, requestID, req, t.timeout())
		if err == nil {
			return data, nil
		}

		lastErr = err
		Logger.Debugf("Request attempt %d/%d failed: %v", attempt+1, maxAttempts, err)

		// exponential backoff with +-10% jitter, no sleep after the
		// final attempt
		if attempt < maxAttempts-1 {
			jitter := float64(backoffMs) * (0.9 + 0.2*rand.Float64())
			time.Sleep(time.Duration(jitter) * time.Millisecond)
			backoffMs *= 2
		}
	}

	return nil, fmt.Errorf("failed to send request after %d attempts: %v", maxAttempts, lastErr)
}

func (t *clientTransport) Close() error {
	t.closeConnections()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// timeout returns the configured request timeout, zero means no timeout
func (t *clientTransport) timeout() time.Duration {
	return time.Duration(t.config.TimeoutSecond) * time.Second
}

// openConnection dials an endpoint and starts its response reader
func (t *clientTransport) openConnection(endpoint string) (*clientConnection, error) {
	c := &clientConnection{
		endpoint: endpoint,
		stopCh:   make(chan struct{}),
		pending:  xsync.NewMapOf[uint64, chan pendingReply](),
		parent:   t,
	}

	if err := c.reconnect(); err != nil {
		return nil, err
	}

	go c.receiveLoop()
	return c, nil
}

// pickConnection selects the next connection via round robin
func (t *clientTransport) pickConnection() *clientConnection {
	t.connectionsMu.RLock()
	defer t.connectionsMu.RUnlock()

	switch len(t.connections) {
	case 0:
		return nil
	case 1:
		return t.connections[0]
	default:
		index := atomic.AddUint64(&t.nextConnIndex, 1) % uint64(len(t.connections))
		return t.connections[index]
	}
}

// closeConnections closes all active connections and their readers
func (t *clientTransport) closeConnections() {
	t.connectionsMu.Lock()
	defer t.connectionsMu.Unlock()

	for _, c := range t.connections {
		close(c.stopCh)
		if c.conn != nil {
			c.conn.Close()
		}
	}
	t.connections = nil
}

// roundTrip writes one request frame and blocks until its response arrives
// or the timeout elapses. The write lock covers only the frame write, waiting
// happens off-lock so requests overlap on the socket.
func (c *clientConnection) roundTrip(storeID, requestID uint64, req []byte, timeout time.Duration) ([]byte, error) {
	if c.conn == nil {
		return nil, fmt.Errorf("connection is closed")
	}

	replyCh := make(chan pendingReply, 1)
	c.pending.Store(requestID, replyCh)
	defer c.pending.Delete(requestID)

	if timeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(timeout))
	}

	c.writeMu.Lock()
	err := writeFrame(c.conn, storeID, requestID, req)
	c.writeMu.Unlock()
	if err != nil {
		return nil, err
	}

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timeoutCh = time.After(timeout)
	} else {
		timeoutCh = make(chan time.Time) // never fires
	}

	select {
	case reply := <-replyCh:
		return reply.payload, reply.err
	case <-timeoutCh:
		return nil, fmt.Errorf("request timed out")
	}
}

// receiveLoop reads response frames and routes each to the request waiting
// on its requestID. Read errors are forwarded to the affected request if one
// is known, otherwise the loop tries to restore the connection.
func (c *clientConnection) receiveLoop() {
	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		if timeout := c.parent.timeout(); timeout > 0 {
			c.conn.SetReadDeadline(time.Now().Add(timeout))
		}

		// no pooled buffer here, the payload escapes to the waiting request
		storeID, requestID, payload, err := readFrame(c.conn, nil)

		replyCh, found := c.pending.Load(requestID)
		switch {
		case found && err != nil:
			replyCh <- pendingReply{nil, fmt.Errorf("error reading response: %v", err)}
		case found:
			replyCh <- pendingReply{payload, nil}
		case err != nil:
			Logger.Errorf("Error reading response with unknown request ID %d: %v", requestID, err)
			if err := c.reconnect(); err != nil {
				Logger.Errorf("Failed to reconnect to %s: %v", c.endpoint, err)
				return
			}
		default:
			Logger.Warningf("Received response for unknown request ID %d with store ID %d", requestID, storeID)
		}
	}
}

// reconnect establishes or restores the connection to the endpoint
func (c *clientConnection) reconnect() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	conn, err := c.parent.connector.Connect(c.endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %v", c.endpoint, err)
	}

	if err := c.parent.connector.UpgradeConnection(conn, c.parent.config); err != nil {
		conn.Close()
		return fmt.Errorf("failed to upgrade connection to %s: %v", c.endpoint, err)
	}

	c.conn = conn
	return nil
}
