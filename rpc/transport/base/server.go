package base

import (
	"fmt"
	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/ValentinKolb/tKV/rpc/transport"
	"io"
	"net"
	"sync"
	"time"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates a listener and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an accepted connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the frame loop shared by all socket transports
type serverTransport struct {
	connector         IServerConnector
	handler           transport.ServerHandleFunc
	config            common.ServerConfig
	listener          net.Listener
	bufferPool        *sync.Pool
	bufferSize        int
	maxWorkersPerConn int
}

// serverConn holds the per-connection state: the write lock serializing
// response frames and the semaphore bounding in-flight workers.
type serverConn struct {
	conn    net.Conn
	timeout time.Duration
	writeMu sync.Mutex
	workers chan struct{}
	wg      sync.WaitGroup
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport with per-connection worker pool
func NewBaseServerTransport(connector IServerConnector, bufferSize int, maxWorkersPerConn int) transport.IRPCServerTransport {

	// minimum one worker per connection
	if maxWorkersPerConn < 1 {
		maxWorkersPerConn = 1
	}

	return &serverTransport{
		connector:         connector,
		bufferSize:        bufferSize,
		maxWorkersPerConn: maxWorkersPerConn,
		bufferPool: &sync.Pool{
			New: func() any {
				return make([]byte, bufferSize)
			},
		},
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Listen(config common.ServerConfig) error {
	t.config = config

	listener, err := t.connector.Listen(config)
	if err != nil {
		return fmt.Errorf("failed to create listener: %v", err)
	}
	t.listener = listener

	Logger.Infof("Starting %s server on %s with %d workers per connection",
		t.connector.GetName(), config.Endpoint, t.maxWorkersPerConn)

	for {
		conn, err := listener.Accept()
		if err != nil {
			Logger.Errorf("Accept error: %v", err)
			continue
		}

		if err := t.connector.UpgradeConnection(conn, config); err != nil {
			Logger.Warningf("Failed to upgrade connection: %v", err)
		}

		go t.serveConn(conn)
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// serveConn reads frames from one connection and dispatches them to a
// bounded set of worker goroutines until the client disconnects.
func (t *serverTransport) serveConn(conn net.Conn) {
	defer conn.Close()

	c := &serverConn{
		conn:    conn,
		timeout: time.Duration(t.config.TimeoutSecond) * time.Second,
		workers: make(chan struct{}, t.maxWorkersPerConn),
	}

	for {
		if err := t.nextRequest(c); err != nil {
			if err == io.EOF {
				Logger.Infof("Connection closed by client")
			} else {
				Logger.Errorf("Error handling request: %v", err)
			}
			break
		}
	}

	// in-flight workers still write responses, close only after they finish
	c.wg.Wait()
}

// nextRequest reads one frame and hands it to a worker. It blocks while
// the connection already has maxWorkersPerConn requests in flight.
func (t *serverTransport) nextRequest(c *serverConn) error {
	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return fmt.Errorf("failed to set read deadline: %v", err)
		}
	}

	buf := t.bufferPool.Get().([]byte)

	// the returned data slice points into buf, the worker returns it to
	// the pool once it is done with the request
	storeID, requestID, data, err := readFrame(c.conn, buf)
	if err != nil {
		t.bufferPool.Put(buf)
		return err
	}

	c.workers <- struct{}{}
	c.wg.Add(1)

	go func() {
		defer func() {
			t.bufferPool.Put(buf)
			<-c.workers
			c.wg.Done()
		}()
		t.respond(c, storeID, requestID, data)
	}()

	return nil
}

// respond runs the handler and writes the response frame under the
// connection's write lock, echoing the request's storeID and requestID.
func (t *serverTransport) respond(c *serverConn, storeID, requestID uint64, request []byte) {
	start := time.Now()
	response := t.handler(storeID, request)
	Logger.Debugf("Processed request for store %d with requestID %d took %s", storeID, requestID, time.Since(start))

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			Logger.Errorf("Failed to set write deadline: %v", err)
			return
		}
	}

	if err := writeFrame(c.conn, storeID, requestID, response); err != nil {
		Logger.Errorf("Failed to write response: %v", err)
	}
}
