package unix

import (
	"github.com/ValentinKolb/tKV/rpc/common"
	"net"
)

// applySocketBuffers applies the configured buffer sizes to a Unix socket
// connection. Server and client connectors share this, the TCP tuning
// options have no equivalent here. Non-Unix connections pass through
// untouched.
func applySocketBuffers(conn net.Conn, socket common.SocketConf) error {
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return nil
	}

	if socket.WriteBufferSize > 0 {
		if err := unixConn.SetWriteBuffer(socket.WriteBufferSize); err != nil {
			return err
		}
	}
	if socket.ReadBufferSize > 0 {
		if err := unixConn.SetReadBuffer(socket.ReadBufferSize); err != nil {
			return err
		}
	}

	return nil
}
