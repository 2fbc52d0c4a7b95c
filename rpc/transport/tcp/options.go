package tcp

import (
	"github.com/ValentinKolb/tKV/rpc/common"
	"net"
	"time"
)

// applyTCPOptions applies the socket buffer sizes and TCP tuning values to a
// connection. Server and client connectors share this, their configs embed
// the same SocketConf and TCPConf. Non-TCP connections pass through
// untouched.
func applyTCPOptions(conn net.Conn, socket common.SocketConf, tuning common.TCPConf) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	// Nagle's algorithm delays small frames, disable it when configured
	if err := tcpConn.SetNoDelay(tuning.TCPNoDelay); err != nil {
		return err
	}

	if socket.WriteBufferSize > 0 {
		if err := tcpConn.SetWriteBuffer(socket.WriteBufferSize); err != nil {
			return err
		}
	}
	if socket.ReadBufferSize > 0 {
		if err := tcpConn.SetReadBuffer(socket.ReadBufferSize); err != nil {
			return err
		}
	}

	if tuning.TCPKeepAliveSec > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return err
		}
		period := time.Duration(tuning.TCPKeepAliveSec) * time.Second
		if err := tcpConn.SetKeepAlivePeriod(period); err != nil {
			return err
		}
	}

	if tuning.TCPLingerSec >= 0 {
		if err := tcpConn.SetLinger(tuning.TCPLingerSec); err != nil {
			return err
		}
	}

	return nil
}
