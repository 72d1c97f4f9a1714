package video

import (
	"io"
	"net"
)

// Dialer opens non-blocking stream connection. Connect may still be in progress
// when Dial returns, failure then shows as Conn.Pending error.
type Dialer interface {
	// recvBuf <= 0 keeps system default receive buffer.
	Dial(ip net.IP, port int, recvBuf int) (Conn, error)
}

type Conn interface {
	io.ReadCloser
	// Pending returns number of bytes readable without blocking or pending socket error.
	Pending() (int, error)
}
