package video

import (
	"io"
	"net"

	"github.com/juju/errors"
	"golang.org/x/sys/unix"
)

type socketDialer struct{}

func NewSocketDialer() Dialer { return socketDialer{} }

func (socketDialer) Dial(ip net.IP, port int, recvBuf int) (Conn, error) {
	ip4 := ip.To4()
	if ip4 == nil {
		return nil, errors.NotValidf("ip=%s", ip)
	}
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Annotate(err, "socket")
	}
	if recvBuf > 0 {
		if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUFFORCE, recvBuf); err != nil {
			_ = unix.Close(fd)
			return nil, errors.Annotatef(err, "setsockopt SO_RCVBUFFORCE=%d", recvBuf)
		}
	}
	sa := &unix.SockaddrInet4{Port: port}
	copy(sa.Addr[:], ip4)
	if err = unix.Connect(fd, sa); err != nil && err != unix.EINPROGRESS && err != unix.EAGAIN {
		_ = unix.Close(fd)
		return nil, errors.Annotatef(err, "connect %s:%d", ip4, port)
	}
	return &socketConn{fd: fd}, nil
}

type socketConn struct{ fd int }

func (self *socketConn) Pending() (int, error) {
	soerr, err := unix.GetsockoptInt(self.fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err == nil && soerr != 0 {
		return 0, unix.Errno(soerr)
	}
	n, err := unix.IoctlGetInt(self.fd, unix.TIOCINQ)
	if err != nil {
		return 0, errors.Annotate(err, "ioctl TIOCINQ")
	}
	return n, nil
}

func (self *socketConn) Read(p []byte) (int, error) {
	n, err := unix.Read(self.fd, p)
	if n < 0 {
		n = 0
	}
	if n == 0 && err == nil && len(p) > 0 {
		err = io.EOF
	}
	return n, err
}

func (self *socketConn) Close() error { return unix.Close(self.fd) }
