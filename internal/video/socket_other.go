//go:build !linux

package video

import (
	"net"
	"runtime"

	"github.com/juju/errors"
)

type socketDialer struct{}

func NewSocketDialer() Dialer { return socketDialer{} }

func (socketDialer) Dial(ip net.IP, port int, recvBuf int) (Conn, error) {
	return nil, errors.NotSupportedf("video socket on %s", runtime.GOOS)
}
