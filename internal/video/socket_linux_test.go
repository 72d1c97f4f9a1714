package video

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocketDialer(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	c, err := NewSocketDialer().Dial(net.IPv4(127, 0, 0, 1), port, 0)
	require.NoError(t, err)
	defer c.Close()

	server, err := ln.Accept()
	require.NoError(t, err)
	defer server.Close()

	n, err := c.Pending()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = server.Write([]byte{1, 2, 3, 4, 5})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		n, err := c.Pending()
		return err == nil && n == 5
	}, 2*time.Second, 5*time.Millisecond)

	buf := make([]byte, 4)
	n, err = c.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{1, 2, 3, 4}, buf)

	n, err = c.Pending()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSocketDialerRefused(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	c, err := NewSocketDialer().Dial(net.IPv4(127, 0, 0, 1), port, 0)
	if err != nil {
		return // refused synchronously is fine too
	}
	defer c.Close()
	require.Eventually(t, func() bool {
		_, err := c.Pending()
		return err != nil
	}, 2*time.Second, 5*time.Millisecond)
}
