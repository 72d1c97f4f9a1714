package video

import (
	"bytes"
	"fmt"
	"image"
	"net"
	"syscall"
	"testing"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/display"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	buf    bytes.Buffer
	err    error
	closed bool
}

func (self *fakeConn) Pending() (int, error) {
	if self.err != nil {
		return 0, self.err
	}
	return self.buf.Len(), nil
}
func (self *fakeConn) Read(p []byte) (int, error) { return self.buf.Read(p) }
func (self *fakeConn) Close() error {
	self.closed = true
	return nil
}

type fakeDialer struct {
	dials []string
	conns []*fakeConn
	err   error
	// connErr applies to every conn created on demand
	connErr error
}

func (self *fakeDialer) Dial(ip net.IP, port int, recvBuf int) (Conn, error) {
	self.dials = append(self.dials, fmt.Sprintf("%s:%d/%d", ip, port, recvBuf))
	if self.err != nil {
		return nil, self.err
	}
	c := &fakeConn{err: self.connErr}
	self.conns = append(self.conns, c)
	return c, nil
}

func (self *fakeDialer) last() *fakeConn { return self.conns[len(self.conns)-1] }

const testFrameSize = 128 * 64 / 8

func newTestSession(t testing.TB, dialer Dialer) (*Session, *int) {
	repaints := new(int)
	config := Config{MaxStallTicks: 5}
	s, err := New(log2.NewTest(t, log2.LDebug), config, dialer, testFrameSize, true, func() { *repaints++ })
	require.NoError(t, err)
	return s, repaints
}

func assertBlank(t testing.TB, s *Session) {
	for i, b := range s.Frame() {
		if b != 0 {
			t.Fatalf("frame[%d]=%02x expected zero", i, b)
		}
	}
}

// streaming drives session to PhaseStreaming with open stream conn.
func streaming(t testing.TB, s *Session, d *fakeDialer) *fakeConn {
	s.Start()
	s.Tick()
	require.Equal(t, PhaseResolving, s.Phase())
	d.last().buf.Write([]byte{10, 0, 0, 7})
	s.Tick()
	require.Equal(t, PhaseStreaming, s.Phase())
	s.Tick()
	require.True(t, s.Connected())
	return d.last()
}

func TestWelcomeIdle(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{}
	s, repaints := newTestSession(t, d)
	for i := 0; i < 3; i++ {
		s.Tick()
	}
	assert.Equal(t, PhaseWelcome, s.Phase())
	assert.Empty(t, d.dials)
	assert.Equal(t, 3, *repaints)
}

func TestStream(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{}
	s, repaints := newTestSession(t, d)
	s.Start()
	s.Tick()
	require.Equal(t, []string{"178.62.187.90:5353/0"}, d.dials)
	resolver := d.last()
	resolver.buf.Write([]byte{10, 0})
	s.Tick()
	assert.Equal(t, PhaseResolving, s.Phase())
	assert.Equal(t, 2, s.StallTicks())
	resolver.buf.Write([]byte{0, 7})
	s.Tick()
	assert.True(t, resolver.closed)
	assert.Equal(t, "10.0.0.7", s.Addr().String())
	assert.Equal(t, PhaseStreaming, s.Phase())
	assert.True(t, s.Connecting())

	s.Tick()
	require.Len(t, d.dials, 2)
	assert.Equal(t, fmt.Sprintf("10.0.0.7:%d/%d", DefaultPortSmall, testFrameSize*DefaultRecvBufferFactor), d.dials[1])
	assert.False(t, s.Connecting())
	assert.Equal(t, 1, s.StallTicks())

	media := d.last()
	frame := bytes.Repeat([]byte{0xa5}, testFrameSize)
	media.buf.Write(frame)
	media.buf.Write(frame[:10])
	s.Tick()
	assert.Equal(t, frame, s.Frame())
	assert.Equal(t, 0, s.StallTicks())
	assert.Equal(t, 1, s.Stats().Frames)
	assert.Equal(t, 10, media.buf.Len())
	assert.Equal(t, 5, *repaints)
}

func TestStallFault(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{}
	s, _ := newTestSession(t, d)
	media := streaming(t, s, d)
	media.buf.Write(bytes.Repeat([]byte{0xff}, testFrameSize))
	s.Tick()
	require.Equal(t, byte(0xff), s.Frame()[0])

	for i := 1; i <= 5; i++ {
		s.Tick()
		require.Equal(t, PhaseStreaming, s.Phase(), "tick=%d", i)
		require.Equal(t, i, s.StallTicks())
	}
	s.Tick()
	assert.Equal(t, PhaseWelcome, s.Phase())
	assert.True(t, media.closed)
	assert.False(t, s.HasHandle())
	assert.Equal(t, 1, s.Stats().Faults)
	assertBlank(t, s)

	// welcome stays idle
	s.Tick()
	assert.Len(t, d.dials, 2)
}

func TestResolverConnectRefused(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{connErr: syscall.ECONNREFUSED}
	s, _ := newTestSession(t, d)
	s.Start()
	for i := 0; i < 5; i++ {
		s.Tick()
	}
	assert.Equal(t, PhaseWelcome, s.Phase())
	assert.False(t, s.HasHandle())
	for _, c := range d.conns {
		assert.True(t, c.closed)
	}
	assertBlank(t, s)
}

func TestDialErrorFault(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{err: syscall.ENETUNREACH}
	s, repaints := newTestSession(t, d)
	s.Start()
	for i := 0; i < 4; i++ {
		s.Tick()
		require.Equal(t, PhaseResolving, s.Phase())
		require.Equal(t, i+1, s.StallTicks())
	}
	// fifth failed connect with max stall ticks 5
	s.Tick()
	assert.Equal(t, PhaseWelcome, s.Phase())
	assert.Len(t, d.dials, 5)
	assert.Equal(t, 5, *repaints)
	assert.Equal(t, 1, s.Stats().Faults)
	assert.False(t, s.HasHandle())
	assertBlank(t, s)
}

func TestZeroAddressFault(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{}
	s, _ := newTestSession(t, d)
	s.Start()
	s.Tick()
	d.last().buf.Write([]byte{0, 0, 0, 0})
	s.Tick()
	assert.Equal(t, PhaseWelcome, s.Phase())
	assert.Nil(t, s.Addr())
}

func TestReconnect(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{}
	s, _ := newTestSession(t, d)
	media := streaming(t, s, d)

	s.Start()
	assert.False(t, media.closed, "reconnect applies on tick")
	s.Tick()
	assert.True(t, media.closed)
	assert.Equal(t, PhaseResolving, s.Phase())
	assert.Equal(t, "178.62.187.90:5353/0", d.dials[len(d.dials)-1])

	s.Close()
	assert.True(t, d.last().closed)
	assert.False(t, s.HasHandle())
}

func TestNewInvalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		config Config
		size   int
	}{
		{"frame-size", Config{}, 0},
		{"resolver-port", Config{Resolver: "10.0.0.1"}, 1},
		{"resolver-ipv6", Config{Resolver: "[::1]:5353"}, 1},
		{"resolver-name", Config{Resolver: "example.com:5353"}, 1},
		{"resolver-port-range", Config{Resolver: "10.0.0.1:70000"}, 1},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			_, err := New(nil, c.config, &fakeDialer{}, c.size, false, nil)
			assert.Error(t, err)
		})
	}
}

func TestConfig(t *testing.T) {
	t.Parallel()

	c := Config{}
	assert.Equal(t, DefaultTick, c.Tick())
	assert.Equal(t, 7777, c.Port(false))
	assert.Equal(t, 7778, c.Port(true))
	c = Config{TickMs: 40, PortLarge: 9000, PortSmall: 9001}
	assert.Equal(t, int64(40), c.Tick().Milliseconds())
	assert.Equal(t, 9000, c.Port(false))
	assert.Equal(t, 9001, c.Port(true))
}

func TestPaint(t *testing.T) {
	t.Parallel()

	size := image.Point{X: 128, Y: 64}
	expect := func(x, y int, text string) string {
		ref := display.NewMock(size)
		if text != "" {
			ref.Text(x, y, text)
		}
		return ref.String2()
	}

	d := &fakeDialer{}
	s, _ := newTestSession(t, d)
	disp := display.NewMock(size)
	s.Paint(disp)
	assert.Equal(t, expect(7, 40, WelcomeText), disp.String2())

	s.Start()
	s.Tick()
	disp.Clear()
	s.Paint(disp)
	assert.Equal(t, expect(7, 20, ConnectingText), disp.String2())

	d.last().buf.Write([]byte{10, 0, 0, 7})
	s.Tick()
	d.err = syscall.ECONNREFUSED
	s.Tick()
	disp.Clear()
	s.Paint(disp)
	assert.Equal(t, expect(7, 20, SocketErrText), disp.String2())

	d.err = nil
	s.Tick()
	d.last().buf.Write(bytes.Repeat([]byte{0xff}, testFrameSize))
	s.Tick()
	disp.Clear()
	s.Paint(disp)
	assert.True(t, disp.Lit(0, 0))
	assert.True(t, disp.Lit(127, 63))
}
