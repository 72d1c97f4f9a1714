// Package video pulls raw frames for the panel from remote streaming server.
// Session never blocks: every Tick advances state machine by one step using
// non-blocking socket, waiting is represented by stall counter.
//
// Server address is obtained from resolver endpoint which sends 4 byte IPv4.
// Media endpoint then streams frames in panel native format back to back.
package video

import (
	"io"
	"net"
	"strconv"
	"time"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/helpers"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/display"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
	"github.com/juju/errors"
)

const (
	DefaultResolver         = "178.62.187.90:5353"
	DefaultPortLarge        = 7777
	DefaultPortSmall        = 7778
	DefaultTick             = 31 * time.Millisecond
	DefaultMaxStallTicks    = 100
	DefaultRecvBufferFactor = 100

	addrPayloadSize = 4
)

const (
	WelcomeText    = "Press MENU to start\n\nWarning:\n  Traffic is 768KB/sec\nDo not use in roaming"
	ConnectingText = "Connecting..."
	SocketErrText  = "Socket error"
)

type Config struct {
	Resolver         string `hcl:"resolver"`
	PortLarge        int    `hcl:"port_large"`
	PortSmall        int    `hcl:"port_small"`
	TickMs           int    `hcl:"tick_ms"`
	MaxStallTicks    int    `hcl:"max_stall_ticks"`
	RecvBufferFactor int    `hcl:"recv_buffer_factor"`
}

func (c *Config) Tick() time.Duration { return helpers.IntMillisecondDefault(c.TickMs, DefaultTick) }

func (c *Config) Port(small bool) int {
	if small {
		if c.PortSmall > 0 {
			return c.PortSmall
		}
		return DefaultPortSmall
	}
	if c.PortLarge > 0 {
		return c.PortLarge
	}
	return DefaultPortLarge
}

type Phase uint8

const (
	PhaseWelcome Phase = iota
	PhaseResolving
	PhaseStreaming
)

func (p Phase) String() string {
	switch p {
	case PhaseWelcome:
		return "welcome"
	case PhaseResolving:
		return "resolving"
	case PhaseStreaming:
		return "streaming"
	}
	return "phase" + strconv.Itoa(int(p))
}

type Stats struct {
	Frames int
	Stalls int
	Faults int
}

type Session struct {
	log     *log2.Log
	dialer  Dialer
	repaint func()

	resolver      net.IP
	resolverPort  int
	port          int
	maxStallTicks int
	recvBuf       int

	frame      []byte
	welcome    bool
	connecting bool
	reconnect  bool
	addr       net.IP
	resolveC   Conn
	streamC    Conn
	stall      int
	stats      Stats
}

// New session for panel with frameSize bytes per frame.
// Small panels use separate stream port.
func New(log *log2.Log, config Config, dialer Dialer, frameSize int, small bool, repaint func()) (*Session, error) {
	if frameSize <= 0 {
		return nil, errors.NotValidf("video frame size=%d", frameSize)
	}
	resolver := config.Resolver
	if resolver == "" {
		resolver = DefaultResolver
	}
	host, portString, err := net.SplitHostPort(resolver)
	if err != nil {
		return nil, errors.Annotatef(err, "video resolver=%s", resolver)
	}
	ip := net.ParseIP(host).To4()
	if ip == nil {
		return nil, errors.NotValidf("video resolver=%s IPv4 address", resolver)
	}
	resolverPort, err := strconv.Atoi(portString)
	if err != nil || resolverPort <= 0 || resolverPort > 0xffff {
		return nil, errors.NotValidf("video resolver=%s port", resolver)
	}
	if repaint == nil {
		repaint = func() {}
	}
	self := &Session{
		log:           log,
		dialer:        dialer,
		repaint:       repaint,
		resolver:      ip,
		resolverPort:  resolverPort,
		port:          config.Port(small),
		maxStallTicks: config.MaxStallTicks,
		recvBuf:       config.RecvBufferFactor,
		frame:         make([]byte, frameSize),
	}
	if self.maxStallTicks <= 0 {
		self.maxStallTicks = DefaultMaxStallTicks
	}
	if self.recvBuf <= 0 {
		self.recvBuf = DefaultRecvBufferFactor
	}
	self.recvBuf *= frameSize
	self.Reset()
	return self, nil
}

// Reset returns session to welcome screen with blank frame, forgets server address.
func (self *Session) Reset() {
	self.closeConns()
	self.welcome = true
	self.connecting = true
	self.reconnect = true
	self.addr = nil
	self.stall = 0
	self.zeroFrame()
}

// Start is user request to (re)connect. Takes effect on next Tick.
func (self *Session) Start() {
	self.welcome = false
	self.connecting = true
	self.reconnect = true
}

// Close releases sockets, session may continue with Tick later.
func (self *Session) Close() { self.closeConns() }

func (self *Session) Phase() Phase {
	switch {
	case self.welcome:
		return PhaseWelcome
	case self.addr == nil:
		return PhaseResolving
	default:
		return PhaseStreaming
	}
}

func (self *Session) Frame() []byte    { return self.frame }
func (self *Session) Stats() Stats     { return self.stats }
func (self *Session) StallTicks() int  { return self.stall }
func (self *Session) Addr() net.IP     { return self.addr }
func (self *Session) Connected() bool  { return self.streamC != nil }
func (self *Session) HasHandle() bool  { return self.resolveC != nil || self.streamC != nil }
func (self *Session) Connecting() bool { return self.connecting }

// Tick advances session one step, always ends with repaint.
func (self *Session) Tick() {
	if self.reconnect {
		self.reconnect = false
		self.closeConns()
		self.addr = nil
		self.stall = 0
	}
	switch self.Phase() {
	case PhaseResolving:
		self.tickResolve()
	case PhaseStreaming:
		self.tickStream()
	}
	self.repaint()
}

func (self *Session) tickResolve() {
	if self.resolveC == nil {
		c, err := self.dialer.Dial(self.resolver, self.resolverPort, 0)
		if err != nil {
			self.dialFailed(err)
			return
		}
		self.resolveC = c
		self.stall = 0
	}
	var payload [addrPayloadSize]byte
	if !self.receive(&self.resolveC, payload[:]) {
		return
	}
	self.closeConn(&self.resolveC)
	ip := net.IPv4(payload[0], payload[1], payload[2], payload[3])
	if ip.Equal(net.IPv4zero) {
		self.fault(errors.Errorf("video resolver returned zero address"))
		return
	}
	self.addr = ip
	self.log.Debugf("video resolved server=%s", ip)
}

func (self *Session) tickStream() {
	if self.streamC == nil {
		c, err := self.dialer.Dial(self.addr, self.port, self.recvBuf)
		self.connecting = false
		if err != nil {
			self.dialFailed(err)
			return
		}
		self.streamC = c
		self.stall = 0
	}
	if self.receive(&self.streamC, self.frame) {
		self.stats.Frames++
	}
}

// receive reads len(buf) bytes if that many are available.
// Otherwise counts stall tick. Socket error or too long stall is fault.
func (self *Session) receive(cp *Conn, buf []byte) bool {
	c := *cp
	pending, err := c.Pending()
	if err != nil {
		self.fault(errors.Annotate(err, "video socket"))
		return false
	}
	if pending < len(buf) {
		self.stalled()
		return false
	}
	self.stall = 0
	if _, err := io.ReadFull(c, buf); err != nil {
		self.fault(errors.Annotate(err, "video read"))
		return false
	}
	return true
}

// Failed connect counts as stall tick. N failed connects in a row, N = max stall ticks, is fault.
func (self *Session) dialFailed(err error) {
	self.log.Debugf("video dial: %v", err)
	self.stall++
	self.stats.Stalls++
	if self.stall >= self.maxStallTicks {
		self.fault(errors.Annotatef(err, "video connect failed %d times", self.stall))
	}
}

func (self *Session) stalled() {
	self.stall++
	self.stats.Stalls++
	if self.stall > self.maxStallTicks {
		self.fault(errors.Errorf("video no data for %d ticks", self.stall))
	}
}

func (self *Session) fault(err error) {
	self.stats.Faults++
	self.log.Errorf("%v phase=%s stats=%+v", err, self.Phase(), self.stats)
	self.closeConns()
	self.welcome = true
	self.stall = 0
	self.zeroFrame()
}

func (self *Session) closeConns() {
	self.closeConn(&self.resolveC)
	self.closeConn(&self.streamC)
}

func (self *Session) closeConn(cp *Conn) {
	if *cp == nil {
		return
	}
	if err := (*cp).Close(); err != nil {
		self.log.Debugf("video close: %v", err)
	}
	*cp = nil
}

func (self *Session) zeroFrame() {
	for i := range self.frame {
		self.frame[i] = 0
	}
}

// Paint draws last frame and status overlay.
func (self *Session) Paint(d *display.Display) {
	if err := d.Raw(self.frame); err != nil {
		self.log.Errorf("video paint: %v", err)
	}
	switch {
	case self.welcome:
		d.Text(7, 40, WelcomeText)
	case self.connecting:
		d.Text(7, 20, ConnectingText)
	case self.streamC == nil:
		d.Text(7, 20, SocketErrText)
	}
}
