package widgets

import (
	"time"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/display"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/timer"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/video"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
)

// Video drives video.Session with repeating tick while on screen.
type Video struct {
	log     *log2.Log
	sched   timer.Scheduler
	nav     Navigator
	tick    time.Duration
	session *video.Session
	timer   timer.Handle
}

func NewVideo(log *log2.Log, sched timer.Scheduler, config video.Config, dialer video.Dialer, d *display.Display, nav Navigator) (*Video, error) {
	session, err := video.New(log, config, dialer, d.RawSize(), d.Small(), nav.Repaint)
	if err != nil {
		return nil, err
	}
	return &Video{
		log:     log,
		sched:   sched,
		nav:     nav,
		tick:    config.Tick(),
		session: session,
	}, nil
}

func (self *Video) Session() *video.Session { return self.session }
func (self *Video) Timer() timer.Handle     { return self.timer }

func (self *Video) Init() {
	self.stopTimer()
	self.session.Reset()
	self.timer = self.sched.Schedule(self.tick, true, self.session.Tick)
}

func (self *Video) Deinit() {
	self.stopTimer()
	self.session.Close()
	stats := self.session.Stats()
	self.log.Debugf("video stop frames=%d stalls=%d faults=%d", stats.Frames, stats.Stalls, stats.Faults)
}

func (self *Video) Paint(d *display.Display) { self.session.Paint(d) }
func (self *Video) OnMenuKey()               { self.session.Start() }
func (self *Video) OnPowerKey()              { self.nav.Leave() }

func (self *Video) stopTimer() {
	if self.timer != 0 {
		self.sched.Cancel(self.timer)
		self.timer = 0
	}
}
