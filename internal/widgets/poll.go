package widgets

import (
	"fmt"
	"strings"
	"time"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/menu"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/process"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/timer"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
)

// Helper output while modem waits for USSD answer starts with these records.
const (
	UssdSentRecord     = "text:USSD Sent"
	UssdAwaitingRecord = "text:Awaiting the answer"

	UssdGetArg     = "USSD_GET"
	UssdReleaseArg = "USSD_RELEASE"
)

// PollScriptMenu is ScriptMenu which keeps asking helper `script USSD_GET n`
// every poll interval while answer is awaited. Leaving screen releases USSD session.
type PollScriptMenu struct {
	ScriptMenu
	sched      timer.Scheduler
	background process.Runner
	every      time.Duration
	timer      timer.Handle
	// consecutive polls with answer still awaited
	polls int
}

func NewPollScriptMenu(log *log2.Log, runner, background process.Runner, sched timer.Scheduler, nav Navigator, script string, config menu.Config, every time.Duration) *PollScriptMenu {
	return &PollScriptMenu{
		ScriptMenu: *NewScriptMenu(log, runner, nav, script, config),
		sched:      sched,
		background: background,
		every:      every,
	}
}

func (self *PollScriptMenu) Timer() timer.Handle { return self.timer }
func (self *PollScriptMenu) Polls() int          { return self.polls }

func (self *PollScriptMenu) Init() {
	self.stopTimer()
	self.polls = 0
	self.ScriptMenu.Init()
	self.timer = self.sched.Schedule(self.every, true, self.poll)
}

// Deinit runs release on background runner, screen runner is cancelled by leave.
func (self *PollScriptMenu) Deinit() {
	if self.timer == 0 {
		return
	}
	self.stopTimer()
	self.background.Spawn(self.script+" "+UssdReleaseArg, nil)
}

func (self *PollScriptMenu) poll() {
	if !self.awaiting() {
		self.polls = 0
		return
	}
	if self.runner.IsRunning() {
		return
	}
	self.polls++
	command := fmt.Sprintf("%s %s %d", self.script, UssdGetArg, self.polls)
	self.log.Debugf("poll command=%s", command)
	self.runner.Spawn(command, self.menu.Apply)
}

func (self *PollScriptMenu) awaiting() bool {
	records := strings.SplitN(self.menu.Raw(), "\n", 3)
	return len(records) >= 2 &&
		strings.TrimSuffix(records[0], "\r") == UssdSentRecord &&
		strings.TrimSuffix(records[1], "\r") == UssdAwaitingRecord
}

func (self *PollScriptMenu) stopTimer() {
	if self.timer != 0 {
		self.sched.Cancel(self.timer)
		self.timer = 0
	}
}
