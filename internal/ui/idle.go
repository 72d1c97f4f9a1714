package ui

// rearm replaces idle timer with fresh one for active widget.
func (self *UI) rearm() {
	self.cancelIdle()
	self.idle = self.g.Scheduler.Schedule(self.widgets[self.active].Sleep, false, self.displaySleep)
}

func (self *UI) cancelIdle() {
	if self.idle != 0 {
		self.g.Scheduler.Cancel(self.idle)
		self.idle = 0
	}
}

// displaySleep is idle timer callback. Handle is already spent, forget it.
func (self *UI) displaySleep() {
	self.idle = 0
	if !self.display.Power() {
		return
	}
	self.g.Log.Debugf("ui idle, display off widget=%s", self.ActiveName())
	if err := self.display.SetPower(false); err != nil {
		self.g.Log.Error(err)
	}
}

func (self *UI) displayWake() {
	if self.display.Power() {
		return
	}
	if err := self.display.SetPower(true); err != nil {
		self.g.Log.Error(err)
	}
}
