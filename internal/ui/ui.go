// Package ui owns the active screen: key dispatch, enter/leave navigation,
// repaint and display power saving. Everything here runs on Loop goroutine.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/helpers/atomic_clock"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/display"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/input"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/state"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/timer"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/types"
	"github.com/juju/errors"
)

// Widget capabilities, each one optional.
type Initer interface{ Init() }
type Deiniter interface{ Deinit() }
type Painter interface{ Paint(d *display.Display) }
type MenuKeyer interface{ OnMenuKey() }
type PowerKeyer interface{ OnPowerKey() }

// Descriptor is static screen registration. Index 0 is root.
type Descriptor struct {
	Name   string
	Sleep  time.Duration
	Parent int
	Widget interface{}
}

type UI struct {
	g       *state.Global
	display *display.Display
	keymap  input.KeyMap
	widgets []Descriptor
	active  int
	started bool
	idle    timer.Handle

	lastActivity atomic_clock.Clock

	// OnActive is called with screen name whenever active screen changes.
	OnActive func(name string)
}

func New(ctx context.Context) *UI {
	g := state.GetGlobal(ctx)
	self := &UI{
		g:        g,
		display:  g.MustDisplay(),
		keymap:   g.Config.Input.KeyMap(),
		OnActive: g.Tele.Active,
	}
	return self
}

// Register replaces screen table, must be called before Start.
func (self *UI) Register(widgets []Descriptor) error {
	if len(widgets) == 0 {
		return errors.NotValidf("ui widgets empty")
	}
	for i, w := range widgets {
		if w.Parent < 0 || w.Parent >= len(widgets) {
			return errors.NotValidf("ui widget=%d name=%s parent=%d", i, w.Name, w.Parent)
		}
		if w.Sleep <= 0 {
			return errors.NotValidf("ui widget=%d name=%s sleep=%v", i, w.Name, w.Sleep)
		}
	}
	self.widgets = widgets
	self.active = 0
	return nil
}

// Start shows root screen.
func (self *UI) Start() error { return self.Enter(0) }

func (self *UI) Len() int                  { return len(self.widgets) }
func (self *UI) Active() int               { return self.active }
func (self *UI) ActiveName() string        { return self.widgets[self.active].Name }
func (self *UI) Widget(i int) Descriptor   { return self.widgets[i] }
func (self *UI) Display() *display.Display { return self.display }
func (self *UI) LastActivity() time.Time   { return self.lastActivity.Time() }
func (self *UI) IdleTimer() timer.Handle   { return self.idle }

func (self *UI) String() string {
	if len(self.widgets) == 0 {
		return "ui empty"
	}
	return fmt.Sprintf("ui active=%d name=%s parent=%d power=%t idle=%d last_key=%s",
		self.active, self.ActiveName(), self.widgets[self.active].Parent, self.display.Power(), self.idle,
		self.lastActivity.Since().Truncate(time.Second))
}

// Enter makes widget i active and calls its Init. Previous widget is not deinited.
func (self *UI) Enter(i int) error {
	if i < 0 || i >= len(self.widgets) {
		err := errors.NotValidf("ui enter index=%d count=%d", i, len(self.widgets))
		self.g.Log.Error(err)
		return err
	}
	self.setActive(i)
	if w, ok := self.widgets[i].Widget.(Initer); ok {
		w.Init()
	}
	self.touch()
	return nil
}

// Leave deinits active widget, cancels its helper process and returns to parent.
func (self *UI) Leave() {
	current := self.active
	if w, ok := self.widgets[current].Widget.(Deiniter); ok {
		w.Deinit()
	}
	self.g.Runner.CancelCurrent()
	self.setActive(self.widgets[current].Parent)
	self.touch()
}

func (self *UI) ResetAll() {
	self.g.Log.Debugf("ui reset all")
	for _, d := range self.widgets {
		if w, ok := d.Widget.(Deiniter); ok {
			w.Deinit()
		}
	}
	self.setActive(0)
	_ = self.Enter(0)
}

// DispatchMenuKey calls active widget handler, then rearms idle timer and repaints.
// Tail runs even if handler navigated, so new widget is painted twice.
func (self *UI) DispatchMenuKey() {
	if w, ok := self.widgets[self.active].Widget.(MenuKeyer); ok {
		w.OnMenuKey()
	}
	self.touch()
}

// DispatchPowerKey is DispatchMenuKey for POWER.
func (self *UI) DispatchPowerKey() {
	if w, ok := self.widgets[self.active].Widget.(PowerKeyer); ok {
		w.OnPowerKey()
	}
	self.touch()
}

// Repaint draws active widget from scratch and flushes to panel.
// Does not wake display.
func (self *UI) Repaint() {
	self.display.Clear()
	if w, ok := self.widgets[self.active].Widget.(Painter); ok {
		w.Paint(self.display)
	}
	if err := self.display.Present(); err != nil {
		self.g.Log.Error(errors.Annotatef(err, "ui repaint widget=%s", self.ActiveName()))
	}
}

// Loop serves input events and posted callbacks one at a time until stop.
func (self *UI) Loop(ctx context.Context) {
	self.g.Alive.Add(1)
	defer self.g.Alive.Done()
	stopch := self.g.Alive.StopChan()
	inputch := self.g.Hardware.Input.SubscribeChan("ui", stopch)
	loopch := self.g.LoopChan()
	for {
		select {
		case e, ok := <-inputch:
			if !ok {
				inputch = nil
				continue
			}
			self.onInput(e)

		case fn := <-loopch:
			fn()

		case <-stopch:
			self.stop()
			return

		case <-ctx.Done():
			self.stop()
			return
		}
	}
}

func (self *UI) onInput(e types.InputEvent) {
	b := self.keymap.Button(e)
	if b == types.ButtonNone {
		return
	}
	self.lastActivity.SetNow()
	self.g.Log.Debugf("ui key=%s source=%s widget=%s", b, e.Source, self.ActiveName())
	switch b {
	case types.ButtonMenu:
		self.DispatchMenuKey()
	case types.ButtonPower:
		self.DispatchPowerKey()
	}
}

func (self *UI) stop() {
	if len(self.widgets) == 0 {
		return
	}
	self.g.Log.Debugf("ui loop stop widget=%s", self.ActiveName())
	if w, ok := self.widgets[self.active].Widget.(Deiniter); ok {
		w.Deinit()
	}
	self.cancelIdle()
}

func (self *UI) setActive(i int) {
	if i == self.active && self.started {
		return
	}
	self.g.Log.Debugf("ui active %d->%d name=%s", self.active, i, self.widgets[i].Name)
	self.active = i
	self.started = true
	if self.OnActive != nil {
		self.OnActive(self.widgets[i].Name)
	}
}

// touch is common tail of every navigation and key event.
func (self *UI) touch() {
	self.rearm()
	self.displayWake()
	self.Repaint()
}
