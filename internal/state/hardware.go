package state

import (
	"sync"
	"sync/atomic"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/display"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/input"
	"github.com/juju/errors"
)

type hardware struct {
	Display struct {
		once
		d *display.Display
	}
	Input *input.Dispatch
}

// Display opens panel once. Without framebuffer in config it is in-memory mock,
// useful for console and development on desktop.
func (g *Global) Display() (*display.Display, error) {
	x := &g.Hardware.Display // short alias
	_ = x.do(func() error {
		if x.d != nil { // testing mode
			return nil
		}
		cfg := &g.Config.Display
		if cfg.Framebuffer == "" {
			g.Log.Infof("display framebuffer is not set, using mock size=%v", cfg.Size())
			x.d = display.NewMock(cfg.Size())
			return nil
		}
		x.d, x.err = display.NewFb(*cfg)
		return x.err
	})
	return x.d, x.err
}

func (g *Global) MustDisplay() *display.Display {
	d, err := g.Display()
	if err != nil {
		g.Fatal(err)
	}
	return d
}

// SetTestDisplay replaces panel before Init.
func (g *Global) SetTestDisplay(d *display.Display) { g.Hardware.Display.d = d }

func (g *Global) initDisplay() error {
	d, err := g.Display()
	if err != nil {
		return errors.Annotate(err, "display")
	}
	d.Clear()
	return errors.Annotate(d.SetPower(true), "display")
}

func (g *Global) initInput() error {
	g.Hardware.Input = input.NewDispatch(g.Log, g.Alive.StopChan())

	// support more input sources here
	sources := make([]input.Source, 0, 2)

	devConfig := &g.Config.Input.DevInputEvent
	if !devConfig.Enable {
		g.Log.Infof("input=%s disabled", input.DevInputEventTag)
	} else {
		src, err := input.NewDevInputEventSource(g.Log, devConfig.Device, g.Alive.StopChan())
		err = errors.Annotatef(err, "input=%s", input.DevInputEventTag)
		if err != nil {
			return err
		}
		sources = append(sources, src)
	}

	go g.Hardware.Input.Run(sources)
	return nil
}

type once struct {
	sync.Mutex
	called uint32 // atomic bool
	err    error
}

func (o *once) done() bool {
	return atomic.LoadUint32(&o.called) == 1
}

func (o *once) do(f func() error) error {
	if o.done() { // fast path
		return o.err
	}
	o.Lock()
	defer o.Unlock()
	if o.done() {
		return o.err
	}
	o.err = f()
	atomic.StoreUint32(&o.called, 1)
	return o.err
}
