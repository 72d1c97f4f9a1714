// Package state is process wide context: config, hardware, scheduler,
// helper process runner, telemetry and UI loop queue.
// All of it is created once at startup and lives until exit.
package state

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/helpers"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/process"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/tele"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/timer"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/types"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
)

const ContextKey = "run/state-global"

// loop queue is small, posting goroutines block while UI is busy
const loopQueueSize = 16

type Global struct {
	Alive        *alive.Alive
	// Background runs commands that must outlive the screen which started them.
	Background   process.Runner
	BuildVersion string
	Config       *Config
	Hardware     hardware // hardware.go
	Log          *log2.Log
	Runner       process.Runner
	Scheduler    timer.Scheduler
	Tele         tele.Teler

	loop chan func()

	_copy_guard sync.Mutex //nolint:unused
}

func NewContext(log *log2.Log, teler tele.Teler) (context.Context, *Global) {
	if log == nil {
		panic("code error NewContext() log=nil")
	}

	g := &Global{
		Alive: alive.NewAlive(),
		Log:   log,
		Tele:  teler,
		loop:  make(chan func(), loopQueueSize),
	}
	ctx := context.Background()
	ctx = context.WithValue(ctx, log2.ContextKey, log)
	ctx = context.WithValue(ctx, ContextKey, g)

	return ctx, g
}

func GetGlobal(ctx context.Context) *Global {
	v := ctx.Value(ContextKey)
	if v == nil {
		panic(fmt.Sprintf("context['%s'] is nil", ContextKey))
	}
	if g, ok := v.(*Global); ok {
		return g
	}
	panic(fmt.Sprintf("context['%s'] expected type *Global actual=%#v", ContextKey, v))
}

// If `Init` fails, consider `Global` is in broken state.
func (g *Global) Init(ctx context.Context, cfg *Config) error {
	g.Config = cfg

	g.Log.Infof("build version=%s", g.BuildVersion)

	// Since tele is remote error reporting mechanism, it must be inited before anything else
	// Tele.Init gets g.Log clone before SetErrorFunc, so Tele.Log.Error doesn't recurse on itself
	if err := g.Tele.Init(ctx, g.Log.Clone(log2.LInfo), g.Config.Tele, g.remoteKey); err != nil {
		g.Tele = tele.Noop{}
		return errors.Annotate(err, "tele init")
	}
	g.Log.SetErrorFunc(g.Tele.Error)

	// test code sets scheduler and runner
	if g.Scheduler == nil {
		g.Scheduler = timer.NewService(g.Post)
	}
	if g.Runner == nil {
		g.Runner = process.NewExec(g.Log, g.Config.Process, g.Post)
	}
	if g.Background == nil {
		g.Background = process.NewExec(g.Log, g.Config.Process, g.Post)
	}

	const initTasks = 2
	wg := sync.WaitGroup{}
	wg.Add(initTasks)
	errch := make(chan error, initTasks)
	go helpers.WrapErrChan(&wg, errch, g.initDisplay)
	go helpers.WrapErrChan(&wg, errch, g.initInput)
	wg.Wait()
	close(errch)

	return helpers.FoldErrChan(errch)
}

func (g *Global) MustInit(ctx context.Context, cfg *Config) {
	err := g.Init(ctx, cfg)
	if err != nil {
		g.Fatal(err)
	}
}

// Post queues fn to run on UI loop goroutine. Safe for concurrent use.
// After stop fn is dropped.
func (g *Global) Post(fn func()) {
	select {
	case g.loop <- fn:
	case <-g.Alive.StopChan():
	}
}

// PostWait runs fn on UI loop and waits for completion.
// Returns false if stopped before fn finished. Must not be called from UI loop.
func (g *Global) PostWait(fn func()) bool {
	done := make(chan struct{})
	g.Post(func() {
		fn()
		close(done)
	})
	select {
	case <-done:
		return true
	case <-g.Alive.StopChan():
		return false
	}
}

// LoopChan is consumed only by UI loop.
func (g *Global) LoopChan() <-chan func() { return g.loop }

func (g *Global) Error(err error, args ...interface{}) {
	if err != nil {
		if len(args) != 0 {
			msg := args[0].(string)
			args = args[1:]
			err = errors.Annotatef(err, msg, args...)
		}
		g.Log.Error(err)
	}
}

func (g *Global) Fatal(err error, args ...interface{}) {
	if err != nil {
		g.Error(err, args...)
		g.StopWait(5 * time.Second)
		g.Log.Fatal(errors.ErrorStack(err))
		os.Exit(1)
	}
}

func (g *Global) Stop() {
	g.Alive.Stop()
}

func (g *Global) StopWait(timeout time.Duration) bool {
	g.Alive.Stop()
	select {
	case <-g.Alive.WaitChan():
		return true
	case <-time.After(timeout):
		return false
	}
}

// remoteKey injects button press from telemetry into input bus.
func (g *Global) remoteKey(b types.Button) {
	if g.Hardware.Input == nil {
		g.Log.Errorf("remote key=%s input is not ready", b)
		return
	}
	g.Hardware.Input.Emit(g.Config.Input.KeyMap().Event(tele.InputSourceTag, b))
}
