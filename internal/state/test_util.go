package state

import (
	"context"
	"os"
	"testing"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/display"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/process"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/tele"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/timer"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
)

// TestEnv gives tests direct access to fakes installed by NewTestContext.
type TestEnv struct {
	Background *process.Fake
	Display    *display.Display
	Runner     *process.Fake
	Scheduler  *timer.Manual
}

// NewTestContext builds Global with mock display, manual scheduler and fake process runner.
// Display size comes from confString.
func NewTestContext(t testing.TB, confString string) (context.Context, *Global, *TestEnv) {
	fs := NewMockFullReader(map[string]string{
		"test-inline": confString,
	})

	var log *log2.Log
	if os.Getenv("oled_test_log_stderr") == "1" {
		log = log2.NewStderr(log2.LDebug) // useful with panics
	} else {
		log = log2.NewTest(t, log2.LDebug)
	}
	log.SetFlags(log2.LTestFlags)
	ctx, g := NewContext(log, tele.Noop{})
	g.BuildVersion = "test"
	config := MustReadConfig(log, fs, "test-inline")

	env := &TestEnv{
		Background: &process.Fake{},
		Display:    display.NewMock(config.Display.Size()),
		Runner:     &process.Fake{},
		Scheduler:  timer.NewManual(),
	}
	g.SetTestDisplay(env.Display)
	g.Background = env.Background
	g.Runner = env.Runner
	g.Scheduler = env.Scheduler
	g.MustInit(ctx, config)
	t.Cleanup(g.Alive.Stop)

	return ctx, g, env
}
