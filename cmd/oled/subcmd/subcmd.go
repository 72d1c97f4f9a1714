// Support sub-commands in oled application.
// It's simple but fine so far.
package subcmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/state"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/ui"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/video"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/widgets"
	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
)

type Mod struct {
	Name string
	Main func(context.Context, *state.Config) error
}

func Parse(command string, modules []Mod) (*Mod, error) {
	if command == "" {
		return nil, fmt.Errorf("empty command")
	}

	var found *Mod
	for i := range modules {
		m := &modules[i]
		if m.Name == "" {
			panic(fmt.Sprintf("code error Name='' module=%#v", m))
		}
		if command == m.Name {
			found = m
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("unknown command='%s'", command)
	}
	return found, nil
}

func SdNotify(s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log.Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}

// StartUI inits global state, registers screens and shows root screen.
// Caller runs returned UI Loop.
func StartUI(ctx context.Context, config *state.Config, dialer video.Dialer) (*ui.UI, error) {
	g := state.GetGlobal(ctx)
	if err := g.Init(ctx, config); err != nil {
		return nil, errors.Annotate(err, "init")
	}
	g.Log.Debugf("config=%+v", g.Config)

	u := ui.New(ctx)
	if err := widgets.Register(ctx, u, dialer); err != nil {
		return nil, err
	}
	if err := u.Start(); err != nil {
		return nil, errors.Annotate(err, "ui start")
	}
	return u, nil
}

// StopOnSignal stops g on SIGINT or SIGTERM.
func StopOnSignal(g *state.Global) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-ch
		g.Log.Infof("signal=%v stopping", s)
		g.Stop()
	}()
}
