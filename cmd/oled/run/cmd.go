// Daemon mode: real panel, buttons and video sockets.
package run

import (
	"context"
	"time"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/cmd/oled/subcmd"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/state"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/video"
	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
)

var Mod = subcmd.Mod{Name: "run", Main: Main}

func Main(ctx context.Context, config *state.Config) error {
	g := state.GetGlobal(ctx)
	u, err := subcmd.StartUI(ctx, config, video.NewSocketDialer())
	if err != nil {
		return errors.Annotate(err, "run")
	}
	subcmd.StopOnSignal(g)

	subcmd.SdNotify(daemon.SdNotifyReady)
	g.Log.Infof("oled init complete, running")
	u.Loop(ctx)

	g.Tele.Close()
	if !g.StopWait(5 * time.Second) {
		g.Log.Errorf("stop timeout")
	}
	return nil
}
