// Developer console: same screens on in-memory display, keys are typed.
package console

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/cmd/oled/subcmd"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/helpers/cli"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/state"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/ui"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/video"
	"github.com/c-bata/go-prompt"
	"github.com/juju/errors"
)

const modName = "console"

const usage = `commands:
- menu, m     MENU button
- power, p    POWER button
- show, s     print display
- state       active screen and display power
- enter N     jump to screen N
- reset       deinit all screens, back to root
`

var Mod = subcmd.Mod{Name: modName, Main: Main}

func Main(ctx context.Context, config *state.Config) error {
	g := state.GetGlobal(ctx)
	config.Display.Framebuffer = ""
	config.Display.PowerPin = ""
	config.Input.DevInputEvent.Enable = false
	u, err := subcmd.StartUI(ctx, config, video.NewSocketDialer())
	if err != nil {
		return errors.Annotate(err, modName)
	}
	go u.Loop(ctx)

	g.Log.Debugf("console init complete")
	fmt.Print(usage)
	cli.MainLoop("oled-"+modName, newExecutor(ctx, u), newCompleter(), g.Stop)

	g.Tele.Close()
	g.StopWait(5 * time.Second)
	return nil
}

func newCompleter() func(d prompt.Document) []prompt.Suggest {
	suggests := []prompt.Suggest{
		{Text: "menu", Description: "MENU button"},
		{Text: "power", Description: "POWER button"},
		{Text: "show", Description: "print display"},
		{Text: "state", Description: "active screen"},
		{Text: "enter", Description: "jump to screen N"},
		{Text: "reset", Description: "back to root"},
	}
	return func(d prompt.Document) []prompt.Suggest {
		return prompt.FilterHasPrefix(suggests, d.GetWordBeforeCursor(), true)
	}
}

func newExecutor(ctx context.Context, u *ui.UI) func(string) {
	g := state.GetGlobal(ctx)
	show := func() {
		g.PostWait(func() {
			_, _ = os.Stdout.WriteString(u.Display().String2())
			fmt.Println(u.String())
		})
	}

	return func(line string) {
		parts := strings.Fields(line)
		if len(parts) == 0 {
			return
		}
		switch parts[0] {
		case "menu", "m":
			g.PostWait(u.DispatchMenuKey)
			show()
		case "power", "p":
			g.PostWait(u.DispatchPowerKey)
			show()
		case "show", "s":
			show()
		case "state":
			g.PostWait(func() { fmt.Println(u.String()) })
		case "enter":
			if len(parts) != 2 {
				g.Log.Errorf("usage: enter N")
				return
			}
			i, err := strconv.Atoi(parts[1])
			if err != nil {
				g.Log.Errorf("enter: %v", err)
				return
			}
			g.PostWait(func() { _ = u.Enter(i) })
			show()
		case "reset":
			g.PostWait(u.ResetAll)
			show()
		case "help", "?":
			fmt.Print(usage)
		default:
			g.Log.Errorf("unknown command=%q", parts[0])
			fmt.Print(usage)
		}
	}
}
