// Package widgets is the set of screens shown by ui: root list, script backed
// menus (optionally polling for USSD answer), user scripts launcher and video.
package widgets

import (
	"context"
	"path/filepath"
	"time"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/helpers"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/menu"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/state"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/ui"
	ui_config "github.com/aiemassfiria/huawei-oled-hijack-ng/internal/ui/config"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/video"
	"github.com/juju/errors"
)

const (
	RootName         = "main"
	CustomScriptName = "user custom script"

	DefaultCustomScriptSleep = 20 * time.Second
)

// Navigator is subset of ui.UI used by screens.
type Navigator interface {
	Enter(i int) error
	Leave()
	Repaint()
}

var _ Navigator = &ui.UI{} // compile-time interface test

// Register builds screen table from config and registers it in u.
// Index 0 is root, then configured screens in order, then user custom script if needed.
func Register(ctx context.Context, u *ui.UI, dialer video.Dialer) error {
	ds, err := Build(ctx, u, dialer)
	if err != nil {
		return err
	}
	return errors.Annotate(u.Register(ds), "widgets")
}

func Build(ctx context.Context, u *ui.UI, dialer video.Dialer) ([]ui.Descriptor, error) {
	g := state.GetGlobal(ctx)
	config := &g.Config.UI
	d := u.Display()
	menuConfig := menu.ForDisplay(d, u.Repaint)

	labels := make([]string, 0, len(config.Screens))
	for _, s := range config.Screens {
		labels = append(labels, s.Name)
	}
	root := NewRoot(g.Log, u, g.Runner, labels, menuConfig.PageSize)
	root.BackCommand = config.RootBackCommand
	root.Notify = g.Tele.Notify
	ds := make([]ui.Descriptor, 0, len(config.Screens)+2)
	ds = append(ds, ui.Descriptor{
		Name:   RootName,
		Sleep:  helpers.IntSecondDefault(config.RootSleepSec, ui_config.DefaultRootSleep),
		Parent: 0,
		Widget: root,
	})

	var custom *CustomScript
	var users []*UserScripts
	for _, s := range config.Screens {
		desc := ui.Descriptor{
			Name:   s.Name,
			Sleep:  helpers.IntSecondDefault(s.SleepSec, ui_config.DefaultScriptSleep),
			Parent: 0,
		}
		switch s.Kind {
		case ui_config.KindScript, "":
			if s.Script == "" {
				return nil, errors.NotValidf("screen=%s script empty", s.Name)
			}
			path := scriptPath(config.ScriptsDir, s.Script)
			if s.PollMs > 0 {
				every := time.Duration(s.PollMs) * time.Millisecond
				desc.Widget = NewPollScriptMenu(g.Log, g.Runner, g.Background, g.Scheduler, u, path, menuConfig, every)
			} else {
				desc.Widget = NewScriptMenu(g.Log, g.Runner, u, path, menuConfig)
			}

		case ui_config.KindUserScripts:
			if s.Script == "" {
				return nil, errors.NotValidf("screen=%s script empty", s.Name)
			}
			if custom == nil {
				custom = NewCustomScript(g.Log, g.Runner, u, menuConfig)
			}
			w := NewUserScripts(g.Log, g.Runner, u, scriptPath(config.ScriptsDir, s.Script), menuConfig, custom)
			users = append(users, w)
			desc.Widget = w

		case ui_config.KindVideo:
			w, err := NewVideo(g.Log, g.Scheduler, g.Config.Video, dialer, d, u)
			if err != nil {
				return nil, errors.Annotatef(err, "screen=%s", s.Name)
			}
			desc.Widget = w

		default:
			return nil, errors.NotValidf("screen=%s kind=%s", s.Name, s.Kind)
		}
		ds = append(ds, desc)
	}

	if custom != nil {
		// custom script returns to the launcher that started it
		parent := 0
		for i := range ds {
			if _, ok := ds[i].Widget.(*UserScripts); ok {
				parent = i
				break
			}
		}
		customIndex := len(ds)
		for _, w := range users {
			w.customIndex = customIndex
		}
		ds = append(ds, ui.Descriptor{
			Name:   CustomScriptName,
			Sleep:  helpers.IntSecondDefault(config.CustomScriptSleepSec, DefaultCustomScriptSleep),
			Parent: parent,
			Widget: custom,
		})
	}
	return ds, nil
}

func scriptPath(dir, script string) string {
	if filepath.IsAbs(script) {
		return script
	}
	return filepath.Join(dir, script)
}
