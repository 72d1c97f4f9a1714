package widgets

import (
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/display"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/menu"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/process"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
	"github.com/juju/errors"
)

// CustomScriptMaxLen limits script path picked in user scripts launcher.
const CustomScriptMaxLen = 128

// ScriptMenu is paged menu filled by helper script.
// Item action is passed back to the same script as argument.
type ScriptMenu struct {
	log    *log2.Log
	runner process.Runner
	nav    Navigator
	script string
	menu   *menu.Menu
}

func NewScriptMenu(log *log2.Log, runner process.Runner, nav Navigator, script string, config menu.Config) *ScriptMenu {
	return &ScriptMenu{
		log:    log,
		runner: runner,
		nav:    nav,
		script: script,
		menu:   menu.New(log, config),
	}
}

func (self *ScriptMenu) Menu() *menu.Menu { return self.menu }
func (self *ScriptMenu) Script() string   { return self.script }

func (self *ScriptMenu) Init()                    { self.menu.Load(self.script, self.runner) }
func (self *ScriptMenu) Paint(d *display.Display) { self.menu.Paint(d) }
func (self *ScriptMenu) OnMenuKey()               { self.menu.Next() }
func (self *ScriptMenu) OnPowerKey()              { self.menu.Activate(self.script, self.runner, self.nav.Leave) }

// CustomScript is ScriptMenu with script chosen at runtime by UserScripts.
type CustomScript struct {
	ScriptMenu
}

func NewCustomScript(log *log2.Log, runner process.Runner, nav Navigator, config menu.Config) *CustomScript {
	return &CustomScript{ScriptMenu: *NewScriptMenu(log, runner, nav, "", config)}
}

func (self *CustomScript) SetScript(script string) error {
	if script == "" {
		return errors.NotValidf("custom script empty")
	}
	if len(script) >= CustomScriptMaxLen {
		return errors.NotValidf("custom script=%q too long", script)
	}
	self.script = script
	return nil
}

func (self *CustomScript) Init() {
	if self.script == "" {
		self.log.Errorf("custom script is not set")
		self.menu.Fail()
		return
	}
	self.ScriptMenu.Init()
}

// UserScripts lists user scripts. Item action is script path,
// POWER on item opens it in CustomScript screen.
type UserScripts struct {
	ScriptMenu
	custom      *CustomScript
	customIndex int
}

func NewUserScripts(log *log2.Log, runner process.Runner, nav Navigator, script string, config menu.Config, custom *CustomScript) *UserScripts {
	return &UserScripts{
		ScriptMenu: *NewScriptMenu(log, runner, nav, script, config),
		custom:     custom,
	}
}

func (self *UserScripts) OnPowerKey() {
	if !self.menu.CursorShown() {
		return
	}
	line := self.menu.Selected()
	if !line.Selectable() {
		return
	}
	if line.Action == "" {
		self.nav.Leave()
		return
	}
	if err := self.custom.SetScript(line.Action); err != nil {
		self.log.Error(errors.Annotate(err, "user scripts"))
		return
	}
	_ = self.nav.Enter(self.customIndex)
}
