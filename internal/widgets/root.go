package widgets

import (
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/display"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/menu"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/process"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
)

// NotifyLongMenu is sent when user picks BACK on root screen.
// Host firmware treats it as long MENU press and leaves custom UI.
const NotifyLongMenu = "longmenu"

const (
	rootMarkX  = 4
	rootLabelX = 20
	rootTop    = 3
	rootStep   = 15
	rootGap    = 3
)

// Root is static list of screens. Line i (i>0) enters widget i.
type Root struct {
	BackCommand string
	Notify      func(text string)

	log      *log2.Log
	nav      Navigator
	runner   process.Runner
	lines    []string
	cursor   int
	pageSize int
}

func NewRoot(log *log2.Log, nav Navigator, runner process.Runner, labels []string, pageSize int) *Root {
	lines := make([]string, 0, len(labels)+1)
	lines = append(lines, menu.BackLabel)
	lines = append(lines, labels...)
	return &Root{
		log:      log,
		nav:      nav,
		runner:   runner,
		lines:    lines,
		pageSize: pageSize,
	}
}

func (self *Root) Cursor() int { return self.cursor }

func (self *Root) Init() { self.cursor = 0 }

func (self *Root) OnMenuKey() {
	self.cursor++
	if self.cursor >= len(self.lines) {
		self.cursor = 0
	}
}

func (self *Root) OnPowerKey() {
	if self.cursor != 0 {
		_ = self.nav.Enter(self.cursor)
		return
	}
	self.log.Debugf("root back, notify host")
	if self.BackCommand != "" {
		self.runner.Spawn(self.BackCommand, func(ok bool, _ string) {
			if !ok {
				self.log.Errorf("root back command=%q failed", self.BackCommand)
			}
		})
	}
	if self.Notify != nil {
		self.Notify(NotifyLongMenu)
	}
}

func (self *Root) Paint(d *display.Display) {
	first := self.cursor / self.pageSize * self.pageSize
	for i := 0; i < self.pageSize && first+i < len(self.lines); i++ {
		idx := first + i
		y := rootTop + i*rootStep
		if idx != 0 {
			y += rootGap
		}
		if idx == self.cursor {
			d.Text(rootMarkX, y, menu.CursorMark)
		}
		d.Text(rootLabelX, y, self.lines[idx])
	}
	if first+self.pageSize < len(self.lines) {
		menu.PaintMore(d)
	}
}
