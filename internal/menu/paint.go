package menu

import (
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/display"
)

const (
	lineStep     = 15
	firstPageGap = 3
	marginTop    = 3
	textX        = 5
	itemX        = 20
	CursorMark   = "#"
	moreWidth    = 7
)

// Paint draws shown page. Selected line gets cursor mark, BACK on first page is
// separated by small gap, triangle at the bottom means next page has data.
func (m *Menu) Paint(d *display.Display) {
	ps := m.config.PageSize
	i := 0
	for ; i < ps && m.top+i < Capacity; i++ {
		idx := m.top + i
		line := m.lines[idx]
		if line.IsEmpty() {
			break
		}
		y := marginTop + i*lineStep
		if m.top == 0 && i > 0 {
			y += firstPageGap
		}
		switch line.Kind {
		case KindBack, KindItem:
			if idx == m.cursor {
				d.Text(textX, y, CursorMark)
			}
			d.Text(itemX, y, line.Label)
		case KindText:
			d.Text(textX, y, line.Text)
		}
	}
	if i == ps && m.top+i < Capacity && !m.lines[m.top+i].IsEmpty() {
		PaintMore(d)
	}
}

// PaintMore draws "next page" triangle at the bottom.
func PaintMore(d *display.Display) {
	if d.Small() {
		d.Triangle(118, 54, moreWidth, display.White)
	} else {
		d.Triangle(20, 112, moreWidth, display.White)
	}
}

// ForDisplay is Config matching panel geometry and font.
func ForDisplay(d *display.Display, repaint func()) Config {
	c := Config{
		PageSize: PageSizeLarge,
		Width:    d.Bounds().X - textX,
		Measure:  d.TextWidth,
		Repaint:  repaint,
	}
	if d.Small() {
		c.PageSize = PageSizeSmall
	}
	return c
}
