package display

import (
	"strings"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyfont/proggy"
)

type fonts struct {
	small tinyfont.Fonter
	large tinyfont.Fonter
}

func defaultFonts() fonts {
	return fonts{
		small: &proggy.TinySZ8pt7b,
		large: &freemono.Bold9pt7b,
	}
}

// Text draws small font text, y is top of line. Newline starts next line at x.
func (d *Display) Text(x, y int, s string) {
	d.text(d.fonts.small, x, y, s)
}

// TextLarge is Text with large font.
func (d *Display) TextLarge(x, y int, s string) {
	d.text(d.fonts.large, x, y, s)
}

// TextWidth is pixel width of single line s in small font.
func (d *Display) TextWidth(s string) int {
	_, outbox := tinyfont.LineWidth(d.fonts.small, s)
	return int(outbox)
}

// LineHeight of small font.
func (d *Display) LineHeight() int {
	return int(d.fonts.small.GetYAdvance())
}

func (d *Display) text(f tinyfont.Fonter, x, y int, s string) {
	ascent := fontAscent(f)
	step := int(f.GetYAdvance())
	for i, line := range strings.Split(s, "\n") {
		if line == "" {
			continue
		}
		tinyfont.WriteLine(d, f, int16(x), int16(y+ascent+i*step), line, White)
	}
}

func fontAscent(f tinyfont.Fonter) int {
	if a := -int(f.GetGlyph('A').Info().YOffset); a > 0 {
		return a
	}
	return int(f.GetYAdvance())
}
