// Package menu turns line-oriented helper output into paged, word-wrapped list
// navigated with two buttons.
//
// Helper output grammar, one record per line:
//
//	item:<label>:<action>   selectable line, empty action means leave screen
//	text:<free text>        word-wrapped to screen width
//	pagebreak:              blank lines up to next page start
//
// Anything else is ignored.
package menu

import (
	"strings"
	"unicode/utf8"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
)

const (
	Capacity = 128
	// Record length limit inherited from fixed size line slots.
	RecordMaxLen = 64

	PageSizeSmall = 4
	PageSizeLarge = 7

	BackLabel     = "<- Back"
	CallErrorText = "Call error"

	prefixItem      = "item:"
	prefixText      = "text:"
	prefixPagebreak = "pagebreak:"
)

type Kind uint8

const (
	KindEmpty Kind = iota
	KindBack
	KindItem
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindBack:
		return "back"
	case KindItem:
		return "item"
	case KindText:
		return "text"
	default:
		return "empty"
	}
}

type Line struct {
	Kind   Kind
	Label  string
	Action string
	Text   string
}

func Back() Line                     { return Line{Kind: KindBack, Label: BackLabel} }
func Item(label, action string) Line { return Line{Kind: KindItem, Label: label, Action: action} }
func Text(s string) Line             { return Line{Kind: KindText, Text: s} }
func (l Line) Selectable() bool      { return l.Kind == KindBack || l.Kind == KindItem }
func (l Line) IsEmpty() bool         { return l.Kind == KindEmpty }

type Config struct {
	PageSize int
	// Width in pixels available to text lines.
	Width int
	// Measure returns pixel width of single line string.
	Measure func(string) int
	// Repaint is called after helper output is applied.
	Repaint func()
}

type Menu struct {
	log    *log2.Log
	config Config
	lines  [Capacity]Line
	cursor int
	// top is first line of shown page, page aligned.
	// Differs from cursor page only while scrolling pages of text.
	top int
	// raw helper output of last Build
	raw string
}

func New(log *log2.Log, config Config) *Menu {
	if config.PageSize <= 0 {
		config.PageSize = PageSizeLarge
	}
	if config.Measure == nil {
		config.Measure = func(s string) int { return utf8.RuneCountInString(s) }
	}
	m := &Menu{log: log, config: config}
	m.Reset()
	return m
}

func (m *Menu) PageSize() int { return m.config.PageSize }
func (m *Menu) Cursor() int   { return m.cursor }
func (m *Menu) Top() int      { return m.top }

func (m *Menu) Line(i int) Line {
	if i < 0 || i >= Capacity {
		return Line{}
	}
	return m.lines[i]
}

// Len is number of populated lines, first empty slot marks end of data.
func (m *Menu) Len() int {
	for i := range m.lines {
		if m.lines[i].IsEmpty() {
			return i
		}
	}
	return Capacity
}

// Lines returns copy of populated lines.
func (m *Menu) Lines() []Line {
	n := m.Len()
	ls := make([]Line, n)
	copy(ls, m.lines[:n])
	return ls
}

func (m *Menu) Selected() Line { return m.lines[m.cursor] }

// Raw is helper output the table was built from, empty after Reset or Fail.
func (m *Menu) Raw() string { return m.raw }

// Reset leaves only BACK line, waiting for helper output.
func (m *Menu) Reset() {
	m.raw = ""
	m.lines[0] = Back()
	m.clearFrom(1)
}

// Fail shows single line error in place of helper output.
func (m *Menu) Fail() {
	m.raw = ""
	m.lines[0] = Back()
	m.lines[1] = Text(CallErrorText)
	m.clearFrom(2)
}

// Apply is process.DoneFunc for helper completion.
func (m *Menu) Apply(ok bool, output string) {
	if ok {
		m.Build(output)
	} else {
		m.log.Debugf("menu helper failed")
		m.Fail()
	}
	if m.config.Repaint != nil {
		m.config.Repaint()
	}
}

// Build replaces whole table from helper output. Cursor returns to BACK.
func (m *Menu) Build(raw string) {
	m.raw = raw
	m.lines[0] = Back()
	// last slot stays empty as end marker
	const last = Capacity - 1
	n := 1
	add := func(l Line) bool {
		if n >= last {
			return false
		}
		m.lines[n] = l
		n++
		return n < last
	}

	ps := m.config.PageSize
records:
	for _, record := range strings.Split(raw, "\n") {
		record = strings.TrimSuffix(record, "\r")
		switch {
		case strings.HasPrefix(record, prefixPagebreak):
			fill := (ps - n%ps) % ps
			for i := 0; i < fill; i++ {
				if !add(Text("")) {
					break records
				}
			}

		case strings.HasPrefix(record, prefixItem):
			line, ok := parseItem(record)
			if !ok {
				m.log.Infof("menu skip malformed item=%q", record)
				m.lines[n] = Line{}
				continue
			}
			if !add(line) {
				break records
			}

		case strings.HasPrefix(record, prefixText):
			for _, seg := range Wrap(record[len(prefixText):], m.config.Width, m.config.Measure) {
				if len(prefixText)+len(seg) >= RecordMaxLen-1 {
					break
				}
				if !add(Text(seg)) {
					break records
				}
			}
		}
	}
	m.clearFrom(n)
}

func parseItem(record string) (Line, bool) {
	if len(record) >= RecordMaxLen-1 {
		return Line{}, false
	}
	rest := record[len(prefixItem):]
	label, action := rest, ""
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		label, action = rest[:i], rest[i+1:]
	}
	if label == "" {
		return Line{}, false
	}
	return Item(label, action), true
}

func (m *Menu) clearFrom(i int) {
	for ; i < Capacity; i++ {
		m.lines[i] = Line{}
	}
	m.cursor = 0
	m.top = 0
}

// Wrap splits text into segments no wider than width, greedily.
// Segment never ends inside a word: cut point backs up to the last space
// and one following space is consumed too. Word longer than width is cut hard.
// Concatenated segments equal text.
func Wrap(text string, width int, measure func(string) int) []string {
	segs := []string{}
	for pos := 0; pos < len(text); {
		rest := text[pos:]
		w := fitPrefix(rest, width, measure)
		if w == 0 {
			break
		}
		if w < len(rest) {
			if rest[w] != ' ' {
				if sp := strings.LastIndexByte(rest[:w], ' '); sp >= 0 {
					w = sp + 1
				}
			}
			if w < len(rest) && rest[w] == ' ' {
				w++
			}
		}
		segs = append(segs, rest[:w])
		pos += w
	}
	return segs
}

// fitPrefix is max byte length of s prefix, on rune boundary, with measure <= width.
func fitPrefix(s string, width int, measure func(string) int) int {
	fit := 0
	for fit < len(s) {
		_, size := utf8.DecodeRuneInString(s[fit:])
		if measure(s[:fit+size]) > width {
			break
		}
		fit += size
	}
	return fit
}
