package menu

import (
	"fmt"
	"image"
	"math/rand"
	"strings"
	"testing"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/display"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/process"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func measure6(s string) int { return 6 * len(s) }

func newTestMenu(t testing.TB, pageSize int) *Menu {
	return New(log2.NewTest(t, log2.LDebug), Config{PageSize: pageSize, Width: 60, Measure: measure6})
}

func TestBuildScenario(t *testing.T) {
	t.Parallel()

	m := newTestMenu(t, 4)
	m.Build("item:Wi-Fi:wifi_on\ntext:Status OK\npagebreak:\nitem:Scan:scan_now")
	expect := []Line{
		Back(),
		Item("Wi-Fi", "wifi_on"),
		Text("Status OK"),
		Text(""),
		Item("Scan", "scan_now"),
	}
	assert.Equal(t, expect, m.Lines())
	assert.Equal(t, 0, m.Cursor())
	m.Next()
	assert.Equal(t, 1, m.Cursor())
}

func TestBuild(t *testing.T) {
	t.Parallel()

	type Case struct {
		name   string
		input  string
		expect []Line
	}
	cases := []Case{
		{"empty", "", []Line{Back()}},
		{"unknown-records", "hello\nbye:\n\n", []Line{Back()}},
		{"item-no-action", "item:Exit", []Line{Back(), Item("Exit", "")}},
		{"item-empty-action", "item:Exit:", []Line{Back(), Item("Exit", "")}},
		{"item-colon-action", "item:Set:ttl 64:persist", []Line{Back(), Item("Set", "ttl 64:persist")}},
		{"item-malformed", "item:\nitem::x\nitem:A:a", []Line{Back(), Item("A", "a")}},
		{"item-too-long", "item:" + strings.Repeat("x", 58) + "\nitem:B:b", []Line{Back(), Item("B", "b")}},
		{"item-max-len", "item:" + strings.Repeat("x", 57), []Line{Back(), Item(strings.Repeat("x", 57), "")}},
		{"crlf", "item:A:a\r\ntext:t\r\n", []Line{Back(), Item("A", "a"), Text("t")}},
		{"pagebreak-aligned", "text:1\ntext:2\ntext:3\npagebreak:\ntext:4",
			[]Line{Back(), Text("1"), Text("2"), Text("3"), Text("4")}},
		{"pagebreak-fill", "pagebreak:\ntext:x",
			[]Line{Back(), Text(""), Text(""), Text(""), Text("x")}},
		{"text-wrap", "text:one two three four",
			[]Line{Back(), Text("one two "), Text("three four")}},
		{"text-empty", "text:", []Line{Back()}},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			m := newTestMenu(t, 4)
			m.Build(c.input)
			assert.Equal(t, c.expect, m.Lines())
		})
	}
}

func TestBuildMalformedNotError(t *testing.T) {
	t.Parallel()

	log := log2.NewTest(t, log2.LDebug)
	errs := 0
	log.SetErrorFunc(func(error) { errs++ })
	m := New(log, Config{PageSize: 4, Width: 60, Measure: measure6})
	m.Build("item::x\nitem:A:a")
	assert.Equal(t, []Line{Back(), Item("A", "a")}, m.Lines())
	assert.Equal(t, 0, errs, "malformed helper line must not reach error hook")
}

func TestBuildIdempotent(t *testing.T) {
	t.Parallel()

	raw := "item:Mode:set 4g\ntext:Current mode is automatic with LTE preferred\npagebreak:\nitem:Auto:set auto"
	m1 := newTestMenu(t, 7)
	m1.Build(raw)
	m2 := newTestMenu(t, 7)
	m2.Build(raw)
	m2.Build(raw)
	assert.Equal(t, m1.lines, m2.lines)
}

func TestBuildOverflow(t *testing.T) {
	t.Parallel()

	m := newTestMenu(t, 7)
	b := strings.Builder{}
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&b, "item:n%d:a%d\n", i, i)
	}
	m.Build(b.String())
	assert.Equal(t, Capacity-1, m.Len())
	assert.Equal(t, Item("n125", "a125"), m.Line(Capacity-2))
	assert.True(t, m.Line(Capacity-1).IsEmpty())

	// smaller build clears stale lines
	m.Build("item:x:y")
	assert.Equal(t, 2, m.Len())
	for i := 2; i < Capacity; i++ {
		require.True(t, m.Line(i).IsEmpty(), "i=%d", i)
	}

	m.Build(strings.Repeat("pagebreak:\ntext:z\n", 100))
	assert.Equal(t, Capacity-1, m.Len())
}

func TestApply(t *testing.T) {
	t.Parallel()

	repaints := 0
	m := New(log2.NewTest(t, log2.LDebug), Config{PageSize: 4, Width: 60, Measure: measure6, Repaint: func() { repaints++ }})
	m.Apply(true, "item:A:a\nitem:B:b")
	assert.Equal(t, "item:A:a\nitem:B:b", m.Raw())
	m.Next()
	m.Next()
	assert.Equal(t, 2, m.Cursor())
	m.Apply(false, "item:ignored:x")
	assert.Equal(t, []Line{Back(), Text(CallErrorText)}, m.Lines())
	assert.Equal(t, 0, m.Cursor())
	assert.Equal(t, 2, repaints)
	assert.Equal(t, "", m.Raw())

	m.Reset()
	assert.Equal(t, []Line{Back()}, m.Lines())
}

func TestNext(t *testing.T) {
	t.Parallel()

	type Case struct {
		name    string
		input   string
		presses int
		expect  []int // cursor after each press
		top     []int
	}
	cases := []Case{
		{"only-back", "", 3, []int{0, 0, 0}, []int{0, 0, 0}},
		{"items", "item:a:1\nitem:b:2", 3, []int{1, 2, 0}, []int{0, 0, 0}},
		{"skip-text", "text:x\nitem:a:1\ntext:y\nitem:b:2", 3, []int{2, 4, 0}, []int{0, 4, 0}},
		{"text-pages", "text:1\ntext:2\ntext:3\ntext:4\ntext:5\ntext:6\ntext:7\nitem:far:x", 3,
			[]int{0, 8, 0}, []int{4, 8, 0}},
		{"tail-text", "item:a:1\nitem:b:2\ntext:3\ntext:4", 3, []int{1, 2, 0}, []int{0, 0, 4}},
		{"blank", strings.Repeat("text: \n", 20), 8,
			[]int{0, 0, 0, 0, 0, 0, 0, 0}, []int{4, 8, 12, 16, 20, 0, 4, 8}},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			m := newTestMenu(t, 4)
			m.Build(c.input)
			for i := 0; i < c.presses; i++ {
				m.Next()
				assert.Equal(t, c.expect[i], m.Cursor(), "press=%d", i+1)
				assert.Equal(t, c.top[i], m.Top(), "press=%d", i+1)
				assert.True(t, m.Selected().Selectable(), "press=%d", i+1)
			}
		})
	}
}

func TestNextNeverText(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewSource(1))
	for round := 0; round < 200; round++ {
		b := strings.Builder{}
		for i := rnd.Intn(150); i > 0; i-- {
			switch rnd.Intn(3) {
			case 0:
				b.WriteString("item:i:a\n")
			case 1:
				b.WriteString("text:t\n")
			case 2:
				b.WriteString("pagebreak:\n")
			}
		}
		ps := PageSizeSmall
		if round%2 == 1 {
			ps = PageSizeLarge
		}
		m := newTestMenu(t, ps)
		m.Build(b.String())
		for press := 0; press < 300; press++ {
			m.Next()
			require.True(t, m.Selected().Selectable(), "round=%d press=%d cursor=%d", round, press, m.Cursor())
			require.True(t, m.Top()%ps == 0)
		}
	}
}

func TestWrapProperty(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewSource(2))
	const letters = "abcdefghijklmnopqrstuvwxyz"
	for round := 0; round < 500; round++ {
		width := 6 * (6 + rnd.Intn(20))
		maxWord := width/6 - 1
		words := []string{}
		for i := rnd.Intn(30); i > 0; i-- {
			n := 1 + rnd.Intn(maxWord)
			w := make([]byte, n)
			for j := range w {
				w[j] = letters[rnd.Intn(len(letters))]
			}
			words = append(words, string(w))
		}
		text := strings.Join(words, " ")
		segs := Wrap(text, width, measure6)
		require.Equal(t, text, strings.Join(segs, ""), "round=%d", round)
		for i, seg := range segs {
			require.True(t, measure6(strings.TrimRight(seg, " ")) <= width, "round=%d seg=%q", round, seg)
			if i+1 < len(segs) {
				next := segs[i+1]
				midWord := seg[len(seg)-1] != ' ' && next[0] != ' '
				require.False(t, midWord, "round=%d width=%d segs=%q", round, width, segs)
			}
		}
	}
}

func TestWrapEdges(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{}, Wrap("", 60, measure6))
	assert.Equal(t, []string{"abcdefghij", "klm"}, Wrap("abcdefghijklm", 60, measure6))
	assert.Equal(t, []string{"abc ", "def"}, Wrap("abc def", 30, measure6))
	assert.Equal(t, []string{"abcde ", "f"}, Wrap("abcde f", 30, measure6))
	assert.Equal(t, []string{}, Wrap("abc", 5, measure6))
	assert.Equal(t, []string{"привет ", "мир"}, Wrap("привет мир", 36, func(s string) int { return 6 * len([]rune(s)) }))
}

func TestActivate(t *testing.T) {
	t.Parallel()

	m := newTestMenu(t, 4)
	runner := &process.Fake{}
	leaves := 0
	leave := func() { leaves++ }

	m.Activate("/app/hijack/scripts/wifi.sh", runner, leave)
	assert.Equal(t, 1, leaves)
	assert.Empty(t, runner.Commands)

	m.Build("item:Enable:wifi_on\ntext:info\nitem:Close")
	m.Next()
	m.Activate("/app/hijack/scripts/wifi.sh", runner, leave)
	assert.Equal(t, "/app/hijack/scripts/wifi.sh wifi_on", runner.Last())
	require.True(t, runner.Complete(true, "text:Enabled"))
	assert.Equal(t, []Line{Back(), Text("Enabled")}, m.Lines())

	m.Build("item:Enable:wifi_on\ntext:info\nitem:Close")
	m.Next()
	m.Next()
	assert.Equal(t, 3, m.Cursor())
	m.Activate("/app/hijack/scripts/wifi.sh", runner, leave)
	assert.Equal(t, 2, leaves)

	m.Build("item:Long:" + strings.Repeat("a", 50))
	m.Next()
	m.Activate(strings.Repeat("/x", 110), runner, leave)
	assert.Len(t, runner.Commands, 1)
}

func TestActivateScrolledOut(t *testing.T) {
	t.Parallel()

	m := newTestMenu(t, 4)
	runner := &process.Fake{}
	m.Build(strings.Repeat("text:x\n", 8))
	m.Next()
	require.Equal(t, 4, m.Top())
	m.Activate("s", runner, func() { t.Fatal("leave called") })
	assert.Empty(t, runner.Commands)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	m := newTestMenu(t, 4)
	m.Build("item:old:x")
	runner := &process.Fake{}
	m.Load("/app/hijack/scripts/radio_mode.sh", runner)
	assert.Equal(t, []Line{Back()}, m.Lines())
	assert.Equal(t, "/app/hijack/scripts/radio_mode.sh", runner.Last())
	runner.Complete(true, "item:4G:set_4g")
	assert.Equal(t, 2, m.Len())
}

func TestPaint(t *testing.T) {
	t.Parallel()

	d := display.NewMock(image.Point{X: 128, Y: 64})
	m := New(log2.NewTest(t, log2.LDebug), ForDisplay(d, nil))
	assert.Equal(t, PageSizeSmall, m.PageSize())
	m.Build("item:a:1\nitem:b:2\nitem:c:3\nitem:d:4")
	m.Paint(d)
	assert.True(t, d.Lit(121, 55), "more indicator")
	drawn := d.String2()

	// cursor mark moves
	d.Clear()
	m.Next()
	m.Paint(d)
	assert.NotEqual(t, drawn, d.String2())

	// last page has no indicator
	d.Clear()
	m.Next()
	m.Next()
	m.Next()
	require.Equal(t, 4, m.Cursor())
	m.Paint(d)
	assert.False(t, d.Lit(121, 55))

	large := display.NewMock(image.Point{X: 128, Y: 128})
	ml := New(log2.NewTest(t, log2.LDebug), ForDisplay(large, nil))
	assert.Equal(t, PageSizeLarge, ml.PageSize())
	ml.Build(strings.Repeat("text:line\n", 8))
	ml.Paint(large)
	assert.True(t, large.Lit(23, 113), "more indicator")
}
