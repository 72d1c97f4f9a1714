package menu

import (
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/process"
)

const CommandMaxLen = 256

// Next moves cursor to following ITEM, scanning at most two pages from current page.
// Without ITEM in sight cursor returns to BACK. If next page has data
// the shown page scrolls there, so long text remains readable.
func (m *Menu) Next() {
	ps := m.config.PageSize
	n := m.Len()
	pos := m.cursor
	if !m.CursorShown() {
		pos = m.top
	}
	first := pos / ps * ps
	limit := first + 2*ps - 1
	if limit > n {
		limit = n
	}
	for i := pos + 1; i < limit; i++ {
		if m.lines[i].Kind == KindItem {
			m.cursor = i
			m.top = i / ps * ps
			return
		}
	}
	if first+ps < n {
		m.cursor = 0
		m.top = first + ps
		return
	}
	m.cursor = 0
	m.top = 0
}

// CursorShown is false while pages of text are scrolled past cursor.
func (m *Menu) CursorShown() bool {
	return m.cursor/m.config.PageSize*m.config.PageSize == m.top
}

// Activate runs selected line: BACK or ITEM without action calls leave,
// ITEM with action spawns `prefix action` and rebuilds from its output.
// Nothing happens while cursor is scrolled out of view.
func (m *Menu) Activate(prefix string, runner process.Runner, leave func()) {
	if !m.CursorShown() {
		m.log.Debugf("menu activate ignored, cursor=%d not on shown page=%d", m.cursor, m.top)
		return
	}
	line := m.Selected()
	if !line.Selectable() {
		return
	}
	if line.Action == "" {
		leave()
		return
	}
	command := prefix + " " + line.Action
	if len(command) >= CommandMaxLen {
		m.log.Errorf("menu command too long=%q", command)
		return
	}
	m.log.Debugf("menu calling: %s", command)
	runner.Spawn(command, m.Apply)
}

// Load resets menu and starts helper for initial content.
func (m *Menu) Load(command string, runner process.Runner) {
	m.Reset()
	runner.Spawn(command, m.Apply)
}
