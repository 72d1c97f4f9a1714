package input

import "github.com/aiemassfiria/huawei-oled-hijack-ng/internal/types"

// linux/input-event-codes.h
const (
	KeyCodeMenu  types.InputKey = 139
	KeyCodePower types.InputKey = 116
)

type KeyMap struct {
	Menu  types.InputKey
	Power types.InputKey
}

func DefaultKeyMap() KeyMap { return KeyMap{Menu: KeyCodeMenu, Power: KeyCodePower} }

// Button maps key release to button. Key press and unknown keys give ButtonNone.
func (self KeyMap) Button(e types.InputEvent) types.Button {
	if !e.Up {
		return types.ButtonNone
	}
	switch e.Key {
	case self.Menu:
		return types.ButtonMenu
	case self.Power:
		return types.ButtonPower
	}
	return types.ButtonNone
}

// Event builds synthetic key release, used by remote and console sources.
func (self KeyMap) Event(source string, b types.Button) types.InputEvent {
	e := types.InputEvent{Source: source, Up: true}
	switch b {
	case types.ButtonMenu:
		e.Key = self.Menu
	case types.ButtonPower:
		e.Key = self.Power
	}
	return e
}
