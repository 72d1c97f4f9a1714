package types

import (
	"fmt"
	"strings"
)

// InputKey is raw key code as reported by input source, e.g. linux KEY_POWER=116.
type InputKey uint16

type InputEvent struct {
	Source string
	Key    InputKey
	Up     bool
}

func (e *InputEvent) IsZero() bool { return e.Key == 0 }

func (e InputEvent) String() string {
	return fmt.Sprintf("InputEvent(source=%s key=%d up=%t)", e.Source, e.Key, e.Up)
}

// Button is one of two physical buttons the whole UI is driven by.
type Button uint8

const (
	ButtonNone Button = iota
	ButtonMenu
	ButtonPower
)

func (b Button) String() string {
	switch b {
	case ButtonMenu:
		return "menu"
	case ButtonPower:
		return "power"
	default:
		return "none"
	}
}

func ParseButton(s string) (Button, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "menu", "m":
		return ButtonMenu, nil
	case "power", "p":
		return ButtonPower, nil
	}
	return ButtonNone, fmt.Errorf("unknown button=%q valid: menu, power", s)
}
