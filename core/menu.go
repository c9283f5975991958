package core

import "epochclock/clock"

// MenuOption is what the settings menu resolved to.
type MenuOption uint8

const (
	MenuNone MenuOption = iota
	MenuEditTime
	MenuEditEpoch
)

func (o MenuOption) String() string {
	switch o {
	case MenuEditTime:
		return "time"
	case MenuEditEpoch:
		return "epoch"
	default:
		return "none"
	}
}

// Menu toggles between the two editable timestamps. Settings flips the
// highlighted entry, Choose selects it, and an idle timeout closes the menu
// without a selection.
type Menu struct {
	highlight    MenuOption
	timeout      uint32
	lastActivity clock.Timestamp
	result       MenuOption
	done         bool
}

// NewMenu opens the menu with the current-time entry highlighted.
func NewMenu(now clock.Timestamp, timeout uint32) *Menu {
	return &Menu{
		highlight:    MenuEditTime,
		timeout:      timeout,
		lastActivity: now,
	}
}

// Highlighted returns the entry currently on screen.
func (m *Menu) Highlighted() MenuOption {
	return m.highlight
}

// Step applies one poll of clicks. Once it returns true, Selected holds
// the outcome.
func (m *Menu) Step(c Clicks, now clock.Timestamp) bool {
	if m.done {
		return true
	}

	if !c.Any() {
		d := int64(now) - int64(m.lastActivity)
		if d < 0 {
			m.lastActivity = now
		} else if d >= int64(m.timeout) {
			m.done = true
			m.result = MenuNone
			return true
		}
		return false
	}
	m.lastActivity = now

	if c.Settings%2 == 1 {
		if m.highlight == MenuEditTime {
			m.highlight = MenuEditEpoch
		} else {
			m.highlight = MenuEditTime
		}
	}
	if c.Choose > 0 {
		m.done = true
		m.result = m.highlight
		return true
	}
	return false
}

// Selected returns the chosen entry, or MenuNone while open or after a
// timeout.
func (m *Menu) Selected() MenuOption {
	if !m.done {
		return MenuNone
	}
	return m.result
}
