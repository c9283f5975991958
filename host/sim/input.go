package sim

import (
	"sync"

	"epochclock/core"
)

// Button names the three physical buttons.
type Button int

const (
	ButtonMode Button = iota
	ButtonChoose
	ButtonSettings
)

// ButtonForKey maps keyboard keys to buttons: m for mode, c for choose and
// s for settings.
func ButtonForKey(r rune) (Button, bool) {
	switch r {
	case 'm', 'M':
		return ButtonMode, true
	case 'c', 'C':
		return ButtonChoose, true
	case 's', 'S':
		return ButtonSettings, true
	default:
		return 0, false
	}
}

// Keyboard counts simulated clicks. It satisfies core.InputDriver; key
// presses are already debounced, so Poll ignores the tick.
type Keyboard struct {
	mu      sync.Mutex
	pending core.Clicks
}

var _ core.InputDriver = (*Keyboard)(nil)

// Press records one click of b.
func (k *Keyboard) Press(b Button) {
	k.mu.Lock()
	defer k.mu.Unlock()
	switch b {
	case ButtonMode:
		k.pending.Mode++
	case ButtonChoose:
		k.pending.Choose++
	case ButtonSettings:
		k.pending.Settings++
	}
}

// Poll hands over the clicks recorded since the previous poll.
func (k *Keyboard) Poll(uint32) core.Clicks {
	k.mu.Lock()
	defer k.mu.Unlock()
	c := k.pending
	k.pending = core.Clicks{}
	return c
}
