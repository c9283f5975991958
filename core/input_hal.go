package core

// Clicks holds completed button clicks since the previous poll.
//
// Outside a menu Mode cycles the display format and Settings opens the menu.
// Inside the menu Settings toggles the view and Choose selects it. While a
// field is being edited Choose increments, Mode decrements and Settings
// confirms the field.
type Clicks struct {
	Mode     int
	Choose   int
	Settings int
}

// Any reports whether any button was clicked.
func (c Clicks) Any() bool {
	return c.Mode != 0 || c.Choose != 0 || c.Settings != 0
}

// InputDriver supplies debounced click counts. nowMillis is a free-running
// millisecond counter used for debouncing.
type InputDriver interface {
	Poll(nowMillis uint32) Clicks
}
