package core

// The system tick is a free-running millisecond counter fed by the target
// (hardware timer) or the simulator. It wraps after ~49 days; compare ticks
// with TickBefore, never with <.
var systemTicks uint32

// GetTime returns the current system time in milliseconds
func GetTime() uint32 {
	return getSystemTicks()
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(ticks uint32) {
	setSystemTicks(ticks)
}

// TickBefore reports whether tick a comes before b, tolerating wraparound.
func TickBefore(a, b uint32) bool {
	return int32(a-b) < 0
}

// TicksSince returns the milliseconds elapsed from start to now.
func TicksSince(start, now uint32) uint32 {
	return now - start
}
