package core

import "epochclock/clock"

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	if writer == nil {
		writer = func(string) {}
	}
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled {
		debugPrintln(msg)
	}
}

// DebugValue writes "label=value".
func DebugValue(label string, v uint32) {
	if debugEnabled {
		debugPrintln(label + "=" + utoa(v))
	}
}

// DebugTimestamp writes a timestamp both raw and as UTC calendar time.
func DebugTimestamp(label string, ts clock.Timestamp) {
	if debugEnabled {
		debugPrintln(label + "=" + utoa(uint32(ts)) + " (" + clock.CivilFromAbsolute(ts, 0).String() + " UTC)")
	}
}
