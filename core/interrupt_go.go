//go:build !tinygo

package core

// State stands in for the saved interrupt mask on regular Go builds.
type State uintptr

// disableInterrupts is a no-op on regular Go (tests and the simulator)
func disableInterrupts() State {
	return 0
}

// restoreInterrupts is a no-op on regular Go
func restoreInterrupts(State) {}
