package core

import "sync/atomic"

// RefreshFlag is the one value shared with interrupt context. The RTC square
// wave handler calls Set; the main loop calls Take once per iteration.
type RefreshFlag struct {
	v uint32
}

// Set marks a redraw as pending. Safe to call from an interrupt handler.
func (f *RefreshFlag) Set() {
	atomic.StoreUint32(&f.v, 1)
}

// Take reports whether a redraw was pending and clears the flag.
func (f *RefreshFlag) Take() bool {
	return atomic.SwapUint32(&f.v, 0) == 1
}

// Pending reports the flag without clearing it.
func (f *RefreshFlag) Pending() bool {
	return atomic.LoadUint32(&f.v) == 1
}
