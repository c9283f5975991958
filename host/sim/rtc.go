// Package sim runs the clock application on a desktop: a clockwork-driven
// RTC, an EEPROM image file, a text rendering of the LED matrix and
// keyboard buttons.
package sim

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"epochclock/clock"
	"epochclock/core"
)

// RTC is a battery-backed clock simulated as an offset from a clockwork
// clock. It satisfies core.RTCDriver.
type RTC struct {
	mu     sync.Mutex
	clock  clockwork.Clock
	offset int64
	valid  bool
}

var _ core.RTCDriver = (*RTC)(nil)

// NewRTC follows clk. A zero start leaves the RTC reporting lost power, as
// a chip with a flat backup cell would; otherwise it starts at start.
func NewRTC(clk clockwork.Clock, start clock.Timestamp) *RTC {
	r := &RTC{clock: clk}
	if start != 0 {
		r.offset = int64(start) - clk.Now().Unix()
		r.valid = true
	}
	return r
}

// Now returns the simulated time.
func (r *RTC) Now() clock.Timestamp {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clock.Timestamp(uint32(r.clock.Now().Unix() + r.offset))
}

// Adjust moves the simulated time to ts.
func (r *RTC) Adjust(ts clock.Timestamp) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offset = int64(ts) - r.clock.Now().Unix()
	r.valid = true
}

// LostPower reports whether the clock has never been set.
func (r *RTC) LostPower() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.valid
}

// Time is Now as a time.Time in UTC.
func (r *RTC) Time() time.Time {
	return time.Unix(int64(r.Now()), 0).UTC()
}
