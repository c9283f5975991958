package core

import "epochclock/clock"

// RTCDriver is the real-time clock as the core sees it. Hardware setup
// (bus, oscillator, square wave) belongs to the target, not to this interface.
type RTCDriver interface {
	// Now returns the current UTC time.
	Now() clock.Timestamp

	// Adjust sets the clock to ts.
	Adjust(ts clock.Timestamp)
}

// RestoreAfterPowerLoss sets the RTC to fallback when its oscillator was
// stopped (the backup cell ran flat). It reports whether the clock was set.
func RestoreAfterPowerLoss(rtc RTCDriver, lostPower bool, fallback clock.Timestamp) bool {
	if !lostPower {
		DebugPrintln("rtc: time valid")
		return false
	}
	DebugTimestamp("rtc: lost power, setting", fallback)
	rtc.Adjust(fallback)
	return true
}
