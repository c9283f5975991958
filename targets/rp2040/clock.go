//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"epochclock/core"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x08 // Raw timer high word
	timerTIMERAWL = timerBase + 0x0C // Raw timer low word
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// GetHardwareUptime reads the full 64-bit microsecond counter.
func GetHardwareUptime() uint64 {
	// High, low, high again: retry if the low word rolled over in between.
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()

		if high1 == high2 {
			return (uint64(high1) << 32) | uint64(low)
		}
	}
}

// UpdateSystemTime feeds the core millisecond tick from the hardware timer.
func UpdateSystemTime() uint32 {
	ms := uint32(GetHardwareUptime() / 1000)
	core.SetTime(ms)
	return ms
}
