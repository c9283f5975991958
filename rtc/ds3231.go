// Package rtc adapts the DS3231 real-time clock to core.RTCDriver. It only
// needs an I2C bus, so the board and the tests share it.
package rtc

import (
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds3231"

	"epochclock/clock"
	"epochclock/core"
)

// CacheMs bounds how often the chip is read; the core asks for the time
// several times per loop iteration.
const CacheMs = 100

// DS3231 implements core.RTCDriver.
type DS3231 struct {
	bus     drivers.I2C
	dev     ds3231.Device
	address uint8

	cached   clock.Timestamp
	cachedAt uint32
	valid    bool
}

var _ core.RTCDriver = (*DS3231)(nil)

// NewDS3231 binds the driver to a configured bus. It does not touch the
// chip.
func NewDS3231(bus drivers.I2C, address uint8) *DS3231 {
	dev := ds3231.New(bus)
	dev.Address = uint16(address)
	return &DS3231{bus: bus, dev: dev, address: address}
}

// Probe reports whether the chip answers on the bus.
func (c *DS3231) Probe() bool {
	_, err := c.readRegister(ds3231.REG_STATUS)
	return err == nil
}

// Start restarts the oscillator if it was stopped.
func (c *DS3231) Start() error {
	c.dev.Configure()
	if c.dev.IsRunning() {
		return nil
	}
	core.DebugPrintln("rtc: oscillator stopped, starting it")
	return c.dev.SetRunning(true)
}

// LostPower reports whether the oscillator stopped since the time was last
// set.
func (c *DS3231) LostPower() bool {
	return !c.dev.IsTimeValid()
}

// EnableSquareWave turns off the 32 kHz output and both alarms and starts
// the 1 Hz square wave on SQW.
func (c *DS3231) EnableSquareWave() error {
	ctrl, err := c.readRegister(ds3231.REG_CONTROL)
	if err != nil {
		return err
	}
	// INTCN low selects the square wave; RS2:RS1 = 00 is 1 Hz.
	ctrl &^= 1<<ds3231.INTCN | 1<<ds3231.RS1 | 1<<ds3231.RS2 | 1<<ds3231.A1IE | 1<<ds3231.A2IE
	if err := c.writeRegister(ds3231.REG_CONTROL, ctrl); err != nil {
		return err
	}

	stat, err := c.readRegister(ds3231.REG_STATUS)
	if err != nil {
		return err
	}
	stat &^= 1<<ds3231.EN32KHZ | ds3231.AlarmFlag_AlarmBoth
	return c.writeRegister(ds3231.REG_STATUS, stat)
}

// Now returns the chip time, re-reading it at most every CacheMs. A failed
// read keeps the last good value.
func (c *DS3231) Now() clock.Timestamp {
	now := core.GetTime()
	if c.valid && core.TicksSince(c.cachedAt, now) < CacheMs {
		return c.cached
	}
	t, err := c.dev.ReadTime()
	if err != nil {
		core.DebugPrintln("rtc: read failed: " + err.Error())
		return c.cached
	}
	c.cached = clock.Timestamp(uint32(t.Unix()))
	c.cachedAt = now
	c.valid = true
	return c.cached
}

// Adjust sets the chip. SetTime also clears the oscillator-stop flag.
func (c *DS3231) Adjust(ts clock.Timestamp) {
	if err := c.dev.SetTime(time.Unix(int64(ts), 0).UTC()); err != nil {
		core.DebugPrintln("rtc: set failed: " + err.Error())
		return
	}
	c.cached = ts
	c.cachedAt = core.GetTime()
	c.valid = true
}

func (c *DS3231) readRegister(reg uint8) (uint8, error) {
	buf := []byte{0}
	err := c.bus.Tx(uint16(c.address), []byte{reg}, buf)
	return buf[0], err
}

func (c *DS3231) writeRegister(reg, value uint8) error {
	return c.bus.Tx(uint16(c.address), []byte{reg, value}, nil)
}
