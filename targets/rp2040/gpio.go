//go:build rp2040

package main

import (
	"errors"
	"machine"

	"epochclock/core"
)

// RPGPIODriver implements core.GPIODriver for the buttons.
type RPGPIODriver struct {
	configuredPins map[core.GPIOPin]machine.Pin
}

// NewRPGPIODriver creates a new RP2040 GPIO driver
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{
		configuredPins: make(map[core.GPIOPin]machine.Pin),
	}
}

func (d *RPGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	if pin > 29 {
		return errors.New("invalid GPIO pin")
	}
	if _, exists := d.configuredPins[pin]; exists {
		return nil
	}

	machinePin := machine.Pin(pin)
	machinePin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	d.configuredPins[pin] = machinePin
	return nil
}

// ReadPin returns the level of a configured pin. Unconfigured pins read
// high, which is "not pressed" for the active-low buttons.
func (d *RPGPIODriver) ReadPin(pin core.GPIOPin) bool {
	machinePin, ok := d.configuredPins[pin]
	if !ok {
		return true
	}
	return machinePin.Get()
}
