//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/max72xx"

	"epochclock/core"
	"epochclock/matrix"
)

// Fails to compile if the row registers used by matrix drift from the driver.
var _ = [1]struct{}{}[matrix.DigitRegisterBase-max72xx.REG_DIGIT0]

// NewMatrixDisplay configures SPI0 and the MAX7219 cascade and returns a
// display ready for core.App.
func NewMatrixDisplay(spi *machine.SPI, sck, sdo, cs machine.Pin, freqHz uint32, modules int, intensity uint8) (*matrix.Display, error) {
	err := spi.Configure(machine.SPIConfig{
		Frequency: freqHz,
		SCK:       sck,
		SDO:       sdo,
		Mode:      0,
	})
	if err != nil {
		return nil, err
	}

	cs.Configure(machine.PinConfig{Mode: machine.PinOutput})
	chain, err := matrix.NewChain(spi, cs.Set, modules)
	if err != nil {
		return nil, err
	}

	setup := []struct{ reg, value byte }{
		{max72xx.REG_DISPLAY_TEST, 0},
		{max72xx.REG_SCANLIMIT, 7},
		{max72xx.REG_DECODE_MODE, 0},
		{max72xx.REG_INTENSITY, intensity & 0x0F},
		{max72xx.REG_SHUTDOWN, 1},
	}
	for _, s := range setup {
		if err := chain.Broadcast(s.reg, s.value); err != nil {
			return nil, err
		}
	}

	d := matrix.NewDisplay(modules, chain)
	core.DebugValue("matrix modules", uint32(modules))
	return d, nil
}
