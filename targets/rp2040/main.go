//go:build rp2040

package main

import (
	"machine"
	"time"

	"epochclock/config"
	"epochclock/core"
	"epochclock/rtc"
)

var (
	// Debug counters
	loopPanics uint32
	usbOut     = &usbWriter{}
)

func main() {
	// Clear any watchdog state left over from before the reset.
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()
	core.SetDebugWriter(func(s string) {
		_, _ = usbOut.Write([]byte(s + "\r\n"))
	})

	cfg := config.Default()
	core.SetDebugEnabled(cfg.Debug)
	if err := cfg.Validate(); err != nil {
		halt("config: " + err.Error())
	}

	err = machine.I2C0.Configure(machine.I2CConfig{
		Frequency: cfg.RTC.I2CFreqHz,
		SDA:       mustPin(cfg.Pins.I2CSDA),
		SCL:       mustPin(cfg.Pins.I2CSCL),
	})
	if err != nil {
		core.DebugPrintln("i2c: configure failed: " + err.Error())
	}

	// Nothing useful can be shown without the clock, so wait for it.
	chip := rtc.NewDS3231(machine.I2C0, cfg.RTC.Address)
	for !chip.Probe() {
		core.DebugPrintln("rtc: no answer from ds3231")
		time.Sleep(10 * time.Millisecond)
	}
	if err := chip.Start(); err != nil {
		core.DebugPrintln("rtc: start failed: " + err.Error())
	}
	core.RestoreAfterPowerLoss(chip, chip.LostPower(), config.BuildTime())
	if err := chip.EnableSquareWave(); err != nil {
		core.DebugPrintln("rtc: square wave setup failed: " + err.Error())
	}

	nv := NewEEPROMStorage(machine.I2C0, cfg.RTC.EEPROMAddress, cfg.RTC.EEPROMSize)

	display, err := NewMatrixDisplay(machine.SPI0,
		mustPin(cfg.Pins.MatrixSCK), mustPin(cfg.Pins.MatrixMOSI), mustPin(cfg.Pins.MatrixCS),
		cfg.Display.SPIFreqHz, cfg.Display.Modules, cfg.Display.Intensity)
	if err != nil {
		halt("matrix: " + err.Error())
	}

	pins, err := cfg.Buttons()
	if err != nil {
		halt("buttons: " + err.Error())
	}
	buttons, err := core.NewButtonBank(NewRPGPIODriver(), pins, cfg.Edit.DebounceMs)
	if err != nil {
		halt("buttons: " + err.Error())
	}

	app, err := core.NewApp(chip, nv, display, buttons, cfg.AppOptions())
	if err != nil {
		halt("app: " + err.Error())
	}

	// The square wave only sets a flag; all work happens in the loop.
	sqw := mustPin(cfg.Pins.RTCSquareWave)
	sqw.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	refresh := app.Refresh()
	err = sqw.SetInterrupt(machine.PinFalling, func(machine.Pin) {
		refresh.Set()
	})
	if err != nil {
		core.DebugPrintln("sqw: interrupt unavailable, relying on fallback refresh")
	}

	console := core.NewConsole(app, usbOut)
	rx := make([]byte, 0, 64)

	app.Start(UpdateSystemTime())

	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					loopPanics++
					core.DebugValue("loop panic", loopPanics)
				}
			}()

			app.Step(UpdateSystemTime())
			if data := readUSB(rx); len(data) > 0 {
				console.Feed(data)
			}
		}()

		time.Sleep(100 * time.Microsecond)
	}
}

func mustPin(name string) machine.Pin {
	p, err := config.ParsePin(name)
	if err != nil {
		halt(err.Error())
	}
	return machine.Pin(p)
}

// halt reports a fatal setup error over USB forever.
func halt(msg string) {
	core.SetDebugEnabled(true)
	for {
		core.DebugPrintln("fatal: " + msg)
		time.Sleep(time.Second)
	}
}

// itoa converts int to string without importing strconv (for embedded)
func itoa(i int) string {
	if i == 0 {
		return "0"
	}

	negative := i < 0
	if negative {
		i = -i
	}

	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}

	if negative {
		pos--
		buf[pos] = '-'
	}

	return string(buf[pos:])
}
