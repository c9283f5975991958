// Package config holds the board wiring and behaviour settings of the clock.
// Firmware builds use Default(); the simulator can override it from TOML.
package config

import (
	"errors"

	"epochclock/clock"
	"epochclock/core"
)

// BuildTimestamp is the Unix time the firmware was built, injected with
//
//	-ldflags "-X epochclock/config.BuildTimestamp=$(date +%s)"
//
// The RTC is set to it after the backup cell has run flat.
var BuildTimestamp = "1674270000"

// PinConfig maps functions to GPIO names such as "gpio6".
type PinConfig struct {
	ModeButton     string `toml:"mode_button"`
	ChooseButton   string `toml:"choose_button"`
	SettingsButton string `toml:"settings_button"`
	RTCSquareWave  string `toml:"rtc_sqw"`
	I2CSDA         string `toml:"i2c_sda"`
	I2CSCL         string `toml:"i2c_scl"`
	MatrixCS       string `toml:"matrix_cs"`
	MatrixSCK      string `toml:"matrix_sck"`
	MatrixMOSI     string `toml:"matrix_mosi"`
}

// DisplayConfig describes the LED panel.
type DisplayConfig struct {
	Modules   int    `toml:"modules"`
	Intensity uint8  `toml:"intensity"`
	SPIFreqHz uint32 `toml:"spi_hz"`
	StartMode int    `toml:"start_mode"`
}

// RTCConfig describes the DS3231 module, which also carries the EEPROM.
type RTCConfig struct {
	I2CFreqHz     uint32 `toml:"i2c_hz"`
	Address       uint8  `toml:"address"`
	EEPROMAddress uint8  `toml:"eeprom_address"`
	EEPROMSize    int    `toml:"eeprom_size"`
}

// EditConfig controls the settings menu.
type EditConfig struct {
	TimeoutSeconds uint32 `toml:"timeout"`
	Wrap           bool   `toml:"wrap"`
	DebounceMs     uint32 `toml:"debounce_ms"`
}

// StateConfig holds the factory values written to a blank EEPROM.
type StateConfig struct {
	Zone       int8   `toml:"zone"`
	EpochBegin uint32 `toml:"epoch_begin"`
}

// Config is the complete clock configuration.
type Config struct {
	Pins    PinConfig     `toml:"pins"`
	Display DisplayConfig `toml:"display"`
	RTC     RTCConfig     `toml:"rtc"`
	Edit    EditConfig    `toml:"edit"`
	State   StateConfig   `toml:"state"`
	Debug   bool          `toml:"debug"`
}

// Default returns the wiring of the reference board: buttons on GPIO 6, 7
// and 8, a DS3231 with AT24C32 on I2C0 and twelve MAX7219 modules on SPI0.
func Default() *Config {
	return &Config{
		Pins: PinConfig{
			ModeButton:     "gpio6",
			ChooseButton:   "gpio7",
			SettingsButton: "gpio8",
			RTCSquareWave:  "gpio2",
			I2CSDA:         "gpio4",
			I2CSCL:         "gpio5",
			MatrixCS:       "gpio17",
			MatrixSCK:      "gpio18",
			MatrixMOSI:     "gpio19",
		},
		Display: DisplayConfig{
			Modules:   12,
			Intensity: 2,
			SPIFreqHz: 1000000,
			StartMode: core.TextMode,
		},
		RTC: RTCConfig{
			I2CFreqHz:     400000,
			Address:       0x68,
			EEPROMAddress: 0x57,
			EEPROMSize:    4096,
		},
		Edit: EditConfig{
			TimeoutSeconds: core.DefaultMenuTimeout,
			Wrap:           true,
			DebounceMs:     core.DefaultDebounceMs,
		},
		State: StateConfig{
			Zone:       int8(core.DefaultZone),
			EpochBegin: uint32(core.DefaultEpochBegin),
		},
	}
}

// applyDefaults fills zero values left by a partial configuration file.
func applyDefaults(c *Config) {
	d := Default()

	if c.Pins.ModeButton == "" {
		c.Pins.ModeButton = d.Pins.ModeButton
	}
	if c.Pins.ChooseButton == "" {
		c.Pins.ChooseButton = d.Pins.ChooseButton
	}
	if c.Pins.SettingsButton == "" {
		c.Pins.SettingsButton = d.Pins.SettingsButton
	}
	if c.Pins.RTCSquareWave == "" {
		c.Pins.RTCSquareWave = d.Pins.RTCSquareWave
	}
	if c.Pins.I2CSDA == "" {
		c.Pins.I2CSDA = d.Pins.I2CSDA
	}
	if c.Pins.I2CSCL == "" {
		c.Pins.I2CSCL = d.Pins.I2CSCL
	}
	if c.Pins.MatrixCS == "" {
		c.Pins.MatrixCS = d.Pins.MatrixCS
	}
	if c.Pins.MatrixSCK == "" {
		c.Pins.MatrixSCK = d.Pins.MatrixSCK
	}
	if c.Pins.MatrixMOSI == "" {
		c.Pins.MatrixMOSI = d.Pins.MatrixMOSI
	}

	if c.Display.Modules == 0 {
		c.Display.Modules = d.Display.Modules
	}
	if c.Display.SPIFreqHz == 0 {
		c.Display.SPIFreqHz = d.Display.SPIFreqHz
	}

	if c.RTC.I2CFreqHz == 0 {
		c.RTC.I2CFreqHz = d.RTC.I2CFreqHz
	}
	if c.RTC.Address == 0 {
		c.RTC.Address = d.RTC.Address
	}
	if c.RTC.EEPROMAddress == 0 {
		c.RTC.EEPROMAddress = d.RTC.EEPROMAddress
	}
	if c.RTC.EEPROMSize == 0 {
		c.RTC.EEPROMSize = d.RTC.EEPROMSize
	}

	if c.Edit.TimeoutSeconds == 0 {
		c.Edit.TimeoutSeconds = d.Edit.TimeoutSeconds
	}
	if c.Edit.DebounceMs == 0 {
		c.Edit.DebounceMs = d.Edit.DebounceMs
	}

	if c.State.EpochBegin == 0 {
		c.State.EpochBegin = d.State.EpochBegin
	}
}

// Validate rejects settings the firmware cannot run with.
func (c *Config) Validate() error {
	for _, p := range []string{
		c.Pins.ModeButton, c.Pins.ChooseButton, c.Pins.SettingsButton,
		c.Pins.RTCSquareWave, c.Pins.I2CSDA, c.Pins.I2CSCL,
		c.Pins.MatrixCS, c.Pins.MatrixSCK, c.Pins.MatrixMOSI,
	} {
		if _, err := ParsePin(p); err != nil {
			return err
		}
	}
	if c.Display.Modules < 1 {
		return errors.New("display needs at least one module")
	}
	if c.Display.Intensity > 15 {
		return errors.New("display intensity must be 0..15")
	}
	if c.Display.StartMode < 0 || c.Display.StartMode >= len(core.DisplayModes) {
		return core.ErrInvalidMode
	}
	if c.RTC.EEPROMSize < core.StateSize {
		return errors.New("eeprom too small for clock state")
	}
	if c.Edit.TimeoutSeconds == 0 {
		return errors.New("edit timeout must be positive")
	}
	if !clock.Zone(c.State.Zone).Valid() {
		return core.ErrInvalidZone
	}
	if !core.Storable(clock.Zone(c.State.Zone)) {
		return core.ErrZoneNotStored
	}
	return nil
}

// ParsePin turns "gpio17" (or "GPIO17") into 17.
func ParsePin(name string) (core.GPIOPin, error) {
	if len(name) < 5 || (name[:4] != "gpio" && name[:4] != "GPIO") {
		return 0, errors.New("invalid pin name: " + name)
	}
	var n int
	for i := 4; i < len(name); i++ {
		c := name[i]
		if c < '0' || c > '9' {
			return 0, errors.New("invalid pin name: " + name)
		}
		n = n*10 + int(c-'0')
		if n > 29 {
			return 0, errors.New("pin out of range: " + name)
		}
	}
	return core.GPIOPin(n), nil
}

// Buttons resolves the three button pins.
func (c *Config) Buttons() (core.ButtonPins, error) {
	mode, err := ParsePin(c.Pins.ModeButton)
	if err != nil {
		return core.ButtonPins{}, err
	}
	choose, err := ParsePin(c.Pins.ChooseButton)
	if err != nil {
		return core.ButtonPins{}, err
	}
	settings, err := ParsePin(c.Pins.SettingsButton)
	if err != nil {
		return core.ButtonPins{}, err
	}
	return core.ButtonPins{Mode: mode, Choose: choose, Settings: settings}, nil
}

// Defaults is the state written to a blank EEPROM.
func (c *Config) Defaults() core.PersistedState {
	return core.PersistedState{
		Zone:          clock.Zone(c.State.Zone),
		EpochBegin:    clock.Timestamp(c.State.EpochBegin),
		RecoveryClock: clock.Timestamp(c.State.EpochBegin),
	}
}

// AppOptions converts the configuration into core.App options.
func (c *Config) AppOptions() core.Options {
	opts := core.DefaultOptions()
	opts.Defaults = c.Defaults()
	opts.MenuTimeout = c.Edit.TimeoutSeconds
	opts.WrapFields = c.Edit.Wrap
	opts.StartMode = c.Display.StartMode
	return opts
}

// BuildTime parses BuildTimestamp, falling back to the default epoch begin
// when the linker did not set a usable value.
func BuildTime() clock.Timestamp {
	var v uint64
	if BuildTimestamp == "" {
		return core.DefaultEpochBegin
	}
	for i := 0; i < len(BuildTimestamp); i++ {
		c := BuildTimestamp[i]
		if c < '0' || c > '9' {
			return core.DefaultEpochBegin
		}
		v = v*10 + uint64(c-'0')
		if v > 0xFFFFFFFF {
			return core.DefaultEpochBegin
		}
	}
	return clock.Timestamp(v)
}
