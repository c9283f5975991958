//go:build rp2040

package main

import (
	"encoding/binary"
	"machine"
	"time"

	"tinygo.org/x/drivers/at24cx"

	"epochclock/core"
)

// AT24C32 parameters.
const (
	eepromPageSize     = 32
	eepromWriteCycleMs = 5
)

// EEPROMStorage implements core.NVStorage on the AT24C32 that sits next to
// the DS3231. I2C failures are logged; a failed read returns the erased
// pattern, so the state store falls back to its defaults.
type EEPROMStorage struct {
	dev at24cx.Device
	buf [4]byte
}

// NewEEPROMStorage attaches to the EEPROM on an already configured bus.
func NewEEPROMStorage(bus *machine.I2C, address uint8, size int) *EEPROMStorage {
	e := &EEPROMStorage{dev: at24cx.New(bus)}
	e.dev.Address = uint16(address)
	e.dev.Configure(at24cx.Config{
		PageSize:        eepromPageSize,
		StartRAMAddress: 0,
		EndRAMAddress:   uint16(size - 1),
	})
	return e
}

func (e *EEPROMStorage) ReadU8(offset uint16) uint8 {
	v, err := e.dev.ReadByte(offset)
	if err != nil {
		core.DebugPrintln("eeprom: read failed at " + itoa(int(offset)) + ": " + err.Error())
		return core.ErasedU8
	}
	return v
}

func (e *EEPROMStorage) WriteU8(offset uint16, value uint8) {
	if err := e.dev.WriteByte(offset, value); err != nil {
		core.DebugPrintln("eeprom: write failed at " + itoa(int(offset)) + ": " + err.Error())
	}
	time.Sleep(eepromWriteCycleMs * time.Millisecond)
}

func (e *EEPROMStorage) ReadU32(offset uint16) uint32 {
	if _, err := e.dev.ReadAt(e.buf[:], int64(offset)); err != nil {
		core.DebugPrintln("eeprom: read failed at " + itoa(int(offset)) + ": " + err.Error())
		return core.ErasedU32
	}
	return binary.LittleEndian.Uint32(e.buf[:])
}

func (e *EEPROMStorage) WriteU32(offset uint16, value uint32) {
	binary.LittleEndian.PutUint32(e.buf[:], value)
	if _, err := e.dev.WriteAt(e.buf[:], int64(offset)); err != nil {
		core.DebugPrintln("eeprom: write failed at " + itoa(int(offset)) + ": " + err.Error())
	}
	time.Sleep(eepromWriteCycleMs * time.Millisecond)
}
