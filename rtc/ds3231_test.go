package rtc

import (
	"errors"
	"testing"

	"tinygo.org/x/drivers/ds3231"

	"epochclock/clock"
	"epochclock/core"
)

// chipBus emulates the DS3231 register file behind an I2C bus.
type chipBus struct {
	address uint16
	regs    [0x13]byte
	writes  map[uint8]int
	fail    bool
}

func newChipBus() *chipBus {
	return &chipBus{address: ds3231.Address, writes: map[uint8]int{}}
}

func (b *chipBus) Tx(addr uint16, w, r []byte) error {
	if b.fail || addr != b.address {
		return errors.New("nack")
	}
	reg := int(w[0])
	if len(r) > 0 {
		copy(r, b.regs[reg:])
		return nil
	}
	for i, v := range w[1:] {
		b.regs[reg+i] = v
		b.writes[uint8(reg+i)]++
	}
	return nil
}

// 2024-01-31 06:41:17 UTC
const chipNow clock.Timestamp = 1706683277

func TestProbe(t *testing.T) {
	bus := newChipBus()
	if !NewDS3231(bus, ds3231.Address).Probe() {
		t.Error("probe failed on the right address")
	}
	if NewDS3231(bus, 0x57).Probe() {
		t.Error("probe succeeded on the wrong address")
	}
}

func TestEnableSquareWave(t *testing.T) {
	bus := newChipBus()
	bus.regs[ds3231.REG_CONTROL] = 0xFF
	bus.regs[ds3231.REG_STATUS] = 0xFF

	if err := NewDS3231(bus, ds3231.Address).EnableSquareWave(); err != nil {
		t.Fatalf("EnableSquareWave: %v", err)
	}
	// EOSC, BBSQW and CONV untouched; INTCN, rate and alarm enables cleared.
	if got := bus.regs[ds3231.REG_CONTROL]; got != 0xE0 {
		t.Errorf("control = %#02x, want 0xe0", got)
	}
	// OSF and BSY untouched; 32 kHz output and alarm flags cleared.
	if got := bus.regs[ds3231.REG_STATUS]; got != 0xF4 {
		t.Errorf("status = %#02x, want 0xf4", got)
	}
}

func TestEnableSquareWaveBusError(t *testing.T) {
	bus := newChipBus()
	bus.fail = true
	if err := NewDS3231(bus, ds3231.Address).EnableSquareWave(); err == nil {
		t.Error("expected an error from a silent bus")
	}
}

func TestAdjustWritesStatusOnce(t *testing.T) {
	bus := newChipBus()
	bus.regs[ds3231.REG_STATUS] = 1 << ds3231.OSF
	c := NewDS3231(bus, ds3231.Address)

	if !c.LostPower() {
		t.Fatal("OSF set but LostPower is false")
	}
	c.Adjust(chipNow)

	if n := bus.writes[ds3231.REG_STATUS]; n != 1 {
		t.Errorf("status register written %d times, want 1", n)
	}
	if c.LostPower() {
		t.Error("LostPower still true after Adjust")
	}

	want := []byte{0x17, 0x41, 0x06}
	for i, v := range want {
		if bus.regs[i] != v {
			t.Errorf("time register %d = %#02x, want %#02x", i, bus.regs[i], v)
		}
	}
	if bus.regs[4] != 0x31 || bus.regs[5] != 0x01 || bus.regs[6] != 0x24 {
		t.Errorf("date registers = % x, want 31 01 24", bus.regs[4:7])
	}
}

func TestNowCachesReads(t *testing.T) {
	bus := newChipBus()
	c := NewDS3231(bus, ds3231.Address)

	core.SetTime(1000)
	c.Adjust(chipNow)

	bus.regs[0] = 0x20 // chip moves on to :20
	core.SetTime(1000 + CacheMs - 1)
	if got := c.Now(); got != chipNow {
		t.Errorf("Now inside cache window = %d, want %d", got, chipNow)
	}

	core.SetTime(1000 + CacheMs)
	if got := c.Now(); got != chipNow+3 {
		t.Errorf("Now after cache window = %d, want %d", got, chipNow+3)
	}

	bus.fail = true
	core.SetTime(1000 + 3*CacheMs)
	if got := c.Now(); got != chipNow+3 {
		t.Errorf("Now on read failure = %d, want last good %d", got, chipNow+3)
	}
}

func TestStartRestartsOscillator(t *testing.T) {
	bus := newChipBus()
	bus.regs[ds3231.REG_CONTROL] = 1 << ds3231.EOSC
	c := NewDS3231(bus, ds3231.Address)

	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if bus.regs[ds3231.REG_CONTROL]&(1<<ds3231.EOSC) != 0 {
		t.Error("oscillator still disabled")
	}

	bus.writes = map[uint8]int{}
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(bus.writes) != 0 {
		t.Errorf("running oscillator rewritten: %v", bus.writes)
	}
}
