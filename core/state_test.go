package core

import (
	"testing"

	"epochclock/clock"
)

// countingStorage records writes so tests can tell "adopted" from "rewritten".
type countingStorage struct {
	*MemoryStorage
	writes int
}

func newCountingStorage() *countingStorage {
	return &countingStorage{MemoryStorage: NewMemoryStorage(64)}
}

func (c *countingStorage) WriteU8(offset uint16, value uint8) {
	c.writes++
	c.MemoryStorage.WriteU8(offset, value)
}

func (c *countingStorage) WriteU32(offset uint16, value uint32) {
	c.writes++
	c.MemoryStorage.WriteU32(offset, value)
}

func TestStateStoreFirstRunWritesDefaults(t *testing.T) {
	nv := newCountingStorage()
	store := NewStateStore(nv, DefaultState())

	got := store.Load()
	if got != DefaultState() {
		t.Fatalf("Load() on erased storage = %+v, want defaults %+v", got, DefaultState())
	}
	if nv.writes != 3 {
		t.Errorf("expected 3 default writes, got %d", nv.writes)
	}

	if z := nv.ReadU8(ZoneOffset); clock.Zone(int8(z)) != DefaultZone {
		t.Errorf("zone slot = %#x, want default %d", z, DefaultZone)
	}
	if v := nv.ReadU32(EpochBeginOffset); clock.Timestamp(v) != DefaultEpochBegin {
		t.Errorf("epoch slot = %d, want %d", v, DefaultEpochBegin)
	}
	if v := nv.ReadU32(RecoveryClockOffset); clock.Timestamp(v) != DefaultEpochBegin {
		t.Errorf("recovery slot = %d, want %d", v, DefaultEpochBegin)
	}
	if !store.Loaded() {
		t.Error("Loaded() = false after Load")
	}
}

func TestStateStoreSentinelOnlyInZoneSlot(t *testing.T) {
	nv := newCountingStorage()
	nv.WriteU32(EpochBeginOffset, 1000)
	nv.WriteU32(RecoveryClockOffset, 2000)
	nv.writes = 0

	store := NewStateStore(nv, DefaultState())
	got := store.Load()

	if got.Zone != DefaultZone {
		t.Errorf("zone = %v, want default %v", got.Zone, DefaultZone)
	}
	if got.EpochBegin != 1000 || got.RecoveryClock != 2000 {
		t.Errorf("stored timestamps not adopted: %+v", got)
	}
	if nv.writes != 1 {
		t.Errorf("expected only the zone default to be written, got %d writes", nv.writes)
	}

	// The default must now be durable.
	reloaded := NewStateStore(nv, PersistedState{Zone: 7}).Load()
	if reloaded.Zone != DefaultZone {
		t.Errorf("reloaded zone = %v, want %v", reloaded.Zone, DefaultZone)
	}
}

func TestStateStoreAdoptsStoredValues(t *testing.T) {
	nv := newCountingStorage()
	nv.WriteU8(ZoneOffset, uint8(0xF6)) // -10
	nv.WriteU32(EpochBeginOffset, 0)
	nv.WriteU32(RecoveryClockOffset, 1700000000)
	nv.writes = 0

	got := NewStateStore(nv, DefaultState()).Load()
	want := PersistedState{Zone: -10, EpochBegin: 0, RecoveryClock: 1700000000}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
	if nv.writes != 0 {
		t.Errorf("Load rewrote initialized slots: %d writes", nv.writes)
	}
}

func TestStateStoreWriteThroughSurvivesPowerCycle(t *testing.T) {
	nv := NewMemoryStorage(StateSize)
	store := NewStateStore(nv, DefaultState())
	store.Load()

	store.SetEpochBegin(1234567890)
	store.SetZone(-7)
	store.SetRecoveryClock(1700000000)

	// Power cycle: a fresh store over the same bytes, no further writes.
	after := NewStateStore(nv, DefaultState())
	after.Load()

	if got := after.EpochBegin(); got != 1234567890 {
		t.Errorf("EpochBegin() after power cycle = %d, want 1234567890", got)
	}
	if got := after.Zone(); got != -7 {
		t.Errorf("Zone() after power cycle = %v, want -7", got)
	}
	if got := after.RecoveryClock(); got != 1700000000 {
		t.Errorf("RecoveryClock() after power cycle = %d, want 1700000000", got)
	}
}

func TestStateStoreLayoutIsStable(t *testing.T) {
	nv := NewMemoryStorage(StateSize)
	store := NewStateStore(nv, DefaultState())
	store.Load()
	store.SetZone(-2)
	store.SetEpochBegin(0x11223344)
	store.SetRecoveryClock(0xA1B2C3D4)

	want := []byte{0xFE, 0x44, 0x33, 0x22, 0x11, 0xD4, 0xC3, 0xB2, 0xA1}
	got := nv.Bytes()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("image = % x, want % x", got, want)
		}
	}
}

func TestStateStoreZoneMinusOneCollidesWithErased(t *testing.T) {
	nv := NewMemoryStorage(StateSize)
	store := NewStateStore(nv, DefaultState())
	store.Load()
	store.SetZone(-1)

	if store.Zone() != -1 {
		t.Fatalf("in-memory zone = %v, want -1", store.Zone())
	}
	if got := NewStateStore(nv, DefaultState()).Load().Zone; got != DefaultZone {
		t.Errorf("zone -1 reloaded as %v; expected the erased pattern to restore %v", got, DefaultZone)
	}
}

func TestMemoryStorageBounds(t *testing.T) {
	nv := NewMemoryStorage(4)
	nv.WriteU32(1, 42) // does not fit, dropped
	if got := nv.ReadU32(1); got != ErasedU32 {
		t.Errorf("ReadU32 past end = %#x, want erased", got)
	}
	nv.WriteU8(10, 1)
	if got := nv.ReadU8(10); got != ErasedU8 {
		t.Errorf("ReadU8 past end = %#x, want erased", got)
	}
}
