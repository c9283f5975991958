package core

import "epochclock/clock"

// Persisted layout. Devices in the field read these offsets back after every
// power cycle, so they never move.
const (
	ZoneOffset          uint16 = 0 // int8, two's complement
	EpochBeginOffset    uint16 = 1 // uint32
	RecoveryClockOffset uint16 = 5 // uint32

	StateSize = 9
)

// Compile-time defaults substituted for never-written slots.
const (
	DefaultZone       clock.Zone      = 3
	DefaultEpochBegin clock.Timestamp = 536229000
)

// Storable reports whether z survives a power cycle. Zone -1 is written as
// 0xFF, which Load cannot tell apart from a never-written slot.
func Storable(z clock.Zone) bool {
	return z.Valid() && uint8(z) != ErasedU8
}

// PersistedState is everything the clock keeps across power loss.
type PersistedState struct {
	Zone       clock.Zone
	EpochBegin clock.Timestamp
	// RecoveryClock is the last time the operator set. It is kept for
	// diagnostics only and never pushed back into the RTC.
	RecoveryClock clock.Timestamp
}

// DefaultState returns the factory defaults.
func DefaultState() PersistedState {
	return PersistedState{
		Zone:          DefaultZone,
		EpochBegin:    DefaultEpochBegin,
		RecoveryClock: DefaultEpochBegin,
	}
}

// StateStore is the single owner of PersistedState. Every setter writes
// storage first and memory second, so after a reset the store reloads
// exactly the last value that was set.
type StateStore struct {
	nv       NVStorage
	defaults PersistedState
	state    PersistedState
	loaded   bool
}

// NewStateStore binds a store to its backing memory. Nothing is read until
// Load is called.
func NewStateStore(nv NVStorage, defaults PersistedState) *StateStore {
	return &StateStore{
		nv:       nv,
		defaults: defaults,
		state:    defaults,
	}
}

// Load reads every slot. A slot that still holds the erased pattern gets its
// default written through before the default is adopted.
func (s *StateStore) Load() PersistedState {
	rawZone := s.nv.ReadU8(ZoneOffset)
	if rawZone == ErasedU8 {
		DebugPrintln("state: timezone unset, writing default")
		s.nv.WriteU8(ZoneOffset, uint8(s.defaults.Zone))
		s.state.Zone = s.defaults.Zone
	} else {
		s.state.Zone = clock.Zone(int8(rawZone))
	}

	s.state.EpochBegin = s.loadTimestamp(EpochBeginOffset, s.defaults.EpochBegin, "epoch begin")
	s.state.RecoveryClock = s.loadTimestamp(RecoveryClockOffset, s.defaults.RecoveryClock, "recovery clock")

	s.loaded = true
	DebugTimestamp("state: epoch", s.state.EpochBegin)
	DebugTimestamp("state: clock", s.state.RecoveryClock)
	return s.state
}

func (s *StateStore) loadTimestamp(offset uint16, def clock.Timestamp, name string) clock.Timestamp {
	raw := s.nv.ReadU32(offset)
	if raw != ErasedU32 {
		return clock.Timestamp(raw)
	}
	DebugPrintln("state: " + name + " unset, writing default")
	s.nv.WriteU32(offset, uint32(def))
	return def
}

// Loaded reports whether Load has run.
func (s *StateStore) Loaded() bool {
	return s.loaded
}

// State returns a snapshot of the in-memory copy.
func (s *StateStore) State() PersistedState {
	return s.state
}

// Zone returns the current UTC offset.
func (s *StateStore) Zone() clock.Zone {
	return s.state.Zone
}

// SetZone persists z. Zone -1 is stored as 0xFF, the erased pattern, and
// therefore reads back as unset on the next Load; see Storable.
func (s *StateStore) SetZone(z clock.Zone) {
	s.nv.WriteU8(ZoneOffset, uint8(z))
	s.state.Zone = z
}

// EpochBegin returns the reference instant for elapsed-time display.
func (s *StateStore) EpochBegin() clock.Timestamp {
	return s.state.EpochBegin
}

// SetEpochBegin persists ts as the new reference instant.
func (s *StateStore) SetEpochBegin(ts clock.Timestamp) {
	s.nv.WriteU32(EpochBeginOffset, uint32(ts))
	s.state.EpochBegin = ts
}

// RecoveryClock returns the last operator-set time.
func (s *StateStore) RecoveryClock() clock.Timestamp {
	return s.state.RecoveryClock
}

// SetRecoveryClock persists ts as the last operator-set time.
func (s *StateStore) SetRecoveryClock(ts clock.Timestamp) {
	s.nv.WriteU32(RecoveryClockOffset, uint32(ts))
	s.state.RecoveryClock = ts
}
