package core

// NVStorage is byte-addressed non-volatile memory. Writes are assumed to
// land; adapters for fallible hardware report failures through the debug
// writer and, on reads, return all bits set so the caller sees "never written".
type NVStorage interface {
	ReadU8(offset uint16) uint8
	WriteU8(offset uint16, value uint8)
	ReadU32(offset uint16) uint32
	WriteU32(offset uint16, value uint32)
}

// ErasedU8 and ErasedU32 are what erased EEPROM cells read back as.
const (
	ErasedU8  uint8  = 0xFF
	ErasedU32 uint32 = 0xFFFFFFFF
)
