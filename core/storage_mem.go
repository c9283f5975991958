package core

import "encoding/binary"

// MemoryStorage is an NVStorage over a byte slice, laid out exactly like the
// EEPROM: little-endian words, erased cells read 0xFF. Out-of-range reads
// return the erased pattern and out-of-range writes are dropped.
type MemoryStorage struct {
	data []byte
}

// NewMemoryStorage returns size erased bytes.
func NewMemoryStorage(size int) *MemoryStorage {
	data := make([]byte, size)
	for i := range data {
		data[i] = ErasedU8
	}
	return &MemoryStorage{data: data}
}

// NewMemoryStorageFrom wraps an existing image without copying it.
func NewMemoryStorageFrom(image []byte) *MemoryStorage {
	return &MemoryStorage{data: image}
}

// Bytes exposes the backing image.
func (m *MemoryStorage) Bytes() []byte {
	return m.data
}

func (m *MemoryStorage) ReadU8(offset uint16) uint8 {
	if int(offset) >= len(m.data) {
		return ErasedU8
	}
	return m.data[offset]
}

func (m *MemoryStorage) WriteU8(offset uint16, value uint8) {
	if int(offset) < len(m.data) {
		m.data[offset] = value
	}
}

func (m *MemoryStorage) ReadU32(offset uint16) uint32 {
	if int(offset)+4 > len(m.data) {
		return ErasedU32
	}
	return binary.LittleEndian.Uint32(m.data[offset:])
}

func (m *MemoryStorage) WriteU32(offset uint16, value uint32) {
	if int(offset)+4 <= len(m.data) {
		binary.LittleEndian.PutUint32(m.data[offset:], value)
	}
}
