package sim

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"epochclock/core"
)

// EEPROM is an NVStorage whose contents live in an image file, so state
// survives simulator restarts the way it survives power cycles on the
// board. Every write goes straight to the file.
type EEPROM struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
	mem  *core.MemoryStorage
}

var _ core.NVStorage = (*EEPROM)(nil)

// OpenEEPROM loads path, creating an erased image of size bytes if it does
// not exist. An existing image of a different size is rejected.
func OpenEEPROM(fsys afero.Fs, path string, size int) (*EEPROM, error) {
	if size < core.StateSize {
		return nil, fmt.Errorf("eeprom size %d below %d", size, core.StateSize)
	}

	data, err := afero.ReadFile(fsys, path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		mem := core.NewMemoryStorage(size)
		if err := afero.WriteFile(fsys, path, mem.Bytes(), 0o600); err != nil {
			return nil, fmt.Errorf("failed to create eeprom image: %w", err)
		}
		log.Info().Str("path", path).Int("size", size).Msg("created blank eeprom image")
		return &EEPROM{fs: fsys, path: path, mem: mem}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read eeprom image: %w", err)
	case len(data) != size:
		return nil, fmt.Errorf("eeprom image %s is %d bytes, want %d", path, len(data), size)
	}

	log.Debug().Str("path", path).Msg("loaded eeprom image")
	return &EEPROM{fs: fsys, path: path, mem: core.NewMemoryStorageFrom(data)}, nil
}

// Bytes returns a copy of the image.
func (e *EEPROM) Bytes() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]byte(nil), e.mem.Bytes()...)
}

func (e *EEPROM) ReadU8(offset uint16) uint8 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mem.ReadU8(offset)
}

func (e *EEPROM) WriteU8(offset uint16, value uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mem.WriteU8(offset, value)
	e.sync(offset, 1)
}

func (e *EEPROM) ReadU32(offset uint16) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mem.ReadU32(offset)
}

func (e *EEPROM) WriteU32(offset uint16, value uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mem.WriteU32(offset, value)
	e.sync(offset, 4)
}

// sync writes n bytes at offset through to the image file. Failures are
// logged only: a real EEPROM write has no error path either.
func (e *EEPROM) sync(offset uint16, n int) {
	data := e.mem.Bytes()
	if int(offset)+n > len(data) {
		return
	}
	f, err := e.fs.OpenFile(e.path, os.O_WRONLY, 0o600)
	if err != nil {
		log.Error().Err(err).Str("path", e.path).Msg("eeprom image open failed")
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Error().Err(err).Str("path", e.path).Msg("eeprom image close failed")
		}
	}()
	if _, err := f.WriteAt(data[offset:int(offset)+n], int64(offset)); err != nil {
		log.Error().Err(err).Str("path", e.path).Uint16("offset", offset).Msg("eeprom image write failed")
	}
}
