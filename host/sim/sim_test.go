package sim

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epochclock/clock"
	"epochclock/config"
	"epochclock/core"
)

// 2024-01-31 06:41:17 UTC
const simNow clock.Timestamp = 1706683277

func newSim(t *testing.T, fs afero.Fs, start clock.Timestamp) (*Simulator, *clockwork.FakeClock) {
	t.Helper()
	fc := clockwork.NewFakeClockAt(time.Date(2024, 1, 31, 6, 41, 17, 0, time.UTC))
	s, err := New(Options{
		Clock:     fc,
		Fs:        fs,
		StatePath: "/state/eeprom.bin",
		Start:     start,
	})
	require.NoError(t, err)
	s.Boot()
	t.Cleanup(s.App().Stop)
	return s, fc
}

// advance moves fake time forward in loop-sized steps, running the loop
// after each one.
func advance(s *Simulator, fc *clockwork.FakeClock, d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += DefaultStepEvery {
		fc.Advance(DefaultStepEvery)
		s.Step()
	}
}

func TestBootRendersTime(t *testing.T) {
	s, _ := newSim(t, afero.NewMemMapFs(), simNow)

	assert.Equal(t, simNow, s.RTC.Now())
	assert.Equal(t, 1, s.Frames.Count())
	assert.Contains(t, s.Frames.Last(), PixelOn)

	lines := strings.Split(s.Frames.Last(), "\n")
	assert.Len(t, lines, 8)
}

func TestBootAfterPowerLossUsesBuildTime(t *testing.T) {
	s, _ := newSim(t, afero.NewMemMapFs(), 0)

	assert.False(t, s.RTC.LostPower())
	assert.Equal(t, config.BuildTime(), s.RTC.Now())
}

func TestRTCFollowsClock(t *testing.T) {
	fc := clockwork.NewFakeClock()
	r := NewRTC(fc, simNow)

	fc.Advance(90 * time.Second)
	assert.Equal(t, simNow+90, r.Now())

	r.Adjust(1000)
	fc.Advance(time.Second)
	assert.Equal(t, clock.Timestamp(1001), r.Now())
	assert.Equal(t, time.Unix(1001, 0).UTC(), r.Time())
}

func TestEEPROMCreatesErasedImage(t *testing.T) {
	fs := afero.NewMemMapFs()
	e, err := OpenEEPROM(fs, "eeprom.bin", 64)
	require.NoError(t, err)

	assert.Equal(t, bytes.Repeat([]byte{core.ErasedU8}, 64), e.Bytes())

	e.WriteU32(core.EpochBeginOffset, 0x01020304)
	e.WriteU8(core.ZoneOffset, 0xFD)

	image, err := afero.ReadFile(fs, "eeprom.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFD, 0x04, 0x03, 0x02, 0x01, 0xFF}, image[:6])
}

func TestEEPROMRejectsWrongSize(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "eeprom.bin", make([]byte, 32), 0o600))

	_, err := OpenEEPROM(fs, "eeprom.bin", 64)
	assert.Error(t, err)

	_, err = OpenEEPROM(fs, "other.bin", core.StateSize-1)
	assert.Error(t, err)
}

func TestStateSurvivesRestart(t *testing.T) {
	fs := afero.NewMemMapFs()

	first, _ := newSim(t, fs, simNow)
	assert.Equal(t, []string{"ok epoch=946684800"}, first.Console("set_epoch 2000/01/01 03:00"))
	assert.Equal(t, []string{"ok zone=-5"}, first.Console("set_zone -5"))

	second, _ := newSim(t, fs, simNow)
	st := second.App().Store().State()
	assert.Equal(t, clock.Zone(-5), st.Zone)
	assert.Equal(t, clock.Timestamp(946684800), st.EpochBegin)
}

func TestKeyboardCyclesMode(t *testing.T) {
	s, fc := newSim(t, afero.NewMemMapFs(), simNow)
	require.Equal(t, core.TextMode, s.App().Mode())

	r, ok := ButtonForKey('m')
	require.True(t, ok)
	s.Keys.Press(r)
	advance(s, fc, 20*time.Millisecond)

	assert.Equal(t, 0, s.App().Mode())
	assert.Equal(t, 2, s.Frames.Count())

	_, ok = ButtonForKey('x')
	assert.False(t, ok)
}

func TestKeyboardEditsTime(t *testing.T) {
	s, fc := newSim(t, afero.NewMemMapFs(), simNow)

	s.Keys.Press(ButtonSettings)
	advance(s, fc, 20*time.Millisecond)
	s.Keys.Press(ButtonChoose)
	advance(s, fc, 20*time.Millisecond)
	require.True(t, s.App().Busy())

	// Console writes wait for the menu to close.
	assert.Equal(t, []string{"error menu is open"}, s.Console("set_zone 1"))

	// Leave every field as it is.
	for i := 0; i < 6; i++ {
		s.Keys.Press(ButtonSettings)
		advance(s, fc, 20*time.Millisecond)
	}
	assert.False(t, s.App().Busy())
	assert.Equal(t, clock.Zone(3), s.App().Store().Zone())
	// Seconds are dropped on commit.
	assert.Equal(t, simNow-17, s.App().Store().RecoveryClock())
}

func TestMenuTimesOutOnFakeClock(t *testing.T) {
	s, fc := newSim(t, afero.NewMemMapFs(), simNow)

	s.Keys.Press(ButtonSettings)
	advance(s, fc, 20*time.Millisecond)
	require.True(t, s.App().Busy())

	advance(s, fc, 6*time.Second)
	assert.False(t, s.App().Busy())
}

func TestServeConsole(t *testing.T) {
	s, _ := newSim(t, afero.NewMemMapFs(), simNow)

	var out bytes.Buffer
	in := strings.NewReader("mode 1\nstate\nbogus\n")
	require.NoError(t, s.ServeConsole(context.Background(), in, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ok mode=1", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "ok zone=+3 "))
	assert.True(t, strings.HasPrefix(lines[2], "error "))
}

func TestRunStopsWithContext(t *testing.T) {
	s, fc := newSim(t, afero.NewMemMapFs(), simNow)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	s.Keys.Press(ButtonMode)
	require.Eventually(t, func() bool {
		fc.Advance(DefaultStepEvery)
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.App().Mode() == 0
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}

func TestFrameRecorderWritesFrames(t *testing.T) {
	var out bytes.Buffer
	s, err := New(Options{
		Clock:  clockwork.NewFakeClock(),
		Frames: &out,
		Start:  simNow,
	})
	require.NoError(t, err)
	s.Boot()
	defer s.App().Stop()

	assert.Equal(t, s.Frames.Last()+"\n", out.String())
	select {
	case <-s.Frames.Updates():
	default:
		t.Fatal("no update signalled")
	}
}
