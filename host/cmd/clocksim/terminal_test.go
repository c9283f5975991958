package main

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epochclock/host/sim"
	"epochclock/matrix"
)

func newTestScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(120, 12)
	t.Cleanup(screen.Fini)
	return screen
}

func newTestSim(t *testing.T) *sim.Simulator {
	t.Helper()
	s, err := sim.New(sim.Options{
		Clock: clockwork.NewFakeClockAt(time.Date(2024, 1, 31, 6, 41, 17, 0, time.UTC)),
		Start: 1706683277,
	})
	require.NoError(t, err)
	s.Boot()
	t.Cleanup(s.App().Stop)
	return s
}

func TestDrawMatrix(t *testing.T) {
	screen := newTestScreen(t)
	s := newTestSim(t)

	draw(screen, s)

	on := 0
	for y := 1; y <= matrix.Height; y++ {
		for x := 1; x <= matrix.ModuleSize*s.Config().Display.Modules; x++ {
			r, _, style, _ := screen.GetContent(x, y)
			switch string(r) {
			case sim.PixelOn:
				on++
				assert.Equal(t, styleOn, style)
			case sim.PixelOff:
				assert.Equal(t, styleOff, style)
			default:
				t.Fatalf("unexpected cell %q at %d,%d", r, x, y)
			}
		}
	}
	assert.Positive(t, on)

	r, _, _, _ := screen.GetContent(1, matrix.Height+2)
	assert.Equal(t, 'm', r)
}

func TestPollInput(t *testing.T) {
	screen := newTestScreen(t)
	s := newTestSim(t)

	screen.InjectKey(tcell.KeyRune, 'm', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 's', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'm', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	done := make(chan struct{})
	go func() {
		pollInput(screen, s)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pollInput did not stop on q")
	}

	clicks := s.Keys.Poll(0)
	assert.Equal(t, 2, clicks.Mode)
	assert.Equal(t, 1, clicks.Settings)
	assert.Equal(t, 0, clicks.Choose)
}
