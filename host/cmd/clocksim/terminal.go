package main

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"epochclock/host/sim"
	"epochclock/matrix"
)

var (
	styleOn     = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleOff    = tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorSilver)
)

// runTerminal draws the matrix with tcell and maps keys to buttons until q,
// Escape or Ctrl-C.
func runTerminal(ctx context.Context, s *sim.Simulator) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init terminal: %w", err)
	}
	defer screen.Fini()

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ignoreCanceled(s.Run(ctx))
	})

	g.Go(func() error {
		draw(screen, s)
		for {
			select {
			case <-ctx.Done():
				// Wake PollEvent so the input loop can return.
				_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
				return nil
			case <-s.Frames.Updates():
				draw(screen, s)
			}
		}
	})

	g.Go(func() error {
		defer cancel()
		pollInput(screen, s)
		return nil
	})

	return g.Wait()
}

// pollInput forwards button keys until a quit key or an interrupt.
func pollInput(screen tcell.Screen, s *sim.Simulator) {
	for {
		switch ev := screen.PollEvent().(type) {
		case nil, *tcell.EventInterrupt:
			return
		case *tcell.EventResize:
			screen.Sync()
			draw(screen, s)
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return
			case tcell.KeyRune:
				if ev.Rune() == 'q' {
					return
				}
				if b, ok := sim.ButtonForKey(ev.Rune()); ok {
					s.Keys.Press(b)
				}
			}
		}
	}
}

func draw(screen tcell.Screen, s *sim.Simulator) {
	screen.Clear()

	frame := s.Frames.Last()
	x, y := 1, 1
	for _, r := range frame {
		switch string(r) {
		case "\n":
			x = 1
			y++
			continue
		case sim.PixelOn:
			screen.SetContent(x, y, r, nil, styleOn)
		default:
			screen.SetContent(x, y, r, nil, styleOff)
		}
		x++
	}

	status := fmt.Sprintf("m: mode   c: choose   s: settings   q: quit   (%d frames, %d px)",
		s.Frames.Count(), matrix.ModuleSize*s.Config().Display.Modules)
	for i, r := range status {
		screen.SetContent(1+i, matrix.Height+2, r, nil, styleStatus)
	}
	screen.Show()
}
