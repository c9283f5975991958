package sim

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"epochclock/clock"
	"epochclock/config"
	"epochclock/core"
	"epochclock/matrix"
)

// DefaultStepEvery is the simulated main-loop period.
const DefaultStepEvery = 10 * time.Millisecond

// Options configures a Simulator. Zero values pick real-world defaults.
type Options struct {
	Config    *config.Config
	Clock     clockwork.Clock
	Fs        afero.Fs
	StatePath string
	// Frames receives every rendered frame; nil keeps them in memory only.
	Frames io.Writer
	// Start is the initial RTC time. Zero simulates a flat backup cell.
	Start     clock.Timestamp
	StepEvery time.Duration
}

// Simulator is a complete clock: the unmodified core.App wired to
// simulated hardware.
type Simulator struct {
	RTC    *RTC
	EEPROM *EEPROM
	Keys   *Keyboard
	Frames *FrameRecorder

	cfg       *config.Config
	clk       clockwork.Clock
	epoch     time.Time
	stepEvery time.Duration

	// mu serializes everything that touches the app.
	mu      sync.Mutex
	app     *core.App
	console *core.Console
}

// New builds a simulator. Nothing runs until Boot.
func New(opts Options) (*Simulator, error) {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewMemMapFs()
	}
	if opts.StatePath == "" {
		opts.StatePath = "eeprom.bin"
	}
	if opts.StepEvery <= 0 {
		opts.StepEvery = DefaultStepEvery
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	eeprom, err := OpenEEPROM(opts.Fs, opts.StatePath, opts.Config.RTC.EEPROMSize)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		RTC:       NewRTC(opts.Clock, opts.Start),
		EEPROM:    eeprom,
		Keys:      &Keyboard{},
		Frames:    NewFrameRecorder(opts.Frames),
		cfg:       opts.Config,
		clk:       opts.Clock,
		epoch:     opts.Clock.Now(),
		stepEvery: opts.StepEvery,
	}

	display := matrix.NewDisplay(opts.Config.Display.Modules, s.Frames)
	app, err := core.NewApp(s.RTC, s.EEPROM, display, s.Keys, opts.Config.AppOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to build app: %w", err)
	}
	s.app = app
	return s, nil
}

// Millis is the simulated free-running millisecond tick.
func (s *Simulator) Millis() uint32 {
	return uint32(s.clk.Since(s.epoch) / time.Millisecond)
}

// Boot performs the firmware start-up sequence.
func (s *Simulator) Boot() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if core.RestoreAfterPowerLoss(s.RTC, s.RTC.LostPower(), config.BuildTime()) {
		log.Warn().Time("now", s.RTC.Time()).Msg("rtc lost power, set to build time")
	}
	s.app.Start(s.Millis())
	st := s.app.Store().State()
	log.Info().
		Str("zone", st.Zone.String()).
		Uint32("epoch", uint32(st.EpochBegin)).
		Uint32("recovery", uint32(st.RecoveryClock)).
		Msg("clock started")
}

// Step runs one main-loop iteration.
func (s *Simulator) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.app.Step(s.Millis())
}

// SquareWave emulates one SQW edge from the RTC.
func (s *Simulator) SquareWave() {
	s.app.Refresh().Set()
}

// App exposes the application; callers must not use it concurrently with
// Run.
func (s *Simulator) App() *core.App {
	return s.app
}

// Config returns the configuration the simulator was built with.
func (s *Simulator) Config() *config.Config {
	return s.cfg
}

// Run drives the loop and the 1 Hz square wave until ctx ends.
func (s *Simulator) Run(ctx context.Context) error {
	step := s.clk.NewTicker(s.stepEvery)
	defer step.Stop()
	sqw := s.clk.NewTicker(time.Second)
	defer sqw.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sqw.Chan():
			s.SquareWave()
		case <-step.Chan():
			s.Step()
		}
	}
}

// Console executes one console line and returns the reply lines.
func (s *Simulator) Console(line string) []string {
	var out lineCollector
	s.mu.Lock()
	c := core.NewConsole(s.app, &out)
	c.Execute(line)
	s.mu.Unlock()
	return out.lines
}

// ServeConsole feeds r to the firmware console and writes replies to w
// until r is exhausted or ctx ends.
func (s *Simulator) ServeConsole(ctx context.Context, r io.Reader, w io.Writer) error {
	s.mu.Lock()
	if s.console == nil {
		s.console = core.NewConsole(s.app, w)
	}
	console := s.console
	s.mu.Unlock()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.mu.Lock()
		console.Feed(append(scanner.Bytes(), '\n'))
		s.mu.Unlock()
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		return fmt.Errorf("console input: %w", err)
	}
	return nil
}

type lineCollector struct {
	lines []string
	buf   []byte
}

func (l *lineCollector) Write(p []byte) (int, error) {
	l.buf = append(l.buf, p...)
	for {
		i := bytes.IndexByte(l.buf, '\n')
		if i < 0 {
			return len(p), nil
		}
		l.lines = append(l.lines, string(l.buf[:i]))
		l.buf = l.buf[i+1:]
	}
}
