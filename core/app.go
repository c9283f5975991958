package core

import (
	"errors"

	"epochclock/clock"
)

// DisplayModes is the cycle the Mode button walks through. Zero means the
// local calendar time as text; every other entry is a numeric base for the
// seconds elapsed since the epoch begin.
var DisplayModes = [...]uint8{2, 8, 10, 16, 0}

// TextMode is the index of the text entry in DisplayModes.
const TextMode = len(DisplayModes) - 1

// Default timings.
const (
	DefaultMenuTimeout      = 5    // seconds on the RTC
	DefaultRefreshFallback  = 1000 // ms
	DefaultButtonSampleTick = 5    // ms
)

var ErrInvalidMode = errors.New("display mode out of range")

// Options tunes an App. Zero values are replaced by the defaults above.
type Options struct {
	Defaults PersistedState
	// MenuTimeout is the idle time in seconds after which the menu or an
	// edit session is abandoned.
	MenuTimeout uint32
	// WrapFields selects cyclic wrap for edited values; false saturates.
	WrapFields bool
	StartMode  int
	// RefreshFallbackMs redraws even when no square-wave edge arrives.
	RefreshFallbackMs uint32
	SampleEveryMs     uint32
}

// DefaultOptions returns the factory configuration.
func DefaultOptions() Options {
	return Options{
		Defaults:          DefaultState(),
		MenuTimeout:       DefaultMenuTimeout,
		WrapFields:        true,
		StartMode:         TextMode,
		RefreshFallbackMs: DefaultRefreshFallback,
		SampleEveryMs:     DefaultButtonSampleTick,
	}
}

// sampler is implemented by inputs that want to be sampled between polls.
type sampler interface {
	Sample(now uint32)
}

type phase uint8

const (
	phaseIdle phase = iota
	phaseMenu
	phaseEdit
)

// shown caches what is on the display so unchanged frames are not resent.
type shown struct {
	valid bool
	text  string
	value uint32
	base  uint8
}

// App is the clock application. It never blocks: Step is called from the
// main loop as often as possible and does one slice of work.
type App struct {
	rtc     RTCDriver
	store   *StateStore
	display DisplayDriver
	input   InputDriver
	opts    Options

	refresh RefreshFlag
	sched   *Scheduler
	timers  []*Timer

	mode   int
	phase  phase
	menu   *Menu
	edit   *EditSession
	target MenuOption

	last shown
}

// NewApp wires the collaborators together. Nothing touches hardware until
// Start.
func NewApp(rtc RTCDriver, nv NVStorage, display DisplayDriver, input InputDriver, opts Options) (*App, error) {
	if rtc == nil || nv == nil || display == nil || input == nil {
		return nil, errors.New("app needs an RTC, storage, a display and an input")
	}
	def := DefaultOptions()
	if opts.MenuTimeout == 0 {
		opts.MenuTimeout = def.MenuTimeout
	}
	if opts.RefreshFallbackMs == 0 {
		opts.RefreshFallbackMs = def.RefreshFallbackMs
	}
	if opts.SampleEveryMs == 0 {
		opts.SampleEveryMs = def.SampleEveryMs
	}
	if opts.StartMode < 0 || opts.StartMode >= len(DisplayModes) {
		return nil, ErrInvalidMode
	}
	if opts.Defaults == (PersistedState{}) {
		opts.Defaults = def.Defaults
	}

	return &App{
		rtc:     rtc,
		store:   NewStateStore(nv, opts.Defaults),
		display: display,
		input:   input,
		opts:    opts,
		sched:   NewScheduler(),
		mode:    opts.StartMode,
	}, nil
}

// Start loads persisted state, arms the periodic timers and draws the first
// frame.
func (a *App) Start(nowMs uint32) {
	st := a.store.Load()
	DebugPrintln("state loaded")
	DebugValue("zone", uint32(int32(st.Zone)))
	DebugTimestamp("epoch", st.EpochBegin)
	DebugTimestamp("recovery", st.RecoveryClock)

	fallback := Periodic(nowMs, a.opts.RefreshFallbackMs, func(uint32) {
		a.refresh.Set()
	})
	a.timers = append(a.timers, fallback)
	a.sched.ScheduleTimer(fallback)

	if s, ok := a.input.(sampler); ok {
		t := Periodic(nowMs, a.opts.SampleEveryMs, s.Sample)
		a.timers = append(a.timers, t)
		a.sched.ScheduleTimer(t)
	}

	a.refresh.Set()
	a.Step(nowMs)
}

// Stop cancels the periodic timers.
func (a *App) Stop() {
	for _, t := range a.timers {
		a.sched.Cancel(t)
	}
	a.timers = nil
}

// Refresh is the flag the RTC square-wave interrupt sets.
func (a *App) Refresh() *RefreshFlag {
	return &a.refresh
}

// Store exposes the persisted state.
func (a *App) Store() *StateStore {
	return a.store
}

// Scheduler exposes the timer list so targets can add their own tasks.
func (a *App) Scheduler() *Scheduler {
	return a.sched
}

// Now reads the RTC.
func (a *App) Now() clock.Timestamp {
	return a.rtc.Now()
}

// Mode returns the index into DisplayModes.
func (a *App) Mode() int {
	return a.mode
}

// SetMode selects a display mode directly.
func (a *App) SetMode(m int) error {
	if m < 0 || m >= len(DisplayModes) {
		return ErrInvalidMode
	}
	a.mode = m
	a.refresh.Set()
	return nil
}

// Busy reports whether the menu or an edit session owns the display.
func (a *App) Busy() bool {
	return a.phase != phaseIdle
}

// Step runs one main-loop iteration.
func (a *App) Step(nowMs uint32) {
	a.sched.Dispatch(nowMs)

	clicks := a.input.Poll(nowMs)
	switch a.phase {
	case phaseIdle:
		a.stepIdle(clicks)
	case phaseMenu:
		a.stepMenu(clicks)
	case phaseEdit:
		a.stepEdit(clicks)
	}

	if a.refresh.Take() {
		a.render()
	}
}

func (a *App) stepIdle(c Clicks) {
	if c.Mode > 0 {
		a.mode = (a.mode + c.Mode) % len(DisplayModes)
		DebugValue("mode", uint32(DisplayModes[a.mode]))
		a.refresh.Set()
	}
	if c.Settings > 0 {
		DebugPrintln("menu: open")
		a.menu = NewMenu(a.rtc.Now(), a.opts.MenuTimeout)
		a.phase = phaseMenu
		a.refresh.Set()
	}
}

func (a *App) stepMenu(c Clicks) {
	before := a.menu.Highlighted()
	if !a.menu.Step(c, a.rtc.Now()) {
		if a.menu.Highlighted() != before {
			a.refresh.Set()
		}
		return
	}

	opt := a.menu.Selected()
	DebugPrintln("menu: " + opt.String())
	a.menu = nil
	a.refresh.Set()

	switch opt {
	case MenuEditTime:
		start := clock.CivilFromAbsolute(a.rtc.Now(), a.store.Zone())
		a.beginEdit(opt, start)
	case MenuEditEpoch:
		start := clock.CivilFromAbsolute(a.store.EpochBegin(), a.store.Zone())
		a.beginEdit(opt, start)
	default:
		a.phase = phaseIdle
	}
}

func (a *App) beginEdit(target MenuOption, start clock.Civil) {
	a.target = target
	a.edit = NewEditSession(start, a.store.Zone(), a.rtc.Now(), a.opts.MenuTimeout, a.opts.WrapFields)
	a.phase = phaseEdit
}

func (a *App) stepEdit(c Clicks) {
	if c.Any() {
		a.refresh.Set()
	}
	if !a.edit.Step(c, a.rtc.Now()) {
		return
	}

	ts, zone, ok := a.edit.Result()
	if ok {
		switch a.target {
		case MenuEditTime:
			a.CommitTime(ts, zone)
		case MenuEditEpoch:
			a.CommitEpoch(ts, zone)
		}
	}
	a.edit = nil
	a.target = MenuNone
	a.phase = phaseIdle
	a.refresh.Set()
}

// CommitTime sets the RTC and records the new time and zone.
func (a *App) CommitTime(ts clock.Timestamp, zone clock.Zone) {
	a.rtc.Adjust(ts)
	a.store.SetRecoveryClock(ts)
	a.store.SetZone(zone)
	DebugTimestamp("time set", ts)
	a.refresh.Set()
}

// CommitEpoch records a new epoch begin and zone.
func (a *App) CommitEpoch(ts clock.Timestamp, zone clock.Zone) {
	a.store.SetEpochBegin(ts)
	a.store.SetZone(zone)
	DebugTimestamp("epoch set", ts)
	a.refresh.Set()
}

// SetZone changes only the display zone.
func (a *App) SetZone(zone clock.Zone) {
	a.store.SetZone(zone)
	a.refresh.Set()
}

func (a *App) render() {
	switch a.phase {
	case phaseMenu:
		a.showText(a.menuText())
	case phaseEdit:
		a.showText(a.edit.Prompt())
	default:
		now := a.rtc.Now()
		base := DisplayModes[a.mode]
		if base == 0 {
			a.showText(clock.CivilFromAbsolute(now, a.store.Zone()).String())
			return
		}
		a.showNumber(clock.ElapsedSeconds(now, a.store.EpochBegin()), base)
	}
}

func (a *App) menuText() string {
	ts := a.rtc.Now()
	if a.menu.Highlighted() == MenuEditEpoch {
		ts = a.store.EpochBegin()
	}
	return clock.CivilFromAbsolute(ts, a.store.Zone()).String()
}

func (a *App) showText(s string) {
	if a.last.valid && a.last.base == 0 && a.last.text == s {
		return
	}
	a.display.ShowString(s)
	a.last = shown{valid: true, text: s}
}

func (a *App) showNumber(v uint32, base uint8) {
	if a.last.valid && a.last.base == base && a.last.value == v {
		return
	}
	a.display.ShowNumber(v, base)
	a.last = shown{valid: true, value: v, base: base}
}
