package core

import "epochclock/clock"

// FieldKind names one step of the edit sequence. The order of the constants
// is the order in which fields are visited.
type FieldKind uint8

const (
	FieldZone FieldKind = iota
	FieldYear
	FieldMonth
	FieldDay
	FieldHour
	FieldMinute

	fieldCount
)

// FieldDescriptor is the field being edited together with the values
// collected so far.
type FieldDescriptor struct {
	Kind  FieldKind
	Civil clock.Civil
	Zone  clock.Zone
}

// Range returns the inclusive bounds for the current field. The day bound
// follows the month and year already entered.
func (d FieldDescriptor) Range() (min, max int16) {
	switch d.Kind {
	case FieldZone:
		return int16(clock.MinZone), int16(clock.MaxZone)
	case FieldYear:
		return clock.MinYear, clock.MaxYear
	case FieldMonth:
		return 1, 12
	case FieldDay:
		return 1, int16(clock.DaysInMonth(d.Civil.Month, d.Civil.Year))
	case FieldHour:
		return 0, 23
	default:
		return 0, 59
	}
}

// Value returns the current value of the field being edited.
func (d FieldDescriptor) Value() int16 {
	switch d.Kind {
	case FieldZone:
		return int16(d.Zone)
	case FieldYear:
		return int16(d.Civil.Year)
	case FieldMonth:
		return int16(d.Civil.Month)
	case FieldDay:
		return int16(d.Civil.Day)
	case FieldHour:
		return int16(d.Civil.Hour)
	default:
		return int16(d.Civil.Minute)
	}
}

// With returns a copy of d with the current field set to v. v must already
// be inside Range.
func (d FieldDescriptor) With(v int16) FieldDescriptor {
	switch d.Kind {
	case FieldZone:
		d.Zone = clock.Zone(v)
	case FieldYear:
		d.Civil.Year = uint16(v)
	case FieldMonth:
		d.Civil.Month = uint8(v)
	case FieldDay:
		d.Civil.Day = uint8(v)
	case FieldHour:
		d.Civil.Hour = uint8(v)
	default:
		d.Civil.Minute = uint8(v)
	}
	return d
}

// FormatField renders the prompt shown while a field is edited.
func FormatField(d FieldDescriptor) string {
	v := int(d.Value())
	switch d.Kind {
	case FieldZone:
		return "TZ UTC" + zoneSuffix(d.Zone)
	case FieldYear:
		return "YEAR " + itoa(v)
	case FieldMonth:
		return "MONTH " + itoa(v)
	case FieldDay:
		return "DAY " + itoa(v)
	case FieldHour:
		return "HOUR " + itoa(v)
	default:
		return "MIN " + itoa(v)
	}
}

func zoneSuffix(z clock.Zone) string {
	if z == 0 {
		return ""
	}
	return z.String()
}

type editStatus uint8

const (
	editActive editStatus = iota
	editCommitted
	editAborted
)

// EditSession walks the operator through zone, year, month, day, hour and
// minute. Nothing is written anywhere while it runs: the caller reads Result
// once Step reports done and persists the outcome in one go. An idle period
// of timeout seconds aborts the whole session.
type EditSession struct {
	field        FieldDescriptor
	wrap         bool
	timeout      uint32
	lastActivity clock.Timestamp
	status       editStatus
}

// NewEditSession starts at the zone field, seeded with start. Seconds are
// always entered as zero. With wrap set, values run past either bound to the
// other; otherwise they stop at the bound.
func NewEditSession(start clock.Civil, zone clock.Zone, now clock.Timestamp, timeout uint32, wrap bool) *EditSession {
	start.Second = 0
	start.Weekday = 0
	s := &EditSession{
		field:        FieldDescriptor{Kind: FieldZone, Civil: start, Zone: zone},
		wrap:         wrap,
		timeout:      timeout,
		lastActivity: now,
	}
	s.enterField()
	return s
}

// Field returns the field being edited and the values entered so far.
func (s *EditSession) Field() FieldDescriptor {
	return s.field
}

// Prompt is FormatField for the current field.
func (s *EditSession) Prompt() string {
	return FormatField(s.field)
}

// Done reports whether the session has finished, either way.
func (s *EditSession) Done() bool {
	return s.status != editActive
}

// Step applies one poll of button clicks. It returns true once the session
// is over; Result tells whether it was committed.
func (s *EditSession) Step(c Clicks, now clock.Timestamp) bool {
	if s.status != editActive {
		return true
	}

	if c.Any() {
		s.lastActivity = now
	} else if s.idleFor(now) >= int64(s.timeout) {
		DebugPrintln("edit: timed out at " + FormatField(s.field))
		s.status = editAborted
		return true
	}

	if delta := c.Choose - c.Mode; delta != 0 {
		min, max := s.field.Range()
		v := s.fit(min, max, int(s.field.Value())+delta)
		if s.field.Kind == FieldZone && !Storable(clock.Zone(v)) {
			// Keep moving the way the operator was going.
			step := 1
			if delta < 0 {
				step = -1
			}
			v = s.fit(min, max, int(v)+step)
		}
		s.field = s.field.With(v)
	}

	if c.Settings > 0 {
		s.field.Kind++
		if s.field.Kind == fieldCount {
			s.status = editCommitted
			return true
		}
		s.enterField()
	}
	return false
}

// Abort ends the session without a result.
func (s *EditSession) Abort() {
	if s.status == editActive {
		s.status = editAborted
	}
}

// Result returns the entered instant and zone. ok is false until the last
// field has been confirmed, and stays false after an abort.
func (s *EditSession) Result() (ts clock.Timestamp, zone clock.Zone, ok bool) {
	if s.status != editCommitted {
		return 0, 0, false
	}
	return clock.AbsoluteFromCivil(s.field.Civil, s.field.Zone), s.field.Zone, true
}

// enterField pulls a seeded value into range before it is shown. A day that
// no longer fits the chosen month stops at the month's last day instead of
// wrapping to the start.
func (s *EditSession) enterField() {
	min, max := s.field.Range()
	v := s.field.Value()
	s.field = s.field.With(clock.ClampField(min, max, v))
	if s.field.Kind == FieldZone && !Storable(s.field.Zone) {
		s.field.Zone = 0
	}
}

func (s *EditSession) fit(min, max int16, v int) int16 {
	// Click bursts can exceed int16 in theory; keep the arithmetic wide.
	if v > 32767 {
		v = 32767
	} else if v < -32768 {
		v = -32768
	}
	if s.wrap {
		return clock.ClampCyclicField(min, max, int16(v))
	}
	return clock.ClampField(min, max, int16(v))
}

// idleFor is signed so that an RTC stepping backwards does not look like a
// very long idle period.
func (s *EditSession) idleFor(now clock.Timestamp) int64 {
	d := int64(now) - int64(s.lastActivity)
	if d < 0 {
		s.lastActivity = now
		return 0
	}
	return d
}
