// Package clock converts between RTC timestamps, local calendar time and
// epoch-relative durations. Everything here is pure: no I/O, no globals.
package clock

// Timestamp is a count of seconds since 1970-01-01T00:00:00 UTC, as kept by
// the RTC. It wraps at 2^32 (early 2106), which is beyond the supported range.
type Timestamp uint32

// Supported calendar window.
const (
	MinYear = 1970
	MaxYear = 2099
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400

	// Days from 0000-03-01 to 1970-01-01 in the proleptic Gregorian calendar.
	unixEpochDayShift = 719468
	daysPerEra        = 146097
)

// Civil is a broken-down local calendar time.
type Civil struct {
	Year    uint16
	Month   uint8
	Day     uint8
	Hour    uint8
	Minute  uint8
	Second  uint8
	Weekday uint8 // 0 = Sunday; filled by CivilFromAbsolute, ignored on input
}

// Valid reports whether every field is in range, including the
// days-in-month bound and the supported year window.
func (c Civil) Valid() bool {
	if c.Year < MinYear || c.Year > MaxYear {
		return false
	}
	if c.Month < 1 || c.Month > 12 {
		return false
	}
	if c.Day < 1 || c.Day > DaysInMonth(c.Month, c.Year) {
		return false
	}
	return c.Hour < 24 && c.Minute < 60 && c.Second < 60
}

// String formats the time the way the matrix shows it: "YYYY/MM/DD hh:mm".
func (c Civil) String() string {
	buf := make([]byte, 0, 16)
	buf = appendPadded(buf, int(c.Year), 4)
	buf = append(buf, '/')
	buf = appendPadded(buf, int(c.Month), 2)
	buf = append(buf, '/')
	buf = appendPadded(buf, int(c.Day), 2)
	buf = append(buf, ' ')
	buf = appendPadded(buf, int(c.Hour), 2)
	buf = append(buf, ':')
	buf = appendPadded(buf, int(c.Minute), 2)
	return string(buf)
}

// CivilFromAbsolute shifts ts by the zone offset and breaks it into calendar
// fields. It is exact for local years 1970-2099 and never fails; outside that
// window the result is still well formed but not guaranteed to be correct.
func CivilFromAbsolute(ts Timestamp, z Zone) Civil {
	local := int64(ts) + z.Seconds()

	days := floorDiv(local, secondsPerDay)
	sod := local - days*secondsPerDay

	year, month, day := civilFromDays(days)

	return Civil{
		Year:    uint16(year),
		Month:   uint8(month),
		Day:     uint8(day),
		Hour:    uint8(sod / secondsPerHour),
		Minute:  uint8(sod % secondsPerHour / secondsPerMinute),
		Second:  uint8(sod % secondsPerMinute),
		Weekday: uint8(floorMod(days+4, 7)), // 1970-01-01 was a Thursday
	}
}

// AbsoluteFromCivil is the inverse of CivilFromAbsolute for valid input.
//
// A day past the end of the month is not rejected: it counts forward from
// day 1, so 2023/02/30 lands on 2023/03/02. Callers that need a strict check
// use Civil.Valid first.
func AbsoluteFromCivil(c Civil, z Zone) Timestamp {
	days := daysFromCivil(int64(c.Year), int64(c.Month), int64(c.Day))
	secs := days*secondsPerDay +
		int64(c.Hour)*secondsPerHour +
		int64(c.Minute)*secondsPerMinute +
		int64(c.Second) -
		z.Seconds()
	return Timestamp(uint32(secs))
}

// civilFromDays maps days since 1970-01-01 to a date. The year is counted
// from March so that February, and with it the leap day, is the last month
// of the shifted year.
func civilFromDays(days int64) (year, month, day int64) {
	z := days + unixEpochDayShift
	era := floorDiv(z, daysPerEra)
	doe := z - era*daysPerEra
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	// mp counts months from March: 0 = March, 11 = February.
	mp := (5*doy + 2) / 153

	day = doy - (153*mp+2)/5 + 1
	if mp < 10 {
		month = mp + 3
	} else {
		month = mp - 9
	}
	year = yoe + era*400
	if month <= 2 {
		year++
	}
	return year, month, day
}

// daysFromCivil maps a date to days since 1970-01-01.
func daysFromCivil(year, month, day int64) int64 {
	if month <= 2 {
		year--
	}
	era := floorDiv(year, 400)
	yoe := year - era*400

	var mp int64
	if month > 2 {
		mp = month - 3
	} else {
		mp = month + 9
	}
	doy := (153*mp+2)/5 + day - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*daysPerEra + doe - unixEpochDayShift
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}

// appendPadded writes n in decimal, left padded with zeros to width.
func appendPadded(buf []byte, n, width int) []byte {
	var digits [6]byte
	i := len(digits)
	for n > 0 || i == len(digits) {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	for pad := width - (len(digits) - i); pad > 0; pad-- {
		buf = append(buf, '0')
	}
	return append(buf, digits[i:]...)
}
