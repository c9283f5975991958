package clock

// Zone is a whole-hour offset from UTC.
type Zone int8

// Valid zone range.
const (
	MinZone Zone = -11
	MaxZone Zone = 12
)

// Seconds returns the offset in seconds.
func (z Zone) Seconds() int64 {
	return int64(z) * secondsPerHour
}

// Valid reports whether z lies in MinZone..MaxZone.
func (z Zone) Valid() bool {
	return z >= MinZone && z <= MaxZone
}

// String renders the zone with an explicit sign: "+3", "-11", "0".
func (z Zone) String() string {
	n := int(z)
	switch {
	case n == 0:
		return "0"
	case n < 0:
		return "-" + string(appendPadded(nil, -n, 1))
	default:
		return "+" + string(appendPadded(nil, n, 1))
	}
}
