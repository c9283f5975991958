package clock

var monthDays = [12]uint8{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year uint16) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// DaysInMonth returns 28..31 for month 1..12. Months outside that range are
// clamped, so the result is always a usable upper bound for a day field.
func DaysInMonth(month uint8, year uint16) uint8 {
	if month < 1 {
		month = 1
	} else if month > 12 {
		month = 12
	}
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return monthDays[month-1]
}

// ElapsedSeconds returns current - epoch with uint32 wraparound. An epoch in
// the future yields a value close to 2^32 rather than an error.
func ElapsedSeconds(current, epoch Timestamp) uint32 {
	return uint32(current) - uint32(epoch)
}
