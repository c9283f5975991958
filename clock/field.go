package clock

// ClampCyclicField keeps value inside [min, max] by wrapping around: one
// below min becomes max, one above max becomes min. Overshoots larger than
// the span keep wrapping, so a burst of clicks never escapes the range.
func ClampCyclicField(min, max, value int16) int16 {
	if min > max {
		min, max = max, min
	}
	if value >= min && value <= max {
		return value
	}
	span := int32(max) - int32(min) + 1
	off := (int32(value) - int32(min)) % span
	if off < 0 {
		off += span
	}
	return int16(int32(min) + off)
}

// ClampField saturates value at the nearest bound.
func ClampField(min, max, value int16) int16 {
	if min > max {
		min, max = max, min
	}
	switch {
	case value < min:
		return min
	case value > max:
		return max
	default:
		return value
	}
}
