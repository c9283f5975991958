package matrix

import "strconv"

// Layout of numeric modes on a 12-module panel.
const (
	NumberX    = 16 // left edge of octal and decimal values
	HexX       = 27 // hex values are shorter and sit further right
	BinaryX    = 16 // left edge of the bit grid
	bitCell    = 3  // bit mark edge length
	bitPitch   = bitCell + 1
	bitsPerRow = 16
)

// DrawText draws s with its left edge at x and returns the x just past the
// last glyph. Glyphs falling off the right edge are clipped.
func (f *Frame) DrawText(x int, s string) int {
	for i := 0; i < len(s); i++ {
		g := glyphFor(s[i])
		for col, bits := range g {
			for y := 0; y < Height; y++ {
				if bits&(1<<uint(y)) != 0 {
					f.Set(x+col, y, true)
				}
			}
		}
		x += Advance
	}
	return x
}

// FormatNumber renders v in base with uppercase hex digits.
func FormatNumber(v uint32, base uint8) string {
	s := strconv.FormatUint(uint64(v), int(base))
	buf := []byte(s)
	for i, c := range buf {
		if c >= 'a' && c <= 'f' {
			buf[i] = c - ('a' - 'A')
		}
	}
	return string(buf)
}

// DrawBinary draws the 32 bits of v, most significant first, as two rows of
// sixteen marks: a vertical bar for 1, a hollow square for 0.
func (f *Frame) DrawBinary(v uint32) {
	for i := 0; i < 32; i++ {
		bit := (v >> uint(31-i)) & 1
		x := BinaryX + (i%bitsPerRow)*bitPitch
		y := (i / bitsPerRow) * bitPitch
		if bit == 1 {
			f.VLine(x, y, y+bitCell-1)
		} else {
			f.Rect(x, y, bitCell, bitCell)
		}
	}
}

// DrawNumber lays out v the way the clock shows elapsed seconds.
func (f *Frame) DrawNumber(v uint32, base uint8) {
	switch base {
	case 2:
		f.DrawBinary(v)
	case 16:
		f.DrawText(HexX, FormatNumber(v, base))
	default:
		f.DrawText(NumberX, FormatNumber(v, base))
	}
}
