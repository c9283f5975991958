// Package matrix draws text and numbers into the framebuffer of a chain of
// 8x8 LED modules and ships it to MAX7219 drivers.
package matrix

// ModuleSize is the edge length of one LED module.
const ModuleSize = 8

// Height of the picture in pixels.
const Height = ModuleSize

// Frame is a monochrome picture one module high. Each column is a byte with
// bit y set when the pixel in row y (0 = top) is lit.
type Frame struct {
	cols []byte
}

// NewFrame returns a blank frame spanning modules modules.
func NewFrame(modules int) *Frame {
	if modules < 1 {
		modules = 1
	}
	return &Frame{cols: make([]byte, modules*ModuleSize)}
}

// Width in pixels.
func (f *Frame) Width() int {
	return len(f.cols)
}

// Modules is the number of 8x8 modules the frame covers.
func (f *Frame) Modules() int {
	return len(f.cols) / ModuleSize
}

// Clear turns every pixel off.
func (f *Frame) Clear() {
	for i := range f.cols {
		f.cols[i] = 0
	}
}

// Set lights or clears one pixel. Coordinates outside the frame are ignored.
func (f *Frame) Set(x, y int, on bool) {
	if x < 0 || x >= len(f.cols) || y < 0 || y >= Height {
		return
	}
	if on {
		f.cols[x] |= 1 << uint(y)
	} else {
		f.cols[x] &^= 1 << uint(y)
	}
}

// Pixel reports whether (x, y) is lit.
func (f *Frame) Pixel(x, y int) bool {
	if x < 0 || x >= len(f.cols) || y < 0 || y >= Height {
		return false
	}
	return f.cols[x]&(1<<uint(y)) != 0
}

// Column returns the bit pattern of column x.
func (f *Frame) Column(x int) byte {
	if x < 0 || x >= len(f.cols) {
		return 0
	}
	return f.cols[x]
}

// Row returns one row of one module the way a MAX7219 digit register
// expects it: the leftmost pixel in the most significant bit.
func (f *Frame) Row(module, y int) byte {
	var b byte
	base := module * ModuleSize
	for i := 0; i < ModuleSize; i++ {
		if f.Pixel(base+i, y) {
			b |= 0x80 >> uint(i)
		}
	}
	return b
}

// VLine draws a vertical line from y0 to y1 inclusive.
func (f *Frame) VLine(x, y0, y1 int) {
	for y := y0; y <= y1; y++ {
		f.Set(x, y, true)
	}
}

// Rect draws the outline of a w by h rectangle with its top-left at (x, y).
func (f *Frame) Rect(x, y, w, h int) {
	for i := 0; i < w; i++ {
		f.Set(x+i, y, true)
		f.Set(x+i, y+h-1, true)
	}
	for j := 0; j < h; j++ {
		f.Set(x, y+j, true)
		f.Set(x+w-1, y+j, true)
	}
}

// String renders the frame as rows of '#' and '.', one line per pixel row.
func (f *Frame) String() string {
	buf := make([]byte, 0, (len(f.cols)+1)*Height)
	for y := 0; y < Height; y++ {
		for x := range f.cols {
			if f.Pixel(x, y) {
				buf = append(buf, '#')
			} else {
				buf = append(buf, '.')
			}
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}
