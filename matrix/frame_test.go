package matrix

import (
	"errors"
	"strings"
	"testing"
)

func TestFrameSetAndRow(t *testing.T) {
	f := NewFrame(2)
	if f.Width() != 16 || f.Modules() != 2 {
		t.Fatalf("Width() = %d, Modules() = %d", f.Width(), f.Modules())
	}

	f.Set(8, 3, true)
	f.Set(15, 3, true)
	f.Set(-1, 0, true)
	f.Set(16, 0, true)
	f.Set(0, 8, true)

	if got := f.Row(1, 3); got != 0x81 {
		t.Errorf("Row(1, 3) = %#02x, want 0x81", got)
	}
	if got := f.Row(0, 3); got != 0 {
		t.Errorf("Row(0, 3) = %#02x, want 0", got)
	}
	if got := f.Column(8); got != 1<<3 {
		t.Errorf("Column(8) = %#02x", got)
	}

	f.Set(8, 3, false)
	if f.Pixel(8, 3) {
		t.Error("pixel still lit after clear")
	}
	f.Clear()
	if f.Pixel(15, 3) {
		t.Error("Clear left a pixel lit")
	}
}

func TestTextWidth(t *testing.T) {
	if got := TextWidth("2024/01/31 09:41"); got != 95 {
		t.Errorf("TextWidth(civil) = %d, want 95 to fit a 96 column panel", got)
	}
	if TextWidth("") != 0 {
		t.Error("empty text has width")
	}
}

func TestDrawTextGlyph(t *testing.T) {
	f := NewFrame(1)
	next := f.DrawText(0, "1")
	if next != Advance {
		t.Errorf("DrawText returned %d, want %d", next, Advance)
	}

	want := []string{
		"..#.....",
		".##.....",
		"..#.....",
		"..#.....",
		"..#.....",
		"..#.....",
		".###....",
		"........",
	}
	rows := strings.Split(strings.TrimSuffix(f.String(), "\n"), "\n")
	for y, row := range want {
		if rows[y] != row {
			t.Errorf("row %d = %q, want %q", y, rows[y], row)
		}
	}
}

func TestDrawTextLowercaseAndUnknown(t *testing.T) {
	a, b := NewFrame(1), NewFrame(1)
	a.DrawText(0, "m")
	b.DrawText(0, "M")
	if a.String() != b.String() {
		t.Error("lowercase not drawn as uppercase")
	}

	a.Clear()
	b.Clear()
	a.DrawText(0, "\x01")
	b.DrawText(0, "?")
	if a.String() != b.String() {
		t.Error("unknown character not drawn as '?'")
	}
}

func TestDrawTextClipsAtRightEdge(t *testing.T) {
	f := NewFrame(1)
	f.DrawText(6, "88")
	if !f.Pixel(7, 0) {
		t.Error("first glyph missing")
	}
	// Nothing should wrap back to the left.
	for y := 0; y < Height; y++ {
		if f.Pixel(0, y) {
			t.Fatal("clipped glyph wrapped to column 0")
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		v    uint32
		base uint8
		want string
	}{
		{1170454277, 10, "1170454277"},
		{0xDEADBEEF, 16, "DEADBEEF"},
		{8, 8, "10"},
		{5, 2, "101"},
		{0, 16, "0"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.v, tt.base); got != tt.want {
			t.Errorf("FormatNumber(%d, %d) = %q, want %q", tt.v, tt.base, got, tt.want)
		}
	}
}

func TestDrawBinaryLayout(t *testing.T) {
	f := NewFrame(12)
	f.DrawBinary(0x80000001)

	// MSB: a bar at the first cell of the top row.
	for y := 0; y < 3; y++ {
		if !f.Pixel(BinaryX, y) {
			t.Errorf("MSB bar missing at y=%d", y)
		}
	}
	if f.Pixel(BinaryX+1, 0) {
		t.Error("MSB drawn as a square")
	}

	// Bit 30: hollow square in the second cell.
	x := BinaryX + 4
	if !f.Pixel(x, 0) || !f.Pixel(x+2, 2) || f.Pixel(x+1, 1) {
		t.Error("zero bit is not a hollow square")
	}

	// LSB: bar in the last cell of the bottom row.
	last := BinaryX + 15*4
	for y := 4; y < 7; y++ {
		if !f.Pixel(last, y) {
			t.Errorf("LSB bar missing at y=%d", y)
		}
	}

	for x := 0; x < BinaryX; x++ {
		if f.Column(x) != 0 {
			t.Fatalf("column %d left of the grid is lit", x)
		}
	}
	if f.Column(BinaryX+16*4) != 0 {
		t.Error("grid spills past sixteen cells")
	}
}

func TestDrawNumberPositions(t *testing.T) {
	f := NewFrame(12)
	f.DrawNumber(1, 10)
	if f.Column(NumberX+1) == 0 {
		t.Error("decimal not drawn at NumberX")
	}

	f.Clear()
	f.DrawNumber(0xA, 16)
	if f.Column(HexX) == 0 || f.Column(HexX-1) != 0 {
		t.Error("hex not drawn at HexX")
	}
}

type recordingSink struct {
	frames []string
	err    error
}

func (s *recordingSink) Flush(f *Frame) error {
	s.frames = append(s.frames, f.String())
	return s.err
}

func TestDisplayFlushes(t *testing.T) {
	sink := &recordingSink{}
	d := NewDisplay(12, sink)

	d.ShowString("HI")
	d.ShowNumber(42, 3)
	if len(sink.frames) != 2 {
		t.Fatalf("got %d flushes, want 2", len(sink.frames))
	}

	want := NewFrame(12)
	want.DrawNumber(42, 10)
	if sink.frames[1] != want.String() {
		t.Error("unsupported base not rendered as decimal")
	}

	sink.err = errors.New("bus gone")
	d.ShowString("X")
	if len(sink.frames) != 3 {
		t.Error("flush error stopped later frames")
	}
}
