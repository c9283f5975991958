package sim

import (
	"io"
	"strings"
	"sync"

	"epochclock/matrix"
)

// Pixel glyphs used by the text renderer.
const (
	PixelOn  = "█"
	PixelOff = "·"
)

// FrameRecorder is a matrix.Sink that keeps the last frame and optionally
// prints every frame to a writer.
type FrameRecorder struct {
	mu     sync.Mutex
	out    io.Writer
	last   string
	count  int
	notify chan struct{}
}

var _ matrix.Sink = (*FrameRecorder)(nil)

// NewFrameRecorder prints frames to out; out may be nil.
func NewFrameRecorder(out io.Writer) *FrameRecorder {
	return &FrameRecorder{out: out, notify: make(chan struct{}, 1)}
}

// Flush records f.
func (r *FrameRecorder) Flush(f *matrix.Frame) error {
	text := Render(f)

	r.mu.Lock()
	r.last = text
	r.count++
	out := r.out
	r.mu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}

	if out == nil {
		return nil
	}
	_, err := io.WriteString(out, text+"\n")
	return err
}

// Last returns the most recent frame as rendered text.
func (r *FrameRecorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Count returns how many frames were flushed.
func (r *FrameRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Updates signals after each new frame. Bursts coalesce.
func (r *FrameRecorder) Updates() <-chan struct{} {
	return r.notify
}

// Render draws f with PixelOn and PixelOff, one line per row.
func Render(f *matrix.Frame) string {
	var b strings.Builder
	for y := 0; y < matrix.Height; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < f.Width(); x++ {
			if f.Pixel(x, y) {
				b.WriteString(PixelOn)
			} else {
				b.WriteString(PixelOff)
			}
		}
	}
	return b.String()
}
