package matrix

import "epochclock/core"

// Sink receives finished frames.
type Sink interface {
	Flush(f *Frame) error
}

// Display renders text and numbers into a frame and pushes it to a sink.
// It satisfies core.DisplayDriver.
type Display struct {
	frame *Frame
	sink  Sink
}

var _ core.DisplayDriver = (*Display)(nil)

// NewDisplay returns a Display for a panel of modules modules.
func NewDisplay(modules int, sink Sink) *Display {
	return &Display{frame: NewFrame(modules), sink: sink}
}

// Frame exposes the last rendered picture.
func (d *Display) Frame() *Frame {
	return d.frame
}

// ShowString draws s from the left edge.
func (d *Display) ShowString(s string) {
	d.frame.Clear()
	d.frame.DrawText(0, s)
	d.flush()
}

// ShowNumber draws v in base 2, 8, 10 or 16. Other bases fall back to 10.
func (d *Display) ShowNumber(v uint32, base uint8) {
	switch base {
	case 2, 8, 10, 16:
	default:
		base = 10
	}
	d.frame.Clear()
	d.frame.DrawNumber(v, base)
	d.flush()
}

func (d *Display) flush() {
	if d.sink == nil {
		return
	}
	if err := d.sink.Flush(d.frame); err != nil {
		core.DebugPrintln("matrix: flush failed: " + err.Error())
	}
}
