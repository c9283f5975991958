package core

import "errors"

// DefaultDebounceMs is how long a level must hold before it counts.
const DefaultDebounceMs = 25

// ButtonPins maps the three physical buttons to GPIO pins. Buttons pull the
// pin low when pressed.
type ButtonPins struct {
	Mode     GPIOPin
	Choose   GPIOPin
	Settings GPIOPin
}

// button debounces one active-low input and counts completed presses.
type button struct {
	pin       GPIOPin
	pressed   bool   // debounced state
	raw       bool   // last sampled state
	changedAt uint32 // tick at which raw last changed
	clicks    int
}

func (b *button) sample(gpio GPIODriver, now, debounce uint32) {
	raw := !gpio.ReadPin(b.pin)
	if raw != b.raw {
		b.raw = raw
		b.changedAt = now
		return
	}
	if raw == b.pressed || TicksSince(b.changedAt, now) < debounce {
		return
	}
	b.pressed = raw
	if !raw {
		// A click completes on release.
		b.clicks++
	}
}

func (b *button) take() int {
	n := b.clicks
	b.clicks = 0
	return n
}

// ButtonBank turns three GPIO buttons into an InputDriver. Sample may be
// called more often than Poll (from a scheduler timer) so that short taps
// are not missed by a slow main loop.
type ButtonBank struct {
	gpio     GPIODriver
	debounce uint32
	mode     button
	choose   button
	settings button
}

// NewButtonBank configures the pins as pulled-up inputs.
func NewButtonBank(gpio GPIODriver, pins ButtonPins, debounceMs uint32) (*ButtonBank, error) {
	if gpio == nil {
		return nil, errors.New("button bank needs a GPIO driver")
	}
	for _, p := range []GPIOPin{pins.Mode, pins.Choose, pins.Settings} {
		if err := gpio.ConfigureInputPullUp(p); err != nil {
			return nil, err
		}
	}
	return &ButtonBank{
		gpio:     gpio,
		debounce: debounceMs,
		mode:     button{pin: pins.Mode},
		choose:   button{pin: pins.Choose},
		settings: button{pin: pins.Settings},
	}, nil
}

// Sample reads all three pins once.
func (b *ButtonBank) Sample(now uint32) {
	b.mode.sample(b.gpio, now, b.debounce)
	b.choose.sample(b.gpio, now, b.debounce)
	b.settings.sample(b.gpio, now, b.debounce)
}

// Poll samples once more and hands over the clicks counted so far.
func (b *ButtonBank) Poll(now uint32) Clicks {
	b.Sample(now)
	return Clicks{
		Mode:     b.mode.take(),
		Choose:   b.choose.take(),
		Settings: b.settings.take(),
	}
}
