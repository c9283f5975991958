package matrix

import "errors"

// DigitRegisterBase is the MAX7219 register of row 0; rows use 1..8. It
// mirrors max72xx.REG_DIGIT0, which cannot be imported here because that
// package needs the machine package.
const DigitRegisterBase = 0x01

// Bus is the SPI transmit half used to talk to the chain.
type Bus interface {
	Tx(w, r []byte) error
}

// Chain drives a cascade of MAX7219 modules sharing one chip-select line.
// Every transfer carries one register/value pair per module; module 0 is
// the far end of the cascade and the left edge of the picture, so its pair
// is clocked out first.
type Chain struct {
	bus     Bus
	cs      func(high bool)
	modules int
	buf     []byte
}

// NewChain binds the chain to a bus and a chip-select setter.
func NewChain(bus Bus, cs func(high bool), modules int) (*Chain, error) {
	if bus == nil || cs == nil {
		return nil, errors.New("matrix chain needs a bus and a chip select")
	}
	if modules < 1 {
		return nil, errors.New("matrix chain needs at least one module")
	}
	cs(true)
	return &Chain{
		bus:     bus,
		cs:      cs,
		modules: modules,
		buf:     make([]byte, 2*modules),
	}, nil
}

// Modules returns the cascade length.
func (c *Chain) Modules() int {
	return c.modules
}

// Broadcast writes the same register value to every module.
func (c *Chain) Broadcast(reg, value byte) error {
	for m := 0; m < c.modules; m++ {
		c.buf[2*m] = reg
		c.buf[2*m+1] = value
	}
	return c.send()
}

// Flush writes all eight rows of f.
func (c *Chain) Flush(f *Frame) error {
	if f.Modules() != c.modules {
		return errors.New("frame does not match chain length")
	}
	for y := 0; y < Height; y++ {
		for m := 0; m < c.modules; m++ {
			c.buf[2*m] = DigitRegisterBase + byte(y)
			c.buf[2*m+1] = f.Row(m, y)
		}
		if err := c.send(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Chain) send() error {
	c.cs(false)
	err := c.bus.Tx(c.buf, nil)
	c.cs(true)
	return err
}
