package core

import (
	"io"

	"epochclock/clock"
)

// MaxConsoleLine bounds the input buffer; longer lines are discarded.
const MaxConsoleLine = 80

// Console is the line protocol spoken over the USB serial port. Every
// command produces exactly one reply line starting with "ok" or "error";
// help prints its listing before the ok line.
type Console struct {
	app      *App
	out      io.Writer
	registry *CommandRegistry
	buf      []byte
	overflow bool
}

// NewConsole registers the built-in commands against app.
func NewConsole(app *App, out io.Writer) *Console {
	c := &Console{
		app:      app,
		out:      out,
		registry: NewCommandRegistry(),
		buf:      make([]byte, 0, MaxConsoleLine),
	}
	c.registry.Register("state", "", c.cmdState)
	c.registry.Register("set_zone", "<-11..12>", c.cmdSetZone)
	c.registry.Register("set_epoch", "<YYYY/MM/DD hh:mm>", c.cmdSetEpoch)
	c.registry.Register("set_time", "<YYYY/MM/DD hh:mm>", c.cmdSetTime)
	c.registry.Register("mode", "<0..4>", c.cmdMode)
	c.registry.Register("debug", "<on|off>", c.cmdDebug)
	c.registry.Register("help", "", c.cmdHelp)
	return c
}

// Registry allows targets to add their own commands.
func (c *Console) Registry() *CommandRegistry {
	return c.registry
}

// Feed consumes raw bytes from the port and executes every completed line.
func (c *Console) Feed(data []byte) {
	for _, b := range data {
		switch b {
		case '\n':
			if c.overflow {
				c.reply("error line too long")
			} else {
				c.Execute(string(c.buf))
			}
			c.buf = c.buf[:0]
			c.overflow = false
		default:
			if len(c.buf) >= MaxConsoleLine {
				c.overflow = true
				continue
			}
			c.buf = append(c.buf, b)
		}
	}
}

// Execute runs one line and writes its reply.
func (c *Console) Execute(line string) {
	if len(splitWords(line)) == 0 {
		return
	}
	text, err := c.registry.Dispatch(line)
	if err != nil {
		DebugPrintln("console: " + err.Error())
		c.reply("error " + err.Error())
		return
	}
	if text == "" {
		c.reply("ok")
		return
	}
	c.reply("ok " + text)
}

func (c *Console) reply(s string) {
	// The port may be closed or unplugged; there is nobody to report to.
	_, _ = io.WriteString(c.out, s+"\n")
}

func (c *Console) cmdState(args []string) (string, error) {
	if len(args) != 0 {
		return "", ErrBadArgument
	}
	st := c.app.Store().State()
	now := c.app.Now()
	return "zone=" + zoneText(st.Zone) +
		" epoch=" + utoa(uint32(st.EpochBegin)) +
		" recovery=" + utoa(uint32(st.RecoveryClock)) +
		" now=" + utoa(uint32(now)) +
		" elapsed=" + utoa(clock.ElapsedSeconds(now, st.EpochBegin)) +
		" mode=" + itoa(c.app.Mode()) +
		" time=" + clock.CivilFromAbsolute(now, st.Zone).String(), nil
}

func (c *Console) cmdSetZone(args []string) (string, error) {
	if len(args) != 1 {
		return "", ErrBadArgument
	}
	z, err := ParseZone(args[0])
	if err != nil {
		return "", err
	}
	if c.app.Busy() {
		return "", ErrBusy
	}
	c.app.SetZone(z)
	return "zone=" + zoneText(z), nil
}

func (c *Console) cmdSetEpoch(args []string) (string, error) {
	ts, err := c.parseLocal(args)
	if err != nil {
		return "", err
	}
	c.app.CommitEpoch(ts, c.app.Store().Zone())
	return "epoch=" + utoa(uint32(ts)), nil
}

func (c *Console) cmdSetTime(args []string) (string, error) {
	ts, err := c.parseLocal(args)
	if err != nil {
		return "", err
	}
	c.app.CommitTime(ts, c.app.Store().Zone())
	return "now=" + utoa(uint32(ts)), nil
}

// parseLocal reads a local civil time in the stored zone. Nothing is
// written unless the whole argument is valid.
func (c *Console) parseLocal(args []string) (clock.Timestamp, error) {
	if len(args) != 2 {
		return 0, ErrBadArgument
	}
	civil, err := ParseCivil(args[0] + " " + args[1])
	if err != nil {
		return 0, err
	}
	if c.app.Busy() {
		return 0, ErrBusy
	}
	return clock.AbsoluteFromCivil(civil, c.app.Store().Zone()), nil
}

func (c *Console) cmdMode(args []string) (string, error) {
	if len(args) != 1 {
		return "", ErrBadArgument
	}
	m, ok := atoi(args[0])
	if !ok {
		return "", ErrBadArgument
	}
	if err := c.app.SetMode(m); err != nil {
		return "", err
	}
	return "mode=" + itoa(m), nil
}

func (c *Console) cmdDebug(args []string) (string, error) {
	if len(args) != 1 {
		return "", ErrBadArgument
	}
	switch args[0] {
	case "on":
		SetDebugEnabled(true)
	case "off":
		SetDebugEnabled(false)
	default:
		return "", ErrBadArgument
	}
	return "debug=" + args[0], nil
}

func (c *Console) cmdHelp(args []string) (string, error) {
	for _, line := range c.registry.Help() {
		c.reply("  " + line)
	}
	return "", nil
}

// zoneText always carries a sign so the host can parse it back.
func zoneText(z clock.Zone) string {
	if z == 0 {
		return "+0"
	}
	return z.String()
}

// ParseZone accepts "+3", "3", "-11" and rejects anything outside the
// supported range, as well as -1, which would not survive a reset.
func ParseZone(s string) (clock.Zone, error) {
	n, ok := atoi(s)
	if !ok {
		return 0, ErrBadArgument
	}
	if n < int(clock.MinZone) || n > int(clock.MaxZone) {
		return 0, ErrInvalidZone
	}
	if !Storable(clock.Zone(n)) {
		return 0, ErrZoneNotStored
	}
	return clock.Zone(n), nil
}

// ParseCivil reads "YYYY/MM/DD hh:mm". Single-digit fields are accepted;
// the result must be a valid date in the supported window.
func ParseCivil(s string) (clock.Civil, error) {
	var parts [5]int
	seps := [...]byte{'/', '/', ' ', ':'}
	field := 0
	start := 0
	for i := 0; i <= len(s); i++ {
		end := i == len(s)
		if !end && (field >= len(seps) || s[i] != seps[field]) {
			continue
		}
		if end && field != len(seps) {
			return clock.Civil{}, ErrInvalidCivil
		}
		n, ok := atoi(s[start:i])
		if !ok || n < 0 || s[start] == '-' || s[start] == '+' {
			return clock.Civil{}, ErrInvalidCivil
		}
		parts[field] = n
		field++
		start = i + 1
	}

	if parts[0] > 0xFFFF || parts[1] > 0xFF || parts[2] > 0xFF || parts[3] > 0xFF || parts[4] > 0xFF {
		return clock.Civil{}, ErrInvalidCivil
	}
	c := clock.Civil{
		Year:   uint16(parts[0]),
		Month:  uint8(parts[1]),
		Day:    uint8(parts[2]),
		Hour:   uint8(parts[3]),
		Minute: uint8(parts[4]),
	}
	if !c.Valid() {
		return clock.Civil{}, ErrInvalidCivil
	}
	return c, nil
}
