// Package console talks to the clock's line-oriented USB console.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"epochclock/clock"
	"epochclock/host/serial"
)

// DefaultTimeout bounds how long Do waits for a reply.
const DefaultTimeout = 2 * time.Second

// ErrClosed is returned after Close.
var ErrClosed = errors.New("console closed")

// DeviceError is an "error ..." reply from the clock.
type DeviceError struct {
	Command string
	Message string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("clock rejected %q: %s", e.Command, e.Message)
}

// Reply is one command's response.
type Reply struct {
	// Text follows "ok" on the final line.
	Text string
	// Lines holds listing lines printed before the final line (help).
	Lines []string
}

// Client sends commands and collects replies. It is safe for concurrent
// use; commands are serialized.
type Client struct {
	mu     sync.Mutex
	port   io.ReadWriteCloser
	lines  chan string
	errc   chan error
	closed atomic.Bool

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	// owed counts replies still due to commands that timed out. Every line
	// the firmware receives gets exactly one ok/error reply, so these are
	// consumed and dropped before the next command's reply.
	owed int
}

// Dial opens device with the default serial settings.
func Dial(device string) (*Client, error) {
	port, err := serial.Open(serial.DefaultConfig(device))
	if err != nil {
		return nil, fmt.Errorf("failed to open clock console: %w", err)
	}
	if err := port.Flush(); err != nil {
		log.Debug().Err(err).Msg("flush before first command failed")
	}
	return NewClient(port), nil
}

// NewClient starts reading lines from port.
func NewClient(port io.ReadWriteCloser) *Client {
	c := &Client{
		port:  port,
		lines:   make(chan string, 16),
		errc:    make(chan error, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *Client) readLoop() {
	defer close(c.stopped)

	r := bufio.NewReader(c.port)
	var partial strings.Builder
	for {
		chunk, err := r.ReadString('\n')
		partial.WriteString(chunk)
		if err == nil {
			line := strings.TrimRight(partial.String(), "\r\n")
			partial.Reset()
			select {
			case c.lines <- line:
			case <-c.done:
				return
			}
			continue
		}
		// Native ports report a read timeout as io.EOF or as no progress.
		if (errors.Is(err, io.EOF) || errors.Is(err, io.ErrNoProgress)) && !c.closed.Load() {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		select {
		case c.errc <- err:
		case <-c.done:
			return
		}
		close(c.lines)
		return
	}
}

// Close releases the port.
func (c *Client) Close() error {
	c.closed.Store(true)
	c.closeOnce.Do(func() { close(c.done) })
	if err := c.port.Close(); err != nil {
		return fmt.Errorf("failed to close console: %w", err)
	}
	return nil
}

// Do sends one command line and waits for its ok/error line. Lines that
// arrive before the reply and do not belong to it (debug output) are
// logged and skipped.
func (c *Client) Do(ctx context.Context, line string) (Reply, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.ContainsAny(line, "\r\n") {
		return Reply{}, fmt.Errorf("invalid command line %q", line)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return Reply{}, ErrClosed
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	c.discardPending()

	log.Debug().Str("cmd", line).Msg("sending")
	if _, err := io.WriteString(c.port, line+"\n"); err != nil {
		return Reply{}, fmt.Errorf("failed to send %q: %w", line, err)
	}

	var reply Reply
	for {
		select {
		case <-ctx.Done():
			c.owed++
			return Reply{}, fmt.Errorf("waiting for reply to %q: %w", line, ctx.Err())
		case l, ok := <-c.lines:
			if !ok {
				err := <-c.errc
				c.errc <- err
				return Reply{}, fmt.Errorf("console read failed: %w", err)
			}
			switch {
			case c.owed > 0:
				c.dropOwed(l)
			case l == "ok" || strings.HasPrefix(l, "ok "):
				reply.Text = strings.TrimPrefix(strings.TrimPrefix(l, "ok"), " ")
				return reply, nil
			case l == "error" || strings.HasPrefix(l, "error "):
				return Reply{}, &DeviceError{Command: line, Message: strings.TrimPrefix(l, "error ")}
			case strings.HasPrefix(l, "  "):
				reply.Lines = append(reply.Lines, strings.TrimSpace(l))
			default:
				log.Debug().Str("line", l).Msg("device output")
			}
		}
	}
}

// discardPending drops output that arrived while no command was waiting,
// including late replies to timed-out commands.
func (c *Client) discardPending() {
	for {
		select {
		case l, ok := <-c.lines:
			if !ok {
				return
			}
			if c.owed > 0 {
				c.dropOwed(l)
				continue
			}
			log.Debug().Str("line", l).Msg("device output")
		default:
			return
		}
	}
}

// dropOwed discards a line belonging to a timed-out command.
func (c *Client) dropOwed(l string) {
	if isFinal(l) {
		c.owed--
	}
	log.Debug().Str("line", l).Int("owed", c.owed).Msg("dropping late reply")
}

func isFinal(l string) bool {
	return l == "ok" || strings.HasPrefix(l, "ok ") ||
		l == "error" || strings.HasPrefix(l, "error ")
}

// State is the parsed reply to the state command.
type State struct {
	Zone          clock.Zone
	EpochBegin    clock.Timestamp
	RecoveryClock clock.Timestamp
	Now           clock.Timestamp
	Elapsed       uint32
	Mode          int
	Time          string
}

// ParseState decodes "zone=+3 epoch=... time=YYYY/MM/DD hh:mm". time is
// always the last key and its value contains a space.
func ParseState(text string) (State, error) {
	var st State
	head, timeText, found := strings.Cut(text, " time=")
	if !found {
		return State{}, fmt.Errorf("state reply has no time: %q", text)
	}
	st.Time = timeText

	seen := 0
	for _, field := range strings.Fields(head) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return State{}, fmt.Errorf("malformed state field %q", field)
		}
		var err error
		switch key {
		case "zone":
			var z int64
			z, err = strconv.ParseInt(value, 10, 8)
			st.Zone = clock.Zone(z)
		case "epoch":
			st.EpochBegin, err = parseTimestamp(value)
		case "recovery":
			st.RecoveryClock, err = parseTimestamp(value)
		case "now":
			st.Now, err = parseTimestamp(value)
		case "elapsed":
			var v clock.Timestamp
			v, err = parseTimestamp(value)
			st.Elapsed = uint32(v)
		case "mode":
			st.Mode, err = strconv.Atoi(value)
		default:
			continue
		}
		if err != nil {
			return State{}, fmt.Errorf("state field %s: %w", key, err)
		}
		seen++
	}
	if seen != 6 {
		return State{}, fmt.Errorf("state reply incomplete: %q", text)
	}
	return st, nil
}

func parseTimestamp(s string) (clock.Timestamp, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	return clock.Timestamp(v), err
}

// State queries and parses the clock state.
func (c *Client) State(ctx context.Context) (State, error) {
	r, err := c.Do(ctx, "state")
	if err != nil {
		return State{}, err
	}
	return ParseState(r.Text)
}

// SetZone changes the display zone.
func (c *Client) SetZone(ctx context.Context, z clock.Zone) error {
	if !z.Valid() {
		return fmt.Errorf("zone %d out of range", z)
	}
	_, err := c.Do(ctx, "set_zone "+strconv.Itoa(int(z)))
	return err
}

// SetEpoch sets the epoch begin to a local time in the clock's zone.
func (c *Client) SetEpoch(ctx context.Context, local clock.Civil) error {
	_, err := c.Do(ctx, "set_epoch "+local.String())
	return err
}

// SetTime sets the RTC to a local time in the clock's zone.
func (c *Client) SetTime(ctx context.Context, local clock.Civil) error {
	_, err := c.Do(ctx, "set_time "+local.String())
	return err
}

// SyncTime sets the clock from t, converted to the clock's own zone.
func (c *Client) SyncTime(ctx context.Context, t time.Time) error {
	st, err := c.State(ctx)
	if err != nil {
		return err
	}
	local := clock.CivilFromAbsolute(clock.Timestamp(uint32(t.Unix())), st.Zone)
	return c.SetTime(ctx, local)
}

// SetMode selects a display mode by index.
func (c *Client) SetMode(ctx context.Context, mode int) error {
	_, err := c.Do(ctx, "mode "+strconv.Itoa(mode))
	return err
}
