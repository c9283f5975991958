// Command clocksim runs the clock firmware logic on a desktop, with the LED
// matrix drawn in the terminal and the buttons on the keyboard.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"epochclock/clock"
	"epochclock/config"
	"epochclock/core"
	"epochclock/host/sim"
)

var (
	configPath = flag.String("config", "clocksim.toml", "TOML configuration file")
	writeCfg   = flag.Bool("write-config", false, "Write the effective configuration to -config and exit")
	eepromPath = flag.String("eeprom", "clocksim-eeprom.bin", "EEPROM image file")
	lostPower  = flag.Bool("lost-power", false, "Start with an RTC that lost power")
	headless   = flag.Bool("headless", false, "Print frames to stdout and read console commands from stdin")
	logPath    = flag.String("log", "", "Log file (interactive mode logs nowhere by default)")
	verbose    = flag.Bool("verbose", false, "Enable verbose output and firmware debug messages")
)

func main() {
	flag.Parse()

	if err := setupLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fs := afero.NewOsFs()
	cfg, err := config.LoadFile(fs, *configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if *writeCfg {
		if err := config.Save(fs, *configPath, cfg); err != nil {
			log.Fatal().Err(err).Msg("config")
		}
		fmt.Printf("wrote %s\n", *configPath)
		return
	}

	opts := sim.Options{
		Config:    cfg,
		Clock:     clockwork.NewRealClock(),
		Fs:        fs,
		StatePath: *eepromPath,
		Start:     clock.Timestamp(uint32(time.Now().Unix())),
	}
	if *lostPower {
		opts.Start = 0
	}
	if *headless {
		opts.Frames = os.Stdout
	}

	s, err := sim.New(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("simulator")
	}
	s.Boot()
	defer s.App().Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *headless {
		err = runHeadless(ctx, s)
	} else {
		err = runTerminal(ctx, s)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("clocksim")
	}
}

func setupLogging() error {
	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	switch {
	case *logPath != "":
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log: %w", err)
		}
		out = f
	case !*headless:
		// The terminal belongs to the matrix.
		out = io.Discard
	}
	log.Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()

	if *verbose {
		core.SetDebugWriter(func(s string) { log.Debug().Str("src", "firmware").Msg(s) })
		core.SetDebugEnabled(true)
	}
	return nil
}

// runHeadless serves the firmware console on stdin/stdout until stdin
// closes or the context ends.
func runHeadless(ctx context.Context, s *sim.Simulator) error {
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ignoreCanceled(s.Run(ctx))
	})
	g.Go(func() error {
		defer cancel()
		return s.ServeConsole(ctx, os.Stdin, os.Stdout)
	})
	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
