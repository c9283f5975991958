package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"epochclock/host/console"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	timeout = flag.Duration("timeout", console.DefaultTimeout, "Reply timeout per command")
	verbose = flag.Bool("verbose", false, "Enable verbose output")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [command [args...]]\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "With no command, starts an interactive session.")
		fmt.Fprintln(os.Stderr, "The extra command 'sync' sets the clock from this computer.")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	client, err := console.Dial(*device)
	if err != nil {
		log.Fatal().Err(err).Str("device", *device).Msg("connect failed")
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}()
	log.Debug().Str("device", *device).Msg("connected")

	if flag.NArg() > 0 {
		if err := run(client, strings.Join(flag.Args(), " ")); err != nil {
			log.Error().Err(err).Msg("command failed")
			os.Exit(1)
		}
		return
	}

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "exit", "q":
			return
		}
		if err := run(client, line); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Fatal().Err(err).Msg("reading input")
	}
}

// run executes one line: the local sync and status helpers, or a raw
// firmware command.
func run(client *console.Client, line string) error {
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch strings.Fields(line)[0] {
	case "sync":
		now := time.Now()
		if err := client.SyncTime(ctx, now); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		fmt.Printf("clock set to %s\n", now.UTC().Format("2006-01-02 15:04 MST"))
		return nil
	case "status":
		st, err := client.State(ctx)
		if err != nil {
			return err
		}
		printState(st)
		return nil
	}

	reply, err := client.Do(ctx, line)
	var devErr *console.DeviceError
	if errors.As(err, &devErr) {
		return errors.New(devErr.Message)
	}
	if err != nil {
		return err
	}
	for _, l := range reply.Lines {
		fmt.Println("  " + l)
	}
	if reply.Text != "" {
		fmt.Println(reply.Text)
	}
	return nil
}

func printState(st console.State) {
	fmt.Printf("Local time:     %s (UTC%s)\n", st.Time, st.Zone)
	fmt.Printf("RTC (unix):     %d\n", st.Now)
	fmt.Printf("Epoch begin:    %d\n", st.EpochBegin)
	fmt.Printf("Elapsed:        %d s (%.1f days)\n", st.Elapsed, float64(st.Elapsed)/86400)
	fmt.Printf("Last set:       %d\n", st.RecoveryClock)
	fmt.Printf("Display mode:   %d\n", st.Mode)
}
