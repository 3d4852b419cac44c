// Package cmd wires up the CLI flags and dispatches to the bridge core.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"uartbridge/config"
	"uartbridge/internal/core"
	"uartbridge/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X uartbridge/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the bridge.
func Execute(ctx context.Context, args []string) error {
	cfg := config.Default()
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("uartbridge", flag.ContinueOnError)

	// ── serial line ──────────────────────────────────────────────
	fs.StringVarP(&cfg.Device, "device", "d", cfg.Device, "Serial device path, e.g. /dev/ttyUSB0")
	fs.IntVarP(&cfg.BaudRate, "baud", "b", cfg.BaudRate, "Baud rate")
	fs.IntVar(&cfg.DataBits, "data-bits", cfg.DataBits, "Data bits (5-8)")
	fs.StringVar(&cfg.Parity, "parity", cfg.Parity, "Parity: none, odd, even, mark, space")
	fs.StringVar(&cfg.StopBits, "stop-bits", cfg.StopBits, "Stop bits: 1, 1.5, 2")

	var timeoutSec float64
	fs.Float64VarP(&timeoutSec, "timeout", "t", cfg.Timeout.Seconds(),
		"Read timeout in seconds (polling granularity, fractional allowed)")

	// ── network ──────────────────────────────────────────────────
	var connect bool
	fs.BoolVarP(&connect, "connect", "c", !cfg.Listen, "Client mode: dial host:port instead of listening")
	fs.StringVarP(&cfg.Host, "host", "H", cfg.Host, "Bind address (server) or target host (client)")
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "TCP port")

	// ── policies ─────────────────────────────────────────────────
	var busyPolicy string
	fs.StringVar(&busyPolicy, "busy-policy", string(cfg.BusyPolicy),
		"Second client while a session is active: refuse or replace")
	fs.BoolVar(&cfg.ReopenDevice, "reopen", cfg.ReopenDevice,
		"Server: reopen the serial device if it vanishes mid-session")
	fs.BoolVar(&cfg.Reconnect, "reconnect", cfg.Reconnect,
		"Client: redial with backoff after the connection drops")

	// ── tuning / output ──────────────────────────────────────────
	fs.IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "Relay read chunk size in bytes")
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")

	var showVersion, showHelp, dryRun bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")
	fs.BoolVar(&dryRun, "dry-run", false, "Validate configuration and exit without opening anything")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("uartbridge %s\n", version)
		return nil
	}

	cfg.Listen = !connect
	cfg.BusyPolicy = config.BusyPolicy(busyPolicy)
	if timeoutSec > 0 {
		cfg.Timeout = time.Duration(timeoutSec * float64(time.Second))
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}
	if dryRun {
		fmt.Println("configuration OK")
		return nil
	}

	// ── build and run ────────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)

	mode, err := core.Build(cfg, logger)
	if err != nil {
		return err
	}
	return mode.Run(ctx)
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `uartbridge – TCP to serial bridge v%s

Relays raw bytes between a TCP peer and a serial device, in both
directions, with no framing imposed.

Usage:
  uartbridge -d /dev/ttyUSB0 -b 9600 -p 12345              Serve (listen)
  uartbridge -c -H host.example.com -p 12345 -d /dev/ttyS0 Connect out

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Environment:
  BRIDGE_DEVICE, BRIDGE_BAUD_RATE, BRIDGE_TIMEOUT, BRIDGE_HOST,
  BRIDGE_PORT and friends mirror the flags (flags win).

Examples:
  uartbridge -d /dev/ttyUSB0 -b 115200 -p 5330 -v
  uartbridge -d /dev/ttyACM0 --busy-policy replace --reopen
  BRIDGE_DEVICE=/dev/ttyS1 BRIDGE_PORT=7000 uartbridge
`)
}
