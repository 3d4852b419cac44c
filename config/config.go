// Package config defines the runtime configuration for uartbridge and
// provides validation of serial line and network parameters.
package config

import (
	"fmt"
	"time"

	brerr "uartbridge/internal/errors"
)

// BusyPolicy decides what happens to a TCP peer that connects while a
// relay session is already active.  Serial hardware cannot be shared
// between two simultaneous sessions without interleaving corruption, so
// one of the two must lose.
type BusyPolicy string

const (
	// BusyRefuse closes the newcomer immediately and keeps the
	// established session.  The default.
	BusyRefuse BusyPolicy = "refuse"

	// BusyReplace tears down the established session and hands the
	// serial line to the newcomer.
	BusyReplace BusyPolicy = "replace"
)

// Config holds every tuneable for a single bridge process.
type Config struct {
	// ── Serial line ──────────────────────────────────────────────────
	Device   string // device path, e.g. /dev/ttyUSB0
	BaudRate int
	DataBits int
	Parity   string // "none", "odd", "even", "mark", "space"
	StopBits string // "1", "1.5", "2"

	// Timeout bounds every blocking read on both transports.  It is the
	// polling granularity for cooperative cancellation, not a session
	// deadline.
	Timeout time.Duration

	// ── Network ──────────────────────────────────────────────────────
	Listen bool   // true = server mode (accept), false = client mode (dial)
	Host   string // bind address (server) or target host (client)
	Port   int

	// ── Policies ─────────────────────────────────────────────────────
	BusyPolicy   BusyPolicy
	ReopenDevice bool // server: reopen the serial device after it vanishes
	Reconnect    bool // client: redial after the connection drops

	// ── Tuning / output ──────────────────────────────────────────────
	ChunkSize int // relay read chunk size in bytes
	Verbose   int
}

// standardBaudRates is the set accepted by Validate.  Matches the rates
// common UART hardware actually supports.
var standardBaudRates = []int{
	1200, 2400, 4800, 9600, 19200, 38400, 57600,
	115200, 230400, 460800, 921600,
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Device == "" {
		return &brerr.ConfigError{Field: "device",
			Message: "serial device path is required",
			Hint:    "use -d /dev/ttyUSB0"}
	}
	if !validBaudRate(c.BaudRate) {
		return &brerr.ConfigError{Field: "baud", Value: c.BaudRate,
			Message: fmt.Sprintf("not in standard set %v", standardBaudRates)}
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return &brerr.ConfigError{Field: "data-bits", Value: c.DataBits,
			Message: "data bits must be 5-8"}
	}
	switch c.Parity {
	case "none", "odd", "even", "mark", "space":
	default:
		return &brerr.ConfigError{Field: "parity", Value: c.Parity,
			Message: "unknown parity",
			Hint:    "one of: none, odd, even, mark, space"}
	}
	switch c.StopBits {
	case "1", "1.5", "2":
	default:
		return &brerr.ConfigError{Field: "stop-bits", Value: c.StopBits,
			Message: "unknown stop bits setting",
			Hint:    "one of: 1, 1.5, 2"}
	}
	if c.Timeout <= 0 {
		return &brerr.ConfigError{Field: "timeout", Value: c.Timeout,
			Message: "timeout must be positive"}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &brerr.ConfigError{Field: "port", Value: c.Port,
			Message: "port out of range 1-65535"}
	}
	if !c.Listen && c.Host == "" {
		return &brerr.ConfigError{Field: "host",
			Message: "client mode requires a target host",
			Hint:    "use -H host.example.com"}
	}
	switch c.BusyPolicy {
	case BusyRefuse, BusyReplace:
	default:
		return &brerr.ConfigError{Field: "busy-policy", Value: string(c.BusyPolicy),
			Message: "unknown busy policy",
			Hint:    "one of: refuse, replace"}
	}
	if c.Reconnect && c.Listen {
		return &brerr.ConfigError{Field: "reconnect",
			Message: "reconnect applies to client mode only"}
	}
	if c.ReopenDevice && !c.Listen {
		return &brerr.ConfigError{Field: "reopen",
			Message: "reopen applies to server mode only"}
	}
	if c.ChunkSize < 1 || c.ChunkSize > maxChunkSize {
		return &brerr.ConfigError{Field: "chunk-size", Value: c.ChunkSize,
			Message: fmt.Sprintf("chunk size must be 1-%d", maxChunkSize)}
	}
	return nil
}

func validBaudRate(rate int) bool {
	for _, v := range standardBaudRates {
		if rate == v {
			return true
		}
	}
	return false
}
