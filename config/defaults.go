package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags and environment variable loading.

const (
	// DefaultBaudRate matches the most common UART configuration.
	DefaultBaudRate = 9600

	// DefaultDataBits / DefaultParity / DefaultStopBits are the
	// canonical 8N1 line settings assumed unless configured otherwise.
	DefaultDataBits = 8
	DefaultParity   = "none"
	DefaultStopBits = "1"

	// DefaultTimeout bounds every blocking transport read.  Also the
	// worst-case latency for observing a cancelled session.
	DefaultTimeout = 1 * time.Second

	// DefaultHost is the bind address in server mode.
	DefaultHost = "0.0.0.0"

	// DefaultPort is the TCP port to listen on or connect to.
	DefaultPort = 12345

	// DefaultChunkSize is the relay read chunk size.
	DefaultChunkSize = 1024

	// DefaultDialTimeout bounds the TCP connect attempt in client mode.
	DefaultDialTimeout = 10 * time.Second

	// DefaultReopenMaxAttempts limits device-reopen retries before the
	// bridge gives up and exits.
	DefaultReopenMaxAttempts = 10

	// DefaultReopenMaxBackoff caps the exponential backoff between
	// device-reopen attempts.
	DefaultReopenMaxBackoff = 30 * time.Second

	// maxChunkSize mirrors util.MaxChunkSize without importing util.
	maxChunkSize = 64 * 1024
)

// DefaultBusyPolicy turns newcomers away while a session is active.
const DefaultBusyPolicy = BusyRefuse

// Default returns a Config populated with every default value.
func Default() *Config {
	return &Config{
		BaudRate:   DefaultBaudRate,
		DataBits:   DefaultDataBits,
		Parity:     DefaultParity,
		StopBits:   DefaultStopBits,
		Timeout:    DefaultTimeout,
		Listen:     true,
		Host:       DefaultHost,
		Port:       DefaultPort,
		BusyPolicy: DefaultBusyPolicy,
		ChunkSize:  DefaultChunkSize,
	}
}
