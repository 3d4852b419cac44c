package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the BRIDGE_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).  Useful for container
// deployments where the bridge runs with no command line at all.

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("BRIDGE_DEVICE"); v != "" {
		cfg.Device = v
	}
	if v := envInt("BRIDGE_BAUD_RATE"); v > 0 {
		cfg.BaudRate = v
	}
	if v := envInt("BRIDGE_DATA_BITS"); v > 0 {
		cfg.DataBits = v
	}
	if v := os.Getenv("BRIDGE_PARITY"); v != "" {
		cfg.Parity = strings.ToLower(v)
	}
	if v := os.Getenv("BRIDGE_STOP_BITS"); v != "" {
		cfg.StopBits = v
	}
	if v := envFloat("BRIDGE_TIMEOUT"); v > 0 {
		cfg.Timeout = secondsDuration(v)
	}

	if v := os.Getenv("BRIDGE_HOST"); v != "" {
		cfg.Host = v
	}
	if v := envInt("BRIDGE_PORT"); v > 0 {
		cfg.Port = v
	}
	if envBool("BRIDGE_CONNECT") {
		cfg.Listen = false
	}

	if v := os.Getenv("BRIDGE_BUSY_POLICY"); v != "" {
		cfg.BusyPolicy = BusyPolicy(strings.ToLower(v))
	}
	if envBool("BRIDGE_REOPEN") {
		cfg.ReopenDevice = true
	}
	if envBool("BRIDGE_RECONNECT") {
		cfg.Reconnect = true
	}

	if v := envInt("BRIDGE_CHUNK_SIZE"); v > 0 {
		cfg.ChunkSize = v
	}
	if v := envInt("BRIDGE_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envFloat(key string) float64 {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

// secondsDuration converts fractional seconds into a time.Duration.
func secondsDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
