// Package metrics provides lightweight, lock-free counters for
// tracking runtime statistics of the bridge.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for a bridge process.
// A nil Collector is safe to use — all methods become no-ops.
type Collector struct {
	sessionsActive     atomic.Int64
	sessionsTotal      atomic.Int64
	bytesToNet         atomic.Int64 // serial → network
	bytesToSerial      atomic.Int64 // network → serial
	deviceReopens      atomic.Int64
	connectionsRefused atomic.Int64
	errorsTotal        atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Session metrics ──────────────────────────────────────────────────

// SessionOpened increments both the active and total counters.
func (c *Collector) SessionOpened() {
	if c == nil {
		return
	}
	c.sessionsActive.Add(1)
	c.sessionsTotal.Add(1)
}

// SessionClosed decrements the active session counter.
func (c *Collector) SessionClosed() {
	if c == nil {
		return
	}
	c.sessionsActive.Add(-1)
}

// ActiveSessions returns the current number of relay sessions (0 or 1
// by construction; anything else is a bug).
func (c *Collector) ActiveSessions() int64 {
	if c == nil {
		return 0
	}
	return c.sessionsActive.Load()
}

// TotalSessions returns the lifetime session count.
func (c *Collector) TotalSessions() int64 {
	if c == nil {
		return 0
	}
	return c.sessionsTotal.Load()
}

// ConnectionRefused records a peer turned away by the busy policy.
func (c *Collector) ConnectionRefused() {
	if c == nil {
		return
	}
	c.connectionsRefused.Add(1)
}

// RefusedConnections returns the number of peers turned away.
func (c *Collector) RefusedConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsRefused.Load()
}

// ── Relay metrics ────────────────────────────────────────────────────

// BytesToNet records n bytes relayed serial → network.
func (c *Collector) BytesToNet(n int64) {
	if c == nil {
		return
	}
	c.bytesToNet.Add(n)
}

// BytesToSerial records n bytes relayed network → serial.
func (c *Collector) BytesToSerial(n int64) {
	if c == nil {
		return
	}
	c.bytesToSerial.Add(n)
}

// TotalBytesToNet returns total bytes relayed serial → network.
func (c *Collector) TotalBytesToNet() int64 {
	if c == nil {
		return 0
	}
	return c.bytesToNet.Load()
}

// TotalBytesToSerial returns total bytes relayed network → serial.
func (c *Collector) TotalBytesToSerial() int64 {
	if c == nil {
		return 0
	}
	return c.bytesToSerial.Load()
}

// ── Device metrics ───────────────────────────────────────────────────

// DeviceReopened records a successful serial device reopen.
func (c *Collector) DeviceReopened() {
	if c == nil {
		return
	}
	c.deviceReopens.Add(1)
}

// DeviceReopens returns the total device reopen count.
func (c *Collector) DeviceReopens() int64 {
	if c == nil {
		return 0
	}
	return c.deviceReopens.Load()
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime             string `json:"uptime"`
	SessionsActive     int64  `json:"sessions_active"`
	SessionsTotal      int64  `json:"sessions_total"`
	BytesToNet         int64  `json:"bytes_to_net"`
	BytesToSerial      int64  `json:"bytes_to_serial"`
	DeviceReopens      int64  `json:"device_reopens"`
	ConnectionsRefused int64  `json:"connections_refused"`
	ErrorsTotal        int64  `json:"errors_total"`
	LastError          string `json:"last_error,omitempty"`
	LastErrorMessage   string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:             time.Since(c.startTime).Truncate(time.Second).String(),
		SessionsActive:     c.sessionsActive.Load(),
		SessionsTotal:      c.sessionsTotal.Load(),
		BytesToNet:         c.bytesToNet.Load(),
		BytesToSerial:      c.bytesToSerial.Load(),
		DeviceReopens:      c.deviceReopens.Load(),
		ConnectionsRefused: c.connectionsRefused.Load(),
		ErrorsTotal:        c.errorsTotal.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
