package transport

import (
	"sync"
	"time"

	gobug "go.bug.st/serial"
	"go.uber.org/atomic"

	"uartbridge/config"
	brerr "uartbridge/internal/errors"
)

// portHandle is the subset of go.bug.st/serial.Port this package uses.
// Narrowing the dependency keeps the driver swappable in tests.
type portHandle interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	SetReadTimeout(d time.Duration) error
}

// openPort is overridable in tests to avoid touching real hardware.
var openPort = func(name string, mode *gobug.Mode) (portHandle, error) {
	return gobug.Open(name, mode)
}

// SerialPort is the single process-wide serial endpoint.  It is opened
// once at startup and reused across every network session; only a
// device-level failure (plus an explicit reopen policy) or process
// shutdown releases it.
type SerialPort struct {
	name    string
	mode    *gobug.Mode
	timeout time.Duration

	mu     sync.RWMutex // guards handle swaps during Reopen/Close
	handle portHandle

	closed atomic.Bool
}

// OpenSerial opens the device described by cfg and applies the
// configured line settings and read timeout.  Failure to claim the
// device is classified ErrDeviceUnavailable — fatal at startup.
func OpenSerial(cfg *config.Config) (*SerialPort, error) {
	mode := &gobug.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		Parity:   parityMode(cfg.Parity),
		StopBits: stopBitsMode(cfg.StopBits),
	}

	h, err := openPort(cfg.Device, mode)
	if err != nil {
		return nil, brerr.WrapDevice("open", cfg.Device, brerr.ErrDeviceUnavailable, err)
	}
	if err := h.SetReadTimeout(cfg.Timeout); err != nil {
		_ = h.Close()
		return nil, brerr.WrapDevice("open", cfg.Device, brerr.ErrDeviceUnavailable, err)
	}

	return &SerialPort{
		name:    cfg.Device,
		mode:    mode,
		timeout: cfg.Timeout,
		handle:  h,
	}, nil
}

// Read blocks up to the configured timeout.  A zero-byte result with a
// nil error is the timeout heartbeat, not a failure.  Driver errors are
// classified ErrDeviceGone: the device link is lost.
func (s *SerialPort) Read(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed.Load() || s.handle == nil {
		return 0, brerr.ErrPortNotOpen
	}

	n, err := s.handle.Read(p)
	if err != nil {
		if s.closed.Load() {
			return n, brerr.ErrPortNotOpen
		}
		return n, brerr.WrapDevice("read", s.name, brerr.ErrDeviceGone, err)
	}
	return n, nil
}

// Write hands bytes to the driver.  Partial writes are possible; the
// relay engine loops until the chunk is flushed.
func (s *SerialPort) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed.Load() || s.handle == nil {
		return 0, brerr.ErrPortNotOpen
	}

	n, err := s.handle.Write(p)
	if err != nil {
		return n, brerr.WrapDevice("write", s.name, brerr.ErrDeviceGone, err)
	}
	return n, nil
}

// SetReadTimeout adjusts the polling granularity for subsequent reads.
func (s *SerialPort) SetReadTimeout(d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timeout = d
	if s.handle == nil {
		return brerr.ErrPortNotOpen
	}
	return s.handle.SetReadTimeout(d)
}

// Close releases the device handle.  Safe to call multiple times.
func (s *SerialPort) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.handle
	s.handle = nil
	if h == nil {
		return nil
	}
	return h.Close()
}

// Reopen re-claims the device after it vanished mid-session.  The old
// handle is discarded; a fresh one is opened with the original mode and
// timeout.  Callers serialise Reopen with session lifecycles — it must
// not race an active relay.
func (s *SerialPort) Reopen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle != nil {
		_ = s.handle.Close()
		s.handle = nil
	}

	h, err := openPort(s.name, s.mode)
	if err != nil {
		return brerr.WrapDevice("reopen", s.name, brerr.ErrDeviceGone, err)
	}
	if err := h.SetReadTimeout(s.timeout); err != nil {
		_ = h.Close()
		return brerr.WrapDevice("reopen", s.name, brerr.ErrDeviceGone, err)
	}

	s.handle = h
	s.closed.Store(false)
	return nil
}

// Name returns the device path.
func (s *SerialPort) Name() string { return s.name }

// ── line-setting mappings ────────────────────────────────────────────

func parityMode(p string) gobug.Parity {
	switch p {
	case "odd":
		return gobug.OddParity
	case "even":
		return gobug.EvenParity
	case "mark":
		return gobug.MarkParity
	case "space":
		return gobug.SpaceParity
	default:
		return gobug.NoParity
	}
}

func stopBitsMode(s string) gobug.StopBits {
	switch s {
	case "1.5":
		return gobug.OnePointFiveStopBits
	case "2":
		return gobug.TwoStopBits
	default:
		return gobug.OneStopBit
	}
}
