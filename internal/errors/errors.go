// Package errors provides domain-specific error types for uartbridge.
//
// These types carry structured context (operation, device path, network
// address) that lets the outer loops distinguish a vanished serial
// device from a departed TCP peer — the two have very different
// severities and recovery paths.
package errors

import (
	"errors"
	"fmt"
	"net"
	"os"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	// ErrDeviceUnavailable means the serial device path could not be
	// opened at all (missing, busy, or permission denied).  Fatal at
	// startup.
	ErrDeviceUnavailable = errors.New("serial device unavailable")

	// ErrDeviceGone means an open serial device disappeared mid-session
	// (e.g. a USB adapter was unplugged).  Terminates the session;
	// whether the bridge reopens or exits is the caller's policy.
	ErrDeviceGone = errors.New("serial device lost")

	// ErrPortNotOpen is returned for I/O on a closed serial handle.
	ErrPortNotOpen = errors.New("serial port not open")

	// ErrSessionBusy signals that a peer was turned away because a
	// relay session is already active.
	ErrSessionBusy = errors.New("relay session already active")
)

// ── Structured error types ───────────────────────────────────────────

// DeviceError represents a failure of the serial device itself.
type DeviceError struct {
	Op   string // "open", "read", "write", "reopen"
	Path string // device path, e.g. /dev/ttyUSB0
	Kind error  // classification: ErrDeviceUnavailable or ErrDeviceGone
	Err  error  // underlying driver error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("serial %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both the classification sentinel and the driver error
// so errors.Is matches either.
func (e *DeviceError) Unwrap() []error { return []error{e.Kind, e.Err} }

// NetworkError represents a failure in a network operation.
type NetworkError struct {
	Op   string // "dial", "listen", "accept", "read", "write"
	Addr string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// WrapDevice creates a DeviceError classified by kind.
func WrapDevice(op, path string, kind, err error) *DeviceError {
	return &DeviceError{Op: op, Path: path, Kind: kind, Err: err}
}

// WrapNet creates a NetworkError.
func WrapNet(op, addr string, err error) *NetworkError {
	return &NetworkError{Op: op, Addr: addr, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// IsDeviceGone reports whether err means the serial device vanished
// while a session was running.
func IsDeviceGone(err error) bool {
	return errors.Is(err, ErrDeviceGone)
}

// IsDeviceUnavailable reports whether err means the device could not be
// opened in the first place.
func IsDeviceUnavailable(err error) bool {
	return errors.Is(err, ErrDeviceUnavailable)
}

// IsTimeout reports whether err is a network deadline expiry.  The
// transports translate these into zero-byte reads before they reach the
// relay engine, so seeing one elsewhere is a programming error.
func IsTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsClosed reports whether err stems from a connection or handle that
// was closed out from under the caller — expected during teardown.
func IsClosed(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, ErrPortNotOpen)
}

// ── Re-exports for convenience ───────────────────────────────────────
//
// These allow callers to use uartbridge/internal/errors as a drop-in
// replacement for the standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
