// Package transport provides byte-stream endpoints with uniform
// timeout-bounded blocking I/O.  The serial device and the TCP peer
// have very different native semantics; this package normalises both
// behind one contract so the relay engine never cares which side it is
// pumping.
package transport

import (
	"io"
	"time"
)

// Transport is a byte-stream endpoint used by the relay engine.
//
// Read contract:
//   - (n>0, nil): n payload bytes.
//   - (0, nil): the bounded read timeout expired with no data.  This is
//     the polling heartbeat that makes cooperative cancellation
//     possible and is never an error.
//   - (n, io.EOF): the peer closed cleanly; any n bytes are still
//     valid payload and must be delivered before terminating.
//   - other errors are terminal for the session.
//
// Write may accept only a prefix of the buffer; callers loop until the
// whole buffer is flushed.
type Transport interface {
	io.ReadWriteCloser

	// SetReadTimeout bounds every subsequent blocking Read.
	SetReadTimeout(d time.Duration) error
}

// SerialDevice is the device side of the bridge: a Transport that can
// additionally be re-claimed after the underlying hardware vanishes.
// Satisfied by *SerialPort; fakes stand in for it in tests.
type SerialDevice interface {
	Transport

	// Reopen re-claims the device after a mid-session loss.
	Reopen() error

	// Name returns the device path for logging.
	Name() string
}
