package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// TCPConn adapts a net.Conn to the Transport contract: every Read is
// bounded by a deadline, and deadline expiry surfaces as a zero-byte
// read rather than an error.  A true peer close surfaces as io.EOF,
// which is how the relay engine tells "no data yet" from "gone".
type TCPConn struct {
	conn    net.Conn
	timeout time.Duration
}

// NewTCPConn wraps an established connection with the given read
// timeout.
func NewTCPConn(conn net.Conn, timeout time.Duration) *TCPConn {
	return &TCPConn{conn: conn, timeout: timeout}
}

// Read blocks up to the configured timeout.  (0, nil) means the
// deadline expired with no data — the polling heartbeat.
func (t *TCPConn) Read(p []byte) (int, error) {
	if t.timeout > 0 {
		if err := t.conn.SetReadDeadline(time.Now().Add(t.timeout)); err != nil {
			return 0, err
		}
	}

	n, err := t.conn.Read(p)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return n, nil
		}
		if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
			return n, io.EOF
		}
	}
	return n, err
}

// Write passes bytes through with a matching deadline so a stalled
// peer cannot block the relay loop indefinitely.
func (t *TCPConn) Write(p []byte) (int, error) {
	if t.timeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.timeout)); err != nil {
			return 0, err
		}
	}
	return t.conn.Write(p)
}

// SetReadTimeout adjusts the per-read deadline.
func (t *TCPConn) SetReadTimeout(d time.Duration) error {
	t.timeout = d
	return nil
}

// Close closes the underlying connection.
func (t *TCPConn) Close() error { return t.conn.Close() }

// RemoteAddr reports the peer address for logging.
func (t *TCPConn) RemoteAddr() net.Addr { return t.conn.RemoteAddr() }

// ── Dialer ───────────────────────────────────────────────────────────

// TCPDialer establishes the outbound connection in client mode.
type TCPDialer struct {
	Timeout time.Duration
}

// Dial connects to address over TCP.
func (d *TCPDialer) Dial(ctx context.Context, address string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}
	return conn, nil
}
