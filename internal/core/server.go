package core

import (
	"context"
	"net"
	"time"

	"uartbridge/config"
	brerr "uartbridge/internal/errors"
	"uartbridge/internal/metrics"
	"uartbridge/internal/relay"
	"uartbridge/internal/retry"
	"uartbridge/internal/transport"
	"uartbridge/util"
)

// ServerMode binds a listening socket and relays each accepted peer to
// the shared serial device: LISTENING → ACCEPTING → SESSION_ACTIVE →
// back to ACCEPTING when the session ends.
//
// Exactly one session is active at a time.  A peer that connects while
// a session is running is handled per BusyPolicy: refused (closed
// immediately, the default) or promoted by replacing the active
// session.  The serial device stays open across sessions; only a
// device-level failure (with ReopenDevice unset) or context
// cancellation ends the mode.
type ServerMode struct {
	Address   string // "host:port"
	Serial    transport.SerialDevice
	Timeout   time.Duration
	ChunkSize int

	BusyPolicy    config.BusyPolicy
	ReopenDevice  bool
	ReopenBackoff *retry.Backoff

	Logger  *util.Logger
	Metrics *metrics.Collector
}

// Run listens and serves sessions until the context is cancelled or an
// unrecoverable error occurs.
func (m *ServerMode) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", m.Address)
	if err != nil {
		return brerr.WrapNet("listen", m.Address, err)
	}
	defer ln.Close()

	m.Logger.Info("listening on %s (tcp), serial device %s", ln.Addr(), m.Serial.Name())

	// Shut the listener down when the context expires.
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	conns := make(chan net.Conn)
	acceptErr := make(chan error, 1)
	go m.acceptLoop(ctx, ln, conns, acceptErr)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-acceptErr:
			return err
		case conn := <-conns:
			err := m.serve(ctx, conn, conns)
			if err == nil {
				continue
			}
			if !brerr.IsDeviceGone(err) || !m.ReopenDevice {
				return err
			}
			m.Logger.Warn("%v, attempting device reopen", err)
			if rerr := m.reopen(ctx); rerr != nil {
				return rerr
			}
		}
	}
}

// acceptLoop feeds accepted connections to the session loop.  It never
// decides policy itself; handing the conn over (or being told to stop)
// is all it does.
func (m *ServerMode) acceptLoop(ctx context.Context, ln net.Listener, conns chan<- net.Conn, acceptErr chan<- error) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				acceptErr <- nil
			default:
				acceptErr <- brerr.WrapNet("accept", m.Address, err)
			}
			return
		}

		select {
		case conns <- conn:
		case <-ctx.Done():
			conn.Close()
			acceptErr <- nil
			return
		}
	}
}

// serve runs relay sessions starting with conn, applying the busy
// policy to peers that arrive while a session is active.  It returns
// nil when the serial device is still healthy (whatever happened to the
// peers), or the device error that ended the run.
func (m *ServerMode) serve(ctx context.Context, conn net.Conn, pending <-chan net.Conn) error {
	for conn != nil {
		m.Logger.Info("connection from %s", conn.RemoteAddr())

		sctx, cancel := context.WithCancel(ctx)
		sess := relay.New(m.Serial, transport.NewTCPConn(conn, m.Timeout), m.ChunkSize, m.Logger, m.Metrics)

		done := make(chan error, 1)
		go func() { done <- sess.Run(sctx) }()

		var next net.Conn
		var err error
	wait:
		for {
			select {
			case err = <-done:
				break wait
			case c := <-pending:
				if m.BusyPolicy == config.BusyReplace {
					m.Logger.Info("replacing active session with %s", c.RemoteAddr())
					if next != nil {
						next.Close()
					}
					next = c
					cancel() // active session winds down within one timeout
				} else {
					m.Logger.Info("refusing %s: %v", c.RemoteAddr(), brerr.ErrSessionBusy)
					m.Metrics.ConnectionRefused()
					c.Close()
				}
			}
		}
		cancel()

		switch {
		case err == nil:
			m.Logger.Verbose("session ended, back to accepting")
		case brerr.IsDeviceGone(err):
			if next != nil {
				next.Close()
			}
			return err
		default:
			// Contained to the session; the bridge keeps serving.
			m.Metrics.RecordError(err.Error())
			m.Logger.Warn("session ended: %v", err)
		}

		if m.Logger.Level() >= util.LogVerbose {
			m.Logger.Verbose("metrics: %s", m.Metrics.JSON())
		}

		conn = next
	}
	return nil
}

// reopen re-claims the serial device with exponential backoff.
func (m *ServerMode) reopen(ctx context.Context) error {
	bo := m.ReopenBackoff
	if bo == nil {
		bo = retry.DefaultBackoff()
	}

	err := bo.Do(ctx, func(attempt int) error {
		m.Logger.Verbose("reopening %s (attempt %d)", m.Serial.Name(), attempt)
		return m.Serial.Reopen()
	})
	if err != nil {
		return err
	}

	m.Metrics.DeviceReopened()
	m.Logger.Info("serial device %s reopened", m.Serial.Name())
	return nil
}
