package core

import (
	"context"
	"net"
	"time"

	brerr "uartbridge/internal/errors"
	"uartbridge/internal/metrics"
	"uartbridge/internal/relay"
	"uartbridge/internal/retry"
	"uartbridge/internal/transport"
	"uartbridge/util"
)

// ClientMode dials a remote TCP endpoint and relays it to the shared
// serial device.  By default one connection attempt and one session;
// with Reconnect set, dropped connections are redialled with
// exponential backoff (an explicit policy, never assumed).
type ClientMode struct {
	Address   string // "host:port"
	Serial    transport.SerialDevice
	Dialer    *transport.TCPDialer
	Timeout   time.Duration
	ChunkSize int

	Reconnect        bool
	ReconnectBackoff *retry.Backoff

	Logger  *util.Logger
	Metrics *metrics.Collector
}

// Run dials and relays.  Without Reconnect it returns when the single
// session ends; connection failure is fatal.  With Reconnect it keeps
// going until the context is cancelled or the serial device is lost.
func (m *ClientMode) Run(ctx context.Context) error {
	if !m.Reconnect {
		conn, err := m.Dialer.Dial(ctx, m.Address)
		if err != nil {
			return brerr.WrapNet("dial", m.Address, err)
		}
		return m.session(ctx, conn)
	}

	for {
		conn, err := m.dialWithBackoff(ctx)
		if err != nil {
			return err
		}

		err = m.session(ctx, conn)
		switch {
		case ctx.Err() != nil:
			return nil
		case err == nil:
			m.Logger.Verbose("session ended, reconnecting")
		case brerr.IsDeviceGone(err):
			return err
		default:
			m.Metrics.RecordError(err.Error())
			m.Logger.Warn("session ended: %v", err)
		}
	}
}

// session runs one relay over an established connection.
func (m *ClientMode) session(ctx context.Context, conn net.Conn) error {
	m.Logger.Info("connected to %s", conn.RemoteAddr())
	sess := relay.New(m.Serial, transport.NewTCPConn(conn, m.Timeout), m.ChunkSize, m.Logger, m.Metrics)
	return sess.Run(ctx)
}

// dialWithBackoff retries the connection attempt per the reconnect
// policy.
func (m *ClientMode) dialWithBackoff(ctx context.Context) (net.Conn, error) {
	bo := m.ReconnectBackoff
	if bo == nil {
		bo = retry.DefaultBackoff()
	}

	var conn net.Conn
	err := bo.Do(ctx, func(attempt int) error {
		c, err := m.Dialer.Dial(ctx, m.Address)
		if err != nil {
			m.Logger.Verbose("dial %s failed (attempt %d): %v", m.Address, attempt, err)
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, brerr.WrapNet("dial", m.Address, err)
	}
	return conn, nil
}
