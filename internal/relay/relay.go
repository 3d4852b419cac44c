// Package relay implements the core of the bridge: two concurrent copy
// loops moving bytes between the serial device and a TCP peer with
// byte-for-byte fidelity.
//
// Termination is cooperative.  Neither direction ever blocks without a
// bound — both transports return zero-byte reads on timeout — so the
// first direction to hit a terminal condition cancels the shared
// context and the other observes it within one timeout period.  There
// is no preemptive interrupt of an in-flight device call.
package relay

import (
	"context"
	"io"
	"sync"

	brerr "uartbridge/internal/errors"
	"uartbridge/internal/metrics"
	"uartbridge/internal/transport"
	"uartbridge/util"
)

// Session pairs the serial device with one network peer for the
// duration of a relay run.  It owns the two directional copy loops and
// the network transport; the serial transport stays open for the next
// session.
type Session struct {
	Serial    transport.Transport
	Net       transport.Transport
	ChunkSize int
	Logger    *util.Logger
	Metrics   *metrics.Collector
}

// New returns a Session ready to run.
func New(serial, network transport.Transport, chunkSize int, logger *util.Logger, m *metrics.Collector) *Session {
	return &Session{
		Serial:    serial,
		Net:       network,
		ChunkSize: chunkSize,
		Logger:    logger,
		Metrics:   m,
	}
}

// Run relays until either side closes, errors, or ctx is cancelled,
// then tears the session down: both loops joined, network transport
// closed, serial transport untouched.
//
// The returned error classifies why the session ended:
//   - nil: the peer closed, or the context was cancelled — the normal
//     outcomes; the caller goes back to accepting.
//   - an error matching errors.ErrDeviceGone: the serial device failed;
//     the caller decides between reopening the device and giving up.
//   - anything else: an unexpected transport failure, contained to this
//     session.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.Metrics.SessionOpened()
	defer s.Metrics.SessionClosed()

	errCh := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer cancel()
		errCh <- s.pump(ctx, s.Serial, s.Net, "serial>net", s.Metrics.BytesToNet)
	}()
	go func() {
		defer wg.Done()
		defer cancel()
		errCh <- s.pump(ctx, s.Net, s.Serial, "net>serial", s.Metrics.BytesToSerial)
	}()

	wg.Wait()
	close(errCh)

	// The peer is done either way; the serial device must survive for
	// the next session.
	if err := s.Net.Close(); err != nil && !brerr.IsClosed(err) {
		s.Logger.Debug("closing network transport: %v", err)
	}

	return classify(errCh)
}

// pump is one directional copy loop.  Every iteration checks the
// shared cancellation signal, then performs one bounded read.  A
// zero-byte read is the timeout heartbeat and simply re-polls.
func (s *Session) pump(ctx context.Context, src, dst transport.Transport, dir string, record func(int64)) error {
	buf := util.GetBuf()
	defer util.PutBuf(buf)
	b := (*buf)[:s.chunkSize()]

	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := src.Read(b)
		if n > 0 {
			if werr := writeFull(dst, b[:n]); werr != nil {
				return werr
			}
			record(int64(n))
			s.Logger.Debug("%s: relayed %d bytes", dir, n)
		}

		switch {
		case err == nil:
			// Either payload was delivered or the read timed out with
			// no data; both mean "keep polling".
		case brerr.Is(err, io.EOF):
			s.Logger.Verbose("%s: peer closed", dir)
			return nil
		case brerr.IsClosed(err):
			// Transport closed under us during teardown.
			return nil
		default:
			return err
		}
	}
}

func (s *Session) chunkSize() int {
	if s.ChunkSize > 0 && s.ChunkSize <= util.MaxChunkSize {
		return s.ChunkSize
	}
	return util.DefaultChunkSize
}

// writeFull flushes the whole chunk, looping on partial writes.  Bytes
// already accepted by dst stay delivered in order; a write error
// terminates the session rather than ever dropping the remainder
// silently.
func writeFull(dst io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := dst.Write(p)
		if err != nil {
			return err
		}
		if n <= 0 {
			return io.ErrNoProgress
		}
		p = p[n:]
	}
	return nil
}

// classify folds the two loop results into the session verdict.  A
// device failure wins over everything else so the caller never
// mistakes "device unplugged" for "client went away".
func classify(errCh <-chan error) error {
	var first error
	for err := range errCh {
		if err == nil {
			continue
		}
		if brerr.IsDeviceGone(err) {
			return err
		}
		if first == nil {
			first = err
		}
	}
	return first
}
