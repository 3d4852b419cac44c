package core

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"
	"time"

	brerr "uartbridge/internal/errors"
	"uartbridge/internal/metrics"
	"uartbridge/internal/retry"
	"uartbridge/internal/transport"
	"uartbridge/util"
)

func newClient(addr string, serial *fakeSerial) *ClientMode {
	return &ClientMode{
		Address:   addr,
		Serial:    serial,
		Dialer:    &transport.TCPDialer{Timeout: time.Second},
		Timeout:   100 * time.Millisecond,
		ChunkSize: 64,
		Logger:    util.NewLogger(0),
		Metrics:   metrics.New(),
	}
}

func TestClientMode_Relay(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	payload := []byte{0x01, 0x02, 0xff}

	// Server: read the relayed serial bytes, send them back, close.
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, len(payload))
		if _, err := io.ReadFull(conn, buf); err != nil {
			return
		}
		conn.Write(buf) //nolint:errcheck
	}()

	serial := &fakeSerial{}
	serial.pending.Write(payload)

	mode := newClient(ln.Addr().String(), serial)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := mode.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := serial.writtenBytes(); !bytes.Equal(got, payload) {
		t.Errorf("serial received %x, want %x", got, payload)
	}
}

func TestClientMode_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close() // nothing listens here any more

	mode := newClient(addr, &fakeSerial{})
	mode.Dialer = &transport.TCPDialer{Timeout: 500 * time.Millisecond}

	if err := mode.Run(context.Background()); err == nil {
		t.Error("Run with no server succeeded, want error")
	}
}

func TestClientMode_Reconnect(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	sessions := make(chan struct{}, 2)
	go func() {
		for i := 0; i < 2; i++ {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			if i == 1 {
				conn.Write([]byte("hi")) //nolint:errcheck
			}
			// Drop the peer; the client should come back.
			time.Sleep(50 * time.Millisecond)
			conn.Close()
			sessions <- struct{}{}
		}
	}()

	serial := &fakeSerial{}
	mode := newClient(ln.Addr().String(), serial)
	mode.Reconnect = true
	mode.ReconnectBackoff = &retry.Backoff{
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     50 * time.Millisecond,
		MaxAttempts:  10,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mode.Run(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case <-sessions:
		case <-time.After(5 * time.Second):
			t.Fatal("client never reconnected")
		}
	}

	waitFor(t, 2*time.Second, func() bool {
		return bytes.Equal(serial.writtenBytes(), []byte("hi"))
	})

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run after cancel = %v, want nil", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("client did not shut down")
	}
}

func TestClientMode_DeviceGoneStopsReconnect(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
			io.Copy(io.Discard, conn) //nolint:errcheck
		}
	}()

	serial := &fakeSerial{}
	serial.failWith(brerr.WrapDevice("read", serial.Name(), brerr.ErrDeviceGone,
		io.ErrUnexpectedEOF))

	mode := newClient(ln.Addr().String(), serial)
	mode.Reconnect = true

	done := make(chan error, 1)
	go func() { done <- mode.Run(context.Background()) }()

	select {
	case err := <-done:
		if !brerr.IsDeviceGone(err) {
			t.Errorf("Run = %v, want device-gone classification", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("client kept reconnecting after the device was lost")
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}
