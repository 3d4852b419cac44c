package errors

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"testing"
)

func TestDeviceError_Classification(t *testing.T) {
	cause := errors.New("input/output error")

	gone := WrapDevice("read", "/dev/ttyUSB0", ErrDeviceGone, cause)
	if !IsDeviceGone(gone) {
		t.Error("gone error not classified as device-gone")
	}
	if IsDeviceUnavailable(gone) {
		t.Error("gone error wrongly classified as unavailable")
	}

	unavailable := WrapDevice("open", "/dev/ttyUSB0", ErrDeviceUnavailable, cause)
	if !IsDeviceUnavailable(unavailable) {
		t.Error("open failure not classified as unavailable")
	}
	if IsDeviceGone(unavailable) {
		t.Error("open failure wrongly classified as device-gone")
	}

	// The underlying driver error stays reachable.
	if !errors.Is(gone, cause) {
		t.Error("underlying cause lost through wrapping")
	}
}

func TestDeviceError_Message(t *testing.T) {
	err := WrapDevice("write", "/dev/ttyS1", ErrDeviceGone, errors.New("broken pipe"))
	msg := err.Error()
	for _, want := range []string{"write", "/dev/ttyS1", "broken pipe"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestDeviceError_WrappedFurther(t *testing.T) {
	inner := WrapDevice("read", "/dev/ttyUSB0", ErrDeviceGone, io.ErrUnexpectedEOF)
	outer := fmt.Errorf("session ended: %w", inner)

	if !IsDeviceGone(outer) {
		t.Error("classification lost through fmt.Errorf wrapping")
	}
	var de *DeviceError
	if !errors.As(outer, &de) || de.Path != "/dev/ttyUSB0" {
		t.Error("structured context lost through wrapping")
	}
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapNet("dial", "10.0.0.5:12345", cause)

	if !errors.Is(err, cause) {
		t.Error("Unwrap broken")
	}
	if !strings.Contains(err.Error(), "dial 10.0.0.5:12345") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "baud", Value: 12345, Message: "not a standard rate",
		Hint: "try 9600 or 115200"}
	msg := err.Error()
	if !strings.Contains(msg, "--baud=12345") || !strings.Contains(msg, "hint:") {
		t.Errorf("message = %q", msg)
	}
}

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(os.ErrDeadlineExceeded) {
		t.Error("deadline exceeded should be a timeout")
	}
	if IsTimeout(io.EOF) {
		t.Error("EOF is not a timeout")
	}
	if IsTimeout(nil) {
		t.Error("nil is not a timeout")
	}
}

func TestIsClosed(t *testing.T) {
	if !IsClosed(net.ErrClosed) {
		t.Error("net.ErrClosed should classify as closed")
	}
	if !IsClosed(fmt.Errorf("read: %w", ErrPortNotOpen)) {
		t.Error("wrapped ErrPortNotOpen should classify as closed")
	}
	if IsClosed(io.EOF) {
		t.Error("EOF is not a closed-handle error")
	}
}
