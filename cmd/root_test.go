package cmd

import (
	"context"
	"strings"
	"testing"
)

// TestExecute_Version verifies --version prints a version string.
func TestExecute_Version(t *testing.T) {
	err := Execute(context.Background(), []string{"--version"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestExecute_Help verifies --help returns without error.
func TestExecute_Help(t *testing.T) {
	err := Execute(context.Background(), []string{"--help"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestExecute_DryRun verifies --dry-run validates and exits cleanly.
func TestExecute_DryRun(t *testing.T) {
	err := Execute(context.Background(), []string{
		"-d", "/dev/ttyUSB0", "-b", "115200", "-p", "5330", "--dry-run",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestExecute_DryRunInvalid verifies --dry-run still catches bad configs.
func TestExecute_DryRunInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string // substring of the error
	}{
		{"missing device", []string{"--dry-run"}, "device"},
		{"bad baud", []string{"-d", "/dev/ttyS0", "-b", "9601", "--dry-run"}, "baud"},
		{"bad parity", []string{"-d", "/dev/ttyS0", "--parity", "strong", "--dry-run"}, "parity"},
		{"client without host", []string{"-d", "/dev/ttyS0", "-c", "-H", "", "--dry-run"}, "host"},
		{"reconnect in server mode", []string{"-d", "/dev/ttyS0", "--reconnect", "--dry-run"}, "reconnect"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Execute(context.Background(), tt.args)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err.Error(), tt.want)
			}
		})
	}
}

// TestExecute_InvalidFlags verifies unknown flags produce an error.
func TestExecute_InvalidFlags(t *testing.T) {
	err := Execute(context.Background(), []string{"--nonexistent-flag"})
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

// TestExecute_FractionalTimeout verifies -t accepts fractional seconds.
func TestExecute_FractionalTimeout(t *testing.T) {
	err := Execute(context.Background(), []string{
		"-d", "/dev/ttyUSB0", "-t", "0.25", "--dry-run",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestExecute_MissingDevice verifies server startup fails fast when the
// device path does not exist.
func TestExecute_MissingDevice(t *testing.T) {
	err := Execute(context.Background(), []string{
		"-d", "/dev/nonexistent-uartbridge-test", "-p", "1",
	})
	if err == nil {
		t.Fatal("expected device open error")
	}
}
