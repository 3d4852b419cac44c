// Package core is the orchestration layer.  It composes the serial
// transport, the network side, and the relay engine into complete
// operational modes and provides a builder that selects the right mode
// from a Config.
//
// Architecture layers (bottom → top):
//
//	transport  →  relay  →  core  →  cmd (CLI)
//
// The serial device is opened once by the builder and handed to the
// mode; the mode's outer loop structurally guarantees that at most one
// relay session exists at a time, which is what lets the serial handle
// be shared across sessions without locking.
package core

import "context"

// Mode represents a complete operational mode of the bridge (server or
// client).  Each mode owns its full lifecycle from connection
// establishment to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
