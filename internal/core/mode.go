// Package core is the orchestration layer.  It composes a transport,
// a session and a capability into complete operational modes and
// provides a builder that selects the right mode from a Config.
//
// Architecture layers (bottom → top):
//
//	transport  →  session  →  capability  →  core  →  cmd (CLI)
package core

import "context"

// Mode represents a complete operational mode of bluepad (drive a
// device, or list paired devices).  Each mode owns its full lifecycle
// from connection establishment to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
