// Package capability turns an input source into press/release intents.
// Each Capability encapsulates one way of driving the device (a raw
// keyboard, a script, or nothing at all) and operates on a Pad rather
// than a session, which keeps capabilities testable and decoupled
// from the link.
package capability

import (
	"context"
	"io"

	"bluepad/util"
)

// Pad is the intent surface of a command link.
type Pad interface {
	// Press holds cmd until Release or another Press.
	Press(cmd byte) error
	// Release lets go of the held command.
	Release() error
	// SendRaw writes bytes to the device as they are.
	SendRaw(p []byte) error
	// Done is closed when the link ends.
	Done() <-chan struct{}
}

// IO is the local side a capability reads from and reports to.
type IO struct {
	In     io.Reader
	Out    io.Writer
	Logger *util.Logger
}

// Capability drives a pad.  Handle blocks until the input is exhausted,
// the user quits, the link ends, or ctx is cancelled.
type Capability interface {
	Handle(ctx context.Context, pad Pad, io IO) error
}
