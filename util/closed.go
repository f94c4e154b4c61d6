package util

import (
	"errors"
	"io"
	"net"
	"os"
)

// IsClosed reports whether err is what a blocked Read or Write returns
// after the connection was closed locally.  Closing the transport is
// how a session aborts its reader, so these errors are expected during
// teardown and must not be reported as link failures.
func IsClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, net.ErrClosed)
	}
	return false
}
