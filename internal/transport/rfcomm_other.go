//go:build !linux

package transport

import (
	"context"

	linkerr "bluepad/internal/errors"
)

// Dial is not available on this platform.
func (d *RFCOMMDialer) Dial(context.Context, Device) (Conn, error) {
	return nil, linkerr.ErrUnsupported
}
