// Package transport opens the duplex byte channel a session runs over.
// Transports handle the "how" of reaching the device (an RFCOMM socket,
// a serial-over-TCP bridge, or that bridge behind an SSH gateway)
// independent of what is said over it, which is the session's job.
package transport

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// SerialPortProfile is the service class every SPP device registers.
var SerialPortProfile = uuid.MustParse("00001101-0000-1000-8000-00805F9B34FB")

// Device identifies the remote end of a link.
type Device struct {
	// Address is a Bluetooth MAC for RFCOMM or host:port for bridges.
	Address string
	// Name is a human-readable label.  Optional.
	Name string
	// Channel pins the RFCOMM channel.  Zero lets the dialer probe.
	Channel uint8
}

// DisplayName returns Name, or Address when no name is known.
func (d Device) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Address
}

// Conn is an open link.  Closing it must unblock a pending Read.
type Conn = io.ReadWriteCloser

// Dialer opens links to devices.  Implementations include a native
// RFCOMM dialer, a TCP bridge dialer, and an SSH-tunnelled bridge
// dialer that routes traffic through an encrypted gateway.
type Dialer interface {
	// Dial establishes a link to the device.
	Dial(ctx context.Context, dev Device) (Conn, error)

	// Close releases any long-lived resources held by the dialer
	// (e.g. an SSH session).  Stateless dialers return nil.
	Close() error
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, dev Device) (Conn, error)

// Dial calls f.
func (f DialerFunc) Dial(ctx context.Context, dev Device) (Conn, error) { return f(ctx, dev) }

// Close is a no-op.
func (f DialerFunc) Close() error { return nil }
