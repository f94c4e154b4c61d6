package transport

import (
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
)

// DefaultChannels are probed when neither the device nor the dialer
// pins a channel.  HC-05/HC-06 modules register SPP on channel 1.
var DefaultChannels = []uint8{1}

// RFCOMMDialer opens native Bluetooth RFCOMM sockets.  It is available
// on Linux; elsewhere Dial fails with ErrUnsupported.
type RFCOMMDialer struct {
	// Service labels dial errors.  Defaults to [SerialPortProfile].  No
	// SDP lookup is made; the channel always comes from the device or
	// Channels.
	Service uuid.UUID
	// Channels are tried in order until one accepts.
	Channels []uint8
	// Timeout bounds each channel attempt (0 = no limit).
	Timeout time.Duration
}

// Close is a no-op; every link owns its own socket.
func (d *RFCOMMDialer) Close() error { return nil }

func (d *RFCOMMDialer) service() uuid.UUID {
	if d.Service == uuid.Nil {
		return SerialPortProfile
	}
	return d.Service
}

// channels returns the probe order for dev.
func (d *RFCOMMDialer) channels(dev Device) []uint8 {
	switch {
	case dev.Channel != 0:
		return []uint8{dev.Channel}
	case len(d.Channels) > 0:
		return d.Channels
	default:
		return DefaultChannels
	}
}

// bdaddr converts a MAC string to the little-endian byte order the
// kernel's sockaddr_rc expects.
func bdaddr(mac string) ([6]byte, error) {
	var b [6]byte
	hw, err := net.ParseMAC(mac)
	if err != nil {
		return b, err
	}
	if len(hw) != 6 {
		return b, fmt.Errorf("%q is not a 48-bit Bluetooth address", mac)
	}
	for i := range 6 {
		b[i] = hw[5-i]
	}
	return b, nil
}
