package transport

import (
	"context"
	"net"
	"time"
)

// TCPDialer reaches a device through a serial-over-TCP bridge such as
// ser2net or an ESP-Link module.  Device.Address is the bridge's
// host:port.
type TCPDialer struct {
	Timeout time.Duration
}

// Dial connects to the bridge over TCP.
func (d *TCPDialer) Dial(ctx context.Context, dev Device) (Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", dev.Address)
	if err != nil {
		return nil, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true) //nolint:errcheck // one-byte commands must not wait for Nagle
	}
	return conn, nil
}

// Close is a no-op for stateless TCP dialers.
func (d *TCPDialer) Close() error { return nil }
