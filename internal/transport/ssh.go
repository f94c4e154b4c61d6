package transport

import (
	"context"
	"fmt"
	"time"

	"bluepad/tunnel"
	"bluepad/util"
)

// SSHDialer reaches a serial-over-TCP bridge that only listens behind
// an SSH gateway.  The tunnel is connected lazily on the first Dial,
// re-established on a later Dial after the gateway drops, and torn
// down on Close.
type SSHDialer struct {
	manager *tunnel.Manager
	timeout time.Duration
}

// NewSSHDialer creates a dialer that forwards links through an SSH
// tunnel.  The tunnel is not connected until the first Dial.
func NewSSHDialer(cfg *tunnel.SSHConfig, timeout time.Duration, logger *util.Logger) *SSHDialer {
	return NewTunnelDialer(tunnel.NewSSHTunnel(cfg, logger), timeout, logger)
}

// NewTunnelDialer wraps any [tunnel.Tunnel].
func NewTunnelDialer(t tunnel.Tunnel, timeout time.Duration, logger *util.Logger) *SSHDialer {
	return &SSHDialer{
		manager: tunnel.NewManager(t, logger, tunnel.DefaultHealthInterval),
		timeout: timeout,
	}
}

// Dial connects to the bridge at dev.Address through the tunnel.
func (d *SSHDialer) Dial(ctx context.Context, dev Device) (Conn, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	conn, err := d.manager.Dial(ctx, "tcp", dev.Address)
	if err != nil {
		return nil, fmt.Errorf("tunnel: %w", err)
	}
	return conn, nil
}

// Close tears down the underlying SSH tunnel.
func (d *SSHDialer) Close() error { return d.manager.Close() }
