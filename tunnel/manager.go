package tunnel

import (
	"context"
	"net"
	"sync"
	"time"

	linkerr "bluepad/internal/errors"
	"bluepad/util"
)

// DefaultHealthInterval is how often a Manager checks its tunnel.
const DefaultHealthInterval = 10 * time.Second

// Manager keeps a gateway available to dialers.  It connects on the
// first Dial, reconnects on a later Dial after the gateway dropped, and
// reports loss detected by a periodic health check.
type Manager struct {
	tunnel   Tunnel
	logger   *util.Logger
	interval time.Duration

	mu      sync.Mutex
	started bool
	stopped bool
	stop    chan struct{}
}

// NewManager returns a Manager for the given tunnel.  A zero interval
// uses [DefaultHealthInterval].
func NewManager(t Tunnel, logger *util.Logger, interval time.Duration) *Manager {
	if interval <= 0 {
		interval = DefaultHealthInterval
	}
	return &Manager{tunnel: t, logger: logger, interval: interval, stop: make(chan struct{})}
}

// Dial opens a connection to address through the tunnel, connecting
// or reconnecting the gateway first when needed.
func (m *Manager) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	if err := m.ensure(ctx); err != nil {
		return nil, err
	}
	return m.tunnel.Dial(ctx, network, address)
}

func (m *Manager) ensure(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return linkerr.ErrTunnelClosed
	}
	if m.tunnel.IsAlive() {
		return nil
	}
	if m.started {
		m.logger.Info("reconnecting SSH gateway")
	} else {
		m.logger.Verbose("establishing SSH gateway")
	}
	if err := m.tunnel.Connect(ctx); err != nil {
		return err
	}
	if !m.started {
		m.started = true
		go m.healthLoop()
	}
	return nil
}

// Close stops health checks and shuts the tunnel down.  Later Dials
// fail with ErrTunnelClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return nil
	}
	m.stopped = true
	close(m.stop)
	return m.tunnel.Close()
}

func (m *Manager) healthLoop() {
	tick := time.NewTicker(m.interval)
	defer tick.Stop()

	wasAlive := true
	for {
		select {
		case <-m.stop:
			return
		case <-tick.C:
			alive := m.tunnel.IsAlive()
			if wasAlive && !alive {
				m.logger.Warn("SSH gateway connection lost")
			}
			wasAlive = alive
		}
	}
}
