package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"bluepad/internal/bluez"
	"bluepad/internal/capability"
	"bluepad/internal/metrics"
	"bluepad/internal/session"
	"bluepad/internal/transport"
	"bluepad/util"
)

// lookupTimeout bounds the BlueZ property read before connecting.
const lookupTimeout = 2 * time.Second

// LookupFunc resolves a device's BlueZ properties.
type LookupFunc func(ctx context.Context, adapter, address string) (bluez.DeviceInfo, error)

// PadMode connects to one device and drives it from a capability until
// the input ends, the user quits, or the link drops.
type PadMode struct {
	Device     transport.Device
	Dialer     transport.Dialer
	Capability capability.Capability

	// Session carries the link tuning.  Dialer, Listener, Logger and
	// Metrics are filled in by Run.
	Session session.Config

	// Lookup, when set, fills a missing device name and checks that
	// the device advertises Service.  Failures only warn.
	Lookup  LookupFunc
	Adapter string
	Service uuid.UUID

	// ScriptPath is opened as the capability's input when set.
	ScriptPath string
	// RawTTY switches local output to CRLF line endings.
	RawTTY bool

	Stats   bool
	Metrics *metrics.Collector
	Logger  *util.Logger

	// Stdin/Stdout/Stderr default to the os streams when nil.
	// Override in tests for deterministic I/O.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (m *PadMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

func (m *PadMode) stderr() io.Writer {
	if m.Stderr != nil {
		return m.Stderr
	}
	return os.Stderr
}

// input opens the capability's input.  The returned func closes it.
func (m *PadMode) input() (io.Reader, func(), error) {
	switch {
	case m.Stdin != nil:
		return m.Stdin, func() {}, nil
	case m.ScriptPath != "":
		f, err := os.Open(m.ScriptPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open script: %w", err)
		}
		return f, func() { f.Close() }, nil
	default:
		return os.Stdin, func() {}, nil
	}
}

// Run resolves the device, connects, and hands the link to the
// capability.  The link and the dialer are closed when Run returns.
func (m *PadMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()

	in, closeIn, err := m.input()
	if err != nil {
		return err
	}
	defer closeIn()

	out := m.stdout()
	if m.RawTTY {
		out = crlfWriter{out}
	}

	dev := m.resolve(ctx)

	cfg := m.Session
	cfg.Dialer = m.Dialer
	cfg.Listener = &Printer{Out: out, Logger: m.Logger.Named("link")}
	cfg.Logger = m.Logger
	cfg.Metrics = m.Metrics
	sess := session.New(cfg)

	if err := sess.Connect(ctx, dev); err != nil {
		sess.Close()
		return fmt.Errorf("connect to %s: %w", dev.DisplayName(), err)
	}

	err = m.Capability.Handle(ctx, sess, capability.IO{In: in, Out: out, Logger: m.Logger})
	sess.Close()

	if m.Stats {
		fmt.Fprintln(m.stderr(), m.Metrics.JSON())
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// resolve returns m.Device, named from BlueZ when the lookup succeeds.
func (m *PadMode) resolve(ctx context.Context) transport.Device {
	dev := m.Device
	if m.Lookup == nil {
		return dev
	}

	lctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	info, err := m.Lookup(lctx, m.Adapter, dev.Address)
	switch {
	case bluez.IsNotFound(err):
		m.Logger.Warn("%s is not known to %s; pair it first", dev.Address, m.Adapter)
		return dev
	case err != nil:
		m.Logger.Verbose("bluez lookup: %v", err)
		return dev
	}

	if dev.Name == "" {
		dev.Name = info.DisplayName()
	}
	if !info.Paired {
		m.Logger.Warn("%s is not paired", dev.DisplayName())
	}
	if len(info.UUIDs) > 0 && m.Service != uuid.Nil && !info.Supports(m.Service) {
		m.Logger.Warn("%s does not advertise service %s", dev.DisplayName(), m.Service)
	}
	return dev
}
