// Package transmit keeps a held command flowing to the device at a
// fixed cadence and probes the link with a keep-alive while idle.
//
// Both outbound streams are driven by one goroutine and one timer, so
// a command tick and a keep-alive tick can never interleave on the
// wire: the state decides which frame the timer produces.
package transmit

import (
	"context"
	"strings"
	"sync"
	"time"

	linkerr "bluepad/internal/errors"
	"bluepad/internal/metrics"
	"bluepad/util"
)

// Alphabet lists the single-character commands the device accepts.
const Alphabet = "UFBDLRSCWO"

// Valid reports whether cmd belongs to [Alphabet].
func Valid(cmd byte) bool { return strings.IndexByte(Alphabet, cmd) >= 0 }

// Frame returns the wire form of a command or probe token.
func Frame(token string) []byte { return []byte(token + "\n") }

// ── State ────────────────────────────────────────────────────────────

// State is the transmitter's position in its two-state machine.
type State int

const (
	// Idle: no command held, keep-alive probes flow.
	Idle State = iota
	// Holding: a command is repeated, keep-alive is suppressed.
	Holding
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Holding:
		return "holding"
	default:
		return "unknown"
	}
}

// ── Configuration ────────────────────────────────────────────────────

// SendFunc writes one frame to the link.
type SendFunc func(frame []byte) error

// Config tunes a [Transmitter].  Zero fields take the defaults.
type Config struct {
	// RepeatInterval is the period of a held command (default 100ms).
	RepeatInterval time.Duration
	// IdleInterval is the period of the keep-alive probe (default 5s).
	IdleInterval time.Duration
	// Probe is the keep-alive token, without delimiter (default "AT").
	Probe string

	Logger  *util.Logger
	Metrics *metrics.Collector
}

const (
	DefaultRepeatInterval = 100 * time.Millisecond
	DefaultIdleInterval   = 5 * time.Second
	DefaultProbe          = "AT"
)

// ── Transmitter ──────────────────────────────────────────────────────

type intentKind int

const (
	intentPress intentKind = iota
	intentRelease
)

type intent struct {
	kind intentKind
	cmd  byte
}

// Transmitter owns the held-command slot of a session.
type Transmitter struct {
	send    SendFunc
	repeat  time.Duration
	idle    time.Duration
	probe   []byte
	logger  *util.Logger
	metrics *metrics.Collector

	intents chan intent
	done    chan struct{}
	once    sync.Once

	mu    sync.Mutex
	state State
	held  byte
}

// New creates a Transmitter that writes through send.  Nothing is sent
// until [Transmitter.Run] is called.
func New(send SendFunc, cfg Config) *Transmitter {
	if cfg.RepeatInterval <= 0 {
		cfg.RepeatInterval = DefaultRepeatInterval
	}
	if cfg.IdleInterval <= 0 {
		cfg.IdleInterval = DefaultIdleInterval
	}
	if cfg.Probe == "" {
		cfg.Probe = DefaultProbe
	}
	logger := cfg.Logger
	if logger == nil {
		logger = util.NewLogger(0)
	}
	return &Transmitter{
		send:    send,
		repeat:  cfg.RepeatInterval,
		idle:    cfg.IdleInterval,
		probe:   Frame(cfg.Probe),
		logger:  logger,
		metrics: cfg.Metrics,
		intents: make(chan intent, 16),
		done:    make(chan struct{}),
	}
}

// Press makes cmd the held command.  It is transmitted at once and then
// every repeat interval until [Transmitter.Release].  A press while
// another command is held replaces it and restarts the cadence.
func (t *Transmitter) Press(cmd byte) error {
	if !Valid(cmd) {
		return linkerr.ErrUnknownCommand
	}
	return t.post(intent{kind: intentPress, cmd: cmd})
}

// Release stops the held command.  The next keep-alive probe follows one
// full idle interval later.  Releasing while idle does nothing.
func (t *Transmitter) Release() error {
	return t.post(intent{kind: intentRelease})
}

func (t *Transmitter) post(in intent) error {
	select {
	case <-t.done:
		return linkerr.ErrNotConnected
	default:
	}
	select {
	case t.intents <- in:
		return nil
	case <-t.done:
		return linkerr.ErrNotConnected
	}
}

// State returns the current state and held command (0 when idle).
func (t *Transmitter) State() (State, byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state, t.held
}

// Done is closed when Run returns.
func (t *Transmitter) Done() <-chan struct{} { return t.done }

// Run drives both schedules until ctx is cancelled.  It sends the first
// keep-alive probe immediately.  Run may be called only once.
func (t *Transmitter) Run(ctx context.Context) {
	first := false
	t.once.Do(func() { first = true })
	if !first {
		return
	}
	defer close(t.done)
	defer t.setState(Idle, 0)

	t.transmitProbe()
	timer := time.NewTimer(t.idle)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case in := <-t.intents:
			switch in.kind {
			case intentPress:
				t.setState(Holding, in.cmd)
				t.logger.Debug("hold %c", in.cmd)
				t.transmitCommand(in.cmd)
				timer.Reset(t.repeat)
			case intentRelease:
				if state, held := t.State(); state == Holding {
					t.setState(Idle, 0)
					t.logger.Debug("release %c", held)
					timer.Reset(t.idle)
				}
			}

		case <-timer.C:
			if state, held := t.State(); state == Holding {
				t.transmitCommand(held)
				timer.Reset(t.repeat)
			} else {
				t.transmitProbe()
				timer.Reset(t.idle)
			}
		}
	}
}

func (t *Transmitter) setState(s State, held byte) {
	t.mu.Lock()
	t.state = s
	t.held = held
	t.mu.Unlock()
}

// ── wire ─────────────────────────────────────────────────────────────

// Write errors are counted and otherwise ignored: the next tick is the
// retry.  The session's send function reports them to the listener.
func (t *Transmitter) transmitCommand(cmd byte) {
	frame := []byte{cmd, '\n'}
	if err := t.send(frame); err != nil {
		t.logger.Debug("command %c: %v", cmd, err)
		return
	}
	t.metrics.CommandSent(len(frame))
}

func (t *Transmitter) transmitProbe() {
	if err := t.send(t.probe); err != nil {
		t.logger.Debug("keep-alive: %v", err)
		return
	}
	t.metrics.KeepAliveSent(len(t.probe))
}
