// Package session owns one command link to a device: it opens the
// transport, reads and frames telemetry, deduplicates it for the
// listener, and feeds press/release intents to the transmitter.
//
// At most one link is active per Session.  All listener callbacks run
// on a single goroutine in the order the events occurred.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	linkerr "bluepad/internal/errors"
	"bluepad/internal/framer"
	"bluepad/internal/metrics"
	"bluepad/internal/transmit"
	"bluepad/internal/transport"
	"bluepad/util"
)

// DefaultSentinel is the inbound line that asks the host to hang up.
const DefaultSentinel = "AT+DISC"

// ErrClosed is returned by Connect after Close.
var ErrClosed = errors.New("session closed")

// Listener receives link events.
type Listener interface {
	OnConnected(name string)
	OnConnectFailed(name string)
	OnDisconnected()
	OnMessage(text string)
}

// ErrorListener is optionally implemented by a Listener that wants the
// underlying ConnectionFailed, ReadFailed and WriteFailed errors.
type ErrorListener interface {
	OnError(err error)
}

// Config wires a Session.  Dialer and Listener are required.
type Config struct {
	Dialer   transport.Dialer
	Listener Listener

	// RepeatInterval, IdleInterval and Probe tune the transmitter; zero
	// values take its defaults.
	RepeatInterval time.Duration
	IdleInterval   time.Duration
	Probe          string

	// Sentinel overrides [DefaultSentinel].
	Sentinel string
	// MaxLineBytes caps an unterminated inbound line (0 = unbounded).
	MaxLineBytes int

	Logger  *util.Logger
	Metrics *metrics.Collector
}

// Session is the command link.  Its methods are safe for concurrent use.
type Session struct {
	dialer   transport.Dialer
	listener Listener
	txConfig transmit.Config
	sentinel string
	maxLine  int
	logger   *util.Logger
	metrics  *metrics.Collector
	events   *dispatcher

	mu         sync.Mutex
	link       *link
	connecting bool
	closed     bool
	last       string
}

// link is the state of one open transport.
type link struct {
	dev    transport.Device
	conn   transport.Conn
	tx     *transmit.Transmitter
	cancel context.CancelFunc

	wmu    sync.Mutex // serializes writes
	failed int        // consecutive write failures, guarded by wmu

	done       chan struct{} // closed on teardown
	readerDone chan struct{}
}

// New creates an idle Session.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = util.NewLogger(0)
	}
	sentinel := cfg.Sentinel
	if sentinel == "" {
		sentinel = DefaultSentinel
	}
	return &Session{
		dialer:   cfg.Dialer,
		listener: cfg.Listener,
		txConfig: transmit.Config{
			RepeatInterval: cfg.RepeatInterval,
			IdleInterval:   cfg.IdleInterval,
			Probe:          cfg.Probe,
			Logger:         logger.Named("tx"),
			Metrics:        cfg.Metrics,
		},
		sentinel: sentinel,
		maxLine:  cfg.MaxLineBytes,
		logger:   logger.Named("session"),
		metrics:  cfg.Metrics,
		events:   newDispatcher(),
	}
}

// ── Lifecycle ────────────────────────────────────────────────────────

// Connect opens a link to dev, starts the reader and the keep-alive
// schedule, and notifies OnConnected.  On failure it notifies
// OnConnectFailed and returns a ConnectionFailed error; the session
// stays idle.
func (s *Session) Connect(ctx context.Context, dev transport.Device) error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrClosed
	case s.link != nil || s.connecting:
		s.mu.Unlock()
		return linkerr.ErrAlreadyConnected
	}
	s.connecting = true
	s.mu.Unlock()

	name := dev.DisplayName()
	s.logger.Verbose("connecting to %s", name)

	conn, err := s.dialer.Dial(ctx, dev)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		err = linkerr.Wrap(linkerr.ConnectionFailed, "dial", name, err)
		s.metrics.ConnectFailed()
		s.metrics.RecordError(err.Error())
		s.logger.Warn("%v", err)

		s.mu.Lock()
		s.connecting = false
		s.events.post(func() { s.listener.OnConnectFailed(name) })
		s.postError(err)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.connecting = false
	if s.closed {
		conn.Close()
		return ErrClosed
	}

	runCtx, cancel := context.WithCancel(context.Background())
	l := &link{
		dev:        dev,
		conn:       conn,
		cancel:     cancel,
		done:       make(chan struct{}),
		readerDone: make(chan struct{}),
	}
	l.tx = transmit.New(func(frame []byte) error { return s.write(l, frame) }, s.txConfig)
	s.link = l
	s.last = ""

	s.metrics.Connected()
	s.logger.Info("connected to %s", name)
	s.events.post(func() { s.listener.OnConnected(name) })

	go l.tx.Run(runCtx)
	go s.readLoop(l)
	return nil
}

// Disconnect closes the link, stops both transmit schedules, and
// notifies OnDisconnected.  It is a no-op when no link is open.
func (s *Session) Disconnect() {
	s.mu.Lock()
	l := s.link
	s.mu.Unlock()
	if l == nil {
		return
	}
	s.teardown(l, nil)
	<-l.readerDone
}

// Close disconnects, rejects further Connects, and waits until every
// pending listener callback has run.  It must not be called from a
// listener callback.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.Disconnect()
	s.events.close()
	return nil
}

// teardown ends l once.  cause is reported to an ErrorListener before
// OnDisconnected.
func (s *Session) teardown(l *link, cause error) {
	s.mu.Lock()
	if s.link != l {
		s.mu.Unlock()
		return
	}
	s.link = nil
	if cause != nil {
		s.postError(cause)
	}
	s.events.post(s.listener.OnDisconnected)
	s.mu.Unlock()

	l.cancel()
	if err := l.conn.Close(); err != nil && !util.IsClosed(err) {
		s.logger.Debug("close: %v", err)
	}
	<-l.tx.Done()
	close(l.done)

	s.metrics.Disconnected()
	if cause != nil {
		s.logger.Warn("disconnected from %s: %v", l.dev.DisplayName(), cause)
	} else {
		s.logger.Info("disconnected from %s", l.dev.DisplayName())
	}
}

// ── Intents ──────────────────────────────────────────────────────────

// Press holds cmd.  While disconnected the press is dropped.  A command
// outside [transmit.Alphabet] returns ErrUnknownCommand.
func (s *Session) Press(cmd byte) error {
	if !transmit.Valid(cmd) {
		return linkerr.ErrUnknownCommand
	}
	l := s.current()
	if l == nil {
		return nil
	}
	if err := l.tx.Press(cmd); err != nil && !errors.Is(err, linkerr.ErrNotConnected) {
		return err
	}
	return nil
}

// Release lets go of the held command.  While disconnected it does
// nothing.
func (s *Session) Release() error {
	l := s.current()
	if l == nil {
		return nil
	}
	if err := l.tx.Release(); err != nil && !errors.Is(err, linkerr.ErrNotConnected) {
		return err
	}
	return nil
}

// SendRaw writes p to the device.  While disconnected it is a no-op.
// A failed write is reported and returned but leaves the link up.
func (s *Session) SendRaw(p []byte) error {
	l := s.current()
	if l == nil {
		return nil
	}
	err := s.write(l, p)
	if util.IsClosed(err) {
		return nil
	}
	return err
}

// ── Queries ──────────────────────────────────────────────────────────

// Connected reports whether a link is open.
func (s *Session) Connected() bool { return s.current() != nil }

// Device returns the connected device.
func (s *Session) Device() (transport.Device, bool) {
	l := s.current()
	if l == nil {
		return transport.Device{}, false
	}
	return l.dev, true
}

// Held returns the transmitter state of the open link.
func (s *Session) Held() (transmit.State, byte) {
	l := s.current()
	if l == nil {
		return transmit.Idle, 0
	}
	return l.tx.State()
}

var closedChan = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// Done returns a channel closed when the current link ends.  While
// disconnected the channel is already closed.
func (s *Session) Done() <-chan struct{} {
	l := s.current()
	if l == nil {
		return closedChan
	}
	return l.done
}

func (s *Session) current() *link {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.link
}

// ── Wire ─────────────────────────────────────────────────────────────

// write sends p on l.  Only the first failure of a streak is logged
// and reported; the transmitter retries every tick and would otherwise
// flood both.
func (s *Session) write(l *link, p []byte) error {
	l.wmu.Lock()
	defer l.wmu.Unlock()

	_, err := l.conn.Write(p)
	if err == nil {
		if l.failed > 0 {
			s.logger.Verbose("writes recovered after %d failures", l.failed)
			l.failed = 0
		}
		s.logger.Debug("-> %q", p)
		return nil
	}
	if util.IsClosed(err) {
		return err
	}

	err = linkerr.Wrap(linkerr.WriteFailed, "write", l.dev.DisplayName(), err)
	s.metrics.WriteFailed(err.Error())
	l.failed++
	if l.failed == 1 {
		s.logger.Warn("%v", err)
		s.mu.Lock()
		if s.link == l {
			s.postError(err)
		}
		s.mu.Unlock()
	} else {
		s.logger.Debug("%v (%d in a row)", err, l.failed)
	}
	return err
}

func (s *Session) readLoop(l *link) {
	defer close(l.readerDone)

	bufp := util.GetBuf()
	defer util.PutBuf(bufp)
	buf := *bufp

	fr := framer.New(s.maxLine)
	fr.OnOverflow = func(n int) {
		s.metrics.BufferOverflow()
		s.logger.Warn("discarded %d bytes without a line break: %v", n, linkerr.ErrBufferOverflow)
	}

	for {
		n, err := l.conn.Read(buf)
		if n > 0 {
			s.metrics.BytesReceived(n)
			for msg := range fr.Feed(buf[:n]) {
				if !s.deliver(l, msg) {
					return
				}
			}
		}
		if err == nil {
			continue
		}
		if s.current() != l {
			return // local teardown
		}
		s.teardown(l, linkerr.Wrap(linkerr.ReadFailed, "read", l.dev.DisplayName(), err))
		return
	}
}

// deliver handles one framed message.  It returns false once l is no
// longer the active link.
func (s *Session) deliver(l *link, msg string) bool {
	s.logger.Debug("<- %q", msg)
	if msg == s.sentinel {
		s.logger.Verbose("%s requested disconnect", l.dev.DisplayName())
		s.teardown(l, nil)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.link != l:
		return false
	case msg == "":
		return true
	case msg == s.last:
		s.metrics.DuplicateSuppressed()
		return true
	}
	s.last = msg
	s.metrics.MessageDelivered()
	s.events.post(func() { s.listener.OnMessage(msg) })
	return true
}

// postError must be called with s.mu held.
func (s *Session) postError(err error) {
	if el, ok := s.listener.(ErrorListener); ok {
		s.events.post(func() { el.OnError(err) })
	}
}
