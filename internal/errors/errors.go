// Package errors provides the error vocabulary of a bluepad link.
//
// Every failure that crosses the transport boundary is converted into a
// LinkError carrying one of three kinds (connect, read, write) so the
// session can decide whether it is fatal without inspecting strings.
package errors

import (
	"errors"
	"fmt"
	"net"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyConnected = errors.New("already connected")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrUnsupported      = errors.New("transport not supported on this platform")
	ErrTunnelClosed     = errors.New("tunnel is closed")
	ErrAuthFailed       = errors.New("authentication failed")
	ErrBufferOverflow   = errors.New("inbound line exceeds buffer limit")
)

// ── Kinds ────────────────────────────────────────────────────────────

// Kind classifies a link failure.
type Kind int

const (
	// ConnectionFailed: the transport could not be opened.  Reported
	// once; the session stays idle.
	ConnectionFailed Kind = iota + 1
	// ReadFailed: the inbound stream broke.  Fatal to the session.
	ReadFailed
	// WriteFailed: a single write failed.  The next tick retries.
	WriteFailed
)

func (k Kind) String() string {
	switch k {
	case ConnectionFailed:
		return "connection failed"
	case ReadFailed:
		return "read failed"
	case WriteFailed:
		return "write failed"
	default:
		return "unknown"
	}
}

// Fatal reports whether a failure of this kind ends the session.
func (k Kind) Fatal() bool { return k == ConnectionFailed || k == ReadFailed }

// ── Structured error types ───────────────────────────────────────────

// LinkError is a failure on the device link.
type LinkError struct {
	Kind   Kind
	Op     string // "dial", "read", "write"
	Device string // address or display name of the device
	Err    error
}

func (e *LinkError) Error() string {
	if e.Device == "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: %v", e.Kind, e.Op, e.Device, e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }

// SSHError represents an SSH-specific failure with host context.
type SSHError struct {
	Op   string // "handshake", "auth", "hostkey", "dial"
	Host string
	Port int
	Err  error
}

func (e *SSHError) Error() string {
	return fmt.Sprintf("ssh %s %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *SSHError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // flag name
	Value   interface{} // the invalid value (nil if missing)
	Message string
	Hint    string // optional
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a LinkError.  An err that already is a LinkError of the
// same kind is returned unchanged so layers can wrap without stacking.
func Wrap(kind Kind, op, device string, err error) error {
	if err == nil {
		return nil
	}
	var le *LinkError
	if errors.As(err, &le) && le.Kind == kind {
		return err
	}
	return &LinkError{Kind: kind, Op: op, Device: device, Err: err}
}

// WrapSSH creates an SSHError.
func WrapSSH(op, host string, port int, err error) *SSHError {
	return &SSHError{Op: op, Host: host, Port: port, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// KindOf returns the kind of the first LinkError in err's chain.
func KindOf(err error) (Kind, bool) {
	var le *LinkError
	if errors.As(err, &le) {
		return le.Kind, true
	}
	return 0, false
}

// IsRetryable reports whether a connect attempt that failed with err is
// worth repeating.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnsupported) || errors.Is(err, ErrAuthFailed) {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Timeout() || opErr.Temporary() //nolint:staticcheck // Temporary is deprecated but still useful
	}
	var tmp interface{ Temporary() bool }
	if errors.As(err, &tmp) {
		return tmp.Temporary()
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
