// Package config defines the runtime configuration for bluepad and
// provides helpers for parsing tunnel and channel specifications.
package config

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	linkerr "bluepad/internal/errors"
)

// Config holds every tuneable for a single bluepad run.
type Config struct {
	// ── Device ───────────────────────────────────────────────────────
	Address     string // MAC for rfcomm, host:port for tcp
	Name        string // display name; looked up from BlueZ when empty
	Transport   string // rfcomm | tcp
	ChannelSpec string // "1" or "1-5"
	Channels    []uint8
	Service     string // service class UUID
	Adapter     string
	NoLookup    bool // skip the BlueZ property lookup
	ListPaired  bool

	// ── Link ─────────────────────────────────────────────────────────
	DialTimeout       time.Duration
	ConnectAttempts   int
	RepeatInterval    time.Duration
	KeepAliveInterval time.Duration
	Probe             string
	Sentinel          string
	MaxLineBytes      int

	// ── Input ────────────────────────────────────────────────────────
	Input      string // keys | script | watch
	ScriptPath string // "-" = stdin
	KeyRelease time.Duration

	// ── SSH tunnel ───────────────────────────────────────────────────
	TunnelSpec     string // raw user@host[:port] from -T
	TunnelEnabled  bool
	TunnelUser     string
	TunnelHost     string
	TunnelPort     int
	SSHKeyPath     string
	SSHPassword    bool // true → prompt interactively
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string
	SSHKeepAlive   time.Duration

	// ── Output ───────────────────────────────────────────────────────
	Verbose    int
	Stats      bool
	Timestamps bool
	ConfigPath string
}

// ServiceUUID returns the parsed service class.  Call after Validate.
func (c *Config) ServiceUUID() uuid.UUID {
	u, err := uuid.Parse(c.Service)
	if err != nil {
		return uuid.Nil
	}
	return u
}

// ── Channel spec ─────────────────────────────────────────────────────

// ParseChannelSpec accepts "3" or "1-5" and returns the channels in
// probe order.
func ParseChannelSpec(spec string) ([]uint8, error) {
	parse := func(s string) (int, error) {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("invalid channel %q", s)
		}
		if n < 1 || n > MaxRFCOMMChannel {
			return 0, fmt.Errorf("channel %d out of range 1-%d", n, MaxRFCOMMChannel)
		}
		return n, nil
	}

	first, last, isRange := strings.Cut(spec, "-")
	start, err := parse(first)
	if err != nil {
		return nil, err
	}
	end := start
	if isRange {
		if end, err = parse(last); err != nil {
			return nil, err
		}
		if start > end {
			return nil, fmt.Errorf("invalid channel range %d-%d", start, end)
		}
	}

	out := make([]uint8, 0, end-start+1)
	for ch := start; ch <= end; ch++ {
		out = append(out, uint8(ch))
	}
	return out, nil
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "pi@gateway.lan:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	if host == "" {
		return "", "", 0, fmt.Errorf("tunnel host is required")
	}
	return user, host, port, nil
}

// ── Resolution and validation ────────────────────────────────────────

// Resolve expands the raw specs (channels, tunnel) into their parsed
// fields.  It is called by Validate and is idempotent.
func (c *Config) Resolve() error {
	if c.ChannelSpec != "" {
		chs, err := ParseChannelSpec(c.ChannelSpec)
		if err != nil {
			return &linkerr.ConfigError{Field: "channel", Value: c.ChannelSpec, Message: err.Error(),
				Hint: fmt.Sprintf("use a channel between 1 and %d, or a range like 1-5", MaxRFCOMMChannel)}
		}
		c.Channels = chs
	}

	if c.TunnelSpec != "" {
		user, host, port, err := ParseTunnelSpec(c.TunnelSpec)
		if err != nil {
			return &linkerr.ConfigError{Field: "tunnel", Value: c.TunnelSpec, Message: err.Error()}
		}
		c.TunnelEnabled = true
		c.TunnelUser = user
		c.TunnelHost = host
		c.TunnelPort = port
	}
	return nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if err := c.Resolve(); err != nil {
		return err
	}

	if c.ListPaired {
		return nil
	}

	if c.Address == "" {
		return &linkerr.ConfigError{Field: "address", Message: "device address is required",
			Hint: "pass the MAC of a paired device, e.g. bluepad 98:D3:31:F5:2A:10 (see --list)"}
	}

	switch c.Transport {
	case TransportRFCOMM:
		if hw, err := net.ParseMAC(c.Address); err != nil || len(hw) != 6 {
			return &linkerr.ConfigError{Field: "address", Value: c.Address,
				Message: "not a Bluetooth MAC address",
				Hint:    "use --transport tcp for a host:port serial bridge"}
		}
		if c.TunnelEnabled {
			return &linkerr.ConfigError{Field: "tunnel", Value: c.TunnelSpec,
				Message: "an SSH tunnel carries TCP only",
				Hint:    "add --transport tcp and give the bridge's host:port"}
		}
	case TransportTCP:
		if _, _, err := net.SplitHostPort(c.Address); err != nil {
			return &linkerr.ConfigError{Field: "address", Value: c.Address,
				Message: "expected host:port of a serial bridge"}
		}
	default:
		return &linkerr.ConfigError{Field: "transport", Value: c.Transport,
			Message: "unknown transport", Hint: "use rfcomm or tcp"}
	}

	if _, err := uuid.Parse(c.Service); err != nil {
		return &linkerr.ConfigError{Field: "service", Value: c.Service, Message: "not a UUID"}
	}

	if c.RepeatInterval <= 0 {
		return &linkerr.ConfigError{Field: "repeat", Value: c.RepeatInterval, Message: "must be positive"}
	}
	if c.KeepAliveInterval <= 0 {
		return &linkerr.ConfigError{Field: "keepalive", Value: c.KeepAliveInterval, Message: "must be positive"}
	}
	if c.DialTimeout < 0 {
		return &linkerr.ConfigError{Field: "timeout", Value: c.DialTimeout, Message: "must not be negative"}
	}
	if c.ConnectAttempts < 1 {
		return &linkerr.ConfigError{Field: "attempts", Value: c.ConnectAttempts, Message: "must be at least 1"}
	}
	if err := checkToken("probe", c.Probe); err != nil {
		return err
	}
	if err := checkToken("sentinel", c.Sentinel); err != nil {
		return err
	}
	if c.MaxLineBytes < 0 {
		return &linkerr.ConfigError{Field: "max-line", Value: c.MaxLineBytes,
			Message: "must not be negative", Hint: "0 disables the limit"}
	}

	switch c.Input {
	case InputKeys, InputWatch:
	case InputScript:
		if c.ScriptPath == "" {
			return &linkerr.ConfigError{Field: "script", Message: "script input needs a file",
				Hint: "pass --script FILE or --script - for stdin"}
		}
	default:
		return &linkerr.ConfigError{Field: "input", Value: c.Input,
			Message: "unknown input mode", Hint: "use keys, script or watch"}
	}

	if c.TunnelEnabled && c.TunnelHost == "" {
		return &linkerr.ConfigError{Field: "tunnel", Message: "tunnel host is required"}
	}
	return nil
}

func checkToken(field, v string) error {
	switch {
	case strings.TrimSpace(v) == "":
		return &linkerr.ConfigError{Field: field, Message: "must not be empty"}
	case strings.ContainsAny(v, "\r\n"):
		return &linkerr.ConfigError{Field: field, Value: v, Message: "must not contain a line break"}
	}
	return nil
}
