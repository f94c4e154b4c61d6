package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Config file  (file.go)
//   4. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the BLUEPAD_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).  Durations accept Go
// syntax ("250ms", "5s") or a bare number of milliseconds.

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	// Device
	if v := os.Getenv("BLUEPAD_ADDRESS"); v != "" {
		cfg.Address = v
	}
	if v := os.Getenv("BLUEPAD_NAME"); v != "" {
		cfg.Name = v
	}
	if v := os.Getenv("BLUEPAD_TRANSPORT"); v != "" {
		cfg.Transport = strings.ToLower(v)
	}
	if v := os.Getenv("BLUEPAD_CHANNEL"); v != "" {
		cfg.ChannelSpec = v
	}
	if v := os.Getenv("BLUEPAD_SERVICE"); v != "" {
		cfg.Service = v
	}
	if v := os.Getenv("BLUEPAD_ADAPTER"); v != "" {
		cfg.Adapter = v
	}
	if envBool("BLUEPAD_NO_LOOKUP") {
		cfg.NoLookup = true
	}

	// Link
	if v := envDuration("BLUEPAD_TIMEOUT"); v > 0 {
		cfg.DialTimeout = v
	}
	if v := envInt("BLUEPAD_ATTEMPTS"); v > 0 {
		cfg.ConnectAttempts = v
	}
	if v := envDuration("BLUEPAD_REPEAT"); v > 0 {
		cfg.RepeatInterval = v
	}
	if v := envDuration("BLUEPAD_KEEPALIVE"); v > 0 {
		cfg.KeepAliveInterval = v
	}
	if v := os.Getenv("BLUEPAD_PROBE"); v != "" {
		cfg.Probe = v
	}
	if v := os.Getenv("BLUEPAD_SENTINEL"); v != "" {
		cfg.Sentinel = v
	}
	if v := envInt("BLUEPAD_MAX_LINE"); v > 0 {
		cfg.MaxLineBytes = v
	}

	// Input
	if v := os.Getenv("BLUEPAD_INPUT"); v != "" {
		cfg.Input = strings.ToLower(v)
	}
	if v := os.Getenv("BLUEPAD_SCRIPT"); v != "" {
		cfg.ScriptPath = v
	}
	if v := envDuration("BLUEPAD_KEY_RELEASE"); v > 0 {
		cfg.KeyRelease = v
	}

	// SSH tunnel
	if v := os.Getenv("BLUEPAD_TUNNEL"); v != "" {
		cfg.TunnelSpec = v
	}
	if v := os.Getenv("BLUEPAD_SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}
	if envBool("BLUEPAD_SSH_PASSWORD") {
		cfg.SSHPassword = true
	}
	if envBool("BLUEPAD_SSH_AGENT") {
		cfg.UseSSHAgent = true
	}
	if envBool("BLUEPAD_STRICT_HOSTKEY") {
		cfg.StrictHostKey = true
	}
	if v := os.Getenv("BLUEPAD_KNOWN_HOSTS"); v != "" {
		cfg.KnownHostsPath = v
	}
	if v := envDuration("BLUEPAD_SSH_KEEPALIVE"); v > 0 {
		cfg.SSHKeepAlive = v
	}

	// Output
	if v := envInt("BLUEPAD_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
	if envBool("BLUEPAD_STATS") {
		cfg.Stats = true
	}
	if envBool("BLUEPAD_TIMESTAMPS") {
		cfg.Timestamps = true
	}
}

// ConfigPathFromEnv returns BLUEPAD_CONFIG, if set.
func ConfigPathFromEnv() string {
	return os.Getenv("BLUEPAD_CONFIG")
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func envDuration(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	d, err := parseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

// parseDuration accepts Go duration syntax or a bare millisecond count.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}
