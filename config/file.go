package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	linkerr "bluepad/internal/errors"
)

// fileConfig mirrors the TOML layout:
//
//	[device]
//	address   = "98:D3:31:F5:2A:10"
//	channel   = "1-3"
//
//	[link]
//	repeat    = "100ms"
//	keepalive = "5s"
//
//	[input]
//	mode      = "script"
//	script    = "square.txt"
//
//	[ssh]
//	tunnel    = "pi@gateway.lan"
type fileConfig struct {
	Device struct {
		Address   string `toml:"address"`
		Name      string `toml:"name"`
		Transport string `toml:"transport"`
		Channel   string `toml:"channel"`
		Service   string `toml:"service"`
		Adapter   string `toml:"adapter"`
		NoLookup  bool   `toml:"no_lookup"`
	} `toml:"device"`
	Link struct {
		Timeout      string `toml:"timeout"`
		Attempts     int    `toml:"attempts"`
		Repeat       string `toml:"repeat"`
		KeepAlive    string `toml:"keepalive"`
		Probe        string `toml:"probe"`
		Sentinel     string `toml:"sentinel"`
		MaxLineBytes int    `toml:"max_line_bytes"`
	} `toml:"link"`
	Input struct {
		Mode       string `toml:"mode"`
		Script     string `toml:"script"`
		KeyRelease string `toml:"key_release"`
	} `toml:"input"`
	SSH struct {
		Tunnel        string `toml:"tunnel"`
		Key           string `toml:"key"`
		Password      bool   `toml:"password"`
		Agent         bool   `toml:"agent"`
		StrictHostKey bool   `toml:"strict_hostkey"`
		KnownHosts    string `toml:"known_hosts"`
		KeepAlive     string `toml:"keepalive"`
	} `toml:"ssh"`
	Output struct {
		Verbose    int  `toml:"verbose"`
		Stats      bool `toml:"stats"`
		Timestamps bool `toml:"timestamps"`
	} `toml:"output"`
}

// LoadFile overlays the TOML file at path onto cfg.  Only keys present
// in the file override the existing value.  A relative script path is
// resolved against the file's directory.
func LoadFile(path string, cfg *Config) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &linkerr.ConfigError{Field: "config", Value: path, Message: "file not found"}
		}
		return &linkerr.ConfigError{Field: "config", Value: path, Message: err.Error()}
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return &linkerr.ConfigError{Field: "config", Value: path,
			Message: "unknown keys: " + strings.Join(keys, ", ")}
	}

	str := func(dst *string, v string, key ...string) {
		if meta.IsDefined(key...) {
			*dst = v
		}
	}
	num := func(dst *int, v int, key ...string) {
		if meta.IsDefined(key...) {
			*dst = v
		}
	}
	flag := func(dst *bool, v bool, key ...string) {
		if meta.IsDefined(key...) {
			*dst = v
		}
	}

	str(&cfg.Address, raw.Device.Address, "device", "address")
	str(&cfg.Name, raw.Device.Name, "device", "name")
	str(&cfg.Transport, strings.ToLower(raw.Device.Transport), "device", "transport")
	str(&cfg.ChannelSpec, raw.Device.Channel, "device", "channel")
	str(&cfg.Service, raw.Device.Service, "device", "service")
	str(&cfg.Adapter, raw.Device.Adapter, "device", "adapter")
	flag(&cfg.NoLookup, raw.Device.NoLookup, "device", "no_lookup")

	num(&cfg.ConnectAttempts, raw.Link.Attempts, "link", "attempts")
	str(&cfg.Probe, raw.Link.Probe, "link", "probe")
	str(&cfg.Sentinel, raw.Link.Sentinel, "link", "sentinel")
	num(&cfg.MaxLineBytes, raw.Link.MaxLineBytes, "link", "max_line_bytes")

	str(&cfg.Input, strings.ToLower(raw.Input.Mode), "input", "mode")
	if meta.IsDefined("input", "script") {
		cfg.ScriptPath = raw.Input.Script
		if cfg.ScriptPath != "-" && !filepath.IsAbs(cfg.ScriptPath) {
			cfg.ScriptPath = filepath.Join(filepath.Dir(path), cfg.ScriptPath)
		}
	}

	str(&cfg.TunnelSpec, raw.SSH.Tunnel, "ssh", "tunnel")
	str(&cfg.SSHKeyPath, raw.SSH.Key, "ssh", "key")
	flag(&cfg.SSHPassword, raw.SSH.Password, "ssh", "password")
	flag(&cfg.UseSSHAgent, raw.SSH.Agent, "ssh", "agent")
	flag(&cfg.StrictHostKey, raw.SSH.StrictHostKey, "ssh", "strict_hostkey")
	str(&cfg.KnownHostsPath, raw.SSH.KnownHosts, "ssh", "known_hosts")

	num(&cfg.Verbose, raw.Output.Verbose, "output", "verbose")
	flag(&cfg.Stats, raw.Output.Stats, "output", "stats")
	flag(&cfg.Timestamps, raw.Output.Timestamps, "output", "timestamps")

	durations := []struct {
		dst *time.Duration
		raw string
		key []string
	}{
		{&cfg.DialTimeout, raw.Link.Timeout, []string{"link", "timeout"}},
		{&cfg.RepeatInterval, raw.Link.Repeat, []string{"link", "repeat"}},
		{&cfg.KeepAliveInterval, raw.Link.KeepAlive, []string{"link", "keepalive"}},
		{&cfg.KeyRelease, raw.Input.KeyRelease, []string{"input", "key_release"}},
		{&cfg.SSHKeepAlive, raw.SSH.KeepAlive, []string{"ssh", "keepalive"}},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key...) {
			continue
		}
		v, err := parseDuration(d.raw)
		if err != nil {
			return &linkerr.ConfigError{Field: "config", Value: path,
				Message: fmt.Sprintf("%s: invalid duration %q", strings.Join(d.key, "."), d.raw),
				Hint:    `use Go duration syntax like "250ms" or "5s"`}
		}
		*d.dst = v
	}
	return nil
}
