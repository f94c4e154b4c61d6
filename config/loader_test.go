package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Device(t *testing.T) {
	t.Setenv("BLUEPAD_ADDRESS", "98:D3:31:F5:2A:10")
	t.Setenv("BLUEPAD_NAME", "rover")
	t.Setenv("BLUEPAD_TRANSPORT", "TCP")
	t.Setenv("BLUEPAD_CHANNEL", "1-3")
	t.Setenv("BLUEPAD_ADAPTER", "hci1")

	cfg := &Config{}
	LoadFromEnv(cfg)

	if cfg.Address != "98:D3:31:F5:2A:10" {
		t.Errorf("Address = %q", cfg.Address)
	}
	if cfg.Name != "rover" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Transport != "tcp" {
		t.Errorf("Transport = %q, want lower-cased", cfg.Transport)
	}
	if cfg.ChannelSpec != "1-3" || cfg.Adapter != "hci1" {
		t.Errorf("ChannelSpec/Adapter = %q/%q", cfg.ChannelSpec, cfg.Adapter)
	}
}

func TestLoadFromEnv_Booleans(t *testing.T) {
	tests := []struct {
		key    string
		values []string
		get    func(*Config) bool
	}{
		{"BLUEPAD_STATS", []string{"1", "true", "yes", "TRUE", "Yes"}, func(c *Config) bool { return c.Stats }},
		{"BLUEPAD_NO_LOOKUP", []string{"1", "true"}, func(c *Config) bool { return c.NoLookup }},
		{"BLUEPAD_TIMESTAMPS", []string{"true"}, func(c *Config) bool { return c.Timestamps }},
		{"BLUEPAD_SSH_AGENT", []string{"1"}, func(c *Config) bool { return c.UseSSHAgent }},
	}

	for _, tt := range tests {
		for _, v := range tt.values {
			t.Run(tt.key+"="+v, func(t *testing.T) {
				t.Setenv(tt.key, v)
				cfg := &Config{}
				LoadFromEnv(cfg)
				if !tt.get(cfg) {
					t.Errorf("%s=%s was not applied", tt.key, v)
				}
			})
		}
	}
}

func TestLoadFromEnv_Durations(t *testing.T) {
	t.Setenv("BLUEPAD_REPEAT", "250ms")
	t.Setenv("BLUEPAD_KEEPALIVE", "2000") // bare number = milliseconds
	t.Setenv("BLUEPAD_TIMEOUT", "3s")

	cfg := &Config{}
	LoadFromEnv(cfg)

	if cfg.RepeatInterval != 250*time.Millisecond {
		t.Errorf("RepeatInterval = %v", cfg.RepeatInterval)
	}
	if cfg.KeepAliveInterval != 2*time.Second {
		t.Errorf("KeepAliveInterval = %v", cfg.KeepAliveInterval)
	}
	if cfg.DialTimeout != 3*time.Second {
		t.Errorf("DialTimeout = %v", cfg.DialTimeout)
	}
}

func TestLoadFromEnv_SSHFields(t *testing.T) {
	t.Setenv("BLUEPAD_TUNNEL", "pi@gateway:2222")
	t.Setenv("BLUEPAD_SSH_KEY", "/home/user/.ssh/id_ed25519")
	t.Setenv("BLUEPAD_SSH_PASSWORD", "true")
	t.Setenv("BLUEPAD_STRICT_HOSTKEY", "yes")
	t.Setenv("BLUEPAD_KNOWN_HOSTS", "/custom/known_hosts")

	cfg := &Config{}
	LoadFromEnv(cfg)

	if cfg.TunnelSpec != "pi@gateway:2222" {
		t.Errorf("TunnelSpec = %q", cfg.TunnelSpec)
	}
	if cfg.SSHKeyPath != "/home/user/.ssh/id_ed25519" {
		t.Errorf("SSHKeyPath = %q", cfg.SSHKeyPath)
	}
	if !cfg.SSHPassword {
		t.Error("SSHPassword should be true")
	}
	if !cfg.StrictHostKey {
		t.Error("StrictHostKey should be true")
	}
	if cfg.KnownHostsPath != "/custom/known_hosts" {
		t.Errorf("KnownHostsPath = %q", cfg.KnownHostsPath)
	}
}

func TestLoadFromEnv_NoOverrideWhenEmpty(t *testing.T) {
	cfg := Default()
	cfg.Address = "original"
	LoadFromEnv(cfg)

	if cfg.Address != "original" {
		t.Errorf("Address was overridden: %q", cfg.Address)
	}
	if cfg.RepeatInterval != DefaultRepeatInterval {
		t.Errorf("RepeatInterval was overridden: %v", cfg.RepeatInterval)
	}
}

func TestLoadFromEnv_InvalidIgnored(t *testing.T) {
	t.Setenv("BLUEPAD_ATTEMPTS", "not-a-number")
	t.Setenv("BLUEPAD_REPEAT", "soon")
	cfg := Default()
	LoadFromEnv(cfg)
	if cfg.ConnectAttempts != DefaultConnectAttempts {
		t.Errorf("ConnectAttempts = %d", cfg.ConnectAttempts)
	}
	if cfg.RepeatInterval != DefaultRepeatInterval {
		t.Errorf("RepeatInterval = %v", cfg.RepeatInterval)
	}
}

func TestLoadFromEnv_Verbose(t *testing.T) {
	t.Setenv("BLUEPAD_VERBOSE", "3")
	cfg := &Config{}
	LoadFromEnv(cfg)
	if cfg.Verbose != 3 {
		t.Errorf("Verbose = %d, want 3", cfg.Verbose)
	}
}
