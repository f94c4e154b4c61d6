package config

import (
	"strings"
	"testing"
)

// TestValidate_ErrorMessages verifies that Validate returns actionable
// error messages with hints.
func TestValidate_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantSub string // substring expected in error
	}{
		{
			name:    "missing address has hint",
			cfg:     withDefaults(func(c *Config) { c.Address = "" }),
			wantSub: "hint:",
		},
		{
			name:    "rfcomm tunnel suggests tcp",
			cfg:     withDefaults(func(c *Config) { c.TunnelSpec = "gw" }),
			wantSub: "--transport tcp",
		},
		{
			name:    "channel range in hint",
			cfg:     withDefaults(func(c *Config) { c.ChannelSpec = "0" }),
			wantSub: "between 1 and 30",
		},
		{
			name:    "names the flag",
			cfg:     withDefaults(func(c *Config) { c.Input = "mouse" }),
			wantSub: "config: --input=mouse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantSub)
			}
		})
	}
}

// TestParseChannelSpec_Fuzz covers edge-case channel specs.
func TestParseChannelSpec_Fuzz(t *testing.T) {
	edgeCases := []string{
		"1", "30", "1-1", "1-30",
		"-1", "31", "abc-def", "-", "1-", "-1",
		"0", "99999", "1-0", "255",
	}
	for _, s := range edgeCases {
		t.Run(s, func(t *testing.T) {
			chs, err := ParseChannelSpec(s)
			if err == nil {
				for _, ch := range chs {
					if ch < 1 || ch > MaxRFCOMMChannel {
						t.Errorf("channel %d out of range", ch)
					}
				}
				if len(chs) == 0 {
					t.Error("empty result without error")
				}
			}
		})
	}
}

// TestParseTunnelSpec_EdgeCases covers additional tunnel specs.
func TestParseTunnelSpec_EdgeCases(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"user@host.with.dots:22", false},
		{"user@host-with-dashes", false},
		{"host:0", true},     // port 0 out of range
		{"host:65536", true}, // port too high
		{"user@", false},     // regex treats "user@" as hostname
		{"", true},           // empty string
		{":22", true},        // no host before colon
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, _, _, err := ParseTunnelSpec(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseTunnelSpec(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
