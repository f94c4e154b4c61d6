package tunnel

import (
	"context"
	"errors"
	"testing"
	"time"

	linkerr "bluepad/internal/errors"
)

func TestNewSSHTunnel_Defaults(t *testing.T) {
	cfg := &SSHConfig{Host: "gw"}
	NewSSHTunnel(cfg, quietLogger())
	if cfg.Port != 22 {
		t.Errorf("Port = %d, want 22", cfg.Port)
	}
	if cfg.ConnTimeout != 30*time.Second {
		t.Errorf("ConnTimeout = %v", cfg.ConnTimeout)
	}
	if got := cfg.Addr(); got != "gw:22" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestSSHTunnel_DialBeforeConnect(t *testing.T) {
	tun := NewSSHTunnel(&SSHConfig{Host: "gw"}, quietLogger())
	if tun.IsAlive() {
		t.Fatal("alive before Connect")
	}
	_, err := tun.Dial(context.Background(), "tcp", "bridge:2000")
	if !errors.Is(err, linkerr.ErrTunnelClosed) {
		t.Errorf("err = %v, want ErrTunnelClosed", err)
	}
	if err := tun.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestSSHTunnel_ConnectRefused(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	cfg := &SSHConfig{
		User:        "pi",
		Host:        "127.0.0.1",
		Port:        1,
		PromptPass:  true,
		Prompt:      func(string) ([]byte, error) { return nil, errors.New("no tty") },
		ConnTimeout: time.Second,
	}
	tun := NewSSHTunnel(cfg, quietLogger())

	err := tun.Connect(context.Background())
	var sshErr *linkerr.SSHError
	if !errors.As(err, &sshErr) || sshErr.Op != "dial" {
		t.Fatalf("err = %v, want SSHError op=dial", err)
	}
}
