package core

import (
	"bluepad/config"
	"bluepad/internal/bluez"
	"bluepad/internal/capability"
	"bluepad/internal/metrics"
	"bluepad/internal/retry"
	"bluepad/internal/session"
	"bluepad/internal/transport"
	"bluepad/tunnel"
	"bluepad/util"
)

// Build constructs the appropriate Mode from the given configuration.
// cfg must already be validated.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	if cfg.ListPaired {
		return &ListMode{
			Adapter: cfg.Adapter,
			Service: cfg.ServiceUUID(),
			Source:  bluez.ListPaired,
			Logger:  logger,
		}, nil
	}
	return buildPad(cfg, logger), nil
}

// ── mode builders ────────────────────────────────────────────────────

func buildPad(cfg *config.Config, logger *util.Logger) *PadMode {
	m := &PadMode{
		Device: transport.Device{
			Address: cfg.Address,
			Name:    cfg.Name,
		},
		Dialer:     buildDialer(cfg, logger),
		Capability: buildCapability(cfg),
		Session: session.Config{
			RepeatInterval: cfg.RepeatInterval,
			IdleInterval:   cfg.KeepAliveInterval,
			Probe:          cfg.Probe,
			Sentinel:       cfg.Sentinel,
			MaxLineBytes:   cfg.MaxLineBytes,
		},
		Adapter:    cfg.Adapter,
		Service:    cfg.ServiceUUID(),
		ScriptPath: scriptPath(cfg),
		RawTTY:     cfg.Input == config.InputKeys,
		Stats:      cfg.Stats,
		Metrics:    metrics.New(),
		Logger:     logger,
	}
	if cfg.Transport == config.TransportRFCOMM && !cfg.NoLookup {
		m.Lookup = bluez.Lookup
	}
	return m
}

// ── shared helpers ───────────────────────────────────────────────────

// buildDialer creates the right transport.Dialer for the given config.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	var d transport.Dialer
	switch {
	case cfg.TunnelEnabled:
		d = transport.NewSSHDialer(&tunnel.SSHConfig{
			User:          cfg.TunnelUser,
			Host:          cfg.TunnelHost,
			Port:          cfg.TunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			ConnTimeout:   cfg.DialTimeout,
			KeepAlive:     cfg.SSHKeepAlive,
		}, cfg.DialTimeout, logger.Named("ssh"))
	case cfg.Transport == config.TransportTCP:
		d = &transport.TCPDialer{Timeout: cfg.DialTimeout}
	default:
		d = &transport.RFCOMMDialer{
			Service:  cfg.ServiceUUID(),
			Channels: cfg.Channels,
			Timeout:  cfg.DialTimeout,
		}
	}

	if cfg.ConnectAttempts > 1 {
		d = &transport.RetryDialer{
			Dialer:  d,
			Backoff: retry.ConnectBackoff(cfg.ConnectAttempts),
			Logger:  logger.Named("dial"),
		}
	}
	return d
}

// buildCapability selects the input driver.
func buildCapability(cfg *config.Config) capability.Capability {
	switch cfg.Input {
	case config.InputScript:
		return capability.Script{}
	case config.InputWatch:
		return capability.Watch{}
	default:
		return capability.Keys{ReleaseAfter: cfg.KeyRelease}
	}
}

// scriptPath returns the file a script is read from, or "" for stdin.
func scriptPath(cfg *config.Config) string {
	if cfg.Input != config.InputScript || cfg.ScriptPath == "-" {
		return ""
	}
	return cfg.ScriptPath
}
