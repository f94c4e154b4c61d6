// Package cmd wires up the CLI flags and dispatches to the core modes.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"bluepad/config"
	"bluepad/internal/core"
	"bluepad/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X bluepad/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// stdout receives --version and --dry-run output.  Tests replace it.
var stdout io.Writer = os.Stdout //nolint:gochecknoglobals

// Execute parses args and runs the appropriate bluepad mode.
//
// Settings are layered defaults < config file < BLUEPAD_* environment
// < flags.  The config file is --config, BLUEPAD_CONFIG, or
// $XDG_CONFIG_HOME/bluepad/config.toml when it exists.
func Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printUsage(newFlagSet(config.Default(), new(cliOnly)))
		return nil
	}

	cfg := config.Default()
	if path, explicit := configPath(args); path != "" {
		err := config.LoadFile(path, cfg)
		switch {
		case err == nil:
			cfg.ConfigPath = path
		case explicit:
			return err
		}
	}
	config.LoadFromEnv(cfg)

	var cli cliOnly
	fs := newFlagSet(cfg, &cli)

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if cli.help {
		printUsage(fs)
		return nil
	}
	if cli.version {
		fmt.Fprintf(stdout, "bluepad %s\n", version)
		return nil
	}

	cfg.Verbose += cli.verbose
	if cli.quiet {
		cfg.Verbose = 0
	}
	if fs.Changed("script") && !fs.Changed("input") {
		cfg.Input = config.InputScript
	}

	// ── positional arguments ─────────────────────────────────────
	switch rest := fs.Args(); len(rest) {
	case 0:
	case 1:
		cfg.Address = rest[0]
	default:
		return fmt.Errorf("too many arguments: %s (use --help for usage)", strings.Join(rest, " "))
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cli.dryRun {
		describe(stdout, cfg)
		return nil
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	if cfg.Timestamps {
		logger.SetTimestamps(true)
	}
	if cfg.ConfigPath != "" {
		logger.Verbose("config: %s", cfg.ConfigPath)
	}

	mode, err := core.Build(cfg, logger)
	if err != nil {
		return err
	}
	return mode.Run(ctx)
}

// cliOnly holds flags that are not part of the persistent Config.
type cliOnly struct {
	verbose int
	quiet   bool
	dryRun  bool
	version bool
	help    bool
	config  string
}

// newFlagSet binds every flag to cfg.  Each flag's default is the value
// cfg already holds, so file and environment settings survive unless
// the flag is given.
func newFlagSet(cfg *config.Config, cli *cliOnly) *flag.FlagSet {
	fs := flag.NewFlagSet("bluepad", flag.ContinueOnError)
	fs.SortFlags = false

	// ── device ───────────────────────────────────────────────────
	fs.StringVarP(&cfg.Name, "name", "n", cfg.Name, "Device display name (default: BlueZ alias)")
	fs.StringVarP(&cfg.Transport, "transport", "t", cfg.Transport, "Link transport: rfcomm or tcp")
	fs.StringVarP(&cfg.ChannelSpec, "channel", "c", cfg.ChannelSpec, "RFCOMM channel or range to probe, e.g. 1-3")
	fs.StringVar(&cfg.Service, "service", cfg.Service, "Service class UUID")
	fs.StringVar(&cfg.Adapter, "adapter", cfg.Adapter, "Local Bluetooth adapter")
	fs.BoolVar(&cfg.NoLookup, "no-lookup", cfg.NoLookup, "Skip the BlueZ device lookup")
	fs.BoolVarP(&cfg.ListPaired, "list", "l", cfg.ListPaired, "List paired devices and exit")

	// ── link ─────────────────────────────────────────────────────
	fs.DurationVarP(&cfg.DialTimeout, "timeout", "w", cfg.DialTimeout, "Connect timeout per attempt")
	fs.IntVar(&cfg.ConnectAttempts, "attempts", cfg.ConnectAttempts, "Connect attempts before giving up")
	fs.DurationVarP(&cfg.RepeatInterval, "repeat", "r", cfg.RepeatInterval, "Resend period of a held command")
	fs.DurationVarP(&cfg.KeepAliveInterval, "keepalive", "k", cfg.KeepAliveInterval, "Keep-alive period while idle")
	fs.StringVar(&cfg.Probe, "probe", cfg.Probe, "Keep-alive token")
	fs.StringVar(&cfg.Sentinel, "sentinel", cfg.Sentinel, "Inbound line that ends the link")
	fs.IntVar(&cfg.MaxLineBytes, "max-line", cfg.MaxLineBytes, "Cap on an unterminated inbound line (0 = none)")

	// ── input ────────────────────────────────────────────────────
	fs.StringVarP(&cfg.Input, "input", "i", cfg.Input, "Input mode: keys, script or watch")
	fs.StringVarP(&cfg.ScriptPath, "script", "s", cfg.ScriptPath, "Script file for script input (- = stdin)")
	fs.DurationVar(&cfg.KeyRelease, "key-release", cfg.KeyRelease, "Release a key after this long without autorepeat")

	// ── SSH tunnel ───────────────────────────────────────────────
	fs.StringVarP(&cfg.TunnelSpec, "tunnel", "T", cfg.TunnelSpec, "Reach a TCP bridge via SSH [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", cfg.SSHPassword, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")
	fs.DurationVar(&cfg.SSHKeepAlive, "ssh-keepalive", cfg.SSHKeepAlive, "SSH keepalive period (0 = off)")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&cli.verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVarP(&cli.quiet, "quiet", "q", false, "Only print errors")
	fs.BoolVar(&cfg.Stats, "stats", cfg.Stats, "Print link counters as JSON on exit")
	fs.BoolVar(&cfg.Timestamps, "timestamps", cfg.Timestamps, "Timestamp log lines")

	fs.StringVar(&cli.config, "config", "", "TOML config file")
	fs.BoolVar(&cli.dryRun, "dry-run", false, "Validate the configuration, print it, and exit")
	fs.BoolVar(&cli.version, "version", false, "Print version and exit")
	fs.BoolVarP(&cli.help, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }
	return fs
}

// ── helpers ──────────────────────────────────────────────────────────

// configPath finds the config file before the full flag parse, since
// its values become the flag defaults.  explicit is false for the
// per-user default, which may be absent.
func configPath(args []string) (path string, explicit bool) {
	for i, a := range args {
		if a == "--" {
			break
		}
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v, true
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1], true
		}
	}
	if p := config.ConfigPathFromEnv(); p != "" {
		return p, true
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	p := filepath.Join(dir, "bluepad", "config.toml")
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return "", false
	}
	return p, false
}

// describe prints the resolved configuration for --dry-run.
func describe(w io.Writer, cfg *config.Config) {
	if cfg.ListPaired {
		fmt.Fprintf(w, "mode:       list paired devices on %s\n", cfg.Adapter)
		return
	}
	fmt.Fprintf(w, "device:     %s", cfg.Address)
	if cfg.Name != "" {
		fmt.Fprintf(w, " (%s)", cfg.Name)
	}
	fmt.Fprintln(w)
	switch {
	case cfg.TunnelEnabled:
		fmt.Fprintf(w, "transport:  tcp via ssh %s@%s:%d\n", cfg.TunnelUser, cfg.TunnelHost, cfg.TunnelPort)
	case cfg.Transport == config.TransportTCP:
		fmt.Fprintln(w, "transport:  tcp")
	default:
		fmt.Fprintf(w, "transport:  rfcomm channels %v service %s\n", cfg.Channels, cfg.ServiceUUID())
	}
	fmt.Fprintf(w, "link:       repeat %v, keepalive %v %q, sentinel %q\n",
		cfg.RepeatInterval, cfg.KeepAliveInterval, cfg.Probe, cfg.Sentinel)
	fmt.Fprintf(w, "connect:    %d attempt(s), timeout %v\n", cfg.ConnectAttempts, cfg.DialTimeout)
	fmt.Fprintf(w, "input:      %s", cfg.Input)
	if cfg.Input == config.InputScript {
		fmt.Fprintf(w, " from %s", cfg.ScriptPath)
	}
	fmt.Fprintln(w)
	if cfg.ConfigPath != "" {
		fmt.Fprintf(w, "config:     %s\n", cfg.ConfigPath)
	}
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `bluepad – Bluetooth serial gamepad v%s

Drives an HC-05/HC-06 style device over RFCOMM: held buttons repeat,
an idle link is kept alive, and device telemetry is printed.

Usage:
  bluepad [options] <MAC>                      Drive over RFCOMM
  bluepad -t tcp [options] <host:port>         Drive a serial-over-TCP bridge
  bluepad -t tcp -T user@gw [options] <h:p>    Bridge behind an SSH gateway
  bluepad --list                               List paired devices

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  bluepad 98:D3:31:F5:2A:10                    Arrow keys drive, space stops
  bluepad -s square.txt 98:D3:31:F5:2A:10      Run a move script
  bluepad -i watch --stats 98:D3:31:F5:2A:10   Print telemetry only
  echo "hold F 2s" | bluepad -i script <MAC>   Pipe a script
  bluepad -t tcp -T pi@garage 127.0.0.1:4000   ser2net on a remote Pi
`)
}
