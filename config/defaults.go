package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.

const (
	// TransportRFCOMM dials the device directly over Bluetooth.
	TransportRFCOMM = "rfcomm"
	// TransportTCP dials a serial-over-TCP bridge.
	TransportTCP = "tcp"

	// InputKeys reads the raw keyboard.
	InputKeys = "keys"
	// InputScript reads instructions from a file or stdin.
	InputScript = "script"
	// InputWatch sends nothing and prints telemetry.
	InputWatch = "watch"

	// DefaultAdapter is the local Bluetooth controller.
	DefaultAdapter = "hci0"

	// DefaultChannelSpec is where HC-05/HC-06 modules register SPP.
	DefaultChannelSpec = "1"

	// DefaultService is the Serial Port Profile service class.
	DefaultService = "00001101-0000-1000-8000-00805F9B34FB"

	// DefaultRepeatInterval is the period of a held command.
	DefaultRepeatInterval = 100 * time.Millisecond

	// DefaultKeepAliveInterval is the period of the idle probe.
	DefaultKeepAliveInterval = 5000 * time.Millisecond

	// DefaultProbe is the keep-alive token.  HC-06 modules answer "OK"
	// when not paired and pass it through when they are.
	DefaultProbe = "AT"

	// DefaultSentinel is the inbound line that requests a hang-up.
	DefaultSentinel = "AT+DISC"

	// DefaultMaxLineBytes caps an unterminated inbound line.
	DefaultMaxLineBytes = 4096

	// DefaultDialTimeout bounds one connect attempt.  RFCOMM page
	// timeouts run about five seconds.
	DefaultDialTimeout = 10 * time.Second

	// DefaultConnectAttempts is the total number of connect tries.
	DefaultConnectAttempts = 3

	// DefaultKeyRelease outlasts the usual terminal autorepeat delay.
	DefaultKeyRelease = 550 * time.Millisecond

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultSSHKeepAlive is the SSH keepalive interval.
	DefaultSSHKeepAlive = 30 * time.Second

	// MaxRFCOMMChannel is the highest valid RFCOMM server channel.
	MaxRFCOMMChannel = 30
)

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		Transport:         TransportRFCOMM,
		ChannelSpec:       DefaultChannelSpec,
		Service:           DefaultService,
		Adapter:           DefaultAdapter,
		DialTimeout:       DefaultDialTimeout,
		ConnectAttempts:   DefaultConnectAttempts,
		RepeatInterval:    DefaultRepeatInterval,
		KeepAliveInterval: DefaultKeepAliveInterval,
		Probe:             DefaultProbe,
		Sentinel:          DefaultSentinel,
		MaxLineBytes:      DefaultMaxLineBytes,
		Input:             InputKeys,
		ScriptPath:        "-",
		KeyRelease:        DefaultKeyRelease,
		SSHKeepAlive:      DefaultSSHKeepAlive,
		Verbose:           1,
	}
}
