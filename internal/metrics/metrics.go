// Package metrics provides lock-free counters for a bluepad session.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for a device link.
type Collector struct {
	connects        atomic.Int64
	connectFailures atomic.Int64
	disconnects     atomic.Int64

	commandsSent   atomic.Int64
	keepAlivesSent atomic.Int64
	writeErrors    atomic.Int64
	bytesIn        atomic.Int64
	bytesOut       atomic.Int64

	messages   atomic.Int64
	duplicates atomic.Int64
	overflows  atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Link lifecycle ───────────────────────────────────────────────────

// Connected records a successful connect.
func (c *Collector) Connected() {
	if c == nil {
		return
	}
	c.connects.Add(1)
}

// ConnectFailed records a failed connect.
func (c *Collector) ConnectFailed() {
	if c == nil {
		return
	}
	c.connectFailures.Add(1)
}

// Disconnected records the end of a link.
func (c *Collector) Disconnected() {
	if c == nil {
		return
	}
	c.disconnects.Add(1)
}

// Connects returns the number of successful connects.
func (c *Collector) Connects() int64 {
	if c == nil {
		return 0
	}
	return c.connects.Load()
}

// Disconnects returns the number of links torn down.
func (c *Collector) Disconnects() int64 {
	if c == nil {
		return 0
	}
	return c.disconnects.Load()
}

// ── Outbound ─────────────────────────────────────────────────────────

// CommandSent records one command frame of n bytes.
func (c *Collector) CommandSent(n int) {
	if c == nil {
		return
	}
	c.commandsSent.Add(1)
	c.bytesOut.Add(int64(n))
}

// KeepAliveSent records one keep-alive probe of n bytes.
func (c *Collector) KeepAliveSent(n int) {
	if c == nil {
		return
	}
	c.keepAlivesSent.Add(1)
	c.bytesOut.Add(int64(n))
}

// WriteFailed records a failed write and remembers the message.
func (c *Collector) WriteFailed(msg string) {
	if c == nil {
		return
	}
	c.writeErrors.Add(1)
	c.recordError(msg)
}

// CommandsSent returns the number of command frames written.
func (c *Collector) CommandsSent() int64 {
	if c == nil {
		return 0
	}
	return c.commandsSent.Load()
}

// KeepAlivesSent returns the number of keep-alive probes written.
func (c *Collector) KeepAlivesSent() int64 {
	if c == nil {
		return 0
	}
	return c.keepAlivesSent.Load()
}

// WriteErrors returns the number of failed writes.
func (c *Collector) WriteErrors() int64 {
	if c == nil {
		return 0
	}
	return c.writeErrors.Load()
}

// TotalBytesOut returns the bytes written by commands and probes.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// ── Inbound ──────────────────────────────────────────────────────────

// BytesReceived records n bytes read from the device.
func (c *Collector) BytesReceived(n int) {
	if c == nil {
		return
	}
	c.bytesIn.Add(int64(n))
}

// MessageDelivered records a message forwarded to the listener.
func (c *Collector) MessageDelivered() {
	if c == nil {
		return
	}
	c.messages.Add(1)
}

// DuplicateSuppressed records a message dropped by deduplication.
func (c *Collector) DuplicateSuppressed() {
	if c == nil {
		return
	}
	c.duplicates.Add(1)
}

// BufferOverflow records an unterminated tail discarded by the framer.
func (c *Collector) BufferOverflow() {
	if c == nil {
		return
	}
	c.overflows.Add(1)
}

// TotalBytesIn returns total bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// Messages returns the number of delivered messages.
func (c *Collector) Messages() int64 {
	if c == nil {
		return 0
	}
	return c.messages.Load()
}

// Duplicates returns the number of suppressed messages.
func (c *Collector) Duplicates() int64 {
	if c == nil {
		return 0
	}
	return c.duplicates.Load()
}

// ── Errors ───────────────────────────────────────────────────────────

// RecordError stores msg as the most recent error without counting it
// as a write failure.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.recordError(msg)
}

func (c *Collector) recordError(msg string) {
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	Connects         int64  `json:"connects"`
	ConnectFailures  int64  `json:"connect_failures"`
	Disconnects      int64  `json:"disconnects"`
	CommandsSent     int64  `json:"commands_sent"`
	KeepAlivesSent   int64  `json:"keepalives_sent"`
	WriteErrors      int64  `json:"write_errors"`
	BytesIn          int64  `json:"bytes_in"`
	BytesOut         int64  `json:"bytes_out"`
	Messages         int64  `json:"messages"`
	Duplicates       int64  `json:"duplicates_suppressed"`
	BufferOverflows  int64  `json:"buffer_overflows"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:          time.Since(c.startTime).Truncate(time.Second).String(),
		Connects:        c.connects.Load(),
		ConnectFailures: c.connectFailures.Load(),
		Disconnects:     c.disconnects.Load(),
		CommandsSent:    c.commandsSent.Load(),
		KeepAlivesSent:  c.keepAlivesSent.Load(),
		WriteErrors:     c.writeErrors.Load(),
		BytesIn:         c.bytesIn.Load(),
		BytesOut:        c.bytesOut.Load(),
		Messages:        c.messages.Load(),
		Duplicates:      c.duplicates.Load(),
		BufferOverflows: c.overflows.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
