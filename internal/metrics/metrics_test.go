package metrics

import (
	"encoding/json"
	"sync"
	"testing"
)

func TestCollector_Lifecycle(t *testing.T) {
	c := New()

	c.Connected()
	c.ConnectFailed()
	c.Disconnected()
	c.Connected()

	if c.Connects() != 2 {
		t.Errorf("connects = %d, want 2", c.Connects())
	}
	if c.Disconnects() != 1 {
		t.Errorf("disconnects = %d, want 1", c.Disconnects())
	}
	if got := c.Snapshot().ConnectFailures; got != 1 {
		t.Errorf("connect failures = %d, want 1", got)
	}
}

func TestCollector_Outbound(t *testing.T) {
	c := New()

	c.CommandSent(2)
	c.CommandSent(2)
	c.KeepAliveSent(3)
	c.WriteFailed("write: broken pipe")

	if c.CommandsSent() != 2 {
		t.Errorf("commands = %d, want 2", c.CommandsSent())
	}
	if c.KeepAlivesSent() != 1 {
		t.Errorf("keepalives = %d, want 1", c.KeepAlivesSent())
	}
	if c.TotalBytesOut() != 7 {
		t.Errorf("bytes out = %d, want 7", c.TotalBytesOut())
	}
	if c.WriteErrors() != 1 {
		t.Errorf("write errors = %d, want 1", c.WriteErrors())
	}
	if snap := c.Snapshot(); snap.LastErrorMessage != "write: broken pipe" {
		t.Errorf("last error = %q", snap.LastErrorMessage)
	}
}

func TestCollector_Inbound(t *testing.T) {
	c := New()

	c.BytesReceived(10)
	c.BytesReceived(5)
	c.MessageDelivered()
	c.DuplicateSuppressed()
	c.DuplicateSuppressed()
	c.BufferOverflow()

	if c.TotalBytesIn() != 15 {
		t.Errorf("bytes in = %d, want 15", c.TotalBytesIn())
	}
	if c.Messages() != 1 {
		t.Errorf("messages = %d, want 1", c.Messages())
	}
	if c.Duplicates() != 2 {
		t.Errorf("duplicates = %d, want 2", c.Duplicates())
	}
	if got := c.Snapshot().BufferOverflows; got != 1 {
		t.Errorf("overflows = %d, want 1", got)
	}
}

func TestCollector_RecordErrorDoesNotCountWrites(t *testing.T) {
	c := New()
	c.RecordError("read: EOF")

	if c.WriteErrors() != 0 {
		t.Errorf("write errors = %d, want 0", c.WriteErrors())
	}
	snap := c.Snapshot()
	if snap.LastError == "" || snap.LastErrorMessage != "read: EOF" {
		t.Errorf("last error not recorded: %+v", snap)
	}
}

func TestCollector_JSON(t *testing.T) {
	c := New()
	c.Connected()
	c.CommandSent(2)

	var snap Snapshot
	if err := json.Unmarshal([]byte(c.JSON()), &snap); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if snap.Connects != 1 || snap.CommandsSent != 1 || snap.BytesOut != 2 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestCollector_Concurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.CommandSent(2)
				c.BytesReceived(1)
			}
		}()
	}
	wg.Wait()

	if c.CommandsSent() != 8000 {
		t.Errorf("commands = %d, want 8000", c.CommandsSent())
	}
	if c.TotalBytesIn() != 8000 {
		t.Errorf("bytes in = %d, want 8000", c.TotalBytesIn())
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector

	c.Connected()
	c.CommandSent(2)
	c.KeepAliveSent(3)
	c.WriteFailed("x")
	c.BytesReceived(1)
	c.MessageDelivered()
	c.DuplicateSuppressed()
	c.BufferOverflow()
	c.RecordError("x")

	if c.CommandsSent() != 0 || c.Messages() != 0 {
		t.Error("nil collector should report zero")
	}
	if c.JSON() == "" {
		t.Error("nil collector JSON should still render")
	}
}
