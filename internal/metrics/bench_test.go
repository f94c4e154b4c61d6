package metrics

import "testing"

// BenchmarkCollector_CommandSent measures the per-frame overhead paid
// on every 100ms repeat tick.
func BenchmarkCollector_CommandSent(b *testing.B) {
	c := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.CommandSent(2)
	}
}

// BenchmarkCollector_Snapshot measures the cost of taking a snapshot.
func BenchmarkCollector_Snapshot(b *testing.B) {
	c := New()
	c.Connected()
	c.CommandSent(2)
	c.WriteFailed("test")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Snapshot()
	}
}

// BenchmarkNilCollector verifies nil-safe no-ops stay cheap.
func BenchmarkNilCollector(b *testing.B) {
	var c *Collector
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.CommandSent(2)
		c.BytesReceived(64)
		c.WriteFailed("test")
	}
}
