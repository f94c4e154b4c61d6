package framer

import (
	"slices"
	"strings"
	"testing"
)

func collect(f *Framer, chunk string) []string {
	return slices.Collect(f.Feed([]byte(chunk)))
}

// reference splits a whole stream the obvious way.
func reference(stream string) []string {
	parts := strings.Split(stream, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts[:len(parts)-1] {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func TestFeed(t *testing.T) {
	tests := []struct {
		name  string
		chunk string
		want  []string
	}{
		{"single line", "T:21.5\n", []string{"T:21.5"}},
		{"no delimiter", "T:21", nil},
		{"several lines", "a\nb\nc\n", []string{"a", "b", "c"}},
		{"crlf trimmed", "SPEED 3\r\n", []string{"SPEED 3"}},
		{"blank line kept as empty", "\n  \n", []string{"", ""}},
		{"trailing partial", "a\nb", []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(New(0), tt.chunk)
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFeed_PartialCompletedLater(t *testing.T) {
	f := New(0)

	if got := collect(f, "  BATT"); len(got) != 0 {
		t.Fatalf("partial chunk emitted %q", got)
	}
	if f.Buffered() != len("  BATT") {
		t.Errorf("Buffered() = %d", f.Buffered())
	}

	got := collect(f, " 87% \nnext")
	if !slices.Equal(got, []string{"BATT 87%"}) {
		t.Errorf("got %q, want [\"BATT 87%%\"]", got)
	}
	if f.Buffered() != len("next") {
		t.Errorf("Buffered() = %d, want %d", f.Buffered(), len("next"))
	}
}

// TestFeed_ChunkingInvariance feeds the same stream split at every
// possible pair of cut points and checks the output never changes.
func TestFeed_ChunkingInvariance(t *testing.T) {
	stream := "OK\r\n  T:21.5 \nAT+DISC\n\n  \nBATT 87%\npartial"
	want := reference(stream)

	for i := 0; i <= len(stream); i++ {
		for j := i; j <= len(stream); j++ {
			f := New(0)
			var got []string
			for _, chunk := range []string{stream[:i], stream[i:j], stream[j:]} {
				got = append(got, collect(f, chunk)...)
			}
			if !slices.Equal(got, want) {
				t.Fatalf("cuts (%d,%d): got %q, want %q", i, j, got, want)
			}
		}
	}
}

func TestFeed_ByteAtATime(t *testing.T) {
	stream := "U\nF\nheading 270\n"
	f := New(0)
	var got []string
	for i := range len(stream) {
		got = append(got, collect(f, stream[i:i+1])...)
	}
	if want := reference(stream); !slices.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFeed_EarlyStopKeepsRemainder(t *testing.T) {
	f := New(0)
	for msg := range f.Feed([]byte("one\ntwo\nthree\n")) {
		if msg != "one" {
			t.Fatalf("first message = %q", msg)
		}
		break
	}

	got := collect(f, "")
	if !slices.Equal(got, []string{"two", "three"}) {
		t.Errorf("remainder = %q", got)
	}
}

func TestFeed_Overflow(t *testing.T) {
	f := New(8)
	var dropped int
	f.OnOverflow = func(n int) { dropped += n }

	if got := collect(f, "0123456789"); len(got) != 0 {
		t.Fatalf("unexpected messages %q", got)
	}
	if dropped != 10 {
		t.Errorf("dropped = %d, want 10", dropped)
	}
	if f.Buffered() != 0 {
		t.Errorf("Buffered() = %d after overflow", f.Buffered())
	}

	// The rest of the oversized line is dropped; the next line is not.
	got := collect(f, "tail\nOK\n")
	if !slices.Equal(got, []string{"OK"}) {
		t.Errorf("got %q, want only OK", got)
	}
	if dropped != 10 {
		t.Errorf("dropped = %d, want 10", dropped)
	}
}

func TestFeed_OverflowDiscardsAcrossChunks(t *testing.T) {
	f := New(4)
	overflows := 0
	f.OnOverflow = func(int) { overflows++ }

	for _, chunk := range []string{"TEMP=", "99999", "9999", "5", "\nT", "EMP=21\n"} {
		if got := collect(f, chunk); len(got) > 0 && !slices.Equal(got, []string{"TEMP=21"}) {
			t.Fatalf("chunk %q yielded %q", chunk, got)
		}
	}
	if overflows != 1 {
		t.Errorf("overflows = %d, want 1 per oversized line", overflows)
	}
	if f.Buffered() != 0 {
		t.Errorf("Buffered() = %d", f.Buffered())
	}
}

func TestFeed_ResetEndsDiscard(t *testing.T) {
	f := New(4)
	collect(f, "0123456789")
	f.Reset()
	if got := collect(f, "OK\n"); !slices.Equal(got, []string{"OK"}) {
		t.Errorf("got %q after Reset", got)
	}
}

func TestFeed_EarlyStopStillCaps(t *testing.T) {
	f := New(8)
	var dropped int
	f.OnOverflow = func(n int) { dropped += n }

	for range f.Feed([]byte("one\ntwo\n0123456789")) {
		break
	}
	if dropped != 10 {
		t.Errorf("dropped = %d, want the oversized tail only", dropped)
	}
	got := collect(f, "tail\nOK\n")
	if !slices.Equal(got, []string{"two", "OK"}) {
		t.Errorf("got %q, want the pending line then OK", got)
	}
}

func TestFeed_CompleteLinesNeverOverflow(t *testing.T) {
	f := New(4)
	f.OnOverflow = func(int) { t.Error("overflow on complete lines") }

	got := collect(f, "longer than four\nok\n")
	if !slices.Equal(got, []string{"longer than four", "ok"}) {
		t.Errorf("got %q", got)
	}
}

func TestReset(t *testing.T) {
	f := New(0)
	collect(f, "stale")
	f.Reset()
	if got := collect(f, "fresh\n"); !slices.Equal(got, []string{"fresh"}) {
		t.Errorf("got %q", got)
	}
}
