// Package framer splits an inbound byte stream into newline-terminated
// text messages.
package framer

import (
	"bytes"
	"iter"
	"strings"
)

// Delimiter terminates every inbound message.
const Delimiter = '\n'

// Framer accumulates bytes until a Delimiter arrives.  It is owned by a
// single reader goroutine and is not safe for concurrent use.
type Framer struct {
	buf []byte

	// discarding is set after an overflow: the rest of the oversized
	// line, up to and including its delimiter, is dropped unseen.
	discarding bool

	// MaxBuffered caps the unterminated tail.  When a Feed leaves more
	// than MaxBuffered bytes without a delimiter the whole line is
	// discarded through its delimiter and OnOverflow is called with the
	// number of bytes dropped from the buffer.  Zero means unbounded.
	MaxBuffered int
	OnOverflow  func(dropped int)
}

// New returns a Framer with the given cap (0 = unbounded).
func New(maxBuffered int) *Framer {
	return &Framer{MaxBuffered: maxBuffered}
}

// Feed appends chunk and returns the messages it completes.  Each
// message is the text before a delimiter with surrounding whitespace
// trimmed; an all-whitespace line yields "".
//
// The sequence is lazy: bytes are consumed from the buffer only as the
// caller ranges over it.  Stopping early leaves the remaining complete
// lines buffered, and they are yielded first by the next Feed.
func (f *Framer) Feed(chunk []byte) iter.Seq[string] {
	if f.discarding {
		i := bytes.IndexByte(chunk, Delimiter)
		if i < 0 {
			chunk = nil
		} else {
			chunk = chunk[i+1:]
			f.discarding = false
		}
	}
	f.buf = append(f.buf, chunk...)
	return func(yield func(string) bool) {
		off := 0
		for {
			i := bytes.IndexByte(f.buf[off:], Delimiter)
			if i < 0 {
				break
			}
			msg := strings.TrimSpace(string(f.buf[off : off+i]))
			off += i + 1
			if !yield(msg) {
				f.consume(off)
				f.enforceCap()
				return
			}
		}
		f.consume(off)
		f.enforceCap()
	}
}

// Buffered returns the number of bytes waiting for a delimiter.
func (f *Framer) Buffered() int { return len(f.buf) }

// Reset drops any buffered bytes and ends a discard in progress.
func (f *Framer) Reset() {
	f.buf = f.buf[:0]
	f.discarding = false
}

// consume drops the first n bytes, keeping the backing array.
func (f *Framer) consume(n int) {
	if n == 0 {
		return
	}
	f.buf = f.buf[:copy(f.buf, f.buf[n:])]
}

// enforceCap drops an oversized unterminated tail.  Complete lines still
// waiting after an early stop are kept.
func (f *Framer) enforceCap() {
	if f.MaxBuffered <= 0 {
		return
	}
	start := bytes.LastIndexByte(f.buf, Delimiter) + 1
	dropped := len(f.buf) - start
	if dropped <= f.MaxBuffered {
		return
	}
	f.buf = f.buf[:start]
	f.discarding = true
	if f.OnOverflow != nil {
		f.OnOverflow(dropped)
	}
}
