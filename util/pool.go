package util

import "sync"

// ReadBufSize is the size of one inbound read.  SPP modules deliver a
// few dozen bytes per RFCOMM frame, so 1 KiB is never the bottleneck.
const ReadBufSize = 1024

// BufPool provides reusable read buffers so a reconnecting session
// does not allocate a fresh buffer per link.
var BufPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, ReadBufSize)
		return &buf
	},
}

// GetBuf retrieves a buffer from the pool.  Callers must return it
// with [PutBuf] when finished.
func GetBuf() *[]byte {
	return BufPool.Get().(*[]byte)
}

// PutBuf returns a buffer to the pool for reuse.
func PutBuf(buf *[]byte) {
	if buf == nil {
		return
	}
	BufPool.Put(buf)
}
