package util

import "sync"

// DefaultChunkSize is the standard relay chunk size.  Serial links are
// slow relative to TCP, so a modest chunk keeps per-direction latency
// low without burning syscalls.
const DefaultChunkSize = 1024

// MaxChunkSize caps a configured chunk size.  Matches typical OS serial
// driver buffer sizes; anything larger just sits in kernel queues.
const MaxChunkSize = 64 * 1024

// BufPool provides reusable byte buffers for the relay copy loops,
// reducing GC pressure on the hot path.
var BufPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, MaxChunkSize)
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
