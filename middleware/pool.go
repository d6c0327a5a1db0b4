package middleware

import (
	"bytes"
	"sync"
)

// Buffer sizes for body reads
const (
	bodyBufferCap    = 4 << 10
	maxPooledBufSize = 1 << 20
)

var bodyBufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, bodyBufferCap))
	},
}

// getBuffer retrieves an empty buffer from the pool.
func getBuffer() *bytes.Buffer {
	buf := bodyBufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// putBuffer returns a buffer to the pool. Oversized buffers are dropped.
func putBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledBufSize {
		return
	}
	bodyBufferPool.Put(buf)
}
