// Package pool recycles the scratch buffers used while packing archives and
// encoding images.
package pool

import (
	"bytes"
	"sync"
)

// BufferPool hands out empty buffers. Buffers that grew past four times
// the initial size are dropped on Put so one huge entry does not stay
// pinned in the pool.
type BufferPool struct {
	initial   int
	maxRetain int
	pool      sync.Pool
}

func NewBufferPool(initial int) *BufferPool {
	bp := &BufferPool{initial: initial, maxRetain: 4 * initial}
	bp.pool.New = func() any {
		return bytes.NewBuffer(make([]byte, 0, bp.initial))
	}
	return bp
}

// Get returns an empty buffer.
func (bp *BufferPool) Get() *bytes.Buffer {
	buf := bp.pool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// Put recycles buf. buf must not be used afterwards.
func (bp *BufferPool) Put(buf *bytes.Buffer) {
	if buf.Cap() > bp.maxRetain {
		return
	}
	bp.pool.Put(buf)
}

// Detach copies the contents of buf and recycles it.
func (bp *BufferPool) Detach(buf *bytes.Buffer) []byte {
	out := bytes.Clone(buf.Bytes())
	bp.Put(buf)
	return out
}
