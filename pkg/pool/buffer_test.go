package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetReturnsEmptyBuffer(t *testing.T) {
	bp := NewBufferPool(64)

	buf := bp.Get()
	buf.WriteString("chapter one")
	bp.Put(buf)

	assert.Zero(t, bp.Get().Len())
}

func TestDetachCopies(t *testing.T) {
	bp := NewBufferPool(64)

	buf := bp.Get()
	buf.WriteString("mimetype")
	out := bp.Detach(buf)

	next := bp.Get()
	next.WriteString("XXXXXXXX")
	assert.Equal(t, []byte("mimetype"), out)
}

func TestPutDropsOversizedBuffers(t *testing.T) {
	bp := NewBufferPool(16)

	big := bytes.NewBuffer(make([]byte, 0, 1024))
	bp.Put(big)

	assert.LessOrEqual(t, bp.Get().Cap(), 64)
}
