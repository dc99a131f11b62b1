package archive

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
)

// deflaters keeps one pool of flate writers per compression level.
type deflaters struct {
	pools [flate.BestCompression + 1]sync.Pool
}

func newDeflaters() *deflaters {
	d := &deflaters{}
	for level := flate.BestSpeed; level <= flate.BestCompression; level++ {
		d.pools[level].New = func() any {
			w, _ := flate.NewWriter(io.Discard, level)
			return w
		}
	}
	return d
}

// compress deflates src at level into dst.
func (d *deflaters) compress(dst *bytes.Buffer, src []byte, level int) error {
	pool := &d.pools[level]
	w := pool.Get().(*flate.Writer)
	defer pool.Put(w)

	w.Reset(dst)
	if _, err := w.Write(src); err != nil {
		return err
	}
	return w.Close()
}
