// Package compression encodes stored artifacts with zstd.
package compression

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Encoder levels accepted by Options.Level.
const (
	FastestLevel = uint8(zstd.SpeedFastest)
	DefaultLevel = uint8(zstd.SpeedDefault)
	BestLevel    = uint8(zstd.SpeedBestCompression)
)

// Artifacts smaller than this are stored raw.
const minSize = 512

// Options configures the zstd compressor.
type Options struct {
	// Level is the encoder level, from FastestLevel to BestLevel.
	//
	// Default: DefaultLevel
	Level uint8

	// Concurrency bounds how many artifacts are encoded or decoded at once.
	//
	// Default: 1
	Concurrency int
}

func DefaultOptions() Options {
	return Options{Level: DefaultLevel, Concurrency: 1}
}

func (o Options) Validate() error {
	if o.Level < FastestLevel || o.Level > BestLevel {
		return fmt.Errorf("zstd level must be between %d and %d, got %d", FastestLevel, BestLevel, o.Level)
	}
	if o.Concurrency < 0 {
		return fmt.Errorf("zstd concurrency must not be negative, got %d", o.Concurrency)
	}
	return nil
}

// Zstd implements ports.Compressor with stateless EncodeAll/DecodeAll calls.
type Zstd struct {
	enc  *zstd.Encoder
	dec  *zstd.Decoder
	once sync.Once
}

func NewZstd(opts Options) (*Zstd, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	workers := max(1, opts.Concurrency)

	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderLevel(zstd.EncoderLevel(opts.Level)),
		zstd.WithEncoderConcurrency(workers),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create zstd encoder: %w", err)
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(workers))
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("cannot create zstd decoder: %w", err)
	}

	return &Zstd{enc: enc, dec: dec}, nil
}

func (z *Zstd) Compress(data []byte) ([]byte, bool, error) {
	if len(data) < minSize {
		return data, false, nil
	}

	out := z.enc.EncodeAll(data, make([]byte, 0, len(data)/2))
	if len(out) >= len(data) {
		return data, false, nil
	}
	return out, true, nil
}

func (z *Zstd) Decompress(data []byte) ([]byte, error) {
	out, err := z.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("corrupt zstd frame: %w", err)
	}
	return out, nil
}

// Close releases the encoder and decoder. Further calls are no-ops.
func (z *Zstd) Close() error {
	var err error
	z.once.Do(func() {
		err = z.enc.Close()
		z.dec.Close()
	})
	return err
}
