package archive

import "fmt"

// Options bounds the work the codec accepts for a single archive.
type Options struct {
	// MaxEntries rejects archives with more records than this.
	//
	// Default: 10000
	MaxEntries int

	// MaxExpandedSize rejects archives whose entries inflate to more than
	// this many bytes in total.
	//
	// Default: 512MB
	MaxExpandedSize int64

	// BufferSize is the initial capacity of pooled output buffers.
	//
	// Default: 1MB
	BufferSize int
}

// Returns the recommended codec limits.
func DefaultOptions() Options {
	return Options{
		MaxEntries:      10_000,
		MaxExpandedSize: 512 << 20,
		BufferSize:      1 << 20,
	}
}

// Checks that every limit is positive.
func Validate(opts Options) error {
	if opts.MaxEntries <= 0 {
		return fmt.Errorf("max entries must be positive, got %d", opts.MaxEntries)
	}
	if opts.MaxExpandedSize <= 0 {
		return fmt.Errorf("max expanded size must be positive, got %d", opts.MaxExpandedSize)
	}
	if opts.BufferSize <= 0 {
		return fmt.Errorf("buffer size must be positive, got %d", opts.BufferSize)
	}
	return nil
}
