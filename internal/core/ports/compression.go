package ports

// Compressor encodes artifact bytes at rest. Implementations are safe for
// concurrent use.
type Compressor interface {
	// Compress encodes data. ok is false when encoding would not shrink it,
	// in which case data is returned as is and must be stored raw.
	Compress(data []byte) (out []byte, ok bool, err error)

	// Decompress reverses Compress.
	Decompress(data []byte) ([]byte, error)

	Close() error
}
