package pipeline

const (
	DefaultMaxInputSize = 4 << 20 // 4MB

	// sniffWindow is how far into the input the mimetype record must start.
	sniffWindow = 100
)

// Options bounds the input a pipeline accepts.
type Options struct {
	// MaxInputSize is the largest archive, in bytes, accepted for processing.
	//
	// Default: 4MB
	MaxInputSize int64
}

// DefaultOptions returns the limits used for single uploads.
func DefaultOptions() Options {
	return Options{MaxInputSize: DefaultMaxInputSize}
}
