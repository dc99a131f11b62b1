package domain

// BatchFile is one input of a batch run.
type BatchFile struct {
	Name string
	Data []byte
}

// BatchItemStatus is the outcome of one batch input.
type BatchItemStatus string

const (
	BatchSuccess BatchItemStatus = "success"
	BatchError   BatchItemStatus = "error"
)

// BatchItem reports the outcome for the input at the same index.
type BatchItem struct {
	OriginalName     string          `json:"originalName" yaml:"originalName"`
	CompressedName   string          `json:"compressedName,omitempty" yaml:"compressedName,omitempty"`
	Status           BatchItemStatus `json:"status" yaml:"status"`
	OriginalSize     int64           `json:"originalSize" yaml:"originalSize"`
	CompressedSize   int64           `json:"compressedSize,omitempty" yaml:"compressedSize,omitempty"`
	CompressionRatio int             `json:"compressionRatio" yaml:"compressionRatio"`
	BytesSaved       int64           `json:"bytesSaved" yaml:"bytesSaved"`
	Artifact         string          `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	Error            *TaskError      `json:"error,omitempty" yaml:"error,omitempty"`
}

// BatchResult collects every item in input order.
type BatchResult struct {
	BatchID      string      `json:"batchId" yaml:"batchId"`
	Level        Level       `json:"level" yaml:"level"`
	Items        []BatchItem `json:"results" yaml:"results"`
	SuccessCount int         `json:"successCount" yaml:"successCount"`
	ErrorCount   int         `json:"errorCount" yaml:"errorCount"`
}
