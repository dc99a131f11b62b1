package domain

import "time"

// Entry is one record of an opened archive. Entries are materialized when
// the archive is opened, optimized at most once, and consumed when the
// archive is packed again. They never outlive a single pipeline run.
type Entry struct {
	// Name is the path of the entry relative to the archive root.
	// Names are unique within an archive and their order is significant.
	Name string

	// IsDir marks directory records. Directories carry no data and are
	// never optimized, but they are preserved and counted for progress.
	IsDir bool

	// Data holds the entry contents. It starts as the decompressed original
	// and is replaced by the optimizer output.
	Data []byte

	// OriginalSize is the uncompressed size as read from the archive.
	OriginalSize int64

	// Modified is the modification time recorded in the archive.
	Modified time.Time

	// ModifiedDate and ModifiedTime hold the MS-DOS timestamp fields as read
	// from the archive so raw writes can reproduce them.
	ModifiedDate uint16
	ModifiedTime uint16
}

// ProcessedSize returns the size of the current entry contents.
func (e *Entry) ProcessedSize() int64 {
	return int64(len(e.Data))
}

// PackEntry is one record handed to the archive writer.
type PackEntry struct {
	Name  string
	IsDir bool
	Data  []byte

	// DeflateLevel selects the container compression for this entry.
	// Zero stores the entry uncompressed; 1-9 deflates at that level.
	DeflateLevel int

	Modified     time.Time
	ModifiedDate uint16
	ModifiedTime uint16
}
