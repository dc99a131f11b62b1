package ports

import "github.com/iamNilotpal/epubpress/internal/core/domain"

// ArchiveCodec reads and writes ZIP containers.
type ArchiveCodec interface {
	// Open decodes every entry of the archive, in archive order.
	// Unreadable archives fail with a corrupt-archive error.
	Open(data []byte) ([]*domain.Entry, error)

	// Pack serializes the entries in the given order. The EPUB mimetype
	// record, when present, must be first; it is always stored uncompressed.
	Pack(entries []domain.PackEntry) ([]byte, error)
}
