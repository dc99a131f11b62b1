package ports

import "github.com/iamNilotpal/epubpress/internal/core/domain"

// Checksummer fingerprints artifact bytes so damage on disk is noticed
// when they are read back.
type Checksummer interface {
	Sum(data []byte) uint64

	// Algorithm is recorded next to each sum. Sums are only compared when
	// the recorded algorithm matches.
	Algorithm() domain.ChecksumAlgorithm
}
