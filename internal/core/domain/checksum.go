package domain

// ChecksumAlgorithm names the fingerprint stored with an artifact.
type ChecksumAlgorithm string

const (
	CRC32IEEE ChecksumAlgorithm = "crc32-ieee"

	// SHA256 digests are truncated to their first 64 bits.
	SHA256 ChecksumAlgorithm = "sha256"
)
