// Package checksum fingerprints stored artifacts.
package checksum

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/internal/core/ports"
)

var ieeeTable = crc32.MakeTable(crc32.IEEE)

type crc32Sum struct{}

func (crc32Sum) Sum(data []byte) uint64 {
	return uint64(crc32.Checksum(data, ieeeTable))
}

func (crc32Sum) Algorithm() domain.ChecksumAlgorithm {
	return domain.CRC32IEEE
}

type sha256Sum struct{}

func (sha256Sum) Sum(data []byte) uint64 {
	digest := sha256.Sum256(data)
	return binary.BigEndian.Uint64(digest[:8])
}

func (sha256Sum) Algorithm() domain.ChecksumAlgorithm {
	return domain.SHA256
}

// New returns the checksummer for algorithm.
func New(algorithm domain.ChecksumAlgorithm) (ports.Checksummer, error) {
	switch algorithm {
	case domain.CRC32IEEE:
		return crc32Sum{}, nil
	case domain.SHA256:
		return sha256Sum{}, nil
	default:
		return nil, fmt.Errorf("unsupported checksum algorithm %q", algorithm)
	}
}

// MustNew is New for algorithms known at compile time.
func MustNew(algorithm domain.ChecksumAlgorithm) ports.Checksummer {
	c, err := New(algorithm)
	if err != nil {
		panic(err)
	}
	return c
}
