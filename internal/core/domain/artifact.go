package domain

import (
	"path"
	"strings"
	"time"
)

// Artifact describes a stored pipeline output waiting to be fetched.
type Artifact struct {
	// Key addresses the artifact in the store. It doubles as the download
	// file name and always ends in ".epub".
	Key string `json:"key"`

	// Filename is the name offered to the client, "<base>-compressed.epub".
	Filename string `json:"filename"`

	// Size is the uncompressed artifact size.
	Size int64 `json:"size"`

	// Checksum and Algorithm verify the bytes when they are read back.
	Checksum  uint64            `json:"checksum"`
	Algorithm ChecksumAlgorithm `json:"algorithm"`

	// Compressed marks artifacts stored with at-rest compression.
	Compressed bool `json:"compressed"`

	CreatedAt time.Time `json:"createdAt"`
}

// ArtifactKey derives the artifact key for a task id.
func ArtifactKey(id string) string {
	return id + ".epub"
}

// OutputName derives the download name from the uploaded file name:
// "book.epub" becomes "book-compressed.epub".
func OutputName(original string) string {
	base := path.Base(strings.ReplaceAll(original, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "book"
	}
	return base + "-compressed.epub"
}
