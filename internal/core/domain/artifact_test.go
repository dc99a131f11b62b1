package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputName(t *testing.T) {
	tests := map[string]string{
		"moby-dick.epub":    "moby-dick-compressed.epub",
		"dir/sub/Book.EPUB": "Book-compressed.epub",
		`C:\books\war.epub`: "war-compressed.epub",
		"":                  "book-compressed.epub",
		"no-extension":      "no-extension-compressed.epub",
	}
	for in, want := range tests {
		assert.Equal(t, want, OutputName(in), in)
	}
}

func TestArtifactKey(t *testing.T) {
	assert.Equal(t, "3f2a.epub", ArtifactKey("3f2a"))
}
