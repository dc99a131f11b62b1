package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		entry    string
		category domain.Category
		text     domain.TextKind
	}{
		{"xhtml chapter", "OEBPS/Text/chapter01.xhtml", domain.CategoryText, domain.TextMarkup},
		{"upper case extension", "OEBPS/Text/CHAPTER.HTML", domain.CategoryText, domain.TextMarkup},
		{"package document", "OEBPS/content.opf", domain.CategoryText, domain.TextMarkup},
		{"ncx", "toc.ncx", domain.CategoryText, domain.TextMarkup},
		{"stylesheet", "Styles/style.CSS", domain.CategoryText, domain.TextStylesheet},
		{"script", "js/reader.js", domain.CategoryText, domain.TextScript},
		{"plain text", "README.txt", domain.CategoryText, domain.TextPlain},
		{"jpeg", "Images/cover.JPG", domain.CategoryImage, domain.TextPlain},
		{"svg", "Images/logo.svg", domain.CategoryImage, domain.TextPlain},
		{"woff2", "Fonts/serif.woff2", domain.CategoryFont, domain.TextPlain},
		{"mimetype", "mimetype", domain.CategoryOther, domain.TextPlain},
		{"unknown", "META-INF/container.rdf", domain.CategoryOther, domain.TextPlain},
		{"dot in dir only", "a.b/file", domain.CategoryOther, domain.TextPlain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, Classify(tt.entry))
			assert.Equal(t, tt.text, TextKind(tt.entry))
		})
	}
}

func TestExtensions(t *testing.T) {
	assert.ElementsMatch(t, []string{".ttf", ".otf", ".woff", ".woff2"}, Extensions(domain.CategoryFont))
	assert.Empty(t, Extensions(domain.CategoryOther))
}
