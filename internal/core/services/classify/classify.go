// Package classify maps archive entry names to the category that selects
// their optimization strategy.
package classify

import (
	"path"
	"strings"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
)

type kind struct {
	category domain.Category
	text     domain.TextKind
}

// extensions is the single source of truth for classification.
var extensions = map[string]kind{
	".html":  {domain.CategoryText, domain.TextMarkup},
	".xhtml": {domain.CategoryText, domain.TextMarkup},
	".htm":   {domain.CategoryText, domain.TextMarkup},
	".xml":   {domain.CategoryText, domain.TextMarkup},
	".opf":   {domain.CategoryText, domain.TextMarkup},
	".ncx":   {domain.CategoryText, domain.TextMarkup},
	".css":   {domain.CategoryText, domain.TextStylesheet},
	".js":    {domain.CategoryText, domain.TextScript},
	".txt":   {domain.CategoryText, domain.TextPlain},

	".jpg":  {category: domain.CategoryImage},
	".jpeg": {category: domain.CategoryImage},
	".png":  {category: domain.CategoryImage},
	".gif":  {category: domain.CategoryImage},
	".svg":  {category: domain.CategoryImage},
	".webp": {category: domain.CategoryImage},

	".ttf":   {category: domain.CategoryFont},
	".otf":   {category: domain.CategoryFont},
	".woff":  {category: domain.CategoryFont},
	".woff2": {category: domain.CategoryFont},
}

// Classify returns the category of an entry name. Matching is on the
// extension only and is case-insensitive; unknown or missing extensions
// yield CategoryOther.
func Classify(name string) domain.Category {
	return lookup(name).category
}

// TextKind returns the text syntax of an entry name. It is only meaningful
// when Classify returns CategoryText.
func TextKind(name string) domain.TextKind {
	return lookup(name).text
}

// Extensions lists the known extensions of a category.
func Extensions(category domain.Category) []string {
	var out []string
	for ext, k := range extensions {
		if k.category == category {
			out = append(out, ext)
		}
	}
	return out
}

func lookup(name string) kind {
	ext := strings.ToLower(path.Ext(name))
	if k, ok := extensions[ext]; ok {
		return k
	}
	return kind{category: domain.CategoryOther}
}
