package domain

import (
	"fmt"
	"strings"
)

// Category is the semantic class of an archive entry, derived from its name.
// It decides which optimization strategy and which profile apply.
type Category uint8

const (
	// CategoryOther is the catch-all for entries with no dedicated strategy,
	// including the extension-less mimetype record.
	CategoryOther Category = iota

	// CategoryText covers markup, stylesheets, package documents and scripts.
	CategoryText

	// CategoryImage covers raster and vector images.
	CategoryImage

	// CategoryFont covers embedded font files.
	CategoryFont
)

// Categories lists every category the classifier can return.
// The profile table must resolve all of them at every level.
var Categories = []Category{CategoryText, CategoryImage, CategoryFont, CategoryOther}

func (c Category) String() string {
	switch c {
	case CategoryText:
		return "text"
	case CategoryImage:
		return "image"
	case CategoryFont:
		return "font"
	default:
		return "other"
	}
}

// TextKind refines CategoryText into the syntaxes the text optimizer understands.
type TextKind uint8

const (
	// TextPlain has no comment syntax; whitespace is content.
	TextPlain TextKind = iota

	// TextMarkup is HTML/XHTML/XML family markup, including package and
	// navigation documents. Comments use <!-- -->.
	TextMarkup

	// TextStylesheet is CSS. Comments use /* */.
	TextStylesheet

	// TextScript is JavaScript. Left untouched because line comments and
	// line breaks carry meaning.
	TextScript
)

func (k TextKind) String() string {
	switch k {
	case TextMarkup:
		return "markup"
	case TextStylesheet:
		return "stylesheet"
	case TextScript:
		return "script"
	default:
		return "plain"
	}
}

// Level is the caller-selected compression aggressiveness.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"

	// DefaultLevel is used when the caller omits the level.
	DefaultLevel = LevelMedium
)

// Levels lists every accepted level in increasing aggressiveness.
var Levels = []Level{LevelLow, LevelMedium, LevelHigh}

// ParseLevel converts user input into a Level. Empty input yields DefaultLevel.
func ParseLevel(s string) (Level, error) {
	switch lvl := Level(strings.ToLower(strings.TrimSpace(s))); lvl {
	case "":
		return DefaultLevel, nil
	case LevelLow, LevelMedium, LevelHigh:
		return lvl, nil
	default:
		return "", fmt.Errorf("unknown compression level %q", s)
	}
}

func (l Level) Valid() bool {
	return l == LevelLow || l == LevelMedium || l == LevelHigh
}

func (l Level) String() string {
	return string(l)
}
