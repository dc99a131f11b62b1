package domain

// ImageFormat names an encoding the image optimizer can produce.
type ImageFormat string

const (
	// FormatPreserve keeps the source encoding.
	FormatPreserve ImageFormat = ""
	FormatJPEG     ImageFormat = "jpeg"
	FormatPNG      ImageFormat = "png"
)

// SubsetPolicy controls font subsetting.
type SubsetPolicy string

const (
	// SubsetNone keeps every glyph.
	SubsetNone SubsetPolicy = "none"

	// SubsetUsedOnly keeps only the glyphs referenced by the book's text.
	SubsetUsedOnly SubsetPolicy = "used-only"
)

// TextOptions configures the text optimizer.
type TextOptions struct {
	// StripComments removes <!-- --> comments from markup and /* */ comments
	// from stylesheets.
	StripComments bool

	// CollapseWhitespace reduces whitespace runs to a single space and drops
	// line-broken indentation between markup tags.
	CollapseWhitespace bool

	// MinifyMarkup additionally drops all whitespace between tags and around
	// stylesheet punctuation.
	MinifyMarkup bool
}

// ImageOptions configures the image optimizer.
type ImageOptions struct {
	// Quality is the lossy encoder quality in [1, 100].
	Quality int

	// MaxWidth and MaxHeight bound the output dimensions. Images larger than
	// the box are scaled down to fit inside it preserving aspect ratio;
	// smaller images are never enlarged. Zero disables resizing.
	MaxWidth  int
	MaxHeight int

	// ConvertTo forces a target encoding when it differs from the source.
	// Sources with transparency are never converted to formats without it.
	ConvertTo ImageFormat

	// PreserveMetadata carries EXIF and ICC segments into the re-encoded image.
	PreserveMetadata bool
}

// FontOptions configures the font optimizer.
type FontOptions struct {
	Subset SubsetPolicy
}

// Profile is the immutable parameter set for one (category, level) pair.
// Exactly one of Text, Image or Font is set for the matching category;
// CategoryOther carries none.
type Profile struct {
	Category Category
	Level    Level

	// DeflateLevel is the container compression applied when the entry is
	// written back. Zero stores the entry uncompressed.
	DeflateLevel int

	Text  *TextOptions
	Image *ImageOptions
	Font  *FontOptions
}
