package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/internal/core/services/profile"
	"github.com/iamNilotpal/epubpress/pkg/errors"
	"github.com/iamNilotpal/epubpress/pkg/logger"
)

func textProfile(t *testing.T, level domain.Level) domain.Profile {
	t.Helper()
	p, err := profile.Default().Lookup(domain.CategoryText, level)
	require.NoError(t, err)
	return p
}

func TestOptimizeMarkup(t *testing.T) {
	const chapter = "<?xml version=\"1.0\"?>\n<html>\n  <!-- generated -->\n  <body>\n    <p>Hello,   world</p>\n" +
		"    <pre>  keep\n   this  </pre>\n    <p>a</p> <p>b</p>\n  </body>\n</html>\n"

	tests := []struct {
		name  string
		level domain.Level
		want  string
	}{
		{
			name:  "low keeps everything",
			level: domain.LevelLow,
			want:  chapter,
		},
		{
			name:  "medium strips comments and indentation",
			level: domain.LevelMedium,
			want: "<?xml version=\"1.0\"?><html><body><p>Hello, world</p> " +
				"<pre>  keep\n   this  </pre> <p>a</p> <p>b</p></body></html> ",
		},
		{
			name:  "high also drops inter-tag spaces",
			level: domain.LevelHigh,
			want: "<?xml version=\"1.0\"?><html><body><p>Hello, world</p> " +
				"<pre>  keep\n   this  </pre> <p>a</p><p>b</p></body></html> ",
		},
	}

	opt := New(logger.Nop(), Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := []byte(chapter)
			out, err := opt.Optimize("OEBPS/ch1.xhtml", in, textProfile(t, tt.level))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
			assert.Equal(t, chapter, string(in), "input must not be mutated")
		})
	}
}

func TestOptimizeMarkupKeepsScriptAndCDATA(t *testing.T) {
	const src = "<html>\n  <script>\n  // keep <!-- this -->\n  var a  =  1;\n  </script>\n" +
		"  <![CDATA[  raw   text  ]]>\n</html>"

	out, err := New(logger.Nop(), Options{}).Optimize("index.html", []byte(src), textProfile(t, domain.LevelHigh))
	require.NoError(t, err)

	assert.Contains(t, string(out), "<script>\n  // keep <!-- this -->\n  var a  =  1;\n  </script>")
	assert.Contains(t, string(out), "<![CDATA[  raw   text  ]]>")
}

func TestOptimizeStylesheet(t *testing.T) {
	const css = "/* theme */\nbody {\n  margin : 0;\n  font-family: \"A  /* not a comment */\", serif;\n}\n\np > em { color: red; }\n"

	opt := New(logger.Nop(), Options{})

	medium, err := opt.Optimize("style.css", []byte(css), textProfile(t, domain.LevelMedium))
	require.NoError(t, err)
	assert.Equal(t, "body { margin : 0; font-family: \"A  /* not a comment */\", serif; } p > em { color: red; }", string(medium))

	high, err := opt.Optimize("style.css", []byte(css), textProfile(t, domain.LevelHigh))
	require.NoError(t, err)
	assert.Equal(t, "body{margin : 0;font-family: \"A  /* not a comment */\",serif}p>em{color: red}", string(high))
}

func TestOptimizeTextPassThrough(t *testing.T) {
	opt := New(logger.Nop(), Options{})
	p := textProfile(t, domain.LevelHigh)

	for _, name := range []string{"reader.js", "notes.txt"} {
		t.Run(name, func(t *testing.T) {
			in := []byte("line one  \n// two\n")
			out, err := opt.Optimize(name, in, p)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestOptimizeTextInvalidUTF8(t *testing.T) {
	in := []byte{'<', 'p', '>', 0xff, 0xfe, '<', '/', 'p', '>'}

	out, err := New(logger.Nop(), Options{}).Optimize("bad.xhtml", in, textProfile(t, domain.LevelHigh))
	require.Error(t, err)

	oe := errors.AsOptimizationError(err)
	require.NotNil(t, oe)
	assert.Equal(t, "invalid_utf8", oe.Reason)
	assert.Equal(t, "bad.xhtml", oe.Entry)
	assert.Equal(t, in, out)
}
