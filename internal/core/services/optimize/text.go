package optimize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/internal/core/services/classify"
)

var (
	// Regions of markup that are copied verbatim. Comments are listed first
	// so a comment wrapping a <pre> is treated as a comment.
	markupTokens = regexp.MustCompile(
		`(?is)<!--.*?-->|<pre\b.*?</pre\s*>|<textarea\b.*?</textarea\s*>|<script\b.*?</script\s*>|<style\b.*?</style\s*>|<!\[CDATA\[.*?\]\]>`,
	)

	// Strings and comments of a stylesheet.
	cssTokens = regexp.MustCompile(`"(?:[^"\\\n]|\\.)*"|'(?:[^'\\\n]|\\.)*'|/\*[\s\S]*?\*/`)

	whitespaceRun   = regexp.MustCompile(`\s+`)
	indentationGap  = regexp.MustCompile(`>[ \t]*[\r\n]\s*<`)
	interTagGap     = regexp.MustCompile(`>\s+<`)
	cssPunctuation  = regexp.MustCompile(`\s*([{};,>])\s*`)
	cssTrailingSemi = regexp.MustCompile(`;}`)
)

func (o *Optimizer) optimizeText(name string, data []byte, opts *domain.TextOptions) ([]byte, error) {
	if opts == nil || (!opts.StripComments && !opts.CollapseWhitespace && !opts.MinifyMarkup) {
		return data, nil
	}

	kind := classify.TextKind(name)
	if kind == domain.TextScript || kind == domain.TextPlain {
		return data, nil
	}

	if !utf8.Valid(data) {
		return fail(name, domain.CategoryText, "invalid_utf8", data, nil)
	}

	src := string(data)
	var out string
	switch kind {
	case domain.TextMarkup:
		out = minifyMarkup(src, opts)
	case domain.TextStylesheet:
		out = minifyStylesheet(src, opts)
	}

	if len(out) >= len(src) {
		return data, nil
	}
	return []byte(out), nil
}

func minifyMarkup(src string, opts *domain.TextOptions) string {
	if opts.StripComments {
		src = rewrite(src, markupTokens, dropComment("<!--"), keep)
	}

	if !opts.CollapseWhitespace && !opts.MinifyMarkup {
		return src
	}

	return rewrite(src, markupTokens, keep, func(s string) string {
		if opts.CollapseWhitespace {
			s = indentationGap.ReplaceAllString(s, "><")
			s = whitespaceRun.ReplaceAllString(s, " ")
		}
		if opts.MinifyMarkup {
			s = interTagGap.ReplaceAllString(s, "><")
		}
		return s
	})
}

func minifyStylesheet(src string, opts *domain.TextOptions) string {
	if opts.StripComments {
		src = rewrite(src, cssTokens, dropComment("/*"), keep)
	}

	if !opts.CollapseWhitespace && !opts.MinifyMarkup {
		return src
	}

	out := rewrite(src, cssTokens, keep, func(s string) string {
		if opts.CollapseWhitespace {
			s = whitespaceRun.ReplaceAllString(s, " ")
		}
		if opts.MinifyMarkup {
			s = cssPunctuation.ReplaceAllString(s, "$1")
			s = cssTrailingSemi.ReplaceAllString(s, "}")
		}
		return s
	})
	return strings.TrimSpace(out)
}

// rewrite walks src, passing every match of tokens to onToken and the text
// between matches to onText, and concatenates the results.
func rewrite(src string, tokens *regexp.Regexp, onToken, onText func(string) string) string {
	var b strings.Builder
	b.Grow(len(src))

	last := 0
	for _, m := range tokens.FindAllStringIndex(src, -1) {
		b.WriteString(onText(src[last:m[0]]))
		b.WriteString(onToken(src[m[0]:m[1]]))
		last = m[1]
	}
	b.WriteString(onText(src[last:]))

	return b.String()
}

func keep(s string) string { return s }

func dropComment(prefix string) func(string) string {
	return func(tok string) string {
		if strings.HasPrefix(tok, prefix) {
			return ""
		}
		return tok
	}
}
