// Package content turns author input into what the site stores and shows:
// markdown into sanitised HTML, titles into slugs, HTML into plain text.
package content

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var AllowedTags = []string{
	"p", "br", "hr",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"strong", "em", "b", "i", "u", "s", "mark",
	"ul", "ol", "li", "blockquote",
	"pre", "code",
	"a", "img",
	"table", "thead", "tbody", "tr", "th", "td",
}

var AllowedProtocols = []string{"http", "https", "mailto"}

var (
	md = goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.DefinitionList,
			extension.Footnote,
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithUnsafe(),
		),
	)
	policy = newPolicy()
	tagRe  = regexp.MustCompile(`<[^>]+>`)
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(AllowedTags...)
	p.AllowAttrs("href", "title", "target", "rel").OnElements("a")
	p.AllowAttrs("src", "alt", "title", "width", "height", "loading", "decoding").OnElements("img")
	p.AllowURLSchemes(AllowedProtocols...)
	p.AllowRelativeURLs(true)
	p.RequireParseableURLs(true)
	return p
}

// Markdown renders src and sanitises the result.
func Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return Sanitize(buf.String()), nil
}

// Sanitize keeps only the allowed tags, attributes and URL schemes.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}

// StripTags replaces every tag with a space, unescapes entities and
// collapses whitespace. It never fails.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	s = tagRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}

func Slugify(s string) string {
	return slug.Make(s)
}

// Truncate shortens s to max runes, ending in "..." when cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
