package web

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

var (
	mdRenderer      goldmark.Markdown
	inlineRenderer  goldmark.Markdown
	htmlSanitizer   *bluemonday.Policy
	inlineSanitizer *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	// Titles are a single paragraph: list, heading and quote markers at the
	// start of a title stay literal text.
	inlineRenderer = goldmark.New(
		goldmark.WithParser(parser.NewParser(
			parser.WithBlockParsers(util.Prioritized(parser.NewParagraphParser(), 1000)),
			parser.WithInlineParsers(parser.DefaultInlineParsers()...),
			parser.WithParagraphTransformers(parser.DefaultParagraphTransformers()...),
		)),
		goldmark.WithExtensions(extension.Strikethrough),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()

	// Titles sit inside a link, so nested anchors and block elements are
	// stripped and only phrasing markup survives.
	inlineSanitizer = bluemonday.NewPolicy()
	inlineSanitizer.AllowElements("code", "em", "strong", "del")
}

// RenderMarkdown converts a markdown string to sanitized HTML.
// Returns empty string for empty input.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}

// RenderInlineMarkdown renders a single line of markdown, such as a review
// request title, to sanitized phrasing HTML with no enclosing paragraph.
func RenderInlineMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := inlineRenderer.Convert([]byte(src), &buf); err != nil {
		return inlineSanitizer.Sanitize(src)
	}

	out := strings.TrimSpace(buf.String())
	out = strings.TrimPrefix(out, "<p>")
	out = strings.TrimSuffix(out, "</p>")

	return inlineSanitizer.Sanitize(out)
}
