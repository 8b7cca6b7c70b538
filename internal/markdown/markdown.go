// Package markdown renders content bodies to HTML with goldmark and derives
// the table of contents and excerpt from the parsed document.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/starford/codeboost/internal/models"
)

// DefaultExcerptLength is the excerpt size in runes.
const DefaultExcerptLength = 140

// Document is the rendered form of a markdown body.
type Document struct {
	HTML    string
	TOC     []models.Heading
	Excerpt string
}

// Renderer converts markdown into Documents. It is safe for concurrent use.
type Renderer struct {
	md            goldmark.Markdown
	excerptLength int
}

// NewRenderer builds a renderer with GFM enabled and raw HTML passed through.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		excerptLength: DefaultExcerptLength,
	}
}

// Render parses source once, assigns table-of-contents anchors, and renders HTML.
func (r *Renderer) Render(source []byte) (*Document, error) {
	doc := r.md.Parser().Parse(text.NewReader(source))
	toc := TableOfContents(doc, source)

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, source, doc); err != nil {
		return nil, fmt.Errorf("markdown: render: %w", err)
	}

	return &Document{
		HTML:    buf.String(),
		TOC:     toc,
		Excerpt: Excerpt(doc, source, r.excerptLength),
	}, nil
}

// TableOfContents gives every level-2 heading the id "header-N" (1-based,
// document order) and returns the headings in that order.
func TableOfContents(doc ast.Node, source []byte) []models.Heading {
	var out []models.Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != 2 {
			return ast.WalkContinue, nil
		}
		id := fmt.Sprintf("header-%d", len(out)+1)
		h.SetAttributeString("id", []byte(id))
		out = append(out, models.Heading{ID: id, Text: string(h.Text(source))})
		return ast.WalkSkipChildren, nil
	})
	return out
}

// Excerpt returns the first limit runes of the document's prose, with code
// and raw HTML skipped and whitespace collapsed.
func Excerpt(doc ast.Node, source []byte, limit int) string {
	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				b.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})

	plain := strings.Join(strings.Fields(b.String()), " ")
	runes := []rune(plain)
	if limit <= 0 || len(runes) <= limit {
		return plain
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
