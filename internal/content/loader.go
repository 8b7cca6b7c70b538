// Package content turns raw content files into ContentNodes and loads the
// topic table.
package content

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/codeboost/internal/checksum"
	"github.com/starford/codeboost/internal/markdown"
	"github.com/starford/codeboost/internal/models"
	"github.com/starford/codeboost/internal/parser"
	"github.com/starford/codeboost/internal/slug"
)

// Loader builds ContentNodes from markdown sources.
type Loader struct {
	stripPrefix int
	md          *markdown.Renderer
}

// NewLoader returns a Loader that strips stripPrefix characters from each
// file path when deriving slugs.
func NewLoader(stripPrefix int, md *markdown.Renderer) *Loader {
	if md == nil {
		md = markdown.NewRenderer()
	}
	return &Loader{stripPrefix: stripPrefix, md: md}
}

// Load parses and renders one file. path is relative to the content root.
func (l *Loader) Load(path string, data []byte, updatedAt time.Time) (*models.ContentNode, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("content: parse %s: %w", path, err)
	}
	fm := res.Frontmatter
	if fm.Title == "" {
		fm.Title = parser.TitleFromFilename(path)
	}
	if fm.Tags == nil {
		fm.Tags = []string{}
	}

	doc, err := l.md.Render([]byte(res.Body))
	if err != nil {
		return nil, fmt.Errorf("content: render %s: %w", path, err)
	}

	return &models.ContentNode{
		SourcePath:   path,
		Slug:         slug.Derive(path, l.stripPrefix),
		Frontmatter:  fm,
		Body:         res.Body,
		RenderedBody: doc.HTML,
		Excerpt:      doc.Excerpt,
		TOC:          doc.TOC,
		Checksum:     checksum.Sum(data),
		UpdatedAt:    updatedAt,
	}, nil
}

// Topics maps a topic slug to its table entry.
type Topics map[string]models.Topic

// ParseTopics decodes the topics JSON table. Entries without a slug are
// keyed by their slugified name.
func ParseTopics(data []byte) (Topics, error) {
	var rows []models.Topic
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("content: decode topics: %w", err)
	}
	out := make(Topics, len(rows))
	for _, r := range rows {
		key := r.Slug
		if key == "" {
			key = slug.Topic(r.Name)
		}
		out[slug.Topic(key)] = r
	}
	return out, nil
}

// Lookup returns the entry for a category value.
func (t Topics) Lookup(category string) (models.Topic, bool) {
	tp, ok := t[slug.Topic(category)]
	return tp, ok
}
