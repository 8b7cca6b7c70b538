// Package models defines the domain types for the codeboost site.
package models

import (
	"strings"
	"time"
)

// TemplateKind selects how a content node is presented.
type TemplateKind string

const (
	KindArticle TemplateKind = "article"
	KindVideo   TemplateKind = "video"
)

// ParseTemplateKind maps a frontmatter templateKey onto a TemplateKind.
// "video" and "video-post" are videos; anything else is an article.
func ParseTemplateKind(raw string) TemplateKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "video", "video-post":
		return KindVideo
	default:
		return KindArticle
	}
}

// Frontmatter is the typed metadata block of a content file.
type Frontmatter struct {
	Title         string       `json:"title"`
	Date          time.Time    `json:"date"`
	Description   string       `json:"description,omitempty"`
	Category      string       `json:"category"`
	Tags          []string     `json:"tags"`
	TemplateKey   TemplateKind `json:"templateKey"`
	VideoID       string       `json:"videoID,omitempty"`
	FeaturedImage string       `json:"featuredImage,omitempty"`
	Featured      bool         `json:"featured,omitempty"`
	Trending      bool         `json:"trending,omitempty"`
}

// HasTag reports whether tag is one of the node's tags.
func (f Frontmatter) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Heading is one entry of a post's table of contents.
type Heading struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ContentNode is one markdown document after loading.
// It is never mutated once built.
type ContentNode struct {
	SourcePath   string      `json:"sourcePath"`
	Slug         string      `json:"slug"`
	Frontmatter  Frontmatter `json:"frontmatter"`
	Body         string      `json:"-"`
	RenderedBody string      `json:"html,omitempty"`
	Excerpt      string      `json:"excerpt,omitempty"`
	TOC          []Heading   `json:"toc,omitempty"`
	Checksum     string      `json:"checksum"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// IsVideo reports whether the node uses the video template.
func (n *ContentNode) IsVideo() bool {
	return n.Frontmatter.TemplateKey == KindVideo
}

// SourceMetadata is a lightweight listing entry for a file in the content root.
type SourceMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Topic is one row of the topics data table.
type Topic struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image,omitempty"`
}
