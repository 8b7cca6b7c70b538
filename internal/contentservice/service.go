// Package contentservice coordinates the content root and the index for the
// API and MCP layers.
package contentservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/starford/codeboost/internal/apperr"
	"github.com/starford/codeboost/internal/checksum"
	"github.com/starford/codeboost/internal/content"
	"github.com/starford/codeboost/internal/index"
	"github.com/starford/codeboost/internal/models"
	"github.com/starford/codeboost/internal/slug"
	"github.com/starford/codeboost/internal/storage"
	"github.com/starford/codeboost/internal/taxonomy"
)

// ContentDetail is the full representation of one content file.
type ContentDetail struct {
	Path        string             `json:"path"`
	Slug        string             `json:"slug"`
	URL         string             `json:"url"`
	Content     string             `json:"content"`
	HTML        string             `json:"html"`
	Excerpt     string             `json:"excerpt"`
	Checksum    string             `json:"checksum"`
	Frontmatter models.Frontmatter `json:"frontmatter"`
	TOC         []models.Heading   `json:"toc"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// ContentListItem is a lightweight item in a list response.
type ContentListItem struct {
	Path        string              `json:"path"`
	Slug        string              `json:"slug"`
	URL         string              `json:"url"`
	Title       string              `json:"title"`
	Date        time.Time           `json:"date"`
	Category    string              `json:"category"`
	Tags        []string            `json:"tags"`
	TemplateKey models.TemplateKind `json:"templateKey"`
	Checksum    string              `json:"checksum"`
}

// GroupItem is one taxonomy group in a response.
type GroupItem struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// TaxonomyView lists category and tag groups in first-encounter order.
type TaxonomyView struct {
	Categories []GroupItem `json:"categories"`
	Tags       []GroupItem `json:"tags"`
}

// Service coordinates storage and index operations.
type Service struct {
	store  storage.Provider
	db     index.ContentIndex
	loader *content.Loader
	limit  int
}

// NewService creates a content service. limit caps listing queries the way
// the site build does; zero means unlimited.
func NewService(store storage.Provider, db index.ContentIndex, loader *content.Loader, limit int) *Service {
	return &Service{store: store, db: db, loader: loader, limit: limit}
}

// GetBySlug returns the indexed node at slug together with its raw source.
func (s *Service) GetBySlug(ctx context.Context, nodeSlug string) (*ContentDetail, error) {
	n, err := s.db.GetBySlug(ctx, normalizeSlug(nodeSlug))
	if err != nil {
		return nil, err
	}
	return s.detail(n)
}

// GetByPath returns the indexed node for a source path.
func (s *Service) GetByPath(ctx context.Context, path string) (*ContentDetail, error) {
	n, err := s.db.GetByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.detail(n)
}

// CreateContent writes a new markdown file and indexes it.
func (s *Service) CreateContent(_ context.Context, path string, data []byte) (*ContentDetail, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	n, err := s.load(path, data)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(path, data); err != nil {
		return nil, err
	}
	if err := s.db.UpsertContent(n); err != nil {
		return nil, err
	}
	return s.detailFrom(n, data), nil
}

// UpdateContent replaces a file with optimistic concurrency: a non-empty
// ifMatch must equal the current checksum.
func (s *Service) UpdateContent(_ context.Context, path string, data []byte, ifMatch string) (*ContentDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	n, err := s.load(path, data)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(path, data); err != nil {
		return nil, err
	}
	if err := s.db.UpsertContent(n); err != nil {
		return nil, err
	}
	return s.detailFrom(n, data), nil
}

// DeleteContent removes a file from storage and index.
func (s *Service) DeleteContent(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.db.DeleteContent(path)
}

// MoveContent renames a file and re-indexes it under its new path, which
// also changes its slug.
func (s *Service) MoveContent(_ context.Context, from, to string) (*ContentDetail, error) {
	if err := validatePath(to); err != nil {
		return nil, err
	}
	data, err := s.store.Read(from)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if _, err := s.store.Read(to); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	n, err := s.load(to, data)
	if err != nil {
		return nil, err
	}
	if err := s.store.Move(from, to); err != nil {
		return nil, err
	}
	if err := s.db.DeleteContent(from); err != nil {
		return nil, err
	}
	if err := s.db.UpsertContent(n); err != nil {
		return nil, err
	}
	return s.detailFrom(n, data), nil
}

// ListContent returns one page of nodes matching q and the total match count.
func (s *Service) ListContent(ctx context.Context, q index.ContentQuery) ([]ContentListItem, int, error) {
	total, err := s.db.Count(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	nodes, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	items := make([]ContentListItem, len(nodes))
	for i, n := range nodes {
		items[i] = ContentListItem{
			Path:        n.SourcePath,
			Slug:        n.Slug,
			URL:         slug.PostPath(n.Slug, n.IsVideo()),
			Title:       n.Frontmatter.Title,
			Date:        n.Frontmatter.Date,
			Category:    n.Frontmatter.Category,
			Tags:        nonNilSlice(n.Frontmatter.Tags),
			TemplateKey: n.Frontmatter.TemplateKey,
			Checksum:    n.Checksum,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(ctx, query, limit)
}

// Taxonomy groups the indexed content the same way the site build does.
func (s *Service) Taxonomy(ctx context.Context) (*TaxonomyView, error) {
	nodes, err := s.db.Query(ctx, index.ContentQuery{Limit: s.limit})
	if err != nil {
		return nil, err
	}
	tx := taxonomy.Group(nodes)
	view := &TaxonomyView{
		Categories: make([]GroupItem, 0, len(tx.Categories)),
		Tags:       make([]GroupItem, 0, len(tx.Tags)),
	}
	for _, g := range tx.Categories {
		view.Categories = append(view.Categories, GroupItem{Name: g.FieldValue, Path: slug.TopicPath(g.FieldValue), Count: g.TotalCount()})
	}
	for _, g := range tx.Tags {
		view.Tags = append(view.Tags, GroupItem{Name: g.FieldValue, Path: slug.TagPath(g.FieldValue), Count: g.TotalCount()})
	}
	return view, nil
}

func (s *Service) load(path string, data []byte) (*models.ContentNode, error) {
	n, err := s.loader.Load(path, data, time.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	return n, nil
}

func (s *Service) detail(n *models.ContentNode) (*ContentDetail, error) {
	data, err := s.store.Read(n.SourcePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.detailFrom(n, data), nil
}

func (s *Service) detailFrom(n *models.ContentNode, data []byte) *ContentDetail {
	fm := n.Frontmatter
	fm.Tags = nonNilSlice(fm.Tags)
	return &ContentDetail{
		Path:        n.SourcePath,
		Slug:        n.Slug,
		URL:         slug.PostPath(n.Slug, n.IsVideo()),
		Content:     string(data),
		HTML:        n.RenderedBody,
		Excerpt:     n.Excerpt,
		Checksum:    checksum.Sum(data),
		Frontmatter: fm,
		TOC:         nonNilSlice(n.TOC),
		UpdatedAt:   n.UpdatedAt,
	}
}

func validatePath(path string) error {
	if path == "" || !strings.HasSuffix(path, ".md") {
		return fmt.Errorf("%w: path must end in .md", apperr.ErrInvalidInput)
	}
	return nil
}

// normalizeSlug accepts slugs with or without the surrounding slashes.
func normalizeSlug(s string) string {
	s = strings.Trim(s, "/")
	if s == "" {
		return "/"
	}
	return "/" + s + "/"
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
