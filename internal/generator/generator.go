// Package generator turns the loaded content and its taxonomy into the set of
// pages a build emits.
package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/starford/codeboost/internal/models"
	"github.com/starford/codeboost/internal/slug"
	"github.com/starford/codeboost/internal/taxonomy"
)

// ErrDuplicatePath is returned when two pages resolve to the same path.
var ErrDuplicatePath = errors.New("generator: duplicate page path")

// Default listing settings.
const (
	DefaultPageSize    = 12
	DefaultArchiveBase = "/archive"
	DefaultVideosBase  = "/videos"
)

// Options controls listing pagination.
type Options struct {
	PageSize    int
	ArchiveBase string
	VideosBase  string
}

// DefaultOptions returns the stock listing settings.
func DefaultOptions() Options {
	return Options{
		PageSize:    DefaultPageSize,
		ArchiveBase: DefaultArchiveBase,
		VideosBase:  DefaultVideosBase,
	}
}

var fixedPages = []struct {
	path string
	tmpl models.TemplateID
}{
	{"/", models.TemplateIndex},
	{"/tags", models.TemplateTags},
	{"/topics", models.TemplateTopics},
	{"/about", models.TemplateAbout},
	{"/confirm", models.TemplateConfirm},
	{"/unsubscribe", models.TemplateUnsubscribe},
	{"/404", models.TemplateNotFound},
}

type emitter struct {
	pages []models.PageDescriptor
	seen  map[string]models.TemplateID
}

// routeKey is the identity of a page in the output tree. /go and /go/ are
// served from the same file.
func routeKey(path string) string {
	return strings.Trim(strings.TrimSpace(path), "/")
}

func (e *emitter) emit(path string, tmpl models.TemplateID, ctx models.PageContext) error {
	key := routeKey(path)
	if prev, ok := e.seen[key]; ok {
		return fmt.Errorf("%w: %s (%s and %s)", ErrDuplicatePath, path, prev, tmpl)
	}
	e.seen[key] = tmpl
	e.pages = append(e.pages, models.PageDescriptor{Path: path, Template: tmpl, Context: ctx})
	return nil
}

// Generate emits one page per node, one per category and tag group, the
// paginated archive and video listings, and the fixed site pages. nodes must
// already be sorted by date, newest first.
func Generate(nodes []*models.ContentNode, tx *taxonomy.Taxonomy, opts Options) ([]models.PageDescriptor, error) {
	if opts.PageSize <= 0 {
		return nil, fmt.Errorf("generator: page size must be positive, got %d", opts.PageSize)
	}
	if opts.ArchiveBase == "" {
		opts.ArchiveBase = DefaultArchiveBase
	}
	if opts.VideosBase == "" {
		opts.VideosBase = DefaultVideosBase
	}
	if tx == nil {
		tx = taxonomy.Group(nodes)
	}

	e := &emitter{seen: make(map[string]models.TemplateID)}

	for _, p := range fixedPages {
		if err := e.emit(p.path, p.tmpl, models.PageContext{}); err != nil {
			return nil, err
		}
	}

	for i, n := range nodes {
		ctx := models.PageContext{Slug: n.Slug, Topic: n.Frontmatter.Category}
		if i+1 < len(nodes) {
			ctx.Previous = nodes[i+1]
		}
		if i > 0 {
			ctx.Next = nodes[i-1]
		}
		tmpl := models.TemplateBlogPost
		if n.IsVideo() {
			tmpl = models.TemplateVideoPost
		}
		if err := e.emit(slug.PostPath(n.Slug, n.IsVideo()), tmpl, ctx); err != nil {
			return nil, err
		}
	}

	for _, g := range tx.Categories {
		if err := e.emit(slug.TopicPath(g.FieldValue), models.TemplateTopicPage, models.PageContext{Topic: g.FieldValue}); err != nil {
			return nil, err
		}
	}
	for _, g := range tx.Tags {
		if err := e.emit(slug.TagPath(g.FieldValue), models.TemplateTagPage, models.PageContext{Tag: g.FieldValue}); err != nil {
			return nil, err
		}
	}

	if err := e.listing(opts.ArchiveBase, models.TemplateArchivePage, len(nodes), opts.PageSize); err != nil {
		return nil, err
	}
	videos := 0
	for _, n := range nodes {
		if n.IsVideo() {
			videos++
		}
	}
	if err := e.listing(opts.VideosBase, models.TemplateVideosPage, videos, opts.PageSize); err != nil {
		return nil, err
	}

	return e.pages, nil
}

func (e *emitter) listing(base string, tmpl models.TemplateID, total, pageSize int) error {
	for _, w := range Paginate(total, pageSize) {
		if err := e.emit(slug.ListingPath(base, w.CurrentPage), tmpl, models.PageContext{Window: &w}); err != nil {
			return err
		}
	}
	return nil
}

// Paginate splits total items into ceil(total/pageSize) windows. It returns
// nil when total is zero or pageSize is not positive.
func Paginate(total, pageSize int) []models.PaginationWindow {
	if total <= 0 || pageSize <= 0 {
		return nil
	}
	numPages := (total + pageSize - 1) / pageSize
	out := make([]models.PaginationWindow, numPages)
	for i := range out {
		out[i] = models.PaginationWindow{
			Skip:        i * pageSize,
			Limit:       pageSize,
			CurrentPage: i + 1,
			NumPages:    numPages,
		}
	}
	return out
}
