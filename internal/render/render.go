// Package render executes the embedded HTML templates, one per page template.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/starford/codeboost/internal/models"
	"github.com/starford/codeboost/internal/slug"
)

//go:embed templates/*.html
var templateFS embed.FS

// Listing bases used when a View leaves them empty.
const (
	defaultArchiveBase = "/archive"
	defaultVideosBase  = "/videos"
)

var sharedFiles = []string{"templates/layout.html", "templates/partials.html"}

var pageTemplates = []models.TemplateID{
	models.TemplateBlogPost,
	models.TemplateVideoPost,
	models.TemplateTopicPage,
	models.TemplateTagPage,
	models.TemplateArchivePage,
	models.TemplateVideosPage,
	models.TemplateIndex,
	models.TemplateTags,
	models.TemplateTopics,
	models.TemplateAbout,
	models.TemplateConfirm,
	models.TemplateUnsubscribe,
	models.TemplateNotFound,
}

// Renderer holds one parsed template set per page template.
type Renderer struct {
	pages map[models.TemplateID]*template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	base, err := template.New("base").Funcs(Funcs()).ParseFS(templateFS, sharedFiles...)
	if err != nil {
		return nil, fmt.Errorf("render: parse layout: %w", err)
	}
	r := &Renderer{pages: make(map[models.TemplateID]*template.Template, len(pageTemplates))}
	for _, id := range pageTemplates {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("render: clone layout: %w", err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+string(id)+".html"); err != nil {
			return nil, fmt.Errorf("render: parse %s: %w", id, err)
		}
		r.pages[id] = t
	}
	return r, nil
}

// Render writes the page described by v.Page.
func (r *Renderer) Render(w io.Writer, v View) error {
	t, ok := r.pages[v.Page.Template]
	if !ok {
		return fmt.Errorf("render: unknown template %q", v.Page.Template)
	}
	if v.ArchiveBase == "" {
		v.ArchiveBase = defaultArchiveBase
	}
	if v.VideosBase == "" {
		v.VideosBase = defaultVideosBase
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		return fmt.Errorf("render: %s %s: %w", v.Page.Template, v.Page.Path, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Funcs returns the helpers available to templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(DateLayout)
		},
		"isoDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"tagPath":   slug.TagPath,
		"topicPath": slug.TopicPath,
		"postPath": func(n *models.ContentNode) string {
			return slug.PostPath(n.Slug, n.IsVideo())
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
		"upper": strings.ToUpper,
		"join":  strings.Join,
		"year":  func() int { return time.Now().Year() },
	}
}
