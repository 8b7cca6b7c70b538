package render

import (
	"encoding/json"
	"html/template"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/starford/codeboost/internal/models"
)

// SEO is the head metadata of one page.
type SEO struct {
	Title       string
	Description string
	Canonical   string
	Image       string
	Type        string
	JSONLD      template.JS
}

// BuildURL joins base with a page path, keeping a trailing slash when the
// page path has one.
func BuildURL(base, pagePath string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	trailing := strings.HasSuffix(pagePath, "/")
	u.Path = path.Join("/", u.Path, pagePath)
	if trailing && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// PageSEO builds the metadata of a page. post is nil for non-post pages.
func PageSEO(site Site, title, description, pagePath string, post *models.ContentNode) SEO {
	full := site.Title
	if title != "" && title != site.Title {
		full = title + " | " + site.Title
	}
	if description == "" {
		description = site.Description
	}
	s := SEO{
		Title:       full,
		Description: description,
		Canonical:   BuildURL(site.URL, pagePath),
		Image:       site.Logo,
		Type:        "website",
	}
	if post != nil {
		s.Type = "article"
		if post.Frontmatter.FeaturedImage != "" {
			s.Image = BuildURL(site.URL, post.Frontmatter.FeaturedImage)
		}
	}
	s.JSONLD = jsonLD(site, s, title, post)
	return s
}

func jsonLD(site Site, s SEO, title string, post *models.ContentNode) template.JS {
	if title == "" {
		title = site.Title
	}
	data := []map[string]any{{
		"@context":      "https://schema.org",
		"@type":         "WebSite",
		"url":           s.Canonical,
		"name":          title,
		"alternateName": site.Title,
	}}
	if post != nil {
		data = append(data,
			map[string]any{
				"@context": "https://schema.org",
				"@type":    "BreadcrumbList",
				"itemListElement": []map[string]any{{
					"@type":    "ListItem",
					"position": 1,
					"item": map[string]string{
						"@id":   s.Canonical,
						"name":  title,
						"image": s.Image,
					},
				}},
			},
			blogPosting(site, s, title, post),
		)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "[]"
	}
	return template.JS(b)
}

func blogPosting(site Site, s SEO, title string, post *models.ContentNode) map[string]any {
	data := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"url":           s.Canonical,
		"name":          title,
		"alternateName": site.Title,
		"headline":      title,
		"description":   s.Description,
		"mainEntityOfPage": map[string]string{
			"@type": "WebSite",
			"@id":   BuildURL(site.URL, "/"),
		},
	}
	if !post.Frontmatter.Date.IsZero() {
		data["datePublished"] = post.Frontmatter.Date.Format(time.RFC3339)
	}
	if s.Image != "" {
		data["image"] = map[string]string{"@type": "ImageObject", "url": s.Image}
	}
	if site.Author != "" {
		data["author"] = map[string]string{"@type": "Person", "name": site.Author}
	}
	if site.Name != "" {
		pub := map[string]string{"@type": "Organization", "name": site.Name, "url": BuildURL(site.URL, "/")}
		if site.Logo != "" {
			pub["logo"] = site.Logo
		}
		data["publisher"] = pub
	}
	if len(post.Frontmatter.Tags) > 0 {
		data["keywords"] = strings.Join(post.Frontmatter.Tags, ", ")
	}
	return data
}
