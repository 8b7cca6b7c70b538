package site

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/starford/codeboost/internal/models"
	"github.com/starford/codeboost/internal/render"
	"github.com/starford/codeboost/internal/slug"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category,omitempty"`
}

func buildRSS(site render.Site, nodes []*models.ContentNode, limit int) ([]byte, error) {
	if limit > 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}
	items := make([]rssItem, 0, len(nodes))
	for _, n := range nodes {
		link := render.BuildURL(site.URL, slug.PostPath(n.Slug, n.IsVideo()))
		desc := n.Frontmatter.Description
		if desc == "" {
			desc = n.Excerpt
		}
		item := rssItem{
			Title:       n.Frontmatter.Title,
			Link:        link,
			Description: desc,
			GUID:        link,
		}
		if !n.Frontmatter.Date.IsZero() {
			item.PubDate = n.Frontmatter.Date.Format(time.RFC1123Z)
		}
		if n.Frontmatter.Category != "" {
			item.Categories = []string{n.Frontmatter.Category}
		}
		items = append(items, item)
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       site.Title,
			Link:        render.BuildURL(site.URL, "/"),
			Description: site.Description,
			Language:    site.Lang,
			Items:       items,
		},
	}
	return encodeXML(feed)
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// buildSitemap lists every page except the 404 page. Post pages carry their
// content date as lastmod.
func buildSitemap(site render.Site, pages []models.PageDescriptor, bySlug map[string]*models.ContentNode) ([]byte, error) {
	urls := make([]sitemapURL, 0, len(pages))
	for _, p := range pages {
		if p.Template == models.TemplateNotFound {
			continue
		}
		u := sitemapURL{Loc: render.BuildURL(site.URL, p.Path)}
		if n, ok := bySlug[p.Context.Slug]; ok && p.Context.Slug != "" && !n.Frontmatter.Date.IsZero() {
			u.LastMod = n.Frontmatter.Date.UTC().Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	return encodeXML(sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	})
}

func encodeXML(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("site: encode xml: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func buildRobots(baseURL string) []byte {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = "http://localhost"
	}
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Sitemap: %s/sitemap.xml\n", base))
	return []byte(b.String())
}

// Manifest holds the web app manifest settings.
type Manifest struct {
	StartURL        string `yaml:"start_url" json:"start_url"`
	BackgroundColor string `yaml:"background_color" json:"background_color"`
	ThemeColor      string `yaml:"theme_color" json:"theme_color"`
	Display         string `yaml:"display" json:"display"`
	Icon            string `yaml:"icon" json:"icon,omitempty"`
}

// DefaultManifest returns the stock manifest settings.
func DefaultManifest() Manifest {
	return Manifest{
		StartURL:        "/",
		BackgroundColor: "#ffffff",
		ThemeColor:      "#1C1E2F",
		Display:         "minimal-ui",
	}
}

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

type manifestJSON struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	StartURL        string         `json:"start_url"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Display         string         `json:"display"`
	Icons           []manifestIcon `json:"icons,omitempty"`
}

func buildManifest(site render.Site, m Manifest) ([]byte, error) {
	out := manifestJSON{
		Name:            site.Name,
		ShortName:       site.ShortName,
		StartURL:        m.StartURL,
		BackgroundColor: m.BackgroundColor,
		ThemeColor:      m.ThemeColor,
		Display:         m.Display,
	}
	if m.Icon != "" {
		out.Icons = []manifestIcon{{Src: m.Icon, Sizes: "512x512", Type: "image/png"}}
	}
	return json.MarshalIndent(out, "", "  ")
}

// SearchEntry is one record of search.json.
type SearchEntry struct {
	Title       string   `json:"title"`
	Path        string   `json:"path"`
	Slug        string   `json:"slug"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

func buildSearchIndex(nodes []*models.ContentNode) ([]byte, error) {
	entries := make([]SearchEntry, 0, len(nodes))
	for _, n := range nodes {
		desc := n.Frontmatter.Description
		if desc == "" {
			desc = n.Excerpt
		}
		tags := n.Frontmatter.Tags
		if tags == nil {
			tags = []string{}
		}
		entries = append(entries, SearchEntry{
			Title:       n.Frontmatter.Title,
			Path:        slug.PostPath(n.Slug, n.IsVideo()),
			Slug:        n.Slug,
			Category:    n.Frontmatter.Category,
			Tags:        tags,
			Description: desc,
		})
	}
	return json.Marshal(entries)
}
