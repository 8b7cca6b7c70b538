package site

import (
	"fmt"
	"strconv"

	"github.com/starford/codeboost/internal/content"
	"github.com/starford/codeboost/internal/models"
	"github.com/starford/codeboost/internal/render"
	"github.com/starford/codeboost/internal/slug"
	"github.com/starford/codeboost/internal/taxonomy"
)

// Home page and overview sizes.
const (
	homeLatest     = 6
	homeFeatured   = 3
	homeTrending   = 5
	trendingTags   = 4
	relatedPosts   = 3
	tagsTopPosts   = 6
	topicsTopPosts = 3
)

const (
	confirmHeading = "Email Confirmed!"
	confirmMessage = "Keep a lookout for weekly articles and tutorials."
	unsubHeading   = "You have been unsubscribed"
	unsubMessage   = "Sorry to see you go. You will no longer receive emails from us."
	notFoundTitle  = "404: Not Found"
	archiveHeading = "Articles"
	videosHeading  = "Videos"
)

// buildData is the input shared by every page of one build.
type buildData struct {
	nodes  []*models.ContentNode
	videos []*models.ContentNode
	bySlug map[string]*models.ContentNode
	tx     *taxonomy.Taxonomy
	topics content.Topics
}

func newBuildData(nodes []*models.ContentNode, topics content.Topics) *buildData {
	d := &buildData{
		nodes:  nodes,
		bySlug: make(map[string]*models.ContentNode, len(nodes)),
		tx:     taxonomy.Group(nodes),
		topics: topics,
	}
	for _, n := range nodes {
		d.bySlug[n.Slug] = n
		if n.IsVideo() {
			d.videos = append(d.videos, n)
		}
	}
	return d
}

func (d *buildData) topic(category string) *models.Topic {
	if t, ok := d.topics.Lookup(category); ok {
		return &t
	}
	return nil
}

// resolve returns the template data, title, description and post node (for
// post pages) of a page.
func (d *buildData) resolve(p models.PageDescriptor, b *Builder) (data any, title, desc string, post *models.ContentNode, err error) {
	switch p.Template {
	case models.TemplateBlogPost, models.TemplateVideoPost:
		n, ok := d.bySlug[p.Context.Slug]
		if !ok {
			return nil, "", "", nil, fmt.Errorf("site: no content for %s", p.Context.Slug)
		}
		desc = n.Frontmatter.Description
		if desc == "" {
			desc = n.Excerpt
		}
		return render.PostData{
			Node:     n,
			Previous: p.Context.Previous,
			Next:     p.Context.Next,
			Topic:    d.topic(n.Frontmatter.Category),
			Related:  d.related(n),
		}, n.Frontmatter.Title, desc, n, nil

	case models.TemplateTopicPage:
		g, _ := d.tx.Category(p.Context.Topic)
		return render.GroupData{
			Heading: p.Context.Topic,
			Value:   p.Context.Topic,
			Topic:   d.topic(p.Context.Topic),
			Nodes:   members(g),
		}, p.Context.Topic, "", nil, nil

	case models.TemplateTagPage:
		g, _ := d.tx.Tag(p.Context.Tag)
		return render.GroupData{
			Heading: p.Context.Tag,
			Value:   p.Context.Tag,
			Nodes:   members(g),
		}, "#" + p.Context.Tag, "", nil, nil

	case models.TemplateArchivePage:
		return listing(archiveHeading, b.cfg.ArchiveBase, d.nodes, p.Context.Window)

	case models.TemplateVideosPage:
		return listing(videosHeading, b.cfg.VideosBase, d.videos, p.Context.Window)

	case models.TemplateIndex:
		return render.IndexData{
			Featured:     d.filter(func(n *models.ContentNode) bool { return n.Frontmatter.Featured }, homeFeatured),
			Trending:     d.filter(func(n *models.ContentNode) bool { return n.Frontmatter.Trending }, homeTrending),
			Latest:       head(d.nodes, homeLatest),
			TrendingTags: tagLinks(d.tx.TopTags(trendingTags)),
			Topics:       d.topicLinks(),
		}, "", "", nil, nil

	case models.TemplateTags:
		return render.GroupsData{
			Heading: "Tags",
			Groups:  tagLinks(d.tx.Tags),
			Top:     head(d.nodes, tagsTopPosts),
		}, "Tags", "", nil, nil

	case models.TemplateTopics:
		return render.GroupsData{
			Heading: "Topics",
			Groups:  d.topicLinks(),
			Top:     head(d.nodes, topicsTopPosts),
		}, "Topics", "", nil, nil

	case models.TemplateAbout:
		return nil, "About", "", nil, nil

	case models.TemplateConfirm:
		return render.NewsletterData{
			Heading:  confirmHeading,
			Message:  confirmMessage,
			Action:   "confirm",
			Endpoint: b.cfg.Newsletter,
		}, "Confirm", "", nil, nil

	case models.TemplateUnsubscribe:
		return render.NewsletterData{
			Heading:  unsubHeading,
			Message:  unsubMessage,
			Action:   "unsubscribe",
			Endpoint: b.cfg.Newsletter,
		}, "Unsubscribe", "", nil, nil

	case models.TemplateNotFound:
		return nil, notFoundTitle, "", nil, nil
	}
	return nil, "", "", nil, fmt.Errorf("site: unknown template %q", p.Template)
}

func listing(heading, base string, nodes []*models.ContentNode, w *models.PaginationWindow) (any, string, string, *models.ContentNode, error) {
	if w == nil {
		return nil, "", "", nil, fmt.Errorf("site: %s page without pagination window", base)
	}
	title := heading
	if w.CurrentPage > 1 {
		title += " - Page " + strconv.Itoa(w.CurrentPage)
	}
	return render.ListingData{
		Heading:    heading,
		Nodes:      window(nodes, w.Skip, w.Limit),
		Pagination: render.NewPagination(base, *w),
	}, title, "", nil, nil
}

func (d *buildData) related(n *models.ContentNode) []*models.ContentNode {
	g, ok := d.tx.Category(n.Frontmatter.Category)
	if !ok {
		return nil
	}
	var out []*models.ContentNode
	for _, m := range g.Members {
		if m == n {
			continue
		}
		out = append(out, m)
		if len(out) == relatedPosts {
			break
		}
	}
	return out
}

func (d *buildData) filter(keep func(*models.ContentNode) bool, limit int) []*models.ContentNode {
	var out []*models.ContentNode
	for _, n := range d.nodes {
		if keep(n) {
			out = append(out, n)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

func (d *buildData) topicLinks() []render.GroupLink {
	out := make([]render.GroupLink, 0, len(d.tx.Categories))
	for _, g := range d.tx.Categories {
		link := render.GroupLink{Name: g.FieldValue, Path: slug.TopicPath(g.FieldValue), Count: g.TotalCount()}
		if t := d.topic(g.FieldValue); t != nil {
			link.Image = t.Image
		}
		out = append(out, link)
	}
	return out
}

func tagLinks(groups []*models.TaxonomyGroup) []render.GroupLink {
	out := make([]render.GroupLink, 0, len(groups))
	for _, g := range groups {
		out = append(out, render.GroupLink{Name: g.FieldValue, Path: slug.TagPath(g.FieldValue), Count: g.TotalCount()})
	}
	return out
}

func members(g *models.TaxonomyGroup) []*models.ContentNode {
	if g == nil {
		return nil
	}
	return g.Members
}

func head(nodes []*models.ContentNode, n int) []*models.ContentNode {
	if len(nodes) < n {
		return nodes
	}
	return nodes[:n]
}

func window(nodes []*models.ContentNode, skip, limit int) []*models.ContentNode {
	if skip >= len(nodes) {
		return nil
	}
	end := skip + limit
	if end > len(nodes) {
		end = len(nodes)
	}
	return nodes[skip:end]
}
