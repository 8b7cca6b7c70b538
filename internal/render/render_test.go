package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/starford/codeboost/internal/models"
	"github.com/starford/codeboost/internal/theme"
)

func testNode(slug, title string) *models.ContentNode {
	return &models.ContentNode{
		Slug: slug,
		Frontmatter: models.Frontmatter{
			Title:       title,
			Date:        time.Date(2021, time.March, 3, 0, 0, 0, 0, time.UTC),
			Category:    "JavaScript",
			Tags:        []string{"Node.js", "CSS Grid"},
			TemplateKey: models.KindArticle,
		},
		RenderedBody: `<h2 id="header-1">Setup</h2><p>Hello <em>world</em></p>`,
		TOC:          []models.Heading{{ID: "header-1", Text: "Setup"}},
	}
}

func renderPage(t *testing.T, page models.PageDescriptor, data any) string {
	t.Helper()
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	site := DefaultSite()
	var buf bytes.Buffer
	err = r.Render(&buf, View{
		Site:       site,
		Theme:      theme.DefaultConfig(),
		SEO:        PageSEO(site, "Page", "", page.Path, nil),
		Page:       page,
		Data:       data,
		Newsletter: "https://email.example.com",
	})
	if err != nil {
		t.Fatalf("Render %s: %v", page.Template, err)
	}
	return buf.String()
}

func assertContains(t *testing.T, html string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(html, w) {
			t.Errorf("output missing %q", w)
		}
	}
}

func TestRender_BlogPost(t *testing.T) {
	n := testNode("/go-maps/", "Go Maps")
	prev := testNode("/older/", "Older Post")
	html := renderPage(t,
		models.PageDescriptor{Path: "/go-maps/", Template: models.TemplateBlogPost},
		PostData{Node: n, Previous: prev},
	)
	assertContains(t, html,
		"<h1>Go Maps</h1>",
		"March 03, 2021",
		`href="/tag/node.js"`,
		`href="/tag/css-grid"`,
		`href="/javascript"`,
		`href="#header-1"`,
		`<p>Hello <em>world</em></p>`,
		`href="/older/"`,
	)
	if strings.Contains(html, `rel="next"`) {
		t.Error("next link rendered without a next post")
	}
}

func TestRender_VideoPost(t *testing.T) {
	n := testNode("/hooks/", "Hooks")
	n.Frontmatter.TemplateKey = models.KindVideo
	n.Frontmatter.VideoID = "abc123"
	html := renderPage(t,
		models.PageDescriptor{Path: "/video/hooks/", Template: models.TemplateVideoPost},
		PostData{Node: n},
	)
	assertContains(t, html, "https://www.youtube.com/embed/abc123")
}

func TestRender_ArchivePagination(t *testing.T) {
	w := models.PaginationWindow{Skip: 12, Limit: 12, CurrentPage: 2, NumPages: 3}
	html := renderPage(t,
		models.PageDescriptor{Path: "/archive/2", Template: models.TemplateArchivePage, Context: models.PageContext{Window: &w}},
		ListingData{Heading: "Articles", Nodes: []*models.ContentNode{testNode("/a/", "A")}, Pagination: NewPagination("/archive", w)},
	)
	assertContains(t, html, `href="/archive" rel="prev"`, `href="/archive/3" rel="next"`, `<span class="current">2</span>`)
}

func TestRender_AllTemplates(t *testing.T) {
	node := testNode("/a/", "A")
	cases := []struct {
		id   models.TemplateID
		data any
		want string
	}{
		{models.TemplateTopicPage, GroupData{Heading: "JavaScript", Value: "JavaScript", Nodes: []*models.ContentNode{node}}, "<h1>JavaScript</h1>"},
		{models.TemplateTagPage, GroupData{Heading: "Node.js", Value: "Node.js", Nodes: []*models.ContentNode{node}}, "#Node.js"},
		{models.TemplateVideosPage, ListingData{Heading: "Videos"}, "Nothing here yet."},
		{models.TemplateIndex, IndexData{Latest: []*models.ContentNode{node}, TrendingTags: []GroupLink{{Name: "go", Path: "/tag/go", Count: 2}}}, `href="/tag/go"`},
		{models.TemplateTags, GroupsData{Heading: "Tags", Groups: []GroupLink{{Name: "go", Path: "/tag/go", Count: 1}}}, "<h1>Tags</h1>"},
		{models.TemplateTopics, GroupsData{Heading: "Topics"}, "<h1>Topics</h1>"},
		{models.TemplateAbout, nil, "About Code Boost"},
		{models.TemplateConfirm, NewsletterData{Heading: "Email Confirmed!", Action: "confirm", Endpoint: "https://email.example.com"}, "Email Confirmed!"},
		{models.TemplateUnsubscribe, NewsletterData{Heading: "Unsubscribed", Action: "unsubscribe", Endpoint: "https://email.example.com"}, "Unsubscribed"},
		{models.TemplateNotFound, nil, "Page not found"},
	}
	for _, tc := range cases {
		t.Run(string(tc.id), func(t *testing.T) {
			html := renderPage(t, models.PageDescriptor{Path: "/x", Template: tc.id}, tc.data)
			assertContains(t, html, tc.want, "<title>Page | Code-Boost</title>", "application/ld+json")
		})
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Render(&bytes.Buffer{}, View{Page: models.PageDescriptor{Template: "nope"}}); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestRender_LiveReload(t *testing.T) {
	r, _ := New()
	var buf bytes.Buffer
	_ = r.Render(&buf, View{
		Site:       DefaultSite(),
		Theme:      theme.DefaultConfig(),
		Page:       models.PageDescriptor{Path: "/404", Template: models.TemplateNotFound},
		LiveReload: true,
	})
	if !strings.Contains(buf.String(), "/api/events") {
		t.Error("live reload script missing")
	}
}

func TestRender_ListingBases(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []models.TemplateID{models.TemplateNotFound, models.TemplateConfirm, models.TemplateIndex} {
		t.Run(string(id), func(t *testing.T) {
			var data any
			switch id {
			case models.TemplateConfirm:
				data = NewsletterData{Heading: "Email Confirmed!", Action: "confirm"}
			case models.TemplateIndex:
				data = IndexData{}
			}
			var buf bytes.Buffer
			err := r.Render(&buf, View{
				Site:        DefaultSite(),
				Theme:       theme.DefaultConfig(),
				Page:        models.PageDescriptor{Path: "/x", Template: id},
				Data:        data,
				ArchiveBase: "/posts",
				VideosBase:  "/watch",
			})
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			html := buf.String()
			assertContains(t, html, `href="/posts"`, `href="/watch"`)
			if strings.Contains(html, `href="/archive"`) || strings.Contains(html, `href="/videos"`) {
				t.Error("default listing links rendered despite configured bases")
			}
		})
	}
}

func TestRender_DefaultListingBases(t *testing.T) {
	html := renderPage(t, models.PageDescriptor{Path: "/404", Template: models.TemplateNotFound}, nil)
	assertContains(t, html, `href="/archive"`, `href="/videos"`)
}
