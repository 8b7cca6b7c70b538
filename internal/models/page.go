package models

// TemplateID names the template a page is rendered with.
type TemplateID string

const (
	TemplateBlogPost    TemplateID = "blog-post"
	TemplateVideoPost   TemplateID = "video-post"
	TemplateTopicPage   TemplateID = "topic-page"
	TemplateTagPage     TemplateID = "tag-page"
	TemplateArchivePage TemplateID = "archive-page"
	TemplateVideosPage  TemplateID = "videos-page"
	TemplateIndex       TemplateID = "index"
	TemplateTags        TemplateID = "tags"
	TemplateTopics      TemplateID = "topics"
	TemplateAbout       TemplateID = "about"
	TemplateConfirm     TemplateID = "confirm"
	TemplateUnsubscribe TemplateID = "unsubscribe"
	TemplateNotFound    TemplateID = "not-found"
)

// TaxonomyGroup collects the nodes sharing one category or tag value.
type TaxonomyGroup struct {
	FieldValue string         `json:"fieldValue"`
	Members    []*ContentNode `json:"-"`
}

// TotalCount returns the number of members.
func (g *TaxonomyGroup) TotalCount() int {
	return len(g.Members)
}

// PaginationWindow bounds one page of a paginated listing.
type PaginationWindow struct {
	Skip        int `json:"skip"`
	Limit       int `json:"limit"`
	CurrentPage int `json:"currentPage"`
	NumPages    int `json:"numPages"`
}

// HasPrev reports whether a page precedes this one.
func (w PaginationWindow) HasPrev() bool { return w.CurrentPage > 1 }

// HasNext reports whether a page follows this one.
func (w PaginationWindow) HasNext() bool { return w.CurrentPage < w.NumPages }

// PageContext is the payload handed to a page's template.
type PageContext struct {
	Slug     string            `json:"slug,omitempty"`
	Topic    string            `json:"topic,omitempty"`
	Tag      string            `json:"tag,omitempty"`
	Previous *ContentNode      `json:"previous,omitempty"`
	Next     *ContentNode      `json:"next,omitempty"`
	Window   *PaginationWindow `json:"window,omitempty"`
}

// PageDescriptor describes one static page to emit.
type PageDescriptor struct {
	Path     string      `json:"path"`
	Template TemplateID  `json:"template"`
	Context  PageContext `json:"context"`
}
