package render

import (
	"github.com/starford/codeboost/internal/models"
	"github.com/starford/codeboost/internal/theme"
)

// DateLayout is the display format of content dates.
const DateLayout = "January 02, 2006"

// Site is the site-wide metadata shared by every page.
type Site struct {
	Title       string `yaml:"title" json:"title"`
	Name        string `yaml:"name" json:"name"`
	ShortName   string `yaml:"short_name" json:"shortName"`
	Author      string `yaml:"author" json:"author"`
	Description string `yaml:"description" json:"description"`
	URL         string `yaml:"url" json:"url"`
	Twitter     string `yaml:"twitter" json:"twitter"`
	Logo        string `yaml:"logo" json:"logo"`
	Lang        string `yaml:"lang" json:"lang"`
}

// DefaultSite returns the stock site metadata.
func DefaultSite() Site {
	return Site{
		Title:       "Code-Boost",
		Name:        "Code Boost",
		ShortName:   "code-boost",
		Author:      "Peter Durham",
		Description: "Web development tutorials and videos.",
		URL:         "https://www.code-boost.com/",
		Twitter:     "BoostCode",
		Lang:        "en",
	}
}

// View is the value every template executes against.
type View struct {
	Site  Site
	Theme theme.Config
	SEO   SEO
	Page  models.PageDescriptor
	Data  any
	// Newsletter is the subscription service base URL used by the signup form.
	Newsletter string
	// LiveReload adds the event-stream client used by the preview server.
	LiveReload bool
	// ArchiveBase and VideosBase are the first pages of the two listings.
	// Empty values mean /archive and /videos.
	ArchiveBase string
	VideosBase  string
}

// PostData feeds the blog-post and video-post templates.
type PostData struct {
	Node     *models.ContentNode
	Previous *models.ContentNode
	Next     *models.ContentNode
	Topic    *models.Topic
	Related  []*models.ContentNode
}

// ListingData feeds the paginated archive and videos templates.
type ListingData struct {
	Heading    string
	Nodes      []*models.ContentNode
	Pagination Pagination
}

// GroupData feeds a single topic or tag page.
type GroupData struct {
	Heading string
	Value   string
	Topic   *models.Topic
	Nodes   []*models.ContentNode
}

// GroupLink is one entry in a list of taxonomy groups.
type GroupLink struct {
	Name  string
	Path  string
	Count int
	Image string
}

// GroupsData feeds the tags and topics overview pages.
type GroupsData struct {
	Heading string
	Groups  []GroupLink
	Top     []*models.ContentNode
}

// IndexData feeds the home page.
type IndexData struct {
	Featured     []*models.ContentNode
	Trending     []*models.ContentNode
	Latest       []*models.ContentNode
	TrendingTags []GroupLink
	Topics       []GroupLink
}

// NewsletterData feeds the confirm and unsubscribe pages. Action is the
// service path segment the page posts the visitor's id to.
type NewsletterData struct {
	Heading  string
	Message  string
	Action   string
	Endpoint string
}
