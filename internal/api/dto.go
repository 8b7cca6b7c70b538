package api

import (
	"github.com/starford/codeboost/internal/contentservice"
	"github.com/starford/codeboost/internal/newsletter"
	"github.com/starford/codeboost/internal/theme"
)

// CreateContentRequest is the request body for creating a content file.
type CreateContentRequest struct {
	Path    string `json:"path" example:"tutorials/go-maps.md" validate:"required"`
	Content string `json:"content" example:"---\ntitle: Go Maps\n---\n## Intro" validate:"required"`
}

// UpdateContentRequest is the request body for replacing a content file.
type UpdateContentRequest struct {
	Content string `json:"content" example:"---\ntitle: Go Maps\n---\n## Updated" validate:"required"`
}

// MoveContentRequest is the request body for renaming a content file.
type MoveContentRequest struct {
	From string `json:"from" example:"tutorials/go-maps.md" validate:"required"`
	To   string `json:"to" example:"tutorials/go-maps-guide.md" validate:"required"`
}

// ContentDetail is the full content response type (aliased from the domain layer).
type ContentDetail = contentservice.ContentDetail

// ContentListItem is a lightweight item in a list response.
type ContentListItem = contentservice.ContentListItem

// ContentListResponse wraps paginated content listings.
type ContentListResponse struct {
	Content []ContentListItem `json:"content" validate:"required"`
	Total   int               `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path     string `json:"path" example:"tutorials/go-maps.md" validate:"required"`
	Slug     string `json:"slug" example:"/go-maps/" validate:"required"`
	Title    string `json:"title" example:"Go Maps" validate:"required"`
	Category string `json:"category" example:"Go"`
	Snippet  string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// TaxonomyResponse lists category and tag groups.
type TaxonomyResponse = contentservice.TaxonomyView

// SubscribeRequest is the newsletter sign-up body.
type SubscribeRequest struct {
	Email string `json:"email" example:"reader@example.com" validate:"required"`
}

// SubscribeResponse reports the sign-up outcome.
type SubscribeResponse struct {
	Status newsletter.Status `json:"status" example:"confirmation-sent"`
}

// IDRequest carries a subscription id from a confirm or unsubscribe link.
type IDRequest struct {
	ID string `json:"_id" example:"5f8d0d55b54764421b7156c9aa" validate:"required"`
}

// IDResponse reports whether the id was forwarded and accepted.
type IDResponse struct {
	Sent bool `json:"sent" example:"true"`
}

// ThemeRequest selects a mode. An empty mode toggles the current one.
type ThemeRequest struct {
	Mode string `json:"mode" example:"dark"`
}

// ThemeResponse is the visitor's current mode and palette.
type ThemeResponse struct {
	Mode    theme.Mode    `json:"mode" example:"dark" validate:"required"`
	Dark    bool          `json:"darkMode" example:"true"`
	Palette theme.Palette `json:"palette" validate:"required"`
}
