package render

import (
	"github.com/starford/codeboost/internal/models"
	"github.com/starford/codeboost/internal/slug"
)

// PageLink is one numbered link of a pagination bar.
type PageLink struct {
	Number  int
	Path    string
	Current bool
}

// Pagination is the navigation bar of a paginated listing. Prev and Next are
// empty when there is nowhere to go.
type Pagination struct {
	Current int
	Total   int
	Prev    string
	Next    string
	Pages   []PageLink
}

// NewPagination builds the links for window w of the listing rooted at base.
func NewPagination(base string, w models.PaginationWindow) Pagination {
	p := Pagination{Current: w.CurrentPage, Total: w.NumPages}
	if w.HasPrev() {
		p.Prev = slug.ListingPath(base, w.CurrentPage-1)
	}
	if w.HasNext() {
		p.Next = slug.ListingPath(base, w.CurrentPage+1)
	}
	for k := 1; k <= w.NumPages; k++ {
		p.Pages = append(p.Pages, PageLink{
			Number:  k,
			Path:    slug.ListingPath(base, k),
			Current: k == w.CurrentPage,
		})
	}
	return p
}
