package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/codeboost/internal/contentservice"
	"github.com/starford/codeboost/internal/newsletter"
	"github.com/starford/codeboost/internal/theme"
)

// NewRouter creates a chi router with all API routes mounted.
// Content and taxonomy routes sit behind Bearer auth when authEnabled is set;
// search, newsletter, theme and the event stream stay public because the
// rendered pages call them from the browser.
// sseHandler, if non-nil, is mounted at GET /events.
// news may be nil, in which case the newsletter routes are not mounted.
func NewRouter(svc *contentservice.Service, news *newsletter.Client, themeCfg theme.Config, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)
	sh := NewSiteHandler(news, themeCfg)

	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))

		// Content CRUD.
		r.Get("/content", h.ListContent)
		r.Post("/content", h.CreateContent)
		r.Get("/content/*", h.GetContent)
		r.Put("/content/*", h.UpdateContent)
		r.Delete("/content/*", h.DeleteContent)
		r.Post("/move", h.MoveContent)

		r.Get("/posts/*", h.GetBySlug)
		r.Get("/taxonomy", h.Taxonomy)
	})

	r.Get("/search", h.Search)

	if news != nil {
		r.Post("/subscribe", sh.Subscribe)
		r.Post("/confirm", sh.Confirm)
		r.Post("/unsubscribe", sh.Unsubscribe)
	}

	r.Get("/theme", sh.GetTheme)
	r.Post("/theme", sh.SetTheme)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
