package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/starford/codeboost/internal/apperr"
	"github.com/starford/codeboost/internal/newsletter"
	"github.com/starford/codeboost/internal/theme"
)

// SiteHandler serves the visitor-facing endpoints the rendered pages call.
type SiteHandler struct {
	news  *newsletter.Client
	theme theme.Config
}

// NewSiteHandler creates a SiteHandler.
func NewSiteHandler(news *newsletter.Client, themeCfg theme.Config) *SiteHandler {
	return &SiteHandler{news: news, theme: themeCfg}
}

// Subscribe handles POST /api/subscribe.
//
//	@Summary		Subscribe an email address to the newsletter
//	@Tags			newsletter
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SubscribeRequest	true	"Email address"
//	@Success		200		{object}	SubscribeResponse
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Router			/subscribe [post]
func (h *SiteHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	status, err := h.news.Subscribe(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorBody("a valid email is required"))
			return
		}
		writeJSON(w, http.StatusBadGateway, errorBody("subscription service unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, SubscribeResponse{Status: status})
}

// Confirm handles POST /api/confirm.
//
//	@Summary		Confirm a newsletter subscription
//	@Tags			newsletter
//	@Accept			json
//	@Produce		json
//	@Param			body	body		IDRequest	true	"Subscription id"
//	@Success		200		{object}	IDResponse
//	@Failure		502		{object}	errResponse
//	@Router			/confirm [post]
func (h *SiteHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.forwardID(w, r, "confirm", h.news.Confirm)
}

// Unsubscribe handles POST /api/unsubscribe.
//
//	@Summary		Remove a newsletter subscription
//	@Tags			newsletter
//	@Accept			json
//	@Produce		json
//	@Param			body	body		IDRequest	true	"Subscription id"
//	@Success		200		{object}	IDResponse
//	@Failure		502		{object}	errResponse
//	@Router			/unsubscribe [post]
func (h *SiteHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	h.forwardID(w, r, "unsubscribe", h.news.Unsubscribe)
}

func (h *SiteHandler) forwardID(w http.ResponseWriter, r *http.Request, op string, call func(context.Context, string) (bool, error)) {
	var req IDRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	sent, err := call(r.Context(), req.ID)
	if err != nil {
		slog.Warn(op+" forward failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("subscription service unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, IDResponse{Sent: sent})
}

// GetTheme handles GET /api/theme.
//
//	@Summary		Get the visitor's colour mode
//	@Tags			theme
//	@Produce		json
//	@Success		200	{object}	ThemeResponse
//	@Router			/theme [get]
func (h *SiteHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	state := theme.NewState(theme.NewCookieStore(h.theme.StorageKey, r, w), h.theme.Mode)
	writeJSON(w, http.StatusOK, h.themeResponse(state.Mode()))
}

// SetTheme handles POST /api/theme. An empty mode toggles.
//
//	@Summary		Set or toggle the visitor's colour mode
//	@Tags			theme
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ThemeRequest	false	"Mode to select"
//	@Success		200		{object}	ThemeResponse
//	@Failure		400		{object}	errResponse
//	@Router			/theme [post]
func (h *SiteHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	state := theme.NewState(theme.NewCookieStore(h.theme.StorageKey, r, w), h.theme.Mode)

	var mode theme.Mode
	if req.Mode == "" {
		m, err := state.Toggle()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
			return
		}
		mode = m
	} else {
		m, err := theme.ParseMode(req.Mode)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		if err := state.Set(m); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
			return
		}
		mode = m
	}
	writeJSON(w, http.StatusOK, h.themeResponse(mode))
}

func (h *SiteHandler) themeResponse(m theme.Mode) ThemeResponse {
	cfg := h.theme.WithMode(m)
	return ThemeResponse{Mode: m, Dark: m == theme.ModeDark, Palette: cfg.Palette()}
}
