package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/codeboost/internal/apperr"
	"github.com/starford/codeboost/internal/checksum"
	"github.com/starford/codeboost/internal/contentservice"
	"github.com/starford/codeboost/internal/index"
	"github.com/starford/codeboost/internal/models"
)

// maxListLimit caps the page size of GET /api/content.
const maxListLimit = 200

// Handler holds the content route handlers.
type Handler struct {
	svc *contentservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *contentservice.Service) *Handler {
	return &Handler{svc: svc}
}

// wildcardPath extracts the path after the route prefix.
// Supports encoded slashes from OpenAPI clients (e.g. tutorials%2Fgo-maps.md).
func wildcardPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListContent handles GET /api/content.
//
//	@Summary		List content newest first with optional filters
//	@Tags			content
//	@Produce		json
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Param			category	query		string	false	"Filter by category"
//	@Param			tag			query		string	false	"Filter by tag"
//	@Param			kind		query		string	false	"Filter by template kind"	Enums(article, video)
//	@Param			featured	query		bool	false	"Only featured posts"
//	@Success		200			{object}	ContentListResponse
//	@Security		BearerAuth
//	@Router			/content [get]
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	featured, _ := strconv.ParseBool(q.Get("featured"))

	query := index.ContentQuery{
		Category:     q.Get("category"),
		Tag:          q.Get("tag"),
		FeaturedOnly: featured,
		Limit:        limit,
		Skip:         offset,
	}
	if kind := q.Get("kind"); kind != "" {
		query.Kind = models.ParseTemplateKind(kind)
	}

	items, total, err := h.svc.ListContent(r.Context(), query)
	if err != nil {
		slog.Error("list content failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ContentListResponse{Content: items, Total: total})
}

// GetContent handles GET /api/content/*.
//
//	@Summary		Get a content file by source path
//	@Tags			content
//	@Produce		json
//	@Param			path	path		string	true	"Source path"
//	@Success		200		{object}	ContentDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/content/{path} [get]
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	detail, err := h.svc.GetByPath(r.Context(), path)
	if err != nil {
		h.fail(w, "get content", path, err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(detail.Checksum))
	writeJSON(w, http.StatusOK, detail)
}

// GetBySlug handles GET /api/posts/*.
//
//	@Summary		Get a post by slug
//	@Tags			content
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	ContentDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{slug} [get]
func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	s := wildcardPath(r)
	detail, err := h.svc.GetBySlug(r.Context(), s)
	if err != nil {
		h.fail(w, "get post", s, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// CreateContent handles POST /api/content.
//
//	@Summary		Create a content file
//	@Tags			content
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateContentRequest	true	"File to create"
//	@Success		201		{object}	ContentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/content [post]
func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	var req CreateContentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and content are required"))
		return
	}
	detail, err := h.svc.CreateContent(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		h.fail(w, "create content", req.Path, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

// UpdateContent handles PUT /api/content/*.
//
//	@Summary		Replace a content file with optimistic concurrency
//	@Tags			content
//	@Accept			json
//	@Produce		json
//	@Param			path		path		string					true	"Source path"
//	@Param			If-Match	header		string					false	"SHA-256 checksum of the current file"
//	@Param			body		body		UpdateContentRequest	true	"New content"
//	@Success		200			{object}	ContentDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/content/{path} [put]
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req UpdateContentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	ifMatch := checksum.ParseETag(r.Header.Get("If-Match"))

	detail, err := h.svc.UpdateContent(r.Context(), path, []byte(req.Content), ifMatch)
	if err != nil {
		h.fail(w, "update content", path, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// DeleteContent handles DELETE /api/content/*.
//
//	@Summary		Delete a content file
//	@Tags			content
//	@Param			path	path	string	true	"Source path"
//	@Success		204		"Content deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/content/{path} [delete]
func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteContent(r.Context(), path); err != nil {
		h.fail(w, "delete content", path, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveContent handles POST /api/move.
//
//	@Summary		Rename a content file, changing its slug
//	@Tags			content
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MoveContentRequest	true	"Source and target paths"
//	@Success		200		{object}	ContentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/move [post]
func (h *Handler) MoveContent(w http.ResponseWriter, r *http.Request) {
	var req MoveContentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.From == "" || req.To == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("from and to are required"))
		return
	}
	detail, err := h.svc.MoveContent(r.Context(), req.From, req.To)
	if err != nil {
		h.fail(w, "move content", req.From, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across posts
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	out := make([]SearchResult, len(results))
	for i, res := range results {
		out[i] = SearchResult{Path: res.Path, Slug: res.Slug, Title: res.Title, Category: res.Category, Snippet: res.Snippet}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: out})
}

// Taxonomy handles GET /api/taxonomy.
//
//	@Summary		List category and tag groups
//	@Tags			taxonomy
//	@Produce		json
//	@Success		200	{object}	TaxonomyResponse
//	@Security		BearerAuth
//	@Router			/taxonomy [get]
func (h *Handler) Taxonomy(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Taxonomy(r.Context())
	if err != nil {
		slog.Error("taxonomy failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// fail maps service errors onto status codes.
func (h *Handler) fail(w http.ResponseWriter, op, path string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("content already exists"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
