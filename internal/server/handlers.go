package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dhmun/mediapack/internal/catalog"
	"github.com/dhmun/mediapack/internal/models"
	"github.com/dhmun/mediapack/internal/shared"
	"github.com/dhmun/mediapack/internal/tasks"
)

// contentView is the JSON shape of a catalog entry.
type contentView struct {
	ID           string  `json:"id"`
	Kind         string  `json:"kind"`
	Title        string  `json:"title"`
	Summary      string  `json:"summary"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
	SizeMB       int     `json:"size_mb"`
	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	GenreIDs     []int   `json:"genre_ids,omitempty"`
}

func toContentView(c *models.Content) contentView {
	view := contentView{
		ID:           c.ID(),
		Kind:         string(c.Kind()),
		Title:        c.Title(),
		Summary:      c.Summary(),
		ThumbnailURL: c.ThumbnailURL(),
		SizeMB:       c.SizeMB(),
		Popularity:   c.Popularity(),
		VoteAverage:  c.VoteAverage(),
		GenreIDs:     c.GenreIDs(),
	}
	if rd := c.ReleaseDate(); rd != nil {
		view.ReleaseDate = rd.Format("2006-01-02")
	}
	return view
}

func toContentViews(contents []*models.Content) []contentView {
	views := make([]contentView, 0, len(contents))
	for _, c := range contents {
		views = append(views, toContentView(c))
	}
	return views
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// CatalogHandler serves catalog query endpoints backed by [catalog.Engine].
type CatalogHandler struct {
	engine *catalog.Engine
	logger *log.Logger
}

// NewCatalogHandler creates a CatalogHandler for the given engine.
func NewCatalogHandler(engine *catalog.Engine, logger *log.Logger) *CatalogHandler {
	return &CatalogHandler{engine: engine, logger: logger}
}

// Routes returns the patterns this handler serves.
func (h *CatalogHandler) Routes() []string {
	return []string{
		"GET /api/contents",
		"GET /api/contents/popular",
	}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var result *catalog.Result
	var err error

	if strings.HasSuffix(req.URL.Path, "/popular") {
		result, err = h.engine.Popular(intParam(req, "limit", catalog.DefaultLimit))
	} else {
		result, err = h.engine.Query(paramsFromRequest(req))
	}

	if err != nil {
		h.logger.Error("catalog query failed", "err", err)
		writeError(w, http.StatusServiceUnavailable, shared.ErrCatalogUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"contents": toContentViews(result.Contents),
		"total":    result.Total,
		"has_more": result.HasMore,
	})
}

// paramsFromRequest parses catalog query parameters. Unknown or malformed
// values fall back to defaults rather than erroring.
func paramsFromRequest(req *http.Request) catalog.Params {
	q := req.URL.Query()

	var genreIDs []int
	if raw := q.Get("genre"); raw != "" {
		genreIDs = models.ParseGenreIDs(raw)
	}

	return catalog.Params{
		Kind:      models.Kind(q.Get("kind")),
		Search:    q.Get("search"),
		GenreIDs:  genreIDs,
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Page:      intParam(req, "page", 1),
		Limit:     intParam(req, "limit", catalog.DefaultLimit),
	}
}

func intParam(req *http.Request, name string, fallback int) int {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// createPackRequest is the JSON body for pack creation.
type createPackRequest struct {
	Name               string   `json:"name"`
	Message            string   `json:"message"`
	SelectedContentIDs []string `json:"selected_content_ids"`
	MusicTrackIDs      []string `json:"music_track_ids"`
}

// PackHandler serves pack creation and retrieval backed by [tasks.PackEngine].
type PackHandler struct {
	engine *tasks.PackEngine
	logger *log.Logger
}

// NewPackHandler creates a PackHandler for the given engine.
func NewPackHandler(engine *tasks.PackEngine, logger *log.Logger) *PackHandler {
	return &PackHandler{engine: engine, logger: logger}
}

// Routes returns the patterns this handler serves.
func (h *PackHandler) Routes() []string {
	return []string{
		"POST /api/packs",
		"GET /api/packs/{slug}",
	}
}

func (h *PackHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method == http.MethodPost {
		h.create(w, req)
		return
	}
	h.get(w, req)
}

func (h *PackHandler) create(w http.ResponseWriter, req *http.Request) {
	var body createPackRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, shared.ErrInvalidPackInput)
		return
	}

	result, err := h.engine.CreatePack(req.Context(), nil, tasks.CreatePackInput{
		Name:               body.Name,
		Message:            body.Message,
		SelectedContentIDs: body.SelectedContentIDs,
		MusicTrackIDs:      body.MusicTrackIDs,
	})
	if err != nil {
		h.logger.Error("pack creation failed", "err", err)
		writeError(w, packErrorStatus(err), err)
		return
	}

	skipped := make([]map[string]string, 0, len(result.Reconciliation.Skipped))
	for _, s := range result.Reconciliation.Skipped {
		skipped = append(skipped, map[string]string{"id": s.ID, "reason": s.Reason})
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"share_slug":     result.ShareSlug,
		"serial":         result.Serial,
		"content_ids":    result.ContentIDs,
		"skipped_tracks": skipped,
	})
}

func (h *PackHandler) get(w http.ResponseWriter, req *http.Request) {
	slug := req.PathValue("slug")

	detail, err := h.engine.GetPack(slug)
	if err != nil {
		if errors.Is(err, shared.ErrPackNotFound) {
			writeError(w, http.StatusNotFound, shared.ErrPackNotFound)
			return
		}
		h.logger.Error("pack lookup failed", "slug", slug, "err", err)
		writeError(w, http.StatusServiceUnavailable, shared.ErrCatalogUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"share_slug": detail.Pack.ShareSlug(),
		"serial":     detail.Pack.Serial(),
		"name":       detail.Pack.Name(),
		"message":    detail.Pack.Message(),
		"created_at": detail.Pack.CreatedAt().Format(time.RFC3339),
		"contents":   toContentViews(detail.Contents),
	})
}

// packErrorStatus maps workflow error kinds to HTTP status codes. A
// compensated partial failure looks like any other creation failure to
// the caller.
func packErrorStatus(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidPackInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrCounterUnavailable),
		errors.Is(err, shared.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HealthHandler reports service liveness.
type HealthHandler struct{}

// Routes returns the patterns this handler serves.
func (h *HealthHandler) Routes() []string { return []string{"GET /health"} }

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
