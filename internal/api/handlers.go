package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jihaego327-source/oz1210/internal/pet"
	"github.com/jihaego327-source/oz1210/internal/tour"
	"github.com/jihaego327-source/oz1210/internal/tourapi"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	tours     TourService
	regions   RegionLister
	stats     StatsProvider
	cache     StatsCache
	bookmarks BookmarkStore
	log       *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(tours TourService, regions RegionLister, stats StatsProvider, cache StatsCache, bookmarks BookmarkStore, log *slog.Logger) *Handlers {
	return &Handlers{
		tours:     tours,
		regions:   regions,
		stats:     stats,
		cache:     cache,
		bookmarks: bookmarks,
		log:       log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error to a status code and a user-facing message.
// Upstream failures carry their own localized message.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	var apiErr *tourapi.Error
	if errors.As(err, &apiErr) {
		status := http.StatusBadGateway
		if apiErr.Category == tourapi.CategoryUnknown {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, map[string]string{"error": apiErr.UserMessage()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// ListRegions handles GET /api/v1/regions.
func (h *Handlers) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.regions.ListRegions(r.Context(), r.URL.Query().Get("parent"))
	if err != nil {
		h.log.Error("region list failed", "err", err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"regions": regions})
}

// ListAttractions handles GET /api/v1/attractions.
// Query: area, contentTypes (comma-separated), sort, page, keyword,
// pet, petSizes (comma-separated).
func (h *Handlers) ListAttractions(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	page := 1
	if raw := qs.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "page must be a positive integer"})
			return
		}
		page = n
	}

	q := tour.Query{
		Area:         qs.Get("area"),
		ContentTypes: splitParam(qs.Get("contentTypes")),
		Sort:         qs.Get("sort"),
		Page:         page,
		Keyword:      strings.TrimSpace(qs.Get("keyword")),
		Pet: pet.Filter{
			Enabled: qs.Get("pet") == "true",
			Sizes:   pet.ParseSizes(splitParam(qs.Get("petSizes"))),
		},
	}

	result, err := h.tours.List(r.Context(), q)
	if err != nil {
		h.log.Error("attraction list failed", "area", q.Area, "keyword", q.Keyword, "err", err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetAttraction handles GET /api/v1/attractions/{contentId}.
func (h *Handlers) GetAttraction(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "contentId")
	detail, err := h.tours.Detail(r.Context(), contentID, r.URL.Query().Get("contentTypeId"))
	if err != nil {
		h.log.Error("detail fetch failed", "contentId", contentID, "err", err)
		h.writeError(w, err)
		return
	}
	if detail == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "attraction not found"})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// GetAttractionPet handles GET /api/v1/attractions/{contentId}/pet.
// A missing upstream record is a valid outcome: allowed=false.
func (h *Handlers) GetAttractionPet(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "contentId")
	summary, err := h.tours.Pet(r.Context(), contentID)
	if err != nil {
		h.log.Error("pet info fetch failed", "contentId", contentID, "err", err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetRegionStats handles GET /api/v1/stats/regions.
func (h *Handlers) GetRegionStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.stats.RegionStats(r.Context())
	if err != nil {
		h.log.Error("region stats failed", "err", err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"regions": s})
}

// GetTypeStats handles GET /api/v1/stats/types.
func (h *Handlers) GetTypeStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.stats.TypeStats(r.Context())
	if err != nil {
		h.log.Error("type stats failed", "err", err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"types": s})
}

// GetStatsSummary handles GET /api/v1/stats/summary.
func (h *Handlers) GetStatsSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.stats.Summary(r.Context())
	if err != nil {
		h.log.Error("stats summary failed", "err", err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// RefreshStats handles POST /api/v1/stats/refresh: drops the cached
// aggregates and recomputes the summary.
func (h *Handlers) RefreshStats(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.log.Error("stats cache invalidate failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to invalidate stats cache"})
		return
	}
	s, err := h.stats.Summary(r.Context())
	if err != nil {
		h.log.Error("stats recompute failed", "err", err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// AddBookmark handles POST /api/v1/bookmarks. A duplicate is idempotent
// success and returns the existing row.
func (h *Handlers) AddBookmark(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	var body struct {
		ContentID string `json:"contentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.ContentID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "contentId is required"})
		return
	}

	b, err := h.bookmarks.AddBookmark(r.Context(), userID, body.ContentID)
	if err != nil {
		h.log.Error("bookmark add failed", "user", userID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save bookmark"})
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ListBookmarks handles GET /api/v1/bookmarks.
func (h *Handlers) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	bookmarks, err := h.bookmarks.ListBookmarks(r.Context(), userID)
	if err != nil {
		h.log.Error("bookmark list failed", "user", userID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load bookmarks"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookmarks": bookmarks})
}

// DeleteBookmark handles DELETE /api/v1/bookmarks/{contentId}.
func (h *Handlers) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	contentID := chi.URLParam(r, "contentId")

	deleted, err := h.bookmarks.DeleteBookmark(r.Context(), userID, contentID)
	if err != nil {
		h.log.Error("bookmark delete failed", "user", userID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete bookmark"})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "bookmark not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// HealthCheck pings DB and Redis; returns 200 if both ok, 503 otherwise.
type dbPinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and redis connectivity.
func HealthHandlerFunc(db dbPinger, redis redisPinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "ok"
		redisStatus := "ok"

		if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", "err", err)
			dbStatus = "error"
			status = http.StatusServiceUnavailable
		}

		if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			redisStatus = "error"
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, map[string]string{
			"status": func() string {
				if status == http.StatusOK {
					return "ok"
				}
				return "degraded"
			}(),
			"db":    dbStatus,
			"redis": redisStatus,
		})
	}
}
