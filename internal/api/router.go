package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/jihaego327-source/oz1210/internal/telemetry"
)

// NewRouter builds and returns the Chi router with all routes configured.
// Browsing endpoints are public; bookmark routes and the stats refresh
// require a bearer JWT. Rate limiting is applied globally: 60 requests
// per minute per IP.
func NewRouter(handlers *Handlers, jwtSecret []byte, db dbPinger, redisClient redisPinger, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(60, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(db, redisClient, log))
	r.Method(http.MethodGet, "/metrics", telemetry.Handler())

	r.Get("/api/v1/regions", handlers.ListRegions)
	r.Get("/api/v1/attractions", handlers.ListAttractions)
	r.Get("/api/v1/attractions/{contentId}", handlers.GetAttraction)
	r.Get("/api/v1/attractions/{contentId}/pet", handlers.GetAttractionPet)
	r.Get("/api/v1/stats/regions", handlers.GetRegionStats)
	r.Get("/api/v1/stats/types", handlers.GetTypeStats)
	r.Get("/api/v1/stats/summary", handlers.GetStatsSummary)

	r.Group(func(r chi.Router) {
		r.Use(JWTAuth(jwtSecret))
		r.Post("/api/v1/stats/refresh", handlers.RefreshStats)
		r.Get("/api/v1/bookmarks", handlers.ListBookmarks)
		r.Post("/api/v1/bookmarks", handlers.AddBookmark)
		r.Delete("/api/v1/bookmarks/{contentId}", handlers.DeleteBookmark)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
