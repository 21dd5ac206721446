package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"relief-grid-go/internal/config"
	"relief-grid-go/internal/ratelimit"
	"relief-grid-go/internal/transport/httpserver/handler"
	authmw "relief-grid-go/internal/transport/httpserver/middleware"
	"relief-grid-go/pkg/logger"
)

// NewRouter mounts the API under /api. limiter may be nil to disable rate
// limiting.
func NewRouter(cfg config.Config, handlers *handler.Handlers, limiter *ratelimit.Limiter, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(authmw.ClientAddr(cfg.HTTP.TrustedProxies))
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORSOrigins))

	auth := authmw.NewJWTAuth(cfg.Auth, log)
	limit := authmw.RateLimit(limiter, log)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Common.Health)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.Common.Me)

			r.Get("/areas", handlers.Areas.ListAreas)
			r.Post("/areas", handlers.Areas.CreateArea)
			r.Get("/areas/{id}", handlers.Areas.GetArea)
			r.Put("/areas/{id}", handlers.Areas.UpdateArea)
			r.Delete("/areas/{id}", handlers.Areas.DeleteArea)

			r.Get("/grids", handlers.Grids.ListGrids)
			r.With(limit).Post("/grids", handlers.Grids.CreateGrid)
			r.Get("/grids/export", handlers.Grids.ExportGrids)
			r.Get("/grids/template", handlers.Grids.Template)
			r.Post("/grids/import", handlers.Grids.ImportGrids)
			r.Post("/grids/fix-bounds", handlers.Grids.FixBounds)
			r.Get("/grids/{id}", handlers.Grids.GetGrid)
			r.Put("/grids/{id}", handlers.Grids.UpdateGrid)
			r.Delete("/grids/{id}", handlers.Grids.DeleteGrid)
			r.Post("/grids/{id}/supplies", handlers.Grids.RequestSupplies)
			r.Put("/grids/{id}/supplies/{name}", handlers.Grids.CorrectSupplyLine)
			r.Put("/grids/{id}/volunteer-count", handlers.Grids.CorrectVolunteerCount)

			r.Get("/grids/{id}/registrations", handlers.Volunteers.ListForGrid)
			r.Post("/grids/{id}/registrations", handlers.Volunteers.Register)
			r.Get("/registrations", handlers.Volunteers.List)
			r.Get("/registrations/{id}", handlers.Volunteers.Get)
			r.Post("/registrations/{id}/status", handlers.Volunteers.Advance)

			r.Get("/grids/{id}/donations", handlers.Donations.ListForGrid)
			r.Post("/grids/{id}/donations", handlers.Donations.Create)
			r.Get("/donations", handlers.Donations.List)
			r.Get("/donations/{id}", handlers.Donations.Get)
			r.Post("/donations/{id}/status", handlers.Donations.Advance)

			r.Get("/grids/{id}/discussions", handlers.Discussions.List)
			r.Post("/grids/{id}/discussions", handlers.Discussions.Post)

			r.Get("/announcements", handlers.Announcements.List)
			r.Post("/announcements", handlers.Announcements.Create)
			r.Put("/announcements/{id}", handlers.Announcements.Update)
			r.Delete("/announcements/{id}", handlers.Announcements.Delete)

			r.Get("/feeds/unfulfilled-supplies", handlers.Grids.UnfulfilledSupplies)
			r.Get("/feeds/urgent-grids", handlers.Grids.UrgentGrids)
			r.Get("/feeds/stats", handlers.Grids.Stats)
		})
	})

	return r
}
