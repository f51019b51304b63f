package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hyperengineering/slate/internal/metrics"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(RecoveryMiddleware)

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/projects", func(r chi.Router) {
			auth := AuthMiddleware(h.apiKey)
			r.With(auth).Post("/", h.CreateProject)
			r.With(auth).Get("/", h.ListProjects)

			r.Route("/{projectID}", func(r chi.Router) {
				// Customer calendar is public and read-only.
				r.With(h.ProjectCtx).Get("/calendar", h.Calendar)
				r.With(h.ProjectCtx).Get("/calendar.svg", h.CalendarSVG)

				// Admin routes
				r.Group(func(r chi.Router) {
					r.Use(auth)
					r.Use(h.ProjectCtx)
					r.Get("/", h.GetProject)
					r.Patch("/", h.UpdateProject)
					r.Delete("/", h.DeleteProject)
					r.Get("/milestones", h.ListMilestones)
					r.Post("/milestones", h.AddMilestone)
					r.Post("/milestones/plan", h.PlanMilestones)
					r.Delete("/milestones/{milestoneID}", h.DeleteMilestone)
					r.Post("/drag/preview", h.DragPreview)
					r.Post("/drag/commit", h.DragCommit)
				})
			})
		})
	})

	return r
}
