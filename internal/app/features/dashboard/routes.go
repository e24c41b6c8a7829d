// internal/app/features/dashboard/routes.go
package dashboardfeature

import (
	"github.com/Sherifrax/speakup-sub001/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns the router for the dashboard analytics endpoints.
// Usage and summary expose cross-tenant counts, so they are admin-only.
func Routes(h *Handler, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireAdmin(logger))

	r.Get("/usage", h.HandleUsage)
	r.Get("/summary", h.HandleSummary)

	return r
}
