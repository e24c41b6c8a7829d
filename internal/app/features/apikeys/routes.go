// internal/app/features/apikeys/routes.go
package apikeysfeature

import (
	"github.com/Sherifrax/speakup-sub001/internal/app/store/usage"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/auth"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/usagestats"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns the router for the API keys feature.
// Key management is admin-only; search and save feed the usage charts.
func Routes(h *Handler, rec *usagestats.Recorder, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireAdmin(logger))

	r.With(usagestats.Middleware(rec, usage.StatAPIKeySearch)).Post("/search", h.HandleSearch)
	r.With(usagestats.Middleware(rec, usage.StatAPIKeySave)).Post("/save", h.HandleSave)
	r.Post("/getbyId", h.HandleGetByID)
	r.Get("/getFilters", h.HandleGetFilters)

	return r
}
