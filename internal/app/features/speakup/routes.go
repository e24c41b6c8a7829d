// internal/app/features/speakup/routes.go
package speakupfeature

import (
	"github.com/Sherifrax/speakup-sub001/internal/app/store/usage"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/usagestats"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the Speak Up feature. All routes require
// an authenticated caller; per-record access is enforced by store scoping,
// not here, because reporters and admins share every endpoint.
func Routes(h *Handler, rec *usagestats.Recorder) chi.Router {
	r := chi.NewRouter()

	r.With(usagestats.Middleware(rec, usage.StatSpeakUpSearch)).Post("/search", h.HandleSearch)
	r.With(usagestats.Middleware(rec, usage.StatSpeakUpSave)).Post("/save", h.HandleSave)
	r.Post("/getbyId", h.HandleGetByID)
	r.Get("/getFilters", h.HandleGetFilters)
	r.Post("/attachment", h.HandleUploadAttachment)
	r.Get("/attachment/{id}", h.HandleDownloadAttachment)
	r.With(usagestats.Middleware(rec, usage.StatSpeakUpExport)).Post("/export", h.HandleExport)

	return r
}
