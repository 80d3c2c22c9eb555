package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/unpack/internal/journal"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether bearer tokens are resolved through users.
// events, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *journal.Service, authEnabled bool, users UserDirectory, events EventStreamer) chi.Router {
	h := NewHandler(svc, events)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, users))

	// Photos.
	r.Post("/photos", h.UploadPhoto)

	// Capture flow.
	r.Route("/captures", func(r chi.Router) {
		r.Post("/extract", h.ExtractCapture)
		r.Post("/analyze", h.AnalyzeCapture)
		r.Post("/process", h.ProcessCapture)
		r.Post("/cancel", h.CancelCapture)
		r.Post("/finish", h.FinishCapture)
		r.Post("/exit", h.ExitCapture)
	})

	// Entries.
	r.Get("/entries", h.ListEntries)
	r.Get("/entries/{id}", h.GetEntry)
	r.Delete("/entries/{id}", h.DeleteEntry)

	// Search.
	r.Get("/search", h.Search)

	// Tangent conversations.
	r.Route("/tangents/{id}", func(r chi.Router) {
		r.Get("/", h.GetTangent)
		r.Delete("/", h.DeleteTangent)
		r.Post("/open", h.OpenTangent)
		r.Get("/messages", h.ListMessages)
		r.Post("/messages", h.SendMessage)
		r.Post("/retry", h.RetryMessage)
	})

	if events != nil {
		r.Get("/events", h.Events)
	}

	return r
}
