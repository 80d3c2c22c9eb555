package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/unpack/internal/journal"
)

const (
	defaultListLimit   = 20
	defaultSearchLimit = 20
)

// EventStreamer streams server-sent events to one owner.
type EventStreamer interface {
	Stream(w http.ResponseWriter, r *http.Request, ownerID string)
}

// Handler holds API route handlers.
type Handler struct {
	svc    *journal.Service
	events EventStreamer
}

// NewHandler creates a new Handler.
func NewHandler(svc *journal.Service, events EventStreamer) *Handler {
	return &Handler{svc: svc, events: events}
}

// ListEntries handles GET /api/entries.
//
//	@Summary		List journal entries, newest first
//	@Tags			entries
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			offset	query		int	false	"Page offset"
//	@Success		200		{object}	EntryListResponse
//	@Security		BearerAuth
//	@Router			/entries [get]
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if limit <= 0 {
		limit = defaultListLimit
	}

	entries, err := h.svc.ListEntries(r.Context(), OwnerFrom(r.Context()), limit, offset)
	if err != nil {
		writeError(w, "list entries", err)
		return
	}
	writeJSON(w, http.StatusOK, EntryListResponse{Entries: entries})
}

// GetEntry handles GET /api/entries/{id}.
//
//	@Summary		Get an entry with its tangents
//	@Tags			entries
//	@Produce		json
//	@Param			id	path		string	true	"Entry ID"
//	@Success		200	{object}	EntryDetail
//	@Failure		403	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/{id} [get]
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.GetEntry(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get entry", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// DeleteEntry handles DELETE /api/entries/{id}.
//
//	@Summary		Delete an entry, its tangents, messages and photos
//	@Tags			entries
//	@Param			id	path	string	true	"Entry ID"
//	@Success		204
//	@Failure		403	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/{id} [delete]
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEntry(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search over entry text and overviews
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	results, err := h.svc.Search(r.Context(), OwnerFrom(r.Context()), query, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Events handles GET /api/events.
//
//	@Summary		Server-sent events for the caller's journal
//	@Tags			events
//	@Produce		text/event-stream
//	@Success		200
//	@Security		BearerAuth
//	@Router			/events [get]
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	h.events.Stream(w, r, OwnerFrom(r.Context()))
}
