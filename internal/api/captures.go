package api

import (
	"net/http"
)

// ExtractCapture handles POST /api/captures/extract.
//
//	@Summary		Read text from uploaded page photos
//	@Description	Route is "manual_review" when the combined confidence is below the review threshold.
//	@Tags			captures
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PhotosRequest	true	"Photos in page order"
//	@Success		200		{object}	ExtractionResponse
//	@Failure		403		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/captures/extract [post]
func (h *Handler) ExtractCapture(w http.ResponseWriter, r *http.Request) {
	var req PhotosRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ex, err := h.svc.Extract(r.Context(), OwnerFrom(r.Context()), req.Photos)
	if err != nil {
		writeError(w, "extract capture", err)
		return
	}
	writeJSON(w, http.StatusOK, ExtractionResponse{
		Pages:      ex.Pages,
		Text:       ex.Text,
		Confidence: ex.Confidence,
		Route:      ex.Route,
	})
}

// AnalyzeCapture handles POST /api/captures/analyze.
//
//	@Summary		Write the overview and discover tangents
//	@Tags			captures
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AnalyzeRequest	true	"Entry text"
//	@Success		200		{object}	AnalysisResponse
//	@Security		BearerAuth
//	@Router			/captures/analyze [post]
func (h *Handler) AnalyzeCapture(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.svc.Analyze(r.Context(), OwnerFrom(r.Context()), req.Text)
	if err != nil {
		writeError(w, "analyze capture", err)
		return
	}
	writeJSON(w, http.StatusOK, AnalysisResponse{Overview: a.Overview, Tangents: a.Tangents, Insights: a.Insights})
}

// ProcessCapture handles POST /api/captures/process.
//
//	@Summary		Extract and analyse a capture in one call
//	@Description	Returns 422 when the text needs review and no corrected_text was given.
//	@Tags			captures
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ProcessRequest	true	"Photos and optional corrected text"
//	@Success		200		{object}	DraftRequest
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/captures/process [post]
func (h *Handler) ProcessCapture(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := h.svc.Process(r.Context(), OwnerFrom(r.Context()), req.Photos, req.CorrectedText)
	if err != nil {
		writeError(w, "process capture", err)
		return
	}
	writeJSON(w, http.StatusOK, DraftRequest{
		PhotoKeys:  d.PhotoKeys,
		Text:       d.Text,
		Overview:   d.Overview,
		Confidence: d.Confidence,
		Tangents:   d.Tangents,
		Insights:   d.Insights,
	})
}

// CancelCapture handles POST /api/captures/cancel.
//
//	@Summary		Cancel the caller's running capture step
//	@Tags			captures
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/captures/cancel [post]
func (h *Handler) CancelCapture(w http.ResponseWriter, r *http.Request) {
	if !h.svc.CancelCapture(OwnerFrom(r.Context())) {
		writeJSON(w, http.StatusNotFound, errorBody("no capture in progress"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FinishCapture handles POST /api/captures/finish.
//
//	@Summary		Save a capture and open its first tangent
//	@Tags			captures
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DraftRequest	true	"Analysed capture"
//	@Success		201		{object}	pipeline.Outcome
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/captures/finish [post]
func (h *Handler) FinishCapture(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.svc.Finish(r.Context(), OwnerFrom(r.Context()), req.draft())
	if err != nil {
		writeError(w, "finish capture", err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// ExitCapture handles POST /api/captures/exit.
//
//	@Summary		Save a capture and return home
//	@Tags			captures
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DraftRequest	true	"Analysed capture"
//	@Success		201		{object}	pipeline.Outcome
//	@Security		BearerAuth
//	@Router			/captures/exit [post]
func (h *Handler) ExitCapture(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.svc.Exit(r.Context(), OwnerFrom(r.Context()), req.draft())
	if err != nil {
		writeError(w, "exit capture", err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}
