package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/unpack/internal/apperr"
)

// GetTangent handles GET /api/tangents/{id}.
//
//	@Summary		Get a tangent
//	@Tags			tangents
//	@Produce		json
//	@Param			id	path		string	true	"Tangent ID"
//	@Success		200	{object}	models.Tangent
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tangents/{id} [get]
func (h *Handler) GetTangent(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.GetTangent(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get tangent", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// OpenTangent handles POST /api/tangents/{id}/open.
//
//	@Summary		Open a tangent conversation
//	@Description	Marks the tangent as explored and seeds the first companion message.
//	@Tags			tangents
//	@Produce		json
//	@Param			id	path		string	true	"Tangent ID"
//	@Success		200	{object}	ConversationResponse
//	@Security		BearerAuth
//	@Router			/tangents/{id}/open [post]
func (h *Handler) OpenTangent(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.OpenTangent(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "open tangent", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ListMessages handles GET /api/tangents/{id}/messages.
//
//	@Summary		Conversation history of a tangent
//	@Tags			tangents
//	@Produce		json
//	@Param			id	path		string	true	"Tangent ID"
//	@Success		200	{object}	ConversationResponse
//	@Security		BearerAuth
//	@Router			/tangents/{id}/messages [get]
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Messages(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "list messages", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// SendMessage handles POST /api/tangents/{id}/messages.
//
//	@Summary		Send a message to the companion
//	@Description	On 502 the user's message is kept and returned; POST /retry asks again.
//	@Tags			tangents
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Tangent ID"
//	@Param			body	body		SendMessageRequest	true	"Message"
//	@Success		201		{object}	TurnResponse
//	@Failure		409		{object}	errResponse
//	@Failure		429		{object}	errResponse
//	@Failure		502		{object}	FailedTurnResponse
//	@Security		BearerAuth
//	@Router			/tangents/{id}/messages [post]
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	turn, err := h.svc.Send(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id"), req.ClientID, req.Content)
	if err != nil {
		if errors.Is(err, apperr.ErrResponse) && turn.User.ID != "" {
			status, msg := statusFor(err)
			writeJSON(w, status, FailedTurnResponse{Error: msg, Message: turn.User})
			return
		}
		writeError(w, "send message", err)
		return
	}
	writeJSON(w, http.StatusCreated, TurnResponse{Message: turn.User, Reply: turn.Reply})
}

// RetryMessage handles POST /api/tangents/{id}/retry.
//
//	@Summary		Regenerate the reply to an unanswered message
//	@Tags			tangents
//	@Produce		json
//	@Param			id	path		string	true	"Tangent ID"
//	@Success		201	{object}	models.Message
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tangents/{id}/retry [post]
func (h *Handler) RetryMessage(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Retry(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "retry message", err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// DeleteTangent handles DELETE /api/tangents/{id}.
//
//	@Summary		Delete a tangent and its messages
//	@Tags			tangents
//	@Param			id	path	string	true	"Tangent ID"
//	@Success		204
//	@Security		BearerAuth
//	@Router			/tangents/{id} [delete]
func (h *Handler) DeleteTangent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTangent(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete tangent", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
