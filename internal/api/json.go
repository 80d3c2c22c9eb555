package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/unpack/internal/apperr"
	"github.com/starford/unpack/internal/blobstore"
	"github.com/starford/unpack/internal/conversation"
	"github.com/starford/unpack/internal/pipeline"
)

// statusClientClosedRequest reports a capture the client cancelled.
const statusClientClosedRequest = 499

const maxJSONBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// decodeJSON reads a JSON body into v and validates it when v implements
// validation.Validatable.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	if vv, ok := v.(validation.Validatable); ok {
		if err := vv.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return false
		}
	}
	return true
}

// statusFor maps a domain error to its HTTP status and public message.
func statusFor(err error) (int, string) {
	var (
		verrs validation.Errors
		verr  validation.Error
	)
	switch {
	case errors.As(err, &verrs), errors.As(err, &verr):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperr.ErrInvalidState):
		return http.StatusConflict, "conversation is not ready for that"
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrAlreadyExists):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperr.ErrBusy):
		return http.StatusTooManyRequests, "a reply is already being written"
	case errors.Is(err, apperr.ErrExtraction):
		return http.StatusBadGateway, "could not read the journal pages, please try again"
	case errors.Is(err, apperr.ErrResponse):
		return http.StatusBadGateway, "the companion could not reply, please retry"
	case errors.Is(err, pipeline.ErrReviewRequired):
		return http.StatusUnprocessableEntity, "extracted text needs review"
	case errors.Is(err, conversation.ErrEmptyMessage):
		return http.StatusBadRequest, "message is empty"
	case errors.Is(err, blobstore.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, "unsupported image type"
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, "capture cancelled"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// writeError writes the mapped status for err, logging unexpected ones.
func writeError(w http.ResponseWriter, op string, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(op+" failed", slog.String("error", err.Error()))
	} else if status == http.StatusBadGateway {
		slog.Warn(op+" failed upstream", slog.String("error", err.Error()))
	}
	writeJSON(w, status, errorBody(msg))
}
