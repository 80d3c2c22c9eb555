package api

import (
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/starford/unpack/internal/blobstore"
)

const maxUploadBytes = 20 << 20 // 20 MB

// UploadPhoto handles POST /api/photos (multipart/form-data, field "file").
//
//	@Summary		Upload a journal page photo
//	@Tags			photos
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"JPEG, PNG, WebP or HEIC image"
//	@Success		201		{object}	PhotoUploadResponse
//	@Failure		400		{object}	errResponse
//	@Failure		415		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/photos [post]
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("file is empty"))
		return
	}

	ct := header.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}

	p, err := h.svc.UploadPhoto(r.Context(), OwnerFrom(r.Context()), ct, data)
	if err != nil {
		writeError(w, "upload photo", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// PhotoHandler serves stored photos behind signed URLs. It is mounted
// outside the authenticated API so the URLs work in image tags.
type PhotoHandler struct {
	photos blobstore.Provider
	signer *blobstore.Signer
}

// NewPhotoHandler creates a handler over the photo store.
func NewPhotoHandler(photos blobstore.Provider, signer *blobstore.Signer) *PhotoHandler {
	return &PhotoHandler{photos: photos, signer: signer}
}

// ServeFile handles GET /photos/*.
func (h *PhotoHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	q := r.URL.Query()
	if err := h.signer.Verify(key, q.Get("expires"), q.Get("sig")); err != nil {
		http.Error(w, "invalid or expired link", http.StatusForbidden)
		return
	}

	data, err := h.photos.Read(key)
	switch {
	case errors.Is(err, blobstore.ErrInvalidKey):
		http.Error(w, "invalid key", http.StatusBadRequest)
		return
	case errors.Is(err, os.ErrNotExist):
		http.NotFound(w, r)
		return
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	etag := `"` + blobstore.Checksum(data) + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", blobstore.ContentType(key))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
