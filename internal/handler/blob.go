package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/art-market/internal/domain"
)

// BlobHandler serves objects held by a self-hosted blob store at the
// download URLs it hands out.
type BlobHandler struct {
	blobs domain.BlobReader
}

// NewBlobHandler creates a new BlobHandler.
func NewBlobHandler(blobs domain.BlobReader) *BlobHandler {
	return &BlobHandler{blobs: blobs}
}

// HandleServe serves blob bytes with their stored Content-Type.
// GET /blobs/{path...}?token=...
func (h *BlobHandler) HandleServe(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.blobs.Get(r.Context(), r.PathValue("path"), r.URL.Query().Get("token"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("serve blob", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
