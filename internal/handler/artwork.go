package handler

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/msomdec/art-market/internal/domain"
	"github.com/msomdec/art-market/internal/navigation"
	"github.com/msomdec/art-market/internal/service"
	"github.com/msomdec/art-market/internal/view"
	"github.com/msomdec/art-market/internal/viewstate"
	"github.com/starfederation/datastar-go/datastar"
)

// maxUploadBytes bounds a multipart body: a 10MB image plus form fields.
const maxUploadBytes = 11 << 20

// ArtworkHandler serves the buyer and seller screens, the create-artwork
// flow and the artwork API.
type ArtworkHandler struct {
	gateway *service.Gateway
}

// NewArtworkHandler creates a new ArtworkHandler.
func NewArtworkHandler(gateway *service.Gateway) *ArtworkHandler {
	return &ArtworkHandler{gateway: gateway}
}

// HandleBuyerPage renders every artwork on the market.
// GET /buyer
func (h *ArtworkHandler) HandleBuyerPage(w http.ResponseWriter, r *http.Request) {
	list := viewstate.NewBuyerListing(screenGateway{h.gateway}).Load(r.Context())
	view.BuyerPage(list).Render(r.Context(), w)
}

// HandleSellerPage renders the signed-in seller's artworks.
// GET /seller
func (h *ArtworkHandler) HandleSellerPage(w http.ResponseWriter, r *http.Request) {
	name := domain.DefaultSellerName
	if user := UserFromContext(r.Context()); user != nil && user.Name != "" {
		name = user.Name
	}
	list := viewstate.NewSellerListing(screenGateway{h.gateway}).Load(r.Context())
	view.SellerPage(name, list).Render(r.Context(), w)
}

// HandleNewArtworkPage renders the create-artwork form.
// GET /seller/artworks/new
func (h *ArtworkHandler) HandleNewArtworkPage(w http.ResponseWriter, r *http.Request) {
	view.AddArtworkPage().Render(r.Context(), w)
}

// HandleCreate runs the create-artwork workflow for a multipart form,
// streaming each state into #upload-status, and redirects to the seller
// screen once the artwork is saved.
// POST /seller/artworks
func (h *ArtworkHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "File too large", http.StatusBadRequest)
		return
	}

	draft := draftFromForm(r)
	img, err := readImage(r)
	if err != nil {
		slog.Error("read upload", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	sse := datastar.NewSSE(w, r)
	screen := screenGateway{h.gateway}
	seller := viewstate.NewSellerListing(screen)
	upload := viewstate.NewUpload(screen, seller, func(s viewstate.UploadState) {
		err := sse.PatchElementTempl(
			view.UploadStatus(s, len(seller.State().Data)),
			datastar.WithSelectorID(view.UploadStatusID),
			datastar.WithModeInner(),
		)
		if err != nil {
			slog.Warn("patch upload status", "error", err)
		}
	})

	state, err := upload.Submit(r.Context(), draft, img)
	if err != nil {
		slog.Warn("create artwork rejected", "error", err)
		return
	}
	if state.Success {
		sse.Redirect(navigation.Seller.Route())
	}
}

// HandleDelete deletes an artwork and re-renders the seller's list via SSE.
// POST /seller/artworks/{id}/delete
func (h *ArtworkHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	seller := viewstate.NewSellerListing(screenGateway{h.gateway})
	seller.Load(r.Context())
	list := seller.Delete(r.Context(), r.PathValue("id"))

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(
		view.ArtworkList(list, true),
		datastar.WithSelectorID(view.ArtworkListID),
		datastar.WithModeInner(),
	)
}

// HandleListAll returns every artwork, newest first.
// GET /api/artworks
func (h *ArtworkHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	artworks, err := h.gateway.ListAllArtworks(r.Context())
	if err != nil {
		writeGatewayError(w, "list artworks", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"artworks": toArtworkDTOs(artworks)})
}

// HandleListMine returns the signed-in seller's artworks, newest first.
// GET /api/seller/artworks
func (h *ArtworkHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	artworks, err := h.gateway.ListSellerArtworks(r.Context())
	if err != nil {
		writeGatewayError(w, "list seller artworks", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"artworks": toArtworkDTOs(artworks)})
}

// HandleCreateJSON creates an imageless artwork.
// POST /api/seller/artworks
// Request:  {"title":"...","description":"...","price":10,"category":"..."}
// Response: {"id":"..."}
func (h *ArtworkHandler) HandleCreateJSON(w http.ResponseWriter, r *http.Request) {
	var req ArtworkRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	id, err := h.gateway.CreateArtwork(r.Context(), req.draft())
	if err != nil {
		writeGatewayError(w, "create artwork", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// HandleUploadImage attaches a multipart "image" file to an artwork.
// POST /api/artworks/{id}/image
// Response: {"imageUrl":"..."}
func (h *ArtworkHandler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "File too large.")
		return
	}

	img, err := readImage(r)
	if err != nil {
		slog.Error("read upload", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid upload.")
		return
	}
	if img == nil {
		writeError(w, http.StatusBadRequest, "No image file provided.")
		return
	}

	url, err := h.gateway.UploadImage(r.Context(), *img, r.PathValue("id"))
	if err != nil {
		writeGatewayError(w, "upload image", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"imageUrl": url})
}

// HandleDeleteJSON deletes an artwork owned by the signed-in seller.
// DELETE /api/artworks/{id}
// Response: 204 No Content
func (h *ArtworkHandler) HandleDeleteJSON(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gateway.DeleteArtwork(r.Context(), r.PathValue("id")); err != nil {
		writeGatewayError(w, "delete artwork", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// draftFromForm reads the artwork fields. An unparseable or non-finite
// price becomes 0.
func draftFromForm(r *http.Request) domain.ArtworkDraft {
	price, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("price")), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		price = 0
	}
	return domain.ArtworkDraft{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: r.FormValue("description"),
		Price:       price,
		Category:    r.FormValue("category"),
	}
}

// readImage returns the "image" file of a parsed multipart form, or nil if
// none was selected.
func readImage(r *http.Request) (*domain.ImageUpload, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	// Detect content type from file bytes (more reliable than multipart header).
	return &domain.ImageUpload{
		Filename:    header.Filename,
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}
