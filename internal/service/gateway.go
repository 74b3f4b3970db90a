package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/msomdec/art-market/internal/domain"
)

const maxImageSize = 10 * 1024 * 1024 // 10MB

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// IdentityProvider creates and verifies authentication identities.
type IdentityProvider interface {
	CreateIdentity(ctx context.Context, email, password string) (string, error)
	VerifyIdentity(ctx context.Context, email, password string) (string, error)
}

// Gateway exposes the marketplace operations over the identity provider,
// the users document collection, the artworks realtime store and the blob
// store. Operations that need a signed-in user read it from the context
// (see WithSession).
type Gateway struct {
	auth     IdentityProvider
	accounts domain.AccountStore
	artworks domain.ArtworkStore
	blobs    domain.BlobStore
	now      func() time.Time
}

// GatewayOption customizes a Gateway.
type GatewayOption func(*Gateway)

// WithClock replaces the time source used for creation timestamps.
func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) { g.now = now }
}

// NewGateway creates a new Gateway.
func NewGateway(auth IdentityProvider, accounts domain.AccountStore, artworks domain.ArtworkStore, blobs domain.BlobStore, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		auth:     auth,
		accounts: accounts,
		artworks: artworks,
		blobs:    blobs,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Register creates an identity and then its Account document. If the
// document write fails the identity is left in place.
func (g *Gateway) Register(ctx context.Context, email, password, name string, isSeller bool) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	id, err := g.auth.CreateIdentity(ctx, email, password)
	if err != nil {
		return "", err
	}

	account := &domain.Account{
		ID:        id,
		Name:      name,
		Email:     normalizeEmail(email),
		IsSeller:  isSeller,
		CreatedAt: g.now().UnixMilli(),
	}
	if err := g.accounts.Set(ctx, account); err != nil {
		slog.Error("account write failed after identity creation", "identity_id", id, "error", err)
		return "", fmt.Errorf("save account: %w", err)
	}

	slog.Info("user registered", "identity_id", id, "seller", isSeller)
	return id, nil
}

// Login verifies credentials and returns the identity ID.
func (g *Gateway) Login(ctx context.Context, email, password string) (string, error) {
	return g.auth.VerifyIdentity(ctx, email, password)
}

// CurrentUser returns the Account of the signed-in user.
func (g *Gateway) CurrentUser(ctx context.Context) (*domain.Account, error) {
	uid, ok := SessionFrom(ctx)
	if !ok {
		return nil, domain.ErrNoSession
	}

	account, err := g.accounts.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user profile is missing", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

// CreateArtwork writes a new imageless artwork owned by the signed-in user
// and returns its ID.
func (g *Gateway) CreateArtwork(ctx context.Context, draft domain.ArtworkDraft) (string, error) {
	uid, ok := SessionFrom(ctx)
	if !ok {
		return "", domain.ErrNoSession
	}
	if err := draft.Validate(); err != nil {
		return "", err
	}

	id := g.artworks.NewID()

	// A missing account and an empty name both take the default: the decoded
	// document cannot tell an absent name field from an empty one.
	sellerName := domain.DefaultSellerName
	account, err := g.accounts.Get(ctx, uid)
	switch {
	case err == nil && account.Name != "":
		sellerName = account.Name
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return "", fmt.Errorf("get seller account: %w", err)
	}

	artwork := &domain.Artwork{
		ID:          id,
		Title:       draft.Title,
		Description: draft.Description,
		Price:       draft.Price,
		Category:    draft.Category,
		ImageURL:    "",
		SellerID:    uid,
		SellerName:  sellerName,
		CreatedAt:   g.now().UnixMilli(),
	}
	if err := g.artworks.Set(ctx, artwork); err != nil {
		return "", fmt.Errorf("write artwork: %w", err)
	}

	slog.Info("artwork created", "artwork_id", id, "seller_id", uid)
	return id, nil
}

// UploadImage stores img as the artwork's image and patches the record
// with the resulting download URL. Ownership of artworkID is not checked.
func (g *Gateway) UploadImage(ctx context.Context, img domain.ImageUpload, artworkID string) (string, error) {
	if artworkID == "" {
		return "", fmt.Errorf("%w: artwork id is required", domain.ErrInvalidInput)
	}
	if len(img.Data) == 0 {
		return "", fmt.Errorf("%w: image is empty", domain.ErrInvalidInput)
	}
	if len(img.Data) > maxImageSize {
		return "", fmt.Errorf("%w: image exceeds 10MB limit", domain.ErrInvalidInput)
	}
	if !slices.Contains(allowedImageTypes, img.ContentType) {
		return "", fmt.Errorf("%w: only JPEG, PNG, WebP and GIF images are accepted", domain.ErrInvalidInput)
	}

	path := domain.ArtworkImagePath(artworkID)
	if err := g.blobs.Put(ctx, path, img.Data, img.ContentType); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	url, err := g.blobs.DownloadURL(ctx, path)
	if err != nil {
		return "", fmt.Errorf("get download url: %w", err)
	}

	if err := g.artworks.SetImageURL(ctx, artworkID, url); err != nil {
		return "", fmt.Errorf("attach image to artwork: %w", err)
	}

	slog.Info("artwork image uploaded", "artwork_id", artworkID, "bytes", len(img.Data))
	return url, nil
}

// ListSellerArtworks returns the signed-in user's artworks, newest first.
func (g *Gateway) ListSellerArtworks(ctx context.Context) ([]domain.Artwork, error) {
	uid, ok := SessionFrom(ctx)
	if !ok {
		return nil, domain.ErrNoSession
	}

	artworks, err := g.artworks.ListBySeller(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list seller artworks: %w", err)
	}
	sortNewestFirst(artworks)
	return artworks, nil
}

// ListAllArtworks returns every artwork, newest first.
func (g *Gateway) ListAllArtworks(ctx context.Context) ([]domain.Artwork, error) {
	artworks, err := g.artworks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list artworks: %w", err)
	}
	sortNewestFirst(artworks)
	return artworks, nil
}

// DeleteArtwork removes an artwork owned by the signed-in user. Its image
// is deleted on a best-effort basis; failures there are logged only.
func (g *Gateway) DeleteArtwork(ctx context.Context, artworkID string) (bool, error) {
	uid, ok := SessionFrom(ctx)
	if !ok {
		return false, domain.ErrNoSession
	}

	artwork, err := g.artworks.Get(ctx, artworkID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, fmt.Errorf("%w: artwork %s", domain.ErrNotFound, artworkID)
		}
		return false, fmt.Errorf("get artwork: %w", err)
	}
	if artwork.SellerID != uid {
		return false, fmt.Errorf("%w: artwork belongs to another seller", domain.ErrPermission)
	}

	if artwork.ImageURL != "" {
		imageURL, _, _ := strings.Cut(artwork.ImageURL, "?")
		if err := g.blobs.DeleteByURL(ctx, imageURL); err != nil {
			slog.Warn("delete artwork image", "artwork_id", artworkID, "url", imageURL, "error", err)
		}
	}

	if err := g.artworks.Delete(ctx, artworkID); err != nil {
		return false, fmt.Errorf("delete artwork: %w", err)
	}

	slog.Info("artwork deleted", "artwork_id", artworkID, "seller_id", uid)
	return true, nil
}

// sortNewestFirst orders by CreatedAt descending, keeping store order for ties.
func sortNewestFirst(artworks []domain.Artwork) {
	slices.SortStableFunc(artworks, func(a, b domain.Artwork) int {
		return cmp.Compare(b.CreatedAt, a.CreatedAt)
	})
}
