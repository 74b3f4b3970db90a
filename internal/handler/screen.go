package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/art-market/internal/domain"
	"github.com/msomdec/art-market/internal/service"
)

// screenGateway reduces gateway errors to the same client-safe messages the
// JSON API sends, so wrapped internals never reach a rendered screen.
type screenGateway struct {
	gw *service.Gateway
}

func (s screenGateway) Register(ctx context.Context, email, password, name string, isSeller bool) (string, error) {
	id, err := s.gw.Register(ctx, email, password, name, isSeller)
	return id, clientError("register user", err)
}

func (s screenGateway) Login(ctx context.Context, email, password string) (string, error) {
	id, err := s.gw.Login(ctx, email, password)
	return id, clientError("login user", err)
}

func (s screenGateway) CurrentUser(ctx context.Context) (*domain.Account, error) {
	account, err := s.gw.CurrentUser(ctx)
	return account, clientError("get current user", err)
}

func (s screenGateway) CreateArtwork(ctx context.Context, draft domain.ArtworkDraft) (string, error) {
	id, err := s.gw.CreateArtwork(ctx, draft)
	return id, clientError("create artwork", err)
}

func (s screenGateway) UploadImage(ctx context.Context, img domain.ImageUpload, artworkID string) (string, error) {
	url, err := s.gw.UploadImage(ctx, img, artworkID)
	return url, clientError("upload image", err)
}

func (s screenGateway) ListSellerArtworks(ctx context.Context) ([]domain.Artwork, error) {
	artworks, err := s.gw.ListSellerArtworks(ctx)
	return artworks, clientError("list seller artworks", err)
}

func (s screenGateway) ListAllArtworks(ctx context.Context) ([]domain.Artwork, error) {
	artworks, err := s.gw.ListAllArtworks(ctx)
	return artworks, clientError("list artworks", err)
}

func (s screenGateway) DeleteArtwork(ctx context.Context, artworkID string) (bool, error) {
	ok, err := s.gw.DeleteArtwork(ctx, artworkID)
	return ok, clientError("delete artwork", err)
}

// clientError replaces err with its client-facing message, logging
// unexpected failures.
func clientError(op string, err error) error {
	if err == nil {
		return nil
	}
	status, msg := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error(op, "error", err)
	}
	return errors.New(msg)
}
