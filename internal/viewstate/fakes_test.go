package viewstate_test

import (
	"context"

	"github.com/msomdec/art-market/internal/domain"
)

// fakeGateway is an in-memory gateway. Errors set on it are returned by
// the matching call.
type fakeGateway struct {
	account  *domain.Account
	artworks []domain.Artwork

	registerErr error
	loginErr    error
	userErr     error
	listErr     error
	deleteErr   error
	createErr   error
	uploadErr   error

	nextID    int
	listCalls int
}

func (f *fakeGateway) Register(ctx context.Context, email, password, name string, isSeller bool) (string, error) {
	if f.registerErr != nil {
		return "", f.registerErr
	}
	f.account = &domain.Account{ID: "uid-1", Name: name, Email: email, IsSeller: isSeller}
	return "uid-1", nil
}

func (f *fakeGateway) Login(ctx context.Context, email, password string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return "uid-1", nil
}

func (f *fakeGateway) CurrentUser(ctx context.Context) (*domain.Account, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	if f.account == nil {
		return nil, domain.ErrNotFound
	}
	return f.account, nil
}

func (f *fakeGateway) ListSellerArtworks(ctx context.Context) ([]domain.Artwork, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Artwork(nil), f.artworks...), nil
}

func (f *fakeGateway) ListAllArtworks(ctx context.Context) ([]domain.Artwork, error) {
	return f.ListSellerArtworks(ctx)
}

func (f *fakeGateway) DeleteArtwork(ctx context.Context, id string) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	for i, a := range f.artworks {
		if a.ID == id {
			f.artworks = append(f.artworks[:i], f.artworks[i+1:]...)
			return true, nil
		}
	}
	return false, domain.ErrNotFound
}

func (f *fakeGateway) CreateArtwork(ctx context.Context, draft domain.ArtworkDraft) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	id := "art-" + string(rune('0'+f.nextID))
	f.artworks = append(f.artworks, domain.Artwork{ID: id, Title: draft.Title, Price: draft.Price})
	return id, nil
}

func (f *fakeGateway) UploadImage(ctx context.Context, img domain.ImageUpload, artworkID string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return "http://blobs/" + artworkID + ".jpg", nil
}
