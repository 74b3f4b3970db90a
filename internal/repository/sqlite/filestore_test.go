package sqlite_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/msomdec/art-market/internal/domain"
	"github.com/msomdec/art-market/internal/repository/sqlite"
)

func newTestBlobs(t *testing.T) *sqlite.BlobStore {
	t.Helper()
	blobs, err := newTestDB(t).Blobs("http://localhost:8080")
	if err != nil {
		t.Fatalf("Blobs: %v", err)
	}
	return blobs
}

func TestBlobStore_PutAndDownloadURL(t *testing.T) {
	blobs := newTestBlobs(t)
	ctx := context.Background()

	if err := blobs.Put(ctx, "artworks/a1.jpg", []byte("jpeg-bytes"), "image/jpeg"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	raw, err := blobs.DownloadURL(ctx, "artworks/a1.jpg")
	if err != nil {
		t.Fatalf("DownloadURL: %v", err)
	}
	if !strings.HasPrefix(raw, "http://localhost:8080/blobs/artworks/a1.jpg?token=") {
		t.Fatalf("unexpected download url %q", raw)
	}

	u, _ := url.Parse(raw)
	data, contentType, err := blobs.Get(ctx, "artworks/a1.jpg", u.Query().Get("token"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "jpeg-bytes" || contentType != "image/jpeg" {
		t.Fatalf("unexpected blob %q (%s)", data, contentType)
	}
}

func TestBlobStore_GetWrongToken(t *testing.T) {
	blobs := newTestBlobs(t)
	ctx := context.Background()

	if err := blobs.Put(ctx, "artworks/a1.jpg", []byte("x"), "image/jpeg"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	_, _, err := blobs.Get(ctx, "artworks/a1.jpg", "guess")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong token, got %v", err)
	}
}

func TestBlobStore_DownloadURL_NotFound(t *testing.T) {
	blobs := newTestBlobs(t)

	_, err := blobs.DownloadURL(context.Background(), "artworks/missing.jpg")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBlobStore_DeleteByURL(t *testing.T) {
	blobs := newTestBlobs(t)
	ctx := context.Background()

	if err := blobs.Put(ctx, "artworks/a1.jpg", []byte("x"), "image/jpeg"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	raw, err := blobs.DownloadURL(ctx, "artworks/a1.jpg")
	if err != nil {
		t.Fatalf("DownloadURL: %v", err)
	}

	if err := blobs.DeleteByURL(ctx, strings.SplitN(raw, "?", 2)[0]); err != nil {
		t.Fatalf("DeleteByURL: %v", err)
	}
	if _, err := blobs.DownloadURL(ctx, "artworks/a1.jpg"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected blob to be gone, got %v", err)
	}
}

func TestBlobStore_DeleteByURL_ForeignURL(t *testing.T) {
	blobs := newTestBlobs(t)

	tests := []string{
		"http://elsewhere.example.com/blobs/artworks/a1.jpg",
		"http://localhost:8080/static/a1.jpg",
		"http://localhost:8080/blobs/",
	}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			err := blobs.DeleteByURL(context.Background(), raw)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestNewBlobStore_RequiresAbsoluteURL(t *testing.T) {
	db := newTestDB(t)

	if _, err := sqlite.NewBlobStore(db, "/relative"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
