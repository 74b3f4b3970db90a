package service_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/msomdec/art-market/internal/domain"
	"github.com/msomdec/art-market/internal/repository/sqlite"
	"github.com/msomdec/art-market/internal/service"
)

var jpegBytes = []byte("\xff\xd8\xff\xe0fake-jpeg")

type gatewayFixture struct {
	gw    *service.Gateway
	db    *sqlite.DB
	blobs *sqlite.BlobStore
}

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	t := time.UnixMilli(1_700_000_000_000)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestGateway(t *testing.T, opts ...service.GatewayOption) gatewayFixture {
	t.Helper()
	db := newTestDB(t)
	blobs, err := db.Blobs("http://localhost:8080")
	if err != nil {
		t.Fatalf("Blobs: %v", err)
	}
	auth := service.NewAuthService(db.Identities(), testJWTSecret, 4)
	opts = append([]service.GatewayOption{service.WithClock(stepClock())}, opts...)
	gw := service.NewGateway(auth, db.Accounts(), db.Artworks(), blobs, opts...)
	return gatewayFixture{gw: gw, db: db, blobs: blobs}
}

func registerSession(t *testing.T, gw *service.Gateway, email, name string, isSeller bool) context.Context {
	t.Helper()
	id, err := gw.Register(context.Background(), email, "password123", name, isSeller)
	if err != nil {
		t.Fatalf("Register %s: %v", email, err)
	}
	return service.WithSession(context.Background(), id)
}

func createArtwork(t *testing.T, gw *service.Gateway, ctx context.Context, title string) string {
	t.Helper()
	id, err := gw.CreateArtwork(ctx, domain.ArtworkDraft{Title: title, Price: 10, Category: "painting"})
	if err != nil {
		t.Fatalf("CreateArtwork %s: %v", title, err)
	}
	return id
}

type failingAccounts struct{ domain.AccountStore }

func (failingAccounts) Set(ctx context.Context, account *domain.Account) error {
	return errors.New("document store unavailable")
}

type failingBlobDelete struct{ domain.BlobStore }

func (failingBlobDelete) DeleteByURL(ctx context.Context, url string) error {
	return errors.New("storage quota exceeded")
}

func TestGateway_Register_CreatesAccount(t *testing.T) {
	f := newTestGateway(t)
	ctx := registerSession(t, f.gw, "a@x.com", "Alice", true)

	account, err := f.gw.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if account.Name != "Alice" || account.Email != "a@x.com" || !account.IsSeller {
		t.Fatalf("unexpected account %+v", account)
	}
	if account.Bio != "" || account.ProfilePictureURL != "" {
		t.Fatalf("expected empty bio and picture, got %+v", account)
	}
	if account.CreatedAt == 0 {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestGateway_Register_DuplicateEmail(t *testing.T) {
	f := newTestGateway(t)
	registerSession(t, f.gw, "a@x.com", "Alice", true)

	_, err := f.gw.Register(context.Background(), "a@x.com", "password123", "Other", false)
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestGateway_Register_RequiresName(t *testing.T) {
	f := newTestGateway(t)

	_, err := f.gw.Register(context.Background(), "a@x.com", "password123", "  ", false)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGateway_Register_AccountWriteFailureLeavesIdentity(t *testing.T) {
	db := newTestDB(t)
	auth := service.NewAuthService(db.Identities(), testJWTSecret, 4)
	gw := service.NewGateway(auth, failingAccounts{db.Accounts()}, db.Artworks(), nil)
	ctx := context.Background()

	if _, err := gw.Register(ctx, "orphan@x.com", "password123", "Orphan", false); err == nil {
		t.Fatal("expected Register to fail when the account write fails")
	}

	id, err := gw.Login(ctx, "orphan@x.com", "password123")
	if err != nil {
		t.Fatalf("expected identity to survive failed register, Login: %v", err)
	}

	_, err = gw.CurrentUser(service.WithSession(ctx, id))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing account, got %v", err)
	}
}

func TestGateway_Login(t *testing.T) {
	f := newTestGateway(t)
	ctx := registerSession(t, f.gw, "a@x.com", "Alice", true)
	want, _ := service.SessionFrom(ctx)

	got, err := f.gw.Login(context.Background(), "a@x.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	if _, err := f.gw.Login(context.Background(), "a@x.com", "nope-nope"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestGateway_RequiresSession(t *testing.T) {
	f := newTestGateway(t)
	ctx := context.Background()

	if _, err := f.gw.CurrentUser(ctx); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("CurrentUser: expected ErrNoSession, got %v", err)
	}
	if _, err := f.gw.CreateArtwork(ctx, domain.ArtworkDraft{Title: "x"}); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("CreateArtwork: expected ErrNoSession, got %v", err)
	}
	if _, err := f.gw.ListSellerArtworks(ctx); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("ListSellerArtworks: expected ErrNoSession, got %v", err)
	}
	if _, err := f.gw.DeleteArtwork(ctx, "any"); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("DeleteArtwork: expected ErrNoSession, got %v", err)
	}
}

func TestGateway_CreateArtwork_ScenarioAlice(t *testing.T) {
	f := newTestGateway(t)
	ctx := registerSession(t, f.gw, "a@x.com", "Alice", true)
	uid, _ := service.SessionFrom(ctx)

	id := createArtwork(t, f.gw, ctx, "Sun")

	artworks, err := f.gw.ListSellerArtworks(ctx)
	if err != nil {
		t.Fatalf("ListSellerArtworks: %v", err)
	}
	if len(artworks) != 1 {
		t.Fatalf("expected 1 artwork, got %d", len(artworks))
	}
	got := artworks[0]
	if got.ID != id || got.Title != "Sun" || got.ImageURL != "" || got.SellerName != "Alice" || got.SellerID != uid {
		t.Fatalf("unexpected artwork %+v", got)
	}
	if got.Price != 10 || got.Category != "painting" || got.CreatedAt == 0 {
		t.Fatalf("unexpected artwork fields %+v", got)
	}
}

func TestGateway_CreateArtwork_DefaultSellerName(t *testing.T) {
	f := newTestGateway(t)
	ctx := service.WithSession(context.Background(), "identity-without-account")

	createArtwork(t, f.gw, ctx, "Untitled")

	artworks, err := f.gw.ListSellerArtworks(ctx)
	if err != nil {
		t.Fatalf("ListSellerArtworks: %v", err)
	}
	if artworks[0].SellerName != domain.DefaultSellerName {
		t.Fatalf("expected default seller name, got %q", artworks[0].SellerName)
	}
}

func TestGateway_CreateArtwork_EmptyNameTakesDefault(t *testing.T) {
	f := newTestGateway(t)
	ctx := service.WithSession(context.Background(), "nameless")
	if err := f.db.Accounts().Set(ctx, &domain.Account{ID: "nameless", IsSeller: true}); err != nil {
		t.Fatalf("Set account: %v", err)
	}

	createArtwork(t, f.gw, ctx, "Untitled")

	artworks, err := f.gw.ListSellerArtworks(ctx)
	if err != nil {
		t.Fatalf("ListSellerArtworks: %v", err)
	}
	if artworks[0].SellerName != domain.DefaultSellerName {
		t.Fatalf("expected default seller name, got %q", artworks[0].SellerName)
	}
}

func TestGateway_CreateArtwork_InvalidDraft(t *testing.T) {
	f := newTestGateway(t)
	ctx := registerSession(t, f.gw, "a@x.com", "Alice", true)

	tests := []struct {
		name  string
		draft domain.ArtworkDraft
	}{
		{"missing title", domain.ArtworkDraft{Price: 1}},
		{"negative price", domain.ArtworkDraft{Title: "x", Price: -1}},
		{"NaN price", domain.ArtworkDraft{Title: "x", Price: math.NaN()}},
		{"infinite price", domain.ArtworkDraft{Title: "x", Price: math.Inf(1)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.gw.CreateArtwork(ctx, tc.draft); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	all, err := f.gw.ListAllArtworks(ctx)
	if err != nil {
		t.Fatalf("ListAllArtworks: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no artworks written, got %d", len(all))
	}
}

func TestGateway_UploadImage_RoundTrip(t *testing.T) {
	f := newTestGateway(t)
	ctx := registerSession(t, f.gw, "a@x.com", "Alice", true)
	id := createArtwork(t, f.gw, ctx, "Sun")

	before, err := f.gw.ListAllArtworks(ctx)
	if err != nil {
		t.Fatalf("ListAllArtworks: %v", err)
	}

	url, err := f.gw.UploadImage(ctx, domain.ImageUpload{Filename: "sun.jpg", ContentType: "image/jpeg", Data: jpegBytes}, id)
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if !strings.Contains(url, "/blobs/artworks/"+id+".jpg?token=") {
		t.Fatalf("unexpected download url %q", url)
	}

	after, err := f.gw.ListAllArtworks(ctx)
	if err != nil {
		t.Fatalf("ListAllArtworks: %v", err)
	}
	want := before[0]
	want.ImageURL = url
	if after[0] != want {
		t.Fatalf("expected %+v, got %+v", want, after[0])
	}
}

func TestGateway_UploadImage_DoesNotCheckOwnership(t *testing.T) {
	f := newTestGateway(t)
	alice := registerSession(t, f.gw, "a@x.com", "Alice", true)
	bob := registerSession(t, f.gw, "b@x.com", "Bob", true)
	id := createArtwork(t, f.gw, alice, "Sun")

	if _, err := f.gw.UploadImage(bob, domain.ImageUpload{ContentType: "image/jpeg", Data: jpegBytes}, id); err != nil {
		t.Fatalf("UploadImage by another user: %v", err)
	}
}

func TestGateway_UploadImage_Invalid(t *testing.T) {
	f := newTestGateway(t)
	ctx := registerSession(t, f.gw, "a@x.com", "Alice", true)
	id := createArtwork(t, f.gw, ctx, "Sun")

	tests := []struct {
		name string
		img  domain.ImageUpload
		id   string
	}{
		{"empty", domain.ImageUpload{ContentType: "image/jpeg"}, id},
		{"not an image", domain.ImageUpload{ContentType: "text/plain", Data: []byte("hi")}, id},
		{"too large", domain.ImageUpload{ContentType: "image/png", Data: make([]byte, 10*1024*1024+1)}, id},
		{"no artwork id", domain.ImageUpload{ContentType: "image/jpeg", Data: jpegBytes}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.gw.UploadImage(ctx, tc.img, tc.id); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestGateway_UploadImage_MissingArtwork(t *testing.T) {
	f := newTestGateway(t)
	ctx := registerSession(t, f.gw, "a@x.com", "Alice", true)

	_, err := f.gw.UploadImage(ctx, domain.ImageUpload{ContentType: "image/jpeg", Data: jpegBytes}, "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGateway_ListArtworks_FilterAndOrder(t *testing.T) {
	f := newTestGateway(t)
	alice := registerSession(t, f.gw, "a@x.com", "Alice", true)
	bob := registerSession(t, f.gw, "b@x.com", "Bob", true)
	aliceID, _ := service.SessionFrom(alice)

	createArtwork(t, f.gw, alice, "first")
	createArtwork(t, f.gw, bob, "bob's")
	createArtwork(t, f.gw, alice, "second")
	createArtwork(t, f.gw, alice, "third")

	mine, err := f.gw.ListSellerArtworks(alice)
	if err != nil {
		t.Fatalf("ListSellerArtworks: %v", err)
	}
	gotTitles := titles(mine)
	if strings.Join(gotTitles, ",") != "third,second,first" {
		t.Fatalf("expected newest first, got %v", gotTitles)
	}
	for _, a := range mine {
		if a.SellerID != aliceID {
			t.Fatalf("expected only alice's artworks, got seller %s", a.SellerID)
		}
	}

	all, err := f.gw.ListAllArtworks(context.Background())
	if err != nil {
		t.Fatalf("ListAllArtworks: %v", err)
	}
	if strings.Join(titles(all), ",") != "third,second,bob's,first" {
		t.Fatalf("unexpected order %v", titles(all))
	}
}

func TestGateway_ListArtworks_TiesKeepStoreOrder(t *testing.T) {
	frozen := time.UnixMilli(1_700_000_000_000)
	f := newTestGateway(t, service.WithClock(func() time.Time { return frozen }))
	ctx := registerSession(t, f.gw, "a@x.com", "Alice", true)

	createArtwork(t, f.gw, ctx, "a")
	createArtwork(t, f.gw, ctx, "b")
	createArtwork(t, f.gw, ctx, "c")

	all, err := f.gw.ListAllArtworks(ctx)
	if err != nil {
		t.Fatalf("ListAllArtworks: %v", err)
	}
	if strings.Join(titles(all), ",") != "a,b,c" {
		t.Fatalf("expected push-key order for equal timestamps, got %v", titles(all))
	}
}

func TestGateway_DeleteArtwork_Owned(t *testing.T) {
	f := newTestGateway(t)
	ctx := registerSession(t, f.gw, "a@x.com", "Alice", true)
	id := createArtwork(t, f.gw, ctx, "Sun")
	if _, err := f.gw.UploadImage(ctx, domain.ImageUpload{ContentType: "image/jpeg", Data: jpegBytes}, id); err != nil {
		t.Fatalf("UploadImage: %v", err)
	}

	ok, err := f.gw.DeleteArtwork(ctx, id)
	if err != nil || !ok {
		t.Fatalf("DeleteArtwork: %v (%v)", err, ok)
	}

	artworks, err := f.gw.ListSellerArtworks(ctx)
	if err != nil {
		t.Fatalf("ListSellerArtworks: %v", err)
	}
	if len(artworks) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(artworks))
	}
	if _, err := f.blobs.DownloadURL(ctx, domain.ArtworkImagePath(id)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected image blob to be deleted, got %v", err)
	}
}

func TestGateway_DeleteArtwork_BlobFailureIsSwallowed(t *testing.T) {
	db := newTestDB(t)
	blobs, err := db.Blobs("http://localhost:8080")
	if err != nil {
		t.Fatalf("Blobs: %v", err)
	}
	auth := service.NewAuthService(db.Identities(), testJWTSecret, 4)
	gw := service.NewGateway(auth, db.Accounts(), db.Artworks(), failingBlobDelete{blobs})
	ctx := registerSession(t, gw, "a@x.com", "Alice", true)
	id := createArtwork(t, gw, ctx, "Sun")
	if _, err := gw.UploadImage(ctx, domain.ImageUpload{ContentType: "image/jpeg", Data: jpegBytes}, id); err != nil {
		t.Fatalf("UploadImage: %v", err)
	}

	if _, err := gw.DeleteArtwork(ctx, id); err != nil {
		t.Fatalf("expected delete to succeed despite blob failure, got %v", err)
	}
	if _, err := db.Artworks().Get(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected record to be gone, got %v", err)
	}
}

func TestGateway_DeleteArtwork_NotOwned(t *testing.T) {
	f := newTestGateway(t)
	alice := registerSession(t, f.gw, "a@x.com", "Alice", true)
	bob := registerSession(t, f.gw, "b@x.com", "Bob", true)
	id := createArtwork(t, f.gw, alice, "Sun")

	_, err := f.gw.DeleteArtwork(bob, id)
	if !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("expected ErrPermission, got %v", err)
	}

	if _, err := f.db.Artworks().Get(alice, id); err != nil {
		t.Fatalf("expected artwork to survive, got %v", err)
	}
}

func TestGateway_DeleteArtwork_Missing(t *testing.T) {
	f := newTestGateway(t)
	ctx := registerSession(t, f.gw, "a@x.com", "Alice", true)

	_, err := f.gw.DeleteArtwork(ctx, "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func titles(artworks []domain.Artwork) []string {
	out := make([]string, len(artworks))
	for i, a := range artworks {
		out[i] = a.Title
	}
	return out
}
