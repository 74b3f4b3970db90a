package handler_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/msomdec/art-market/internal/handler"
	"github.com/msomdec/art-market/internal/repository/sqlite"
	"github.com/msomdec/art-market/internal/service"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

// pngBytes starts with the PNG signature so content sniffing reports image/png.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

type testEnv struct {
	db      *sqlite.DB
	auth    *service.AuthService
	gateway *service.Gateway
	blobs   *sqlite.BlobStore
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	blobs, err := db.Blobs("http://localhost:8080")
	if err != nil {
		t.Fatalf("Blobs: %v", err)
	}
	auth := service.NewAuthService(db.Identities(), testJWTSecret, 4)
	gateway := service.NewGateway(auth, db.Accounts(), db.Artworks(), blobs)
	return testEnv{db: db, auth: auth, gateway: gateway, blobs: blobs}
}

func (e testEnv) services() handler.Services {
	return handler.Services{
		Auth:    e.auth,
		Gateway: e.gateway,
		Blobs:   e.blobs,
		DB:      e.db.SqlDB,
	}
}

func newTestServer(t *testing.T, s handler.Services) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, s)
	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)
	return srv
}

// newClient returns a client with its own cookie jar that does not follow
// redirects.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse // don't follow redirects automatically
		},
	}
}

// tokenFor registers an account through the gateway and returns a signed
// session token for it.
func tokenFor(t *testing.T, e testEnv, email, name string, isSeller bool) string {
	t.Helper()
	id, err := e.gateway.Register(context.Background(), email, "password123", name, isSeller)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := e.auth.IssueToken(id)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return token
}

func multipartBody(t *testing.T, fields map[string]string, image []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "art.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(image)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}
