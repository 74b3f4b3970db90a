package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/msomdec/art-market/internal/domain"
	"github.com/msomdec/art-market/internal/repository/sqlite"
	"github.com/msomdec/art-market/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests-0123456789"

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	// Use cost 4 for fast tests.
	return service.NewAuthService(newTestDB(t).Identities(), testJWTSecret, 4)
}

func TestAuthService_CreateIdentity_Success(t *testing.T) {
	auth := newTestAuthService(t)

	id, err := auth.CreateIdentity(context.Background(), "new@example.com", "password123")
	if err != nil {
		t.Fatalf("CreateIdentity: %v", err)
	}
	if id == "" {
		t.Fatal("expected identity ID to be set")
	}
}

func TestAuthService_CreateIdentity_DuplicateEmail(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.CreateIdentity(ctx, "dup@example.com", "password123"); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := auth.CreateIdentity(ctx, " Dup@Example.com ", "password456")
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_CreateIdentity_InvalidInput(t *testing.T) {
	auth := newTestAuthService(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "password123"},
		{"malformed email", "not-an-email", "password123"},
		{"short password", "a@b.com", "12345"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.CreateIdentity(context.Background(), tc.email, tc.password)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestAuthService_VerifyIdentity(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	created, err := auth.CreateIdentity(ctx, "login@example.com", "password123")
	if err != nil {
		t.Fatalf("CreateIdentity: %v", err)
	}

	got, err := auth.VerifyIdentity(ctx, "LOGIN@example.com", "password123")
	if err != nil {
		t.Fatalf("VerifyIdentity: %v", err)
	}
	if got != created {
		t.Fatalf("expected identity %s, got %s", created, got)
	}
}

func TestAuthService_VerifyIdentity_WrongPassword(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.CreateIdentity(ctx, "wrongpw@example.com", "password123"); err != nil {
		t.Fatalf("CreateIdentity: %v", err)
	}

	_, err := auth.VerifyIdentity(ctx, "wrongpw@example.com", "wrongpassword")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_VerifyIdentity_UnknownEmail(t *testing.T) {
	auth := newTestAuthService(t)

	_, err := auth.VerifyIdentity(context.Background(), "nobody@example.com", "password123")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_JWT_IssueAndValidate(t *testing.T) {
	auth := newTestAuthService(t)

	token, err := auth.IssueToken("uid-123")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	id, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if id != "uid-123" {
		t.Fatalf("expected uid-123, got %s", id)
	}
}

func TestAuthService_JWT_InvalidToken(t *testing.T) {
	auth := newTestAuthService(t)

	_, err := auth.ValidateToken("not-a-valid-jwt")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_JWT_TamperedToken(t *testing.T) {
	auth := newTestAuthService(t)

	token, err := auth.IssueToken("uid-123")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	// Tamper with the token by flipping several characters in the signature.
	tampered := token[:len(token)-5] + "XXXXX"
	if _, err := auth.ValidateToken(tampered); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for tampered token, got %v", err)
	}
}

func TestAuthService_JWT_WrongSecret(t *testing.T) {
	auth1 := newTestAuthService(t)
	auth2 := service.NewAuthService(newTestDB(t).Identities(), "a-completely-different-secret-value", 4)

	token, err := auth1.IssueToken("uid-123")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := auth2.ValidateToken(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong secret, got %v", err)
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	id, err := auth.CreateIdentity(ctx, "live@example.com", "password123")
	if err != nil {
		t.Fatalf("CreateIdentity: %v", err)
	}
	token, err := auth.IssueToken(id)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	got, err := auth.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got != id {
		t.Fatalf("expected identity %s, got %s", id, got)
	}

	// A well-signed token whose identity no longer exists.
	orphan, err := auth.IssueToken("00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := auth.Authenticate(ctx, orphan); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown identity, got %v", err)
	}

	if _, err := auth.Authenticate(ctx, "not-a-token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for garbage token, got %v", err)
	}
}

func TestSessionContext(t *testing.T) {
	if _, ok := service.SessionFrom(context.Background()); ok {
		t.Fatal("expected no session on a bare context")
	}
	if _, ok := service.SessionFrom(service.WithSession(context.Background(), "")); ok {
		t.Fatal("expected empty identity to count as no session")
	}

	id, ok := service.SessionFrom(service.WithSession(context.Background(), "uid-1"))
	if !ok || id != "uid-1" {
		t.Fatalf("expected session uid-1, got %q (%v)", id, ok)
	}
}
