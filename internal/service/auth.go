package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/art-market/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	tokenTTL          = 24 * time.Hour
)

// AuthService is the authentication service: it owns identities, verifies
// credentials and issues the session tokens carried by clients.
type AuthService struct {
	identities domain.IdentityStore
	jwtSecret  []byte
	bcryptCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(identities domain.IdentityStore, jwtSecret string, bcryptCost int) *AuthService {
	return &AuthService{
		identities: identities,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
	}
}

// CreateIdentity registers a new email/password identity and returns its ID.
func (s *AuthService) CreateIdentity(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: email address is badly formatted", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	identity := &domain.Identity{Email: email, PasswordHash: string(hash)}
	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return "", err
		}
		return "", fmt.Errorf("create identity: %w", err)
	}
	return identity.ID, nil
}

// VerifyIdentity checks credentials and returns the identity ID.
func (s *AuthService) VerifyIdentity(ctx context.Context, email, password string) (string, error) {
	identity, err := s.identities.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("get identity: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}
	return identity.ID, nil
}

// IssueToken returns a signed JWT whose subject is the identity ID.
func (s *AuthService) IssueToken(identityID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   identityID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT token string.
// Returns the identity ID from the sub claim.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", domain.ErrUnauthorized
	}
	return sub, nil
}

// Authenticate validates a session token and confirms its identity still
// exists. Tokens for unknown identities are rejected with ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (string, error) {
	identityID, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	if _, err := s.identities.GetByID(ctx, identityID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrUnauthorized
		}
		return "", fmt.Errorf("get identity: %w", err)
	}
	return identityID, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type sessionKey struct{}

// WithSession returns a context carrying the signed-in identity.
func WithSession(ctx context.Context, identityID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, identityID)
}

// SessionFrom returns the signed-in identity carried by ctx, if any.
func SessionFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionKey{}).(string)
	return id, ok && id != ""
}
