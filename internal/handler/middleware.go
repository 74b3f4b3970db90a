package handler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/msomdec/art-market/internal/domain"
	"github.com/msomdec/art-market/internal/navigation"
	"github.com/msomdec/art-market/internal/service"
)

type contextKey string

const userContextKey contextKey = "user"

const authCookieName = "auth_token"

// AccountLoader resolves the Account of the session carried by a context.
type AccountLoader interface {
	CurrentUser(ctx context.Context) (*domain.Account, error)
}

// UserFromContext extracts the signed-in user's Account from the request
// context. Returns nil if no user is signed in or the profile is missing.
func UserFromContext(ctx context.Context) *domain.Account {
	user, _ := ctx.Value(userContextKey).(*domain.Account)
	return user
}

// RequireAuth is middleware for API routes. It validates the auth_token
// cookie, puts the session and Account into the request context and
// returns 401 for unauthenticated requests.
func RequireAuth(auth *service.AuthService, users AccountLoader, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := authenticateRequest(r, auth, users)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Not authenticated.")
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSignIn is RequireAuth for pages: unauthenticated requests are
// redirected to the login screen.
func RequireSignIn(auth *service.AuthService, users AccountLoader, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := authenticateRequest(r, auth, users)
		if err != nil {
			http.Redirect(w, r, navigation.Login.Route(), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth is middleware that attempts to authenticate but does not block
// unauthenticated requests.
func OptionalAuth(auth *service.AuthService, users AccountLoader, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ctx, err := authenticateRequest(r, auth, users); err == nil {
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// authenticateRequest validates the cookie and returns a context carrying
// the session. A session whose Account document is missing is still
// authenticated; only the user value is left unset.
func authenticateRequest(r *http.Request, auth *service.AuthService, users AccountLoader) (context.Context, error) {
	cookie, err := r.Cookie(authCookieName)
	if err != nil {
		return nil, err
	}

	identityID, err := auth.Authenticate(r.Context(), cookie.Value)
	if err != nil {
		return nil, err
	}

	ctx := service.WithSession(r.Context(), identityID)
	user, err := users.CurrentUser(ctx)
	switch {
	case err == nil:
		ctx = context.WithValue(ctx, userContextKey, user)
	case errors.Is(err, domain.ErrNotFound):
		slog.Warn("session without account", "identity_id", identityID)
	default:
		return nil, err
	}
	return ctx, nil
}

// RateLimit rejects requests with 429 once the client IP has spent its
// tokens.
func RateLimit(limiter *service.TokenBucket, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SecurityHeaders sets conservative browser security headers on every
// response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

func setAuthCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400, // 24 hours
	})
}

func clearAuthCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
