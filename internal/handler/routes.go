package handler

import (
	"net/http"

	"github.com/msomdec/art-market/internal/domain"
	"github.com/msomdec/art-market/internal/navigation"
	"github.com/msomdec/art-market/internal/service"
)

// Services are the dependencies of the HTTP routes.
type Services struct {
	Auth    *service.AuthService
	Gateway *service.Gateway
	// Blobs serves /blobs/ download URLs. Nil when blobs live elsewhere.
	Blobs domain.BlobReader
	// Limiter throttles sign-in and sign-up per client IP. Nil disables it.
	Limiter      *service.TokenBucket
	DB           Pinger
	CookieSecure bool
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, s Services) {
	authHandler := NewAuthHandler(s.Auth, s.Gateway, s.CookieSecure)
	artworkHandler := NewArtworkHandler(s.Gateway)

	optional := func(h http.HandlerFunc) http.Handler { return OptionalAuth(s.Auth, s.Gateway, h) }
	page := func(h http.HandlerFunc) http.Handler { return RequireSignIn(s.Auth, s.Gateway, h) }
	api := func(h http.HandlerFunc) http.Handler { return RequireAuth(s.Auth, s.Gateway, h) }
	limited := func(h http.HandlerFunc) http.Handler {
		if s.Limiter == nil {
			return h
		}
		return RateLimit(s.Limiter, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz(s.DB))

	// Screens.
	mux.Handle("GET /{$}", optional(authHandler.HandleSplash))
	mux.HandleFunc("GET "+navigation.Login.Route(), authHandler.HandleLoginPage)
	mux.Handle("POST "+navigation.Login.Route(), limited(authHandler.HandleLoginForm))
	mux.HandleFunc("GET "+navigation.Register.Route(), authHandler.HandleRegisterPage)
	mux.Handle("POST "+navigation.Register.Route(), limited(authHandler.HandleRegisterForm))
	mux.HandleFunc("POST /logout", authHandler.HandleLogoutForm)
	mux.Handle("GET "+navigation.Buyer.Route(), page(artworkHandler.HandleBuyerPage))
	mux.Handle("GET "+navigation.Seller.Route(), page(artworkHandler.HandleSellerPage))
	mux.Handle("GET "+navigation.AddArtwork.Route(), page(artworkHandler.HandleNewArtworkPage))
	mux.Handle("POST /seller/artworks", page(artworkHandler.HandleCreate))
	mux.Handle("POST /seller/artworks/{id}/delete", page(artworkHandler.HandleDelete))

	if s.Blobs != nil {
		mux.HandleFunc("GET /blobs/{path...}", NewBlobHandler(s.Blobs).HandleServe)
	}

	// JSON API.
	mux.Handle("POST /api/auth/register", limited(authHandler.HandleRegister))
	mux.Handle("POST /api/auth/login", limited(authHandler.HandleLogin))
	mux.HandleFunc("POST /api/auth/logout", authHandler.HandleLogout)
	mux.Handle("GET /api/auth/me", api(authHandler.HandleMe))
	mux.HandleFunc("GET /api/artworks", artworkHandler.HandleListAll)
	mux.Handle("GET /api/seller/artworks", api(artworkHandler.HandleListMine))
	mux.Handle("POST /api/seller/artworks", api(artworkHandler.HandleCreateJSON))
	mux.Handle("POST /api/artworks/{id}/image", api(artworkHandler.HandleUploadImage))
	mux.Handle("DELETE /api/artworks/{id}", api(artworkHandler.HandleDeleteJSON))
}
