package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/msomdec/art-market/internal/navigation"
	"github.com/msomdec/art-market/internal/service"
	"github.com/msomdec/art-market/internal/view"
	"github.com/msomdec/art-market/internal/viewstate"
)

// AuthHandler handles sign-up, sign-in and sign-out.
type AuthHandler struct {
	auth         *service.AuthService
	gateway      *service.Gateway
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, gateway *service.Gateway, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, gateway: gateway, cookieSecure: cookieSecure}
}

// HandleLoginPage renders the sign-in form.
// GET /login
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	view.LoginPage("", "").Render(r.Context(), w)
}

// HandleLoginForm signs in from the HTML form and redirects to the landing
// screen.
// POST /login
func (h *AuthHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")

	a := viewstate.NewAuth(screenGateway{h.gateway})
	state := a.Login(r.Context(), email, r.PostFormValue("password"))
	if !state.Authenticated {
		w.WriteHeader(http.StatusUnauthorized)
		view.LoginPage(email, state.Error).Render(r.Context(), w)
		return
	}

	if !h.startSession(w, state.IdentityID) {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, h.landing(r.Context(), a, state.IdentityID), http.StatusSeeOther)
}

// HandleRegisterPage renders the registration form.
// GET /register
func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	view.RegisterPage(view.RegisterForm{}, "").Render(r.Context(), w)
}

// HandleRegisterForm registers from the HTML form, signs the new user in
// and redirects to the landing screen.
// POST /register
func (h *AuthHandler) HandleRegisterForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := view.RegisterForm{
		Email:    r.PostFormValue("email"),
		Name:     r.PostFormValue("name"),
		IsSeller: r.PostFormValue("is_seller") == "true",
	}

	a := viewstate.NewAuth(screenGateway{h.gateway})
	state := a.Register(r.Context(), form.Email, r.PostFormValue("password"), form.Name, form.IsSeller)
	if !state.Authenticated {
		w.WriteHeader(http.StatusUnprocessableEntity)
		view.RegisterPage(form, state.Error).Render(r.Context(), w)
		return
	}

	if !h.startSession(w, state.IdentityID) {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, h.landing(r.Context(), a, state.IdentityID), http.StatusSeeOther)
}

// HandleLogoutForm clears the auth cookie and returns to the login screen.
// POST /logout
func (h *AuthHandler) HandleLogoutForm(w http.ResponseWriter, r *http.Request) {
	clearAuthCookie(w, h.cookieSecure)
	http.Redirect(w, r, navigation.Login.Route(), http.StatusSeeOther)
}

// HandleSplash sends the visitor to the screen matching their session.
// GET /
func (h *AuthHandler) HandleSplash(w http.ResponseWriter, r *http.Request) {
	_, authenticated := service.SessionFrom(r.Context())
	user := UserFromContext(r.Context())
	to := navigation.Resolve(authenticated, user != nil && user.IsSeller)
	http.Redirect(w, r, to.Route(), http.StatusSeeOther)
}

// HandleLogin processes a JSON login request.
// POST /api/auth/login
// Request:  {"email":"...","password":"..."}
// Response: {"user": {...}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	id, err := h.gateway.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeGatewayError(w, "login user", err)
		return
	}
	h.respondWithSession(w, r, http.StatusOK, id)
}

// HandleRegister processes a JSON registration request.
// POST /api/auth/register
// Request:  {"email":"...","password":"...","name":"...","isSeller":true}
// Response: {"user": {...}}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		IsSeller bool   `json:"isSeller"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	id, err := h.gateway.Register(r.Context(), req.Email, req.Password, req.Name, req.IsSeller)
	if err != nil {
		writeGatewayError(w, "register user", err)
		return
	}
	h.respondWithSession(w, r, http.StatusCreated, id)
}

// HandleLogout clears the auth cookie.
// POST /api/auth/logout
// Response: 204 No Content
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookie(w, h.cookieSecure)
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the currently authenticated user.
// GET /api/auth/me
// Response: {"user": {...}}, 401 without a session, 404 without a profile
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusNotFound, viewstate.MsgUserNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user": toAccountDTO(user),
	})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, identityID string) bool {
	token, err := h.auth.IssueToken(identityID)
	if err != nil {
		slog.Error("issue token", "error", err)
		return false
	}
	setAuthCookie(w, token, h.cookieSecure)
	return true
}

func (h *AuthHandler) respondWithSession(w http.ResponseWriter, r *http.Request, status int, identityID string) {
	if !h.startSession(w, identityID) {
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	user, err := h.gateway.CurrentUser(service.WithSession(r.Context(), identityID))
	if err != nil {
		writeGatewayError(w, "get user after sign-in", err)
		return
	}
	writeJSON(w, status, map[string]any{
		"user": toAccountDTO(user),
	})
}

// landing loads the new session's profile and resolves where to send the
// user. A missing profile lands on the buyer screen.
func (h *AuthHandler) landing(ctx context.Context, a *viewstate.Auth, identityID string) string {
	user := a.LoadCurrentUser(service.WithSession(ctx, identityID))
	if user.Error != "" {
		slog.Warn("load profile after sign-in", "identity_id", identityID, "error", user.Error)
	}
	return navigation.Resolve(true, user.Data != nil && user.Data.IsSeller).Route()
}
