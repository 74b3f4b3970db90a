package viewstate

import (
	"context"
	"iter"
	"sync"

	"github.com/msomdec/art-market/internal/domain"
	"github.com/msomdec/art-market/internal/outcome"
)

// AuthGateway is the part of the gateway the auth screens use.
type AuthGateway interface {
	Register(ctx context.Context, email, password, name string, isSeller bool) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	CurrentUser(ctx context.Context) (*domain.Account, error)
}

// AuthState is the display state of the login and register screens.
// IdentityID is set once Authenticated is true.
type AuthState struct {
	Loading       bool
	Authenticated bool
	Error         string
	IdentityID    string
}

// UserState is the display state of the signed-in user's profile.
type UserState = Display[*domain.Account]

// Auth drives registration, login and the current user profile.
type Auth struct {
	gw AuthGateway

	mu    sync.Mutex
	state AuthState
	user  *Container[*domain.Account]
}

// NewAuth creates an Auth container.
func NewAuth(gw AuthGateway) *Auth {
	return &Auth{gw: gw, user: NewContainer[*domain.Account](MsgUserNotFound)}
}

// Register creates an account and marks the state authenticated on success.
func (a *Auth) Register(ctx context.Context, email, password, name string, isSeller bool) AuthState {
	return a.track(outcome.Run(ctx, func(ctx context.Context) (string, error) {
		return a.gw.Register(ctx, email, password, name, isSeller)
	}))
}

// Login signs in and marks the state authenticated on success.
func (a *Auth) Login(ctx context.Context, email, password string) AuthState {
	return a.track(outcome.Run(ctx, func(ctx context.Context) (string, error) {
		return a.gw.Login(ctx, email, password)
	}))
}

// LoadCurrentUser fetches the profile of the session carried by ctx.
func (a *Auth) LoadCurrentUser(ctx context.Context) UserState {
	return a.user.Track(outcome.Run(ctx, a.gw.CurrentUser))
}

// State returns the current auth state.
func (a *Auth) State() AuthState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// User returns the current profile state.
func (a *Auth) User() UserState { return a.user.Snapshot() }

// Reset signs the container out.
func (a *Auth) Reset() {
	a.mu.Lock()
	a.state = AuthState{}
	a.mu.Unlock()
	a.user.Reset()
}

func (a *Auth) track(seq iter.Seq[outcome.Outcome[string]]) AuthState {
	for o := range seq {
		a.mu.Lock()
		a.state = outcome.Match(o,
			func() AuthState { return AuthState{Loading: true} },
			func(id string) AuthState { return AuthState{Authenticated: true, IdentityID: id} },
			func(msg string) AuthState { return AuthState{Error: orDefault(msg, MsgUnknown)} },
		)
		a.mu.Unlock()
	}
	return a.State()
}
