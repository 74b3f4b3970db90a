package domain

import (
	"context"
	"time"
)

// Identity is an authentication identity. It is distinct from the Account
// profile document that shares its ID.
type Identity struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// IdentityStore is the authentication service backing sign-up and sign-in.
// Email uniqueness is enforced by the store.
type IdentityStore interface {
	Create(ctx context.Context, identity *Identity) error
	GetByID(ctx context.Context, id string) (*Identity, error)
	GetByEmail(ctx context.Context, email string) (*Identity, error)
}

// Account is a registered user's profile document in the "users" collection.
type Account struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Bio               string `json:"bio"`
	ProfilePictureURL string `json:"profilePictureUrl"`
	IsSeller          bool   `json:"isSeller"`
	CreatedAt         int64  `json:"createdAt"` // ms since epoch
}

// AccountStore persists Account documents keyed by identity ID.
type AccountStore interface {
	Set(ctx context.Context, account *Account) error
	Get(ctx context.Context, id string) (*Account, error)
}
