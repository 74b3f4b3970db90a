package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/art-market/internal/domain"
)

// IdentityRepository implements domain.IdentityStore using SQLite.
type IdentityRepository struct {
	db *sql.DB
}

// NewIdentityRepository creates a new SQLite-backed IdentityRepository.
func NewIdentityRepository(db *DB) *IdentityRepository {
	return &IdentityRepository{db: db.SqlDB}
}

// Create inserts the identity, assigning a fresh opaque ID when none is set.
func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO identities (id, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?)`,
		identity.ID, identity.Email, identity.PasswordHash, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert identity: %w", err)
	}

	identity.CreatedAt = now
	return nil
}

func (r *IdentityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	identity := &domain.Identity{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at
		 FROM identities WHERE id = ?`, id,
	).Scan(&identity.ID, &identity.Email, &identity.PasswordHash, &identity.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query identity by id: %w", err)
	}
	return identity, nil
}

func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	identity := &domain.Identity{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at
		 FROM identities WHERE email = ?`, email,
	).Scan(&identity.ID, &identity.Email, &identity.PasswordHash, &identity.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query identity by email: %w", err)
	}
	return identity, nil
}
