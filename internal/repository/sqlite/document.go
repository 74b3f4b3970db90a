package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/art-market/internal/domain"
)

const usersCollection = "users"

// documentStore keeps JSON documents keyed by (collection, id).
type documentStore struct {
	db         *sql.DB
	collection string
}

func (s *documentStore) set(ctx context.Context, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", s.collection, id, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		s.collection, id, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", s.collection, id, err)
	}
	return nil
}

func (s *documentStore) get(ctx context.Context, id string, dst any) error {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE collection = ? AND id = ?", s.collection, id,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("read %s/%s: %w", s.collection, id, err)
	}
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		return fmt.Errorf("decode %s/%s: %w", s.collection, id, err)
	}
	return nil
}

// accountStore implements domain.AccountStore on the "users" collection.
type accountStore struct {
	docs *documentStore
}

func (s *accountStore) Set(ctx context.Context, account *domain.Account) error {
	if account.ID == "" {
		return fmt.Errorf("%w: account id is required", domain.ErrInvalidInput)
	}
	return s.docs.set(ctx, account.ID, account)
}

func (s *accountStore) Get(ctx context.Context, id string) (*domain.Account, error) {
	account := &domain.Account{}
	if err := s.docs.get(ctx, id, account); err != nil {
		return nil, err
	}
	return account, nil
}
