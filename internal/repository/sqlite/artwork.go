package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/msomdec/art-market/internal/domain"
	"github.com/oklog/ulid/v2"
)

const artworksRoot = "artworks"

// artworkStore implements domain.ArtworkStore over realtime_nodes, one row
// per artworks/{id} path holding the record as a flat JSON map.
type artworkStore struct {
	db *sql.DB
}

func artworkPath(id string) string {
	return artworksRoot + "/" + id
}

// NewID returns a ULID, so push-key order follows creation time.
func (s *artworkStore) NewID() string {
	return ulid.Make().String()
}

func (s *artworkStore) Set(ctx context.Context, artwork *domain.Artwork) error {
	if artwork.ID == "" {
		return fmt.Errorf("%w: artwork id is required", domain.ErrInvalidInput)
	}
	value, err := json.Marshal(artwork)
	if err != nil {
		return fmt.Errorf("marshal artwork: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO realtime_nodes (path, parent, value) VALUES (?, ?, ?)
		 ON CONFLICT (path) DO UPDATE SET value = excluded.value`,
		artworkPath(artwork.ID), artworksRoot, string(value),
	)
	if err != nil {
		return fmt.Errorf("write artwork: %w", err)
	}
	return nil
}

func (s *artworkStore) Get(ctx context.Context, id string) (*domain.Artwork, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM realtime_nodes WHERE path = ?", artworkPath(id),
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read artwork: %w", err)
	}

	artwork := &domain.Artwork{}
	if err := json.Unmarshal([]byte(value), artwork); err != nil {
		return nil, fmt.Errorf("decode artwork: %w", err)
	}
	return artwork, nil
}

func (s *artworkStore) SetImageURL(ctx context.Context, id, url string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE realtime_nodes SET value = json_set(value, '$.imageUrl', ?) WHERE path = ?",
		url, artworkPath(id),
	)
	if err != nil {
		return fmt.Errorf("patch artwork image url: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *artworkStore) ListBySeller(ctx context.Context, sellerID string) ([]domain.Artwork, error) {
	return s.query(ctx,
		`SELECT value FROM realtime_nodes
		 WHERE parent = ? AND json_extract(value, '$.sellerId') = ?
		 ORDER BY path`, artworksRoot, sellerID)
}

func (s *artworkStore) List(ctx context.Context) ([]domain.Artwork, error) {
	return s.query(ctx,
		"SELECT value FROM realtime_nodes WHERE parent = ? ORDER BY path", artworksRoot)
}

func (s *artworkStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM realtime_nodes WHERE path = ?", artworkPath(id))
	if err != nil {
		return fmt.Errorf("delete artwork: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *artworkStore) query(ctx context.Context, query string, args ...any) ([]domain.Artwork, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list artworks: %w", err)
	}
	defer rows.Close()

	artworks := []domain.Artwork{}
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan artwork: %w", err)
		}
		var a domain.Artwork
		if err := json.Unmarshal([]byte(value), &a); err != nil {
			return nil, fmt.Errorf("decode artwork: %w", err)
		}
		artworks = append(artworks, a)
	}
	return artworks, rows.Err()
}
