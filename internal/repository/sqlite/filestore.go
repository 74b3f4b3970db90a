package sqlite

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/msomdec/art-market/internal/domain"
)

// BlobStore implements domain.BlobStore using SQLite BLOBs. Download URLs
// point back at this server: {publicURL}/blobs/{path}?token={token}.
type BlobStore struct {
	db   *sql.DB
	base *url.URL
}

// NewBlobStore creates a SQLite-backed blob store. publicURL is the
// externally reachable root of the server, e.g. "http://localhost:8080".
func NewBlobStore(db *DB, publicURL string) (*BlobStore, error) {
	base, err := url.Parse(strings.TrimSuffix(publicURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse public url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: public url must be absolute", domain.ErrInvalidInput)
	}
	return &BlobStore{db: db.SqlDB, base: base}, nil
}

// Put stores data under path, replacing any previous object and its token.
func (s *BlobStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	token, err := newDownloadToken()
	if err != nil {
		return fmt.Errorf("generate download token: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO file_blobs (storage_key, content_type, download_token, data, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (storage_key) DO UPDATE SET
		   content_type = excluded.content_type,
		   download_token = excluded.download_token,
		   data = excluded.data`,
		path, contentType, token, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save file blob: %w", err)
	}
	return nil
}

// DownloadURL returns the tokenized URL of the object at path.
func (s *BlobStore) DownloadURL(ctx context.Context, path string) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		"SELECT download_token FROM file_blobs WHERE storage_key = ?", path,
	).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get download token: %w", err)
	}

	u := s.base.JoinPath("blobs", path)
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}

// DeleteByURL removes the object a download URL refers to. The token, if
// present, is ignored.
func (s *BlobStore) DeleteByURL(ctx context.Context, rawURL string) error {
	key, err := s.keyFromURL(rawURL)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM file_blobs WHERE storage_key = ?", key)
	if err != nil {
		return fmt.Errorf("delete file blob: %w", err)
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

// Get returns the object at path if token matches its download token.
func (s *BlobStore) Get(ctx context.Context, path, token string) ([]byte, string, error) {
	var (
		data        []byte
		contentType string
		stored      string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT data, content_type, download_token FROM file_blobs WHERE storage_key = ?", path,
	).Scan(&data, &contentType, &stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", fmt.Errorf("get file blob: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(stored)) != 1 {
		return nil, "", domain.ErrNotFound
	}
	return data, contentType, nil
}

func (s *BlobStore) keyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: malformed blob url", domain.ErrInvalidInput)
	}
	prefix := strings.TrimSuffix(s.base.Path, "/") + "/blobs/"
	key, ok := strings.CutPrefix(u.Path, prefix)
	if !ok || key == "" || u.Host != s.base.Host {
		return "", fmt.Errorf("%w: url does not belong to this blob store", domain.ErrInvalidInput)
	}
	return key, nil
}

func newDownloadToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
