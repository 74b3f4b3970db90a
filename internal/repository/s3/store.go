// Package s3 stores artwork images in an S3 (or S3-compatible) bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/msomdec/art-market/internal/domain"
)

// Options configures the bucket and how public URLs are formed.
type Options struct {
	Bucket string
	Region string
	// Endpoint overrides the AWS endpoint, e.g. for MinIO. Path-style
	// addressing is used whenever it is set.
	Endpoint string
	// PublicBaseURL is the prefix objects are served from. Defaults to the
	// bucket's virtual-hosted AWS URL, or {Endpoint}/{Bucket} with an
	// endpoint override.
	PublicBaseURL string
}

// Store implements domain.BlobStore on S3.
type Store struct {
	client *s3.Client
	bucket string
	base   *url.URL
}

// NewStore loads the default AWS credential chain and returns a Store.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewStoreWithClient(client, opts)
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(client *s3.Client, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket is required", domain.ErrInvalidInput)
	}

	publicBase := opts.PublicBaseURL
	if publicBase == "" {
		if opts.Endpoint != "" {
			publicBase = strings.TrimSuffix(opts.Endpoint, "/") + "/" + opts.Bucket
		} else {
			publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
		}
	}
	base, err := url.Parse(strings.TrimSuffix(publicBase, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse public base url: %w", err)
	}

	slog.Info("using s3 blob store", "bucket", opts.Bucket, "public_base_url", base.String())
	return &Store{client: client, bucket: opts.Bucket, base: base}, nil
}

func (s *Store) Put(ctx context.Context, path string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", path, err)
	}
	return nil
}

// DownloadURL returns the public URL of path. It does not contact S3.
func (s *Store) DownloadURL(ctx context.Context, path string) (string, error) {
	return s.base.JoinPath(path).String(), nil
}

func (s *Store) DeleteByURL(ctx context.Context, rawURL string) error {
	key, err := s.KeyFromURL(rawURL)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// KeyFromURL maps a public URL produced by DownloadURL back to its key.
func (s *Store) KeyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: malformed blob url", domain.ErrInvalidInput)
	}
	if u.Host != s.base.Host {
		return "", fmt.Errorf("%w: url does not belong to bucket %s", domain.ErrInvalidInput, s.bucket)
	}
	key, ok := strings.CutPrefix(u.Path, strings.TrimSuffix(s.base.Path, "/")+"/")
	if !ok || key == "" {
		return "", fmt.Errorf("%w: url does not belong to bucket %s", domain.ErrInvalidInput, s.bucket)
	}
	return key, nil
}
