package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/msomdec/art-market/internal/config"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ARTMARKET_CONFIG", "")

	c, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Port != "8080" || c.Database.Path != "art-market.db" {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if c.Auth.BcryptCost != 12 || c.Blob.Backend != config.BlobBackendSQLite || !c.Server.CookieSecure {
		t.Fatalf("unexpected defaults %+v", c)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ARTMARKET_CONFIG", "")
	t.Setenv("ARTMARKET_SERVER_PORT", "9090")
	t.Setenv("ARTMARKET_SERVER_COOKIE_SECURE", "false")
	t.Setenv("ARTMARKET_AUTH_JWT_SECRET", secret)
	t.Setenv("ARTMARKET_AUTH_BCRYPT_COST", "4")
	t.Setenv("ARTMARKET_BLOB_S3_PUBLIC_BASE_URL", "https://cdn.example.com")

	c, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Port != "9090" || c.Server.CookieSecure {
		t.Fatalf("server overrides not applied: %+v", c.Server)
	}
	if c.Auth.JWTSecret != secret || c.Auth.BcryptCost != 4 {
		t.Fatalf("auth overrides not applied: %+v", c.Auth)
	}
	if c.Blob.S3.PublicBaseURL != "https://cdn.example.com" {
		t.Fatalf("nested override not applied: %+v", c.Blob.S3)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[database]
path = "/var/lib/art-market/db.sqlite"

[blob]
backend = "s3"

[blob.s3]
bucket = "artworks"
region = "eu-west-1"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ARTMARKET_CONFIG", path)
	t.Setenv("ARTMARKET_BLOB_S3_REGION", "us-west-2")

	c, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Database.Path != "/var/lib/art-market/db.sqlite" || c.Blob.Backend != "s3" || c.Blob.S3.Bucket != "artworks" {
		t.Fatalf("file values not applied: %+v", c)
	}
	if c.Blob.S3.Region != "us-west-2" {
		t.Fatalf("expected env to win over file, got %q", c.Blob.S3.Region)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("ARTMARKET_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func validConfig() config.Config {
	var c config.Config
	c.Server.PublicURL = "http://localhost:8080"
	c.Auth.JWTSecret = secret
	c.Auth.BcryptCost = 12
	c.Blob.Backend = config.BlobBackendSQLite
	c.Log.Level = "info"
	return c
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{"missing secret", func(c *config.Config) { c.Auth.JWTSecret = "" }, "jwt_secret is required"},
		{"short secret", func(c *config.Config) { c.Auth.JWTSecret = "short" }, "at least 32"},
		{"bcrypt too low", func(c *config.Config) { c.Auth.BcryptCost = 3 }, "bcrypt_cost"},
		{"bcrypt too high", func(c *config.Config) { c.Auth.BcryptCost = 15 }, "bcrypt_cost"},
		{"relative public url", func(c *config.Config) { c.Server.PublicURL = "/blobs" }, "public_url"},
		{"unknown backend", func(c *config.Config) { c.Blob.Backend = "gcs" }, "blob.backend"},
		{"s3 without bucket", func(c *config.Config) { c.Blob.Backend = config.BlobBackendS3 }, "bucket is required"},
		{"bad log level", func(c *config.Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(&c)
			err := c.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	c := validConfig()
	c.Log.Level = "debug"

	level, err := c.LogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Fatalf("expected debug, got %v (%v)", level, err)
	}
}
