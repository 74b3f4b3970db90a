// Package config loads server settings from defaults, an optional TOML
// file and ARTMARKET_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	BlobBackendSQLite = "sqlite"
	BlobBackendS3     = "s3"

	minJWTSecretLength = 32
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Blob     BlobConfig
	Log      LogConfig
}

// ServerConfig holds HTTP settings. PublicURL is the externally visible
// origin used to build blob download URLs.
type ServerConfig struct {
	Port         string
	PublicURL    string `mapstructure:"public_url"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// AuthConfig holds token and password hashing settings.
type AuthConfig struct {
	JWTSecret  string `mapstructure:"jwt_secret"`
	BcryptCost int    `mapstructure:"bcrypt_cost"`
}

// BlobConfig selects where artwork images are stored.
type BlobConfig struct {
	Backend string
	S3      S3Config
}

// S3Config holds settings for the S3 blob backend.
type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// Load reads configuration. A file named by ARTMARKET_CONFIG is read when
// set; env vars such as ARTMARKET_AUTH_JWT_SECRET override everything.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.public_url", "http://localhost:8080")
	v.SetDefault("server.cookie_secure", true)
	v.SetDefault("database.path", "art-market.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("blob.backend", BlobBackendSQLite)
	v.SetDefault("blob.s3.bucket", "")
	v.SetDefault("blob.s3.region", "us-east-1")
	v.SetDefault("blob.s3.endpoint", "")
	v.SetDefault("blob.s3.public_base_url", "")
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")
	if path := os.Getenv("ARTMARKET_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("ARTMARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Validate reports every setting that would stop the server from starting.
func (c Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	} else if len(c.Auth.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Errorf("auth.jwt_secret must be at least %d characters", minJWTSecretLength))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 14 {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be between 4 and 14, got %d", c.Auth.BcryptCost))
	}
	if u, err := url.Parse(c.Server.PublicURL); err != nil || !u.IsAbs() {
		errs = append(errs, fmt.Errorf("server.public_url must be an absolute URL, got %q", c.Server.PublicURL))
	}
	switch c.Blob.Backend {
	case BlobBackendSQLite:
	case BlobBackendS3:
		if c.Blob.S3.Bucket == "" {
			errs = append(errs, errors.New("blob.s3.bucket is required for the s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("blob.backend must be %q or %q, got %q", BlobBackendSQLite, BlobBackendS3, c.Blob.Backend))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
