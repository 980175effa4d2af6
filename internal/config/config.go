// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. A .env file in the working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"consultblog/internal/markdown"
)

// Store drivers.
const (
	DriverREST     = "rest"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Post store
	StoreDriver     string // rest, postgres or memory
	StoreURL        string // base URL of the hosted project (rest driver, remote auth)
	StoreAnonKey    string
	StoreServiceKey string
	StoreJWTSecret  string // verifies bearer tokens locally when set
	StoreTimeout    time.Duration

	// PostgreSQL connection (postgres driver). DatabaseURL wins over the parts.
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	Seed        bool

	// Valkey page cache; disabled when ValkeyHost is empty.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	ValkeyDB       int
	PageCacheTTL   time.Duration

	// S3-compatible image storage; uploads are disabled when incomplete.
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// CORS
	BlogAllowedOrigin   string
	AdminAllowedOrigins []string

	// Site and content
	SiteName       string
	SiteURL        string
	DefaultAuthor  string
	MarkdownEngine markdown.Engine

	// Write rate limiting
	WriteRateLimit  int
	WriteRateWindow time.Duration
	TrustProxy      bool
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if the selected store
// driver is missing what it needs, or if production requirements are unmet.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		StoreDriver:     strings.ToLower(envOrDefault("STORE_DRIVER", DriverREST)),
		StoreURL:        strings.TrimRight(os.Getenv("STORE_URL"), "/"),
		StoreAnonKey:    os.Getenv("STORE_ANON_KEY"),
		StoreServiceKey: os.Getenv("STORE_SERVICE_KEY"),
		StoreJWTSecret:  os.Getenv("STORE_JWT_SECRET"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:      envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:      envOrDefault("POSTGRES_USER", "consultblog"),
		DBPassword:  envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:      envOrDefault("POSTGRES_DB", "consultblog"),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		BlogAllowedOrigin:   envOrDefault("BLOG_ALLOWED_ORIGIN", "http://localhost:3000"),
		AdminAllowedOrigins: splitList(os.Getenv("ADMIN_ALLOWED_ORIGINS")),

		SiteName:      envOrDefault("SITE_NAME", "Consult Blog"),
		SiteURL:       strings.TrimRight(envOrDefault("SITE_URL", "http://localhost:8080"), "/"),
		DefaultAuthor: envOrDefault("DEFAULT_AUTHOR", "Editorial Team"),
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	cfg.StoreTimeout, err = durationEnv("STORE_TIMEOUT", 10*time.Second)
	collect(err)
	cfg.PageCacheTTL, err = durationEnv("PAGE_CACHE_TTL", 5*time.Minute)
	collect(err)
	cfg.WriteRateWindow, err = durationEnv("WRITE_RATE_WINDOW", time.Minute)
	collect(err)
	cfg.WriteRateLimit, err = intEnv("WRITE_RATE_LIMIT", 30)
	collect(err)
	cfg.ValkeyDB, err = intEnv("VALKEY_DB", 0)
	collect(err)
	cfg.Seed, err = boolEnv("SEED", cfg.IsDev())
	collect(err)
	cfg.TrustProxy, err = boolEnv("TRUST_PROXY", false)
	collect(err)
	cfg.MarkdownEngine, err = markdown.ParseEngine(envOrDefault("MARKDOWN_ENGINE", string(markdown.EngineBasic)))
	collect(err)

	collect(cfg.validate())

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// validate checks that the selected driver and auth have what they need.
func (c *Config) validate() error {
	var errs []error

	switch c.StoreDriver {
	case DriverREST:
		if c.StoreURL == "" {
			errs = append(errs, errors.New("STORE_URL is required for the rest store driver"))
		}
		if c.StoreAnonKey == "" || c.StoreServiceKey == "" {
			errs = append(errs, errors.New("STORE_ANON_KEY and STORE_SERVICE_KEY are required for the rest store driver"))
		}
	case DriverPostgres:
	case DriverMemory:
		if c.Env == "production" {
			errs = append(errs, errors.New("the memory store driver is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q (want rest, postgres or memory)", c.StoreDriver))
	}

	if c.StoreJWTSecret == "" && c.StoreURL == "" {
		errs = append(errs, errors.New("STORE_JWT_SECRET or STORE_URL must be set to verify bearer tokens"))
	}
	if c.WriteRateLimit < 1 {
		errs = append(errs, errors.New("WRITE_RATE_LIMIT must be at least 1"))
	}

	if c.Env == "production" {
		if c.StoreDriver == DriverPostgres && c.DatabaseURL == "" && c.DBPassword == "changeme" {
			errs = append(errs, errors.New("POSTGRES_PASSWORD must be set in production"))
		}
		if os.Getenv("BLOG_ALLOWED_ORIGIN") == "" {
			errs = append(errs, errors.New("BLOG_ALLOWED_ORIGIN must be set in production"))
		}
	}

	return errors.Join(errs...)
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, net.JoinHostPort(c.DBHost, c.DBPort), c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// PageCacheEnabled reports whether a Valkey host is configured.
func (c *Config) PageCacheEnabled() bool {
	return c.ValkeyHost != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
