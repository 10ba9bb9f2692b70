package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Certificates CertificatesConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds SQLite storage settings
type DatabaseConfig struct {
	// Dir is the directory holding database files.
	Dir string
	// Name is the database file name within Dir.
	Name string
}

// Path returns the full path of the database file.
func (d DatabaseConfig) Path() string {
	return filepath.Join(d.Dir, d.Name)
}

// JWTConfig holds JWT signing settings
type JWTConfig struct {
	PrivateKeyPath string
	PublicKeyPath  string
	ExpirationMins int
	Issuer         string
}

// CertificatesConfig holds certificate rendering settings
type CertificatesConfig struct {
	// Enabled selects the real PDF renderer; when false an inert stub is
	// installed and certificate rendering becomes a no-op.
	Enabled bool
}

// Load reads configuration from environment variables with sensible defaults.
//
// SERVER_ENV selects the mode. In "test" mode the database directory defaults
// to a per-user temp directory and signing keys may be generated in memory;
// production-shaped settings (external storage path, key files on disk) are
// never silently reused.
func Load() (*Config, error) {
	env := getEnv("SERVER_ENV", "development")

	dbDir := getEnv("DB_DIR", "./data")
	if env == "test" {
		dbDir = getEnv("TEST_DB_DIR", filepath.Join(os.TempDir(), "academy-test"))
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Env:          env,
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Dir:  dbDir,
			Name: getEnv("DB_NAME", "academy.db"),
		},
		JWT: JWTConfig{
			PrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./keys/private.pem"),
			PublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./keys/public.pem"),
			ExpirationMins: getIntEnv("JWT_EXPIRATION_MINS", 15),
			Issuer:         getEnv("JWT_ISSUER", "academy.openlearn.dev"),
		},
		Certificates: CertificatesConfig{
			Enabled: getBoolEnv("CERTIFICATES_ENABLED", false),
		},
	}, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// IsTest returns true if running in test mode
func (c *Config) IsTest() bool {
	return c.Server.Env == "test"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}

	if c.Database.Dir == "" {
		errs = append(errs, errors.New("DB_DIR is required"))
	}
	if c.Database.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if c.IsTest() && os.Getenv("DB_DIR") != "" && c.Database.Dir == os.Getenv("DB_DIR") {
		// A test run pointed at the live database directory is the
		// lock-contention and data-leak failure this check exists for.
		errs = append(errs, fmt.Errorf("test mode must not use the configured DB_DIR %q; set TEST_DB_DIR instead", c.Database.Dir))
	}

	// Key files are required only where keys cannot be generated in memory
	if c.IsProduction() {
		if c.JWT.PrivateKeyPath == "" {
			errs = append(errs, errors.New("JWT_PRIVATE_KEY_PATH is required in production"))
		}
		if c.JWT.PublicKeyPath == "" {
			errs = append(errs, errors.New("JWT_PUBLIC_KEY_PATH is required in production"))
		}
	}
	if c.JWT.ExpirationMins <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_MINS must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// TestDatabaseDir returns the directory test databases live in, honoring
// TEST_DB_DIR. The directory is created if missing.
func TestDatabaseDir() (string, error) {
	dir := getEnv("TEST_DB_DIR", filepath.Join(os.TempDir(), "academy-test"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating test database dir: %w", err)
	}
	return dir, nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
