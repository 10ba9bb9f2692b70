// Package config manages application configuration for the Academy API.
//
// The config package loads and validates configuration from environment
// variables. All configuration is centralized here to provide a single source
// of truth.
//
// # Configuration Loading
//
//	cfg, err := config.Load()
//
// # Configuration Groups
//
//   - ServerConfig: HTTP server settings (port, env, timeouts)
//   - DatabaseConfig: SQLite storage directory and file name
//   - JWTConfig: JWT signing and validation settings
//   - CertificatesConfig: PDF certificate rendering toggle
//
// # Modes
//
// SERVER_ENV selects one of three modes: development, production, test.
// Test mode swaps the storage directory to a temp location (TEST_DB_DIR
// overrides it) and allows in-memory signing keys; Validate rejects a test
// run that points at the configured production DB_DIR so test data can never
// land in, or lock, the live database.
//
// # Environment Variables
//
//	SERVER_PORT            - HTTP server port (default: 8080)
//	SERVER_ENV             - development | production | test
//	DB_DIR                 - database directory (default: ./data)
//	DB_NAME                - database file name (default: academy.db)
//	TEST_DB_DIR            - test-mode database directory
//	JWT_PRIVATE_KEY_PATH   - RSA private key PEM
//	JWT_PUBLIC_KEY_PATH    - RSA public key PEM
//	JWT_EXPIRATION_MINS    - token lifetime in minutes
//	JWT_ISSUER             - token issuer
//	CERTIFICATES_ENABLED   - enable the real PDF renderer
package config
