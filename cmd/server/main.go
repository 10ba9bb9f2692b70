package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openlearn/academy/api/internal/certificate"
	"github.com/openlearn/academy/api/internal/config"
	"github.com/openlearn/academy/api/internal/database"
	"github.com/openlearn/academy/api/internal/schema"
	"github.com/openlearn/academy/api/internal/testing/stubs"
	"github.com/openlearn/academy/api/pkg/jwt"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Provision the schema from the entity declarations. The boot path and
	// the test harness share one registry so they can never drift apart.
	snapshot, err := schema.Provision(schema.DefaultRegistry())
	if err != nil {
		slog.Error("schema provisioning failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Open the database and apply the schema to a fresh file
	ctx := context.Background()
	if err := os.MkdirAll(cfg.Database.Dir, 0o755); err != nil {
		slog.Error("failed to create database directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	_, statErr := os.Stat(cfg.Database.Path())
	freshFile := os.IsNotExist(statErr)

	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path()})
	if err != nil {
		slog.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	// The snapshot's DDL only applies to a fresh file; an existing database
	// already carries its schema.
	if freshFile {
		if err := database.Initialize(ctx, db, snapshot.DDL()); err != nil {
			slog.Error("failed to apply schema", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	slog.Info("database ready",
		slog.String("path", cfg.Database.Path()),
		slog.Int("tables", len(snapshot.Tables())),
	)

	// Initialize JWT service
	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Certificate rendering is optional; without it the completion flow
	// runs against the inert renderer.
	if cfg.Certificates.Enabled {
		stubs.Register(stubs.CertificateRenderer, certificate.Renderer(certificate.NewPDFRenderer()))
		slog.Info("certificate rendering enabled")
	} else {
		stubs.RegisterStub(stubs.CertificateRenderer, certificate.Renderer(certificate.NewNoopRenderer()))
		slog.Info("certificate rendering disabled, using inert renderer")
	}

	// Create router and register routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"env":    cfg.Server.Env,
			"tables": len(snapshot.Tables()),
		})
	})

	mux.HandleFunc("GET /v1/auth/verify", func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		claims, err := jwtService.Validate(auth[len(prefix):])
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user_id":  claims.UserID,
			"email":    claims.Email,
			"role":     claims.Role,
			"is_admin": claims.IsAdmin(),
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
