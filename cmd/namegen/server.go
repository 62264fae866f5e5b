package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/CTAG07/namegen/pkg/store"
)

// Server hosts the name API.
type Server struct {
	config   *Config
	logger   *slog.Logger
	store    *store.Store
	registry *Registry
	mux      *http.ServeMux
}

// NewServer creates a server on top of an initialized database.
func NewServer(config *Config, logger *slog.Logger, db *sql.DB) (*Server, error) {
	s, err := store.NewStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	s.SetLogger(logger.With(slog.String("component", "store")))

	server := &Server{
		config:   config,
		logger:   logger,
		store:    s,
		registry: NewRegistry(s, logger.With(slog.String("component", "registry"))),
		mux:      http.NewServeMux(),
	}
	server.RegisterRoutes(server.mux)
	return server, nil
}

// Close releases the store's prepared statements.
func (s *Server) Close() {
	s.store.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// initDB opens the database at path, creating its directory and the schema
// when needed.
func initDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := openDatabase(path)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err = store.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(level)}))
}

// serve hosts the API until SIGINT or SIGTERM is received.
func serve(configPath string) error {
	config, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(config.Server.LogLevel)

	db, err := initDB(config.Server.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	server, err := NewServer(config, logger, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to create server object: %w", err)
	}

	httpServer := &http.Server{Addr: config.Server.Addr, Handler: server}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting namegen server", "address", httpServer.Addr, "version", Version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	osSignalChan := make(chan os.Signal, 1)
	signal.Notify(osSignalChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(osSignalChan)

	select {
	case <-osSignalChan:
		logger.Info("OS signal received, initiating shutdown.")
	case err = <-serveErr:
		logger.Error("Server failed", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(ctx); shutdownErr != nil {
		logger.Error("Server shutdown failed", "error", shutdownErr)
	}
	logger.Info("HTTP server stopped.")

	server.Close()
	logger.Info("Closing database connection.")
	if closeErr := db.Close(); closeErr != nil {
		logger.Error("Failed to close database", "error", closeErr)
	}
	return err
}
