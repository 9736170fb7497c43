// SQLGuard - Guarded SQL Data-Access Service
//
// This is the main entry point for the SQLGuard service. SQLGuard sits
// between partially-trusted callers and a SQLite database: identifiers
// are whitelisted, ORDER BY and LIMIT clauses are sanitized, values
// bind through prepared statements, and every attempt and failure is
// recorded in a masked query log.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/sqlguard/internal/api"
	"github.com/nerrad567/sqlguard/internal/guard"
	"github.com/nerrad567/sqlguard/internal/infrastructure/config"
	"github.com/nerrad567/sqlguard/internal/infrastructure/database"
	"github.com/nerrad567/sqlguard/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting SQLGuard",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Build the guarded store
	var echo io.Writer
	if cfg.Guard.Echo {
		echo = os.Stdout
	}
	store, err := guard.New(guard.Deps{
		DB:        db.DB,
		Whitelist: guard.NewWhitelist(cfg.Guard.Tables, cfg.Guard.Columns, cfg.Guard.Functions),
		QueryLog:  guard.NewQueryLog(cfg.Guard.QueryLog, cfg.Guard.Debug, echo),
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	log.Info("guarded store initialised",
		"tables", len(cfg.Guard.Tables),
		"columns", len(cfg.Guard.Columns),
		"functions", len(cfg.Guard.Functions),
		"debug", cfg.Guard.Debug,
	)

	// Start API server
	server, err := api.New(api.Deps{
		Config:   cfg.API,
		Security: cfg.Security,
		Logger:   log,
		Store:    store,
		DB:       db,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify connections are healthy
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. Database

	log.Info("SQLGuard stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SQLGUARD_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SQLGUARD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
