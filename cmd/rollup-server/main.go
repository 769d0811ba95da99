package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/reachreport/ctv-rollup/internal/api"
	"github.com/reachreport/ctv-rollup/internal/config"
	"github.com/reachreport/ctv-rollup/internal/engine"
	"github.com/reachreport/ctv-rollup/internal/refdata"
	"github.com/reachreport/ctv-rollup/internal/storage"
	"github.com/reachreport/ctv-rollup/internal/storage/fallback"
	"github.com/reachreport/ctv-rollup/internal/storage/memory"
	"github.com/reachreport/ctv-rollup/internal/storage/sqlite"
)

func main() {
	// Parse flags
	cfg := parseFlags()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Starting rollup server...")
	log.Printf("Config: port=%d, backend=%s, db=%s", cfg.Port, cfg.BackendType, cfg.DatabasePath)

	// Create storage backend
	var store storage.Backend
	switch cfg.BackendType {
	case config.BackendSQLite:
		durable, err := sqlite.NewStore(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to open sqlite store: %v", err)
		}
		// Transient sqlite failures degrade to the in-process standby for
		// the affected operation instead of failing the request.
		store = fallback.New(durable, memory.NewStore())
		log.Printf("Using sqlite backend with in-process fallback: %s", cfg.DatabasePath)

	case config.BackendMemory:
		store = memory.NewStore()
		log.Printf("Using in-process backend (data is discarded on exit)")

	default:
		log.Fatalf("Unknown backend type: %s", cfg.BackendType)
	}
	defer store.Close()

	// Apply reference data if a seed directory is configured
	if cfg.SeedDirectory != "" {
		if err := applySeeds(cfg, store); err != nil {
			log.Fatalf("Failed to apply reference data: %v", err)
		}
	}

	// Create engine and HTTP server
	eng := engine.New(store)
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	apiServer := api.NewServer(eng, addr, cfg.MaxConcurrentIngests, cfg.MaxUploadBytes)

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- apiServer.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatalf("Server error: %v", err)

	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		// Graceful shutdown
		ctx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
		defer cancel()

		log.Println("Shutting down server...")
		if err := apiServer.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}

		log.Println("Shutdown complete")
	}
}

// applySeeds validates the seed directory and upserts its reference data.
func applySeeds(cfg config.Config, store storage.Backend) error {
	validator, err := refdata.NewValidator(cfg.SchemaPath)
	if err != nil {
		return fmt.Errorf("failed to create validator: %w", err)
	}

	if errs := validator.ValidateDirectory(cfg.SeedDirectory); len(errs) > 0 {
		for _, e := range errs {
			log.Printf("Seed validation error in %s: %s", e.File, e.Message)
		}
		return fmt.Errorf("seed validation failed: %d errors", len(errs))
	}

	files, loadErrs := refdata.LoadFromDirectory(cfg.SeedDirectory)
	if len(loadErrs) > 0 {
		return fmt.Errorf("failed to load seeds: %d errors", len(loadErrs))
	}

	if err := refdata.Apply(files, store); err != nil {
		return err
	}

	log.Printf("Applied reference data from %s (%d files)", cfg.SeedDirectory, len(files))
	return nil
}

func parseFlags() config.Config {
	cfg := config.DefaultConfig()

	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.Host, "host", cfg.Host, "HTTP server host")
	flag.StringVar(&cfg.BackendType, "backend", cfg.BackendType, "Storage backend (sqlite|memory)")
	flag.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database path (sqlite backend)")
	flag.StringVar(&cfg.SeedDirectory, "seed-dir", cfg.SeedDirectory, "Directory containing reference data YAML files")
	flag.StringVar(&cfg.SchemaPath, "schema", cfg.SchemaPath, "Path to the reference data JSON schema")
	flag.Int64Var(&cfg.MaxConcurrentIngests, "max-ingests", cfg.MaxConcurrentIngests, "Maximum concurrent file ingestions")
	flag.Int64Var(&cfg.MaxUploadBytes, "max-upload-bytes", cfg.MaxUploadBytes, "Maximum upload size in bytes")

	flag.Parse()

	return cfg
}
