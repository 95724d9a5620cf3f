/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the TaxGuard estimation server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and load config
  2. Validate the statutory reference tables (fatal on failure)
  3. Initialize SQLite store
  4. Wire the handler: redactor, extractor, advisor, calculator
  5. Start the retention sweeper
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config path (optional)
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config)
           Use ":memory:" for an in-memory database

AI WIRING:
  When OPENAI_API_KEY is set (env or config), document extraction and
  recommendations go through the model with rule-based fallback.
  Without a key, both run rule-based only. The server never refuses to
  start over a missing key.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the retention sweeper
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/taxguard.db"

  # Run with a config file
  ./server -config=config.yaml

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - config/config.go: Configuration loading
  - refdata/validate.go: The startup table check
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/taxguard/tax-engine/advisor"
	"github.com/taxguard/tax-engine/api"
	"github.com/taxguard/tax-engine/config"
	"github.com/taxguard/tax-engine/extract"
	"github.com/taxguard/tax-engine/refdata"
	"github.com/taxguard/tax-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "YAML config path")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	// A malformed bracket table means wrong tax numbers. Refuse to serve.
	if err := refdata.Validate(); err != nil {
		log.Fatal("Reference table validation failed", zap.Error(err))
	}

	// Initialize store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store, log)
	if cfg.AIEnabled() {
		aiExtractor := extract.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		aiExtractor.Timeout = cfg.AITimeout()
		handler.Extractor = &extract.Fallback{
			Primary:   aiExtractor,
			Secondary: extract.NewRuleBased(),
			OnFallback: func(err error) {
				log.Warn("AI extraction failed, using rules", zap.Error(err))
			},
		}
		aiAdvisor := advisor.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		aiAdvisor.Timeout = cfg.AITimeout()
		aiAdvisor.OnFallback = func(err error) {
			log.Warn("AI advisor failed, using rules", zap.Error(err))
		}
		handler.Advisor = aiAdvisor
		log.Info("AI extraction and advice enabled", zap.String("model", cfg.OpenAI.Model))
	} else {
		log.Info("No OpenAI key configured, running rule-based only")
	}

	// Prune old simulation history in the background
	sweeper := api.NewRetentionSweeper(store, log)
	sweeper.Start()
	defer sweeper.Stop()

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AITimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}
