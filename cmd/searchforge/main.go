package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/searchforge/searchforge/internal/api"
	"github.com/searchforge/searchforge/internal/api/query"
	"github.com/searchforge/searchforge/internal/config"
	"github.com/searchforge/searchforge/internal/llm"
	"github.com/searchforge/searchforge/internal/repository"
	"github.com/searchforge/searchforge/internal/search"
	"github.com/searchforge/searchforge/internal/service"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Optional .env file for provider credentials
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize the embedded key-value store
	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	store := repository.NewSessionStore(db, cfg.Features.MaxHistoryLen)

	// Select the search provider from configuration
	provider, err := search.NewProvider(cfg.Search, logger)
	if err != nil {
		logger.Fatal("Failed to initialize search provider", zap.Error(err))
	}

	// LLM client and services
	llmClient := llm.NewOpenAIClient(cfg.LLM, logger)
	related := service.NewRelatedQuestionsGenerator(llmClient, logger)
	tasks := service.NewTaskRegistry(logger)

	orchestrator := service.NewOrchestrator(store, provider, llmClient, related, tasks, logger, service.Options{
		RelatedQuestions: cfg.Features.RelatedQuestions,
		ChatHistory:      cfg.Features.ChatHistory,
		StreamTimeout:    cfg.LLM.StreamTimeout,
	})

	// Setup router
	queryHandler := query.NewHandler(orchestrator, logger)
	router := api.SetupRouter(queryHandler, api.RouterConfig{
		AllowOrigins: []string{"*"},
		UIDir:        cfg.UI.Dir,
	})

	// Create HTTP server. No write timeout: the answer stream is long-lived.
	srv := &http.Server{
		Addr:        cfg.Address(),
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting SearchForge server",
			zap.String("address", cfg.Address()),
			zap.String("search_provider", cfg.Search.Provider),
			zap.String("model", cfg.LLM.Model),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Drain in-flight persistence tasks before closing the store
	if err := tasks.Drain(ctx); err != nil {
		logger.Warn("Background tasks did not drain in time", zap.Error(err))
	}

	logger.Info("Server exited")
}
