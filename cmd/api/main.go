package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"recall-ai/internal/chunker"
	"recall-ai/internal/config"
	"recall-ai/internal/docstore"
	"recall-ai/internal/embedding"
	"recall-ai/internal/http"
	"recall-ai/internal/search"
	"recall-ai/internal/storage"
	"recall-ai/internal/trigger"
	"recall-ai/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database (migrations run on open)
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	vectorStore := vectorstore.NewSQLiteStore(db, cfg.EmbeddingVectorSize)
	queue := storage.NewQueueRepo(db)

	embedder := embedding.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingModelName, cfg.EmbeddingTimeout)
	docs := docstore.NewHTTPClient(cfg.DocStoreBaseURL)
	chunk := chunker.New(cfg.ChunkSizeChars, cfg.ChunkOverlapPercent)

	triggerSvc := trigger.NewService(
		embedder,
		vectorStore,
		queue,
		docs,
		chunk,
		cfg.CatchUpBatchSize,
		cfg.CatchUpRatePerSec,
	)

	searchEngine := search.NewEngine(embedder, vectorStore, docs)
	slog.Info("Search engine initialized",
		"embedding_model", cfg.EmbeddingModelName,
		"vector_size", cfg.EmbeddingVectorSize)

	// Create router with dependencies
	deps := &http.Deps{
		SearchEngine: searchEngine,
		Trigger:      triggerSvc,
		VectorStore:  vectorStore,
		IndexCounter: vectorStore,
		Queue:        queue,
	}
	router := http.NewRouter(deps)

	// Drain the offline queue in the background for the life of the process
	go triggerSvc.RunDrainer(context.Background(), cfg.QueueDrainInterval)

	// Run one catch-up scan after the router is ready so documents indexed
	// while the service was down get picked up
	triggerSvc.CatchUp("")

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("Embedding configuration", "base_url", cfg.EmbeddingBaseURL, "model", cfg.EmbeddingModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
