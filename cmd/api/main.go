package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"openio-assistant/internal/blobstore"
	"openio-assistant/internal/config"
	"openio-assistant/internal/http"
	"openio-assistant/internal/index"
	"openio-assistant/internal/llm"
	"openio-assistant/internal/rag"
	"openio-assistant/internal/service"
	"openio-assistant/internal/storage"
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

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	buildRepo := storage.NewBuildRepo(db)

	// Durable storage gateway (optional; the lifecycle falls through when
	// it is unconfigured or unreachable)
	blob := blobstore.NewClient(cfg.StorageGatewayURL)
	if blob.Configured() {
		slog.Info("Storage gateway configured", "url", cfg.StorageGatewayURL)
	} else {
		slog.Info("Storage gateway not configured, durable persistence disabled")
	}

	// External embedding service
	embedder := llm.NewEmbeddingsClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.VectorSize)
	if embedder.Degraded() {
		slog.Warn("No embedding credential configured, running degraded: zero vectors, meaningless similarity")
	}

	// Index snapshot store and lifecycle manager
	store := index.NewStore(cfg.IndexPath, cfg.IndexMetaPath, blob)
	manager := index.NewManager(store, embedder, buildRepo, index.ManagerConfig{
		SourcePath:   cfg.SourcePath,
		RootHash:     cfg.StorageRootHash,
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
	})

	// Chat completion service and RAG engine
	chatClient := llm.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ChatModel)
	engine := rag.NewEngine(manager, embedder, chatClient, rag.Options{
		TopK:        cfg.TopK,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	slog.Info("RAG engine initialized", "top_k", cfg.TopK, "chat_model", cfg.ChatModel)

	// Create router with dependencies
	deps := &http.Deps{
		Engine:       engine,
		IndexManager: manager,
		Embedder:     embedder,
		BuildStore:   buildRepo,
		ChatProbe:    chatClient,
		StorageProbe: blob,
	}
	router := http.NewRouter(deps)

	// Warm the index in background after the router is ready. An empty
	// lifecycle is a normal first-boot state, not a startup failure.
	go func() {
		warmCtx := context.Background()
		if _, meta, err := manager.Ensure(warmCtx); err != nil {
			if errors.Is(err, service.ErrNoIndex) {
				slog.Info("No index available at startup, waiting for explicit build")
			} else {
				slog.Error("Index warm-up failed", "error", err)
			}
		} else {
			slog.Info("Index warmed", "chunks", meta.Chunks, "source", meta.Source)
		}
	}()

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
