package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/helpdesk-ai/supportbot/internal/adapter/ai"
	"github.com/helpdesk-ai/supportbot/internal/adapter/store"
	"github.com/helpdesk-ai/supportbot/internal/adapter/watcher"
	"github.com/helpdesk-ai/supportbot/internal/handler"
	"github.com/helpdesk-ai/supportbot/internal/index"
	"github.com/helpdesk-ai/supportbot/internal/middleware"
	"github.com/helpdesk-ai/supportbot/internal/port"
	"github.com/helpdesk-ai/supportbot/internal/service"
	"github.com/helpdesk-ai/supportbot/pkg/config"
	"github.com/joho/godotenv"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting SupportBot",
		"port", cfg.Port,
		"ai_provider", cfg.AIProvider,
		"similarity_threshold", cfg.SimilarityThreshold,
	)

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	vectorStore := store.NewVectorStore(pgStore, cfg.EmbeddingDimension)

	// ── AI backend ───────────────────────────────────────────────────────
	var aiProvider port.AIProvider
	switch cfg.AIProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			slog.Error("AI_PROVIDER=openai but OPENAI_API_KEY is not set")
			os.Exit(1)
		}
		aiProvider = ai.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIEmbedModel, cfg.OpenAIChatModel)
	default:
		aiProvider = ai.NewOllamaProvider(
			ai.OllamaEndpointConfig{
				BaseURL: cfg.OllamaEmbedURL,
				Model:   cfg.OllamaEmbedModel,
				Token:   cfg.OllamaEmbedToken,
			},
			ai.OllamaEndpointConfig{
				BaseURL: cfg.OllamaChatURL,
				Model:   cfg.OllamaChatModel,
				Token:   cfg.OllamaChatToken,
			},
		)
	}

	// ── Services ─────────────────────────────────────────────────────────
	embeddingIndex := index.New()
	ingestor := service.NewIngestor(aiProvider, vectorStore, embeddingIndex, cfg.ChunkTargetSize)

	retriever := service.NewRetriever(aiProvider, embeddingIndex, cfg.TopK)
	composer := service.NewComposer(aiProvider, cfg.SimilarityThreshold, cfg.HistoryWindow)
	rules := service.EscalationRules{Keywords: cfg.EscalationKeywords}

	manager := service.NewConversationManager(
		pgStore, pgStore, retriever, composer, rules,
		time.Duration(cfg.AITimeoutSeconds)*time.Second,
	)

	// ── Knowledge base ───────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ingestor.Reload(ctx); err != nil {
		slog.Warn("could not load persisted index", "error", err)
	}
	if cfg.KnowledgeDir != "" {
		if err := ingestor.IngestDir(ctx, cfg.KnowledgeDir); err != nil {
			slog.Warn("knowledge dir ingestion failed", "dir", cfg.KnowledgeDir, "error", err)
		}
		go watchKnowledgeDir(ctx, ingestor, cfg.KnowledgeDir)
	}
	slog.Info("embedding index ready", "chunks", embeddingIndex.Size(), "dimension", embeddingIndex.Dimension())

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	// Audit middleware (logs all requests)
	app.Use(middleware.AuditMiddleware(pgStore))

	// Health check
	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":       "healthy",
			"app":          cfg.AppName,
			"version":      "1.0.0",
			"index_loaded": embeddingIndex.Size() > 0,
			"chunks":       embeddingIndex.Size(),
		})
	})

	// ── Public routes ────────────────────────────────────────────────────
	api := app.Group("/api/v1")

	chatHandler := handler.NewChatHandler(manager, pgStore)
	chatHandler.Register(api)

	// ── Admin routes ─────────────────────────────────────────────────────
	admin := api.Group("/admin", middleware.AdminAuth(cfg.AdminToken))

	settingsHandler := handler.NewSettingsHandler(pgStore)
	settingsHandler.Register(admin)

	ingestHandler := handler.NewIngestHandler(ingestor)
	ingestHandler.Register(admin)

	auditHandler := handler.NewAuditHandler(pgStore)
	auditHandler.Register(admin)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// watchKnowledgeDir re-ingests knowledge files as they change on disk.
func watchKnowledgeDir(ctx context.Context, ingestor *service.Ingestor, dir string) {
	w, err := watcher.New(nil)
	if err != nil {
		slog.Error("file watcher unavailable", "error", err)
		return
	}
	defer w.Close()

	events, err := w.Watch(ctx, dir)
	if err != nil {
		slog.Error("cannot watch knowledge dir", "dir", dir, "error", err)
		return
	}
	slog.Info("watching knowledge dir", "dir", dir)

	for ev := range events {
		switch ev.Op {
		case watcher.Created, watcher.Modified:
			if _, err := ingestor.IngestFile(ctx, ev.Path); err != nil {
				slog.Error("re-ingest failed", "file", ev.Path, "error", err)
			}
		case watcher.Removed:
			if err := ingestor.RemoveSource(ctx, filepath.Base(ev.Path)); err != nil {
				slog.Error("remove source failed", "file", ev.Path, "error", err)
			}
		}
	}
}
