package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Udhayakumar116/ai-question-gen/internal/api/handlers"
	"github.com/Udhayakumar116/ai-question-gen/internal/config"
	"github.com/Udhayakumar116/ai-question-gen/internal/core"
	db "github.com/Udhayakumar116/ai-question-gen/internal/core/database"
	"github.com/Udhayakumar116/ai-question-gen/internal/core/ingestion_engine"
	"github.com/Udhayakumar116/ai-question-gen/internal/core/llm"
	objectclient "github.com/Udhayakumar116/ai-question-gen/internal/core/object-client"
	"github.com/Udhayakumar116/ai-question-gen/internal/services"
)

type App struct {
	DBClient *db.DatabaseClient
	Indexer  *ingestion_engine.AnalysisIndexer
	Server   *Server

	llm      *llm.GeminiLLM
	embedder *llm.GeminiEmbedder
	workers  int
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("database initialized and ready")

	// Object storage only backs export publishing.
	var store core.ObjectClient
	if cfg.ObjectStorageEnabled() {
		s3, err := objectclient.NewS3Client(appCtx, cfg, logger)
		if err != nil {
			_ = dbClient.Close()
			return nil, err
		}
		store = s3
	} else {
		logger.Info("object storage disabled; export publishing unavailable")
	}

	embedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel, cfg.EmbedDim)
	if err != nil {
		_ = dbClient.Close()
		return nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
	}

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel, logger)
	if err != nil {
		_ = dbClient.Close()
		_ = embedder.Close()
		return nil, fmt.Errorf("couldn't initialize the llm: %w", err)
	}

	ingCfg := ingestion_engine.NewIngestConfig(cfg)
	coordinator := ingestion_engine.NewCoordinator(ingCfg, logger.Named("ingest"))
	indexer := ingestion_engine.NewAnalysisIndexer(dbClient, embedder, ingCfg, logger.Named("indexer"))

	workspace := services.NewWorkspaceService(coordinator)
	analyses := services.NewAnalysisService(dbClient, llmProvider, workspace, indexer, logger)
	exports := services.NewExportService(dbClient, store)
	chat := services.NewChatService(dbClient, embedder, llmProvider, logger)

	router := NewRouter(cfg, Handlers{
		Auth:     handlers.NewAuthHandler(services.NewUserService(dbClient), cfg.JWTSecret, logger),
		Docs:     handlers.NewDocumentHandler(workspace, coordinator.MaxFileSize(), logger),
		Analyses: handlers.NewAnalysisHandler(analyses, exports, logger),
		Chat:     handlers.NewChatHandler(chat, logger),
	})

	return &App{
		DBClient: dbClient,
		Indexer:  indexer,
		Server:   NewServer(cfg, router, logger),
		llm:      llmProvider,
		embedder: embedder,
		workers:  cfg.IndexWorkers,
	}, nil
}

// Run starts the indexer workers and serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.Indexer.Start(ctx, a.workers)

	errCh := make(chan error, 1)
	go func() { errCh <- a.Server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return a.Server.Shutdown(shutdownCtx)
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
	if a.llm != nil {
		_ = a.llm.Close()
	}
	if a.embedder != nil {
		_ = a.embedder.Close()
	}
}
