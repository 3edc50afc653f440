package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/semsearch/internal/ai"
	"github.com/xxxsen/semsearch/internal/config"
	"github.com/xxxsen/semsearch/internal/db"
	"github.com/xxxsen/semsearch/internal/embedcache"
	"github.com/xxxsen/semsearch/internal/filestore"
	"github.com/xxxsen/semsearch/internal/handler"
	"github.com/xxxsen/semsearch/internal/job"
	"github.com/xxxsen/semsearch/internal/middleware"
	"github.com/xxxsen/semsearch/internal/repo"
	"github.com/xxxsen/semsearch/internal/schedule"
	"github.com/xxxsen/semsearch/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "semsearch",
		Short: "semantic search server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run semsearch server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(database, cfg.Search.EmbeddingDim); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, database)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, database *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("embed_provider", cfg.AI.Embed.Provider),
		zap.String("generate_provider", cfg.AI.Generate.Provider),
		zap.Bool("rerank_enable", cfg.Search.RerankEnable),
		zap.String("file_store", cfg.FileStore.Type),
	)

	chunkRepo := repo.NewChunkRepo(database)
	timeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second

	embedProvider, err := ai.NewEmbedProvider(cfg.AI.Embed.Provider, cfg.AI.Embed.Data)
	if err != nil {
		return fmt.Errorf("init embed provider: %w", err)
	}
	var embedder ai.IEmbedder = ai.NewEmbedder(embedProvider, cfg.AI.Embed.Model, cfg.Search.EmbeddingDim, cfg.Search.EmbedBatchSize, timeout)
	embedder = embedcache.WrapLruCacheToEmbedder(embedder, cfg.AI.EmbedCacheSize, time.Duration(cfg.AI.EmbedCacheTTLHours)*time.Hour)

	genProvider, err := ai.NewGenProvider(cfg.AI.Generate.Provider, cfg.AI.Generate.Data)
	if err != nil {
		return fmt.Errorf("init generate provider: %w", err)
	}
	synthesizer := ai.NewSynthesizer(genProvider, cfg.AI.Generate.Model, timeout)

	var reranker ai.IReranker
	if cfg.Search.RerankEnable {
		rerankProvider, err := ai.NewRerankProvider(cfg.AI.Rerank.Provider, cfg.AI.Rerank.Data)
		if err != nil {
			return fmt.Errorf("init rerank provider: %w", err)
		}
		reranker = ai.NewReranker(rerankProvider, cfg.AI.Rerank.Model, timeout)
	}

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	ingestService := service.NewIngestService(chunkRepo, embedder, store, cfg.Search, cfg.MaxUploadBytes)
	searchService := service.NewSearchService(chunkRepo, embedder, reranker, synthesizer, cfg.Search)

	deps := handler.RouterDeps{
		Ingest: handler.NewIngestHandler(ingestService),
		Search: handler.NewSearchHandler(searchService),
	}

	middlewares := []gin.HandlerFunc{
		middleware.CORS(cfg.CORSAllowlist),
		gzip.Gzip(gzip.DefaultCompression),
	}
	if cfg.RateLimitSeconds > 0 {
		middlewares = append(middlewares, middleware.RateLimit(time.Duration(cfg.RateLimitSeconds)*time.Second))
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(middlewares...),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewIndexMaintenanceJob(chunkRepo, cfg.Search.IndexThreshold), cfg.IndexMaintainSpec); err != nil {
		return fmt.Errorf("schedule index maintenance: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
