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

	"github.com/bijouxelegance/boutique/internal/ai"
	"github.com/bijouxelegance/boutique/internal/config"
	"github.com/bijouxelegance/boutique/internal/filestore"
	"github.com/bijouxelegance/boutique/internal/handler"
	"github.com/bijouxelegance/boutique/internal/job"
	"github.com/bijouxelegance/boutique/internal/middleware"
	"github.com/bijouxelegance/boutique/internal/repo"
	"github.com/bijouxelegance/boutique/internal/schedule"
	"github.com/bijouxelegance/boutique/internal/service"
	"github.com/bijouxelegance/boutique/internal/vector"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "boutique",
		Short: "boutique backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run boutique server",
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

			db, err := repo.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := repo.ApplyMigrations(db); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, db)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, db *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("vector_index", cfg.Vector.Type),
		zap.String("file_store", cfg.FileStore.Type),
	)

	productRepo := repo.NewProductRepo(db)
	categoryRepo := repo.NewCategoryRepo(db)
	cartRepo := repo.NewCartRepo(db)

	embedProvider, err := ai.NewEmbedProvider(cfg.AI.Embed.Provider, cfg.AI.Embed.Data)
	if err != nil {
		return fmt.Errorf("init embed provider: %w", err)
	}
	embedder := ai.NewEmbedder(embedProvider, ai.EmbedderConfig{
		Model:      cfg.AI.Embed.Model,
		Dimension:  cfg.AI.Embed.Dimension,
		MaxRetries: cfg.AI.Embed.MaxRetries,
	})
	chatProvider, err := ai.NewChatProvider(cfg.AI.Chat.Provider, cfg.AI.Chat.Data)
	if err != nil {
		return fmt.Errorf("init chat provider: %w", err)
	}
	index, err := vector.New(cfg.Vector, db)
	if err != nil {
		return fmt.Errorf("init vector index: %w", err)
	}

	catalogService := service.NewCatalogService(productRepo, categoryRepo, cartRepo)
	indexer := service.NewIndexer(productRepo, embedder, index, cfg.Indexing)
	retrieval := service.NewRetrievalEngine(productRepo, embedder, index, cfg.Assistant)
	chatService := service.NewChatService(retrieval, productRepo, chatProvider, cfg.AI.Chat, cfg.Assistant)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	deps := handler.RouterDeps{
		Chat:       handler.NewChatHandler(chatService),
		Products:   handler.NewProductHandler(catalogService),
		Categories: handler.NewCategoryHandler(catalogService),
		Cart:       handler.NewCartHandler(catalogService),
		Images:     handler.NewImageHandler(store, cfg.BaseURL),
		Admin:      handler.NewAdminHandler(indexer),
		ChatWindow: time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.New()
	if cfg.Indexing.Cron != "" {
		if err := scheduler.Register(cfg.Indexing.Cron, job.NewReindexJob(indexer)); err != nil {
			return fmt.Errorf("schedule reindex: %w", err)
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if cfg.Indexing.ReindexOnStart {
		go func() {
			report, err := indexer.ReindexAll(ctx)
			if err != nil {
				logutil.GetLogger(ctx).Error("startup reindex failed", zap.Error(err))
				return
			}
			logutil.GetLogger(ctx).Info("startup reindex done",
				zap.Int("total", report.Total),
				zap.Int("succeeded", report.Succeeded),
				zap.Int("failed", report.Failed),
			)
		}()
	}

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
