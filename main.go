package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/datawise-ai/advisor-engine/pkg/config"
	"github.com/datawise-ai/advisor-engine/pkg/database"
	"github.com/datawise-ai/advisor-engine/pkg/handlers"
	"github.com/datawise-ai/advisor-engine/pkg/llm"
	"github.com/datawise-ai/advisor-engine/pkg/logging"
	"github.com/datawise-ai/advisor-engine/pkg/middleware"
	"github.com/datawise-ai/advisor-engine/pkg/repositories"
	"github.com/datawise-ai/advisor-engine/pkg/retry"
	"github.com/datawise-ai/advisor-engine/pkg/services"
	"github.com/datawise-ai/advisor-engine/pkg/warehouse"
)

// Version is set at build time via ldflags
var Version = "dev"

const migrationsPath = "migrations"

// fraudScanConcurrency bounds the warehouse queries the fraud rules run in
// parallel; one slot per rule.
const fraudScanConcurrency = 3

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("database", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)),
		zap.String("warehouse", fmt.Sprintf("%s@%s:%d/%s", cfg.Warehouse.User, cfg.Warehouse.Host, cfg.Warehouse.Port, cfg.Warehouse.Database)),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Application database: chat history and insights.
	appDB, err := retry.DoWithResult(ctx, nil, func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.ConnectionString(),
			MaxConnections: cfg.Database.MaxConnections,
		})
	})
	if err != nil {
		logger.Fatal("Failed to connect to application database", zap.Error(err))
	}
	defer appDB.Close()

	// Migrations run over database/sql, separate from the pgx pool.
	migrateDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrateDB, migrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := migrateDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	// Warehouse: the analyzed database. The engine only ever reads from it.
	warehouseDB, err := retry.DoWithResult(ctx, nil, func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:            cfg.Warehouse.ConnectionString(),
			MaxConnections: cfg.Warehouse.MaxConnections,
		})
	})
	if err != nil {
		logger.Fatal("Failed to connect to warehouse", zap.Error(err))
	}
	defer warehouseDB.Close()

	// Session registry. A nil client runs the engine with the registry
	// disabled; sessions still work, listing them just returns empty.
	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient == nil {
		logger.Info("Redis not configured; session registry disabled")
	} else {
		defer func() { _ = redisClient.Close() }()
	}

	llmClient, err := llm.New(&llm.Config{
		Provider:  cfg.LLM.Provider,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		APIKey:    cfg.LLM.APIKey,
		MaxTokens: cfg.LLM.MaxTokens,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize LLM client", zap.Error(err))
	}

	chatRepo := repositories.NewChatRepository(appDB)
	insightRepo := repositories.NewInsightRepository(appDB)

	catalog := warehouse.NewPostgresCatalog(warehouseDB, logger)
	executor := warehouse.NewPostgresExecutor(warehouseDB, logger)
	scanPool := warehouse.NewScanPool(fraudScanConcurrency, logger)

	classifier := services.NewColumnClassifier(llmClient, logger)
	discovery := services.NewDiscoveryService(catalog, classifier, llmClient, logger)
	analysis := services.NewAnalysisService(executor, insightRepo, logger)
	advisor := services.NewAdvisorService(catalog, discovery, analysis, logger)
	registry := services.NewSessionRegistry(redisClient, logger)
	chat := services.NewChatService(advisor, chatRepo, registry, logger)
	fraud := services.NewFraudService(executor, scanPool, cfg.Fraud, logger)
	retention := services.NewRetentionService(chatRepo, cfg.Retention, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewChatHandler(chat, time.Duration(cfg.StreamWordDelayMS)*time.Millisecond, logger).RegisterRoutes(mux)
	handlers.NewSessionHandler(chat, logger).RegisterRoutes(mux)
	handlers.NewInsightHandler(insightRepo, logger).RegisterRoutes(mux)
	handlers.NewFraudHandler(fraud, logger).RegisterRoutes(mux)

	corsMiddleware := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	server := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: corsMiddleware(middleware.RequestLogger(logger)(mux)),
	}

	// Chat history pruning runs on a cron schedule. A zero horizon disables
	// the job entirely; insights are never pruned.
	scheduler := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	if cfg.Retention.ChatHistoryDays > 0 {
		_, err := scheduler.AddFunc(cfg.Retention.Schedule, func() {
			runCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if _, err := retention.PruneChatHistory(runCtx); err != nil {
				logger.Error("Chat history pruning failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Fatal("Failed to schedule retention job", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	logger.Info("Starting advisor-engine",
		zap.String("addr", server.Addr),
		zap.String("version", cfg.Version))

	go func() { _ = server.ListenAndServe() }()
	<-ctx.Done()

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}
