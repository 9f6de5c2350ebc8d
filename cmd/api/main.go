package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/article-eval/backend/internal/api/handlers"
	"github.com/article-eval/backend/internal/evaluation"
	"github.com/article-eval/backend/internal/llm"
	"github.com/article-eval/backend/internal/metrics"
	"github.com/article-eval/backend/internal/middleware/security"
	"github.com/article-eval/backend/internal/qiita"
	"github.com/article-eval/backend/internal/review"
	"github.com/article-eval/backend/internal/storage/sqlite"
	"github.com/article-eval/backend/pkg/config"
	appLogger "github.com/article-eval/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting article evaluation API server")

	if cfg.Qiita.Token == "" {
		appLogger.Warn("QIITA_API_TOKEN is not set; requests to the Qiita API will be unauthenticated")
	}
	if cfg.LLM.APIKey == "" {
		appLogger.Warn("OPENAI_API_KEY is not set; evaluations will fail")
	}

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	metrics.Init()

	qiitaClient := qiita.NewClient(
		cfg.Qiita.BaseURL,
		cfg.Qiita.Token,
		time.Duration(cfg.Qiita.TimeoutSec)*time.Second,
	)
	llmClient := llm.NewClient(cfg.LLM)
	evaluator := evaluation.NewEvaluator(llmClient)
	engine := review.NewEngine(sqliteClient, qiitaClient, evaluator)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		UnescapePath: true,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: cfg.Security.AllowedOrigins,
		IsDevelopment:  cfg.Security.IsDevelopment,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, OPTIONS",
	}))

	evaluationHandler := handlers.NewEvaluationHandler(engine)

	app.Get("/evaluate/:articleId", evaluationHandler.Evaluate)
	app.Get("/history/:user", evaluationHandler.GetUserHistory)

	app.Get("/metrics", metrics.MetricsHandler())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	app.Get("/ready", func(c *fiber.Ctx) error {
		if err := sqliteClient.Ping(c.UserContext()); err != nil {
			appLogger.Warn("Readiness check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
			})
		}
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
