package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voicehire/backend/internal/config"
	"voicehire/backend/internal/handlers"
	"voicehire/backend/internal/interview"
	"voicehire/backend/internal/jobs"
	"voicehire/backend/internal/llm"
	_ "voicehire/backend/internal/llm/gemini"
	"voicehire/backend/internal/models"
	"voicehire/backend/internal/prompts"
	"voicehire/backend/internal/routers"
	"voicehire/backend/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func registerRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, dataHandler *handlers.DataHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.InterviewRoutes(router, interviewHandler)
	routers.DataRoutes(router, dataHandler)
}

// Helper for environment variables
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// initDatabase opens the persistence sink database. SQLite by default,
// PostgreSQL when DB_DRIVER=postgres.
func initDatabase() (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	switch getEnv("DB_DRIVER", "sqlite") {
	case "postgres":
		host := getEnv("POSTGRES_HOST", "localhost")
		user := getEnv("POSTGRES_USER", "postgres")
		password := getEnv("POSTGRES_PASSWORD", "postgres")
		dbname := getEnv("POSTGRES_DB", "postgres")
		port := getEnv("POSTGRES_PORT", "5432")
		sslmode := getEnv("POSTGRES_SSLMODE", "disable")

		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			host, user, password, dbname, port, sslmode)
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	default:
		db, err = gorm.Open(sqlite.Open(getEnv("SQLITE_PATH", "interviews.db")), &gorm.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.InterviewRecord{}, &models.AnswerRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func main() {
	// .env is optional; real deployments set environment variables directly
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.Int("total_questions", cfg.TotalQuestions),
		zap.String("storage_mode", cfg.StorageMode))

	// prompt manager (health checks only; the provider loads its own copy)
	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	// evaluator provider based on configuration
	provider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize evaluator provider", zap.Error(err))
	}

	// persistence sink (best-effort; the interview flow works without it)
	var store *storage.Store
	var dataHandler *handlers.DataHandler
	var exporterJob *jobs.SheetExporterJob

	if cfg.StorageMode == config.StorageModeDB {
		db, err := initDatabase()
		if err != nil {
			logger.Error("Failed to initialize database, persistence will be disabled", zap.Error(err))
		} else {
			store = storage.NewStore(db)
			dataHandler = handlers.NewDataHandler(store, logger)

			exporterConfig := &jobs.ExporterConfig{
				Schedule:  getEnv("EXPORT_SCHEDULE", "0 2 * * *"),
				ExportDir: getEnv("EXPORT_DIR", "./exports"),
				SheetName: getEnv("EXPORT_SHEET_NAME", "Interview Data"),
				Enabled:   getEnv("EXPORT_ENABLED", "false") == "true",
			}
			exporterJob = jobs.NewSheetExporterJob(store, exporterConfig)
			if exporterConfig.Enabled {
				if err := exporterJob.Start(); err != nil {
					logger.Error("Failed to start interview exporter job", zap.Error(err))
				} else {
					logger.Info("Interview exporter job started", zap.String("schedule", exporterConfig.Schedule))
				}
			}

			logger.Info("Persistence sink initialized")
		}
	}

	// session registry; a nil *storage.Store must stay a nil Sink
	var sink interview.Sink
	if store != nil {
		sink = store
	}
	registry := interview.NewRegistry(provider, sink, logger, cfg)

	interviewHandler := handlers.NewInterviewHandler(registry, logger)
	healthHandler := handlers.NewHealthHandler(provider, promptManager, cfg)

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))

	registerRoutes(router, interviewHandler, dataHandler, healthHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	if exporterJob != nil {
		exporterJob.Stop()
	}
	registry.Close()

	// graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Interview service exited")
}
