package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-watermark/internal/config"
	"github.com/phambaophuc/image-watermark/internal/http/handlers"
	"github.com/phambaophuc/image-watermark/internal/http/routes"
	"github.com/phambaophuc/image-watermark/internal/services/batch"
	"github.com/phambaophuc/image-watermark/internal/services/processor"
	"github.com/phambaophuc/image-watermark/internal/services/settings"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize services
	imageProcessor := processor.NewImageProcessor(cfg.Processing.JPEGQuality)

	batchService := batch.NewService(imageProcessor, logger, batch.Options{
		FailurePolicy: cfg.Processing.FailurePolicy,
		OutputPrefix:  cfg.Processing.OutputPrefix,
	})

	settingsStore, err := settings.NewStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize settings store", zap.Error(err))
	}

	// Initialize handlers
	watermarkHandler := handlers.NewWatermarkHandler(batchService, settingsStore, logger, cfg)

	maxBody := cfg.Processing.MaxFileSize * int64(cfg.Processing.MaxBatchFiles+1)
	router := routes.NewRouter(watermarkHandler, logger, maxBody)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server",
			zap.String("addr", server.Addr),
			zap.String("settings_backend", cfg.Settings.Backend),
			zap.String("failure_policy", cfg.Processing.FailurePolicy))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if closer, ok := settingsStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("Failed to close settings store", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}
