package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaehyun/stocklens/internal/api"
	"github.com/jaehyun/stocklens/internal/api/middleware"
	"github.com/jaehyun/stocklens/internal/config"
	"github.com/jaehyun/stocklens/internal/logger"
	"github.com/jaehyun/stocklens/internal/ocr"
	"github.com/jaehyun/stocklens/internal/repository"
	"github.com/jaehyun/stocklens/internal/service"
	"github.com/jaehyun/stocklens/internal/storage"
)

func main() {
	// Initialize logger from environment
	appLogger := logger.New(nil)
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Load configuration; CONFIG_PATH overrides the default search path
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	receiptRepo := repository.NewReceiptRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	matchRepo := repository.NewMatchRepository(db)

	// Initialize OCR client
	extractor := ocr.NewClient(&ocr.Config{
		Endpoint:  cfg.OCR.Endpoint,
		SecretKey: cfg.OCR.SecretKey,
		Timeout:   cfg.OCR.Timeout,
	})

	// Initialize object storage for receipt image archival (optional)
	var objectStorage storage.ObjectStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3Storage(&storage.S3Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize storage")
		}
		if err := s3Storage.EnsureBucket(context.Background()); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
		}
		objectStorage = s3Storage
	}

	// Initialize services
	scanService := service.NewScanService(
		receiptRepo,
		catalogRepo,
		extractor,
		objectStorage,
		appLogger,
		&service.ScanConfig{
			CoreWorkers:   cfg.Jobs.CoreWorkers,
			MaxWorkers:    cfg.Jobs.MaxWorkers,
			QueueSize:     cfg.Jobs.QueueSize,
			ResultTTL:     cfg.Jobs.ResultTTL,
			MaxJobs:       cfg.Jobs.MaxJobs,
			MaxFileSize:   cfg.Upload.MaxFileSize,
			MaxBatchFiles: cfg.Upload.MaxBatchFiles,
			MaxBatchSize:  cfg.Upload.MaxBatchSize,
		},
	)
	defer scanService.Shutdown()

	reconcileService := service.NewReconcileService(
		db,
		receiptRepo,
		catalogRepo,
		inventoryRepo,
		matchRepo,
		appLogger,
	)

	// Setup router
	router := api.SetupRouter(scanService, reconcileService, catalogRepo, inventoryRepo, &api.RouterConfig{
		Mode: cfg.Server.Mode,
		CORS: middleware.CORSConfig{
			AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
			AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
		},
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
