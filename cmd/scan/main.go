// Command scan submits a directory of receipt images for a store and waits for
// every job to finish, printing a per-file summary. Useful for backfilling
// receipts that piled up before the service went live.
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jaehyun/stocklens/internal/config"
	"github.com/jaehyun/stocklens/internal/domain"
	"github.com/jaehyun/stocklens/internal/logger"
	"github.com/jaehyun/stocklens/internal/ocr"
	"github.com/jaehyun/stocklens/internal/repository"
	"github.com/jaehyun/stocklens/internal/service"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
	".bmp": true, ".tiff": true, ".tif": true, ".gif": true,
}

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		ServiceName: "stocklens-scan",
	})
	logger.SetDefaultLogger(appLogger)

	dir := flag.String("dir", ".", "Directory of receipt images to submit")
	storeID := flag.String("store", "", "Store ID owning the receipts")
	limit := flag.Int("limit", 100, "Maximum number of files to submit")
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall wait deadline")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *storeID == "" {
		appLogger.Fatal("Missing required -store flag")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	receiptRepo := repository.NewReceiptRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	extractor := ocr.NewClient(&ocr.Config{
		Endpoint:  cfg.OCR.Endpoint,
		SecretKey: cfg.OCR.SecretKey,
		Timeout:   cfg.OCR.Timeout,
	})

	scanService := service.NewScanService(
		receiptRepo,
		catalogRepo,
		extractor,
		nil, // no image archival for CLI runs
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

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var ids []string
	submitted := 0

	entries, err := os.ReadDir(*dir)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to read directory")
	}

	for _, entry := range entries {
		if entry.IsDir() || submitted >= *limit {
			continue
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		path := filepath.Join(*dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			appLogger.WithError(err).WithField("file", path).Error("Failed to read file")
			continue
		}

		job, err := scanService.Submit(ctx, *storeID, data, entry.Name())
		if err != nil {
			appLogger.WithError(err).WithField("file", entry.Name()).Error("Submission rejected")
			continue
		}
		ids = append(ids, job.ID)
		submitted++
	}

	appLogger.WithField("count", submitted).Info("All files submitted, waiting for results")

	results, err := scanService.WaitAll(ctx, ids)
	if err != nil {
		appLogger.WithError(err).Fatal("Timed out waiting for jobs")
	}

	completed, failed := 0, 0
	for _, job := range results {
		fields := logger.Fields{
			"file":   job.OriginalFileName,
			"status": job.Status,
		}
		if job.Status == domain.JobStatusCompleted {
			completed++
			fields["items"] = len(job.Result.Items)
			fields["receipt_seq"] = job.Result.RawReceiptSeq
			appLogger.WithFields(fields).Info("Scan completed")
		} else {
			failed++
			fields["error"] = job.ErrorMessage
			appLogger.WithFields(fields).Error("Scan failed")
		}
	}

	appLogger.WithFields(logger.Fields{
		"submitted": submitted,
		"completed": completed,
		"failed":    failed,
	}).Info("Batch scan finished")
}
