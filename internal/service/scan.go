package service

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jaehyun/stocklens/internal/domain"
	"github.com/jaehyun/stocklens/internal/logger"
	"github.com/jaehyun/stocklens/internal/matcher"
	"github.com/jaehyun/stocklens/internal/ocr"
	"github.com/jaehyun/stocklens/internal/parser"
	"github.com/jaehyun/stocklens/internal/repository"
	"github.com/jaehyun/stocklens/internal/storage"
)

// ScanService orchestrates the OCR-to-candidate pipeline: it validates uploads,
// runs extraction, parsing, raw persistence, and matching off the request
// goroutine, and tracks per-job lifecycle through the bounded job store.
type ScanService struct {
	receipts  *repository.ReceiptRepository
	catalog   *repository.CatalogRepository
	extractor ocr.TextExtractor
	storage   storage.ObjectStorage // optional: archives original images
	pool      *workerPool
	jobs      *jobStore
	logger    *logger.Logger

	maxFileSize   int64
	maxBatchFiles int
	maxBatchSize  int64
}

// ScanConfig holds configuration for the scan service.
type ScanConfig struct {
	CoreWorkers   int
	MaxWorkers    int
	QueueSize     int
	ResultTTL     time.Duration
	MaxJobs       int
	MaxFileSize   int64
	MaxBatchFiles int
	MaxBatchSize  int64
}

// UploadFile is one file of a batch submission.
type UploadFile struct {
	Name string
	Data []byte
}

// NewScanService creates a new scan service and starts its worker pool.
func NewScanService(
	receipts *repository.ReceiptRepository,
	catalog *repository.CatalogRepository,
	extractor ocr.TextExtractor,
	objectStorage storage.ObjectStorage,
	log *logger.Logger,
	cfg *ScanConfig,
) *ScanService {
	return &ScanService{
		receipts:      receipts,
		catalog:       catalog,
		extractor:     extractor,
		storage:       objectStorage,
		pool:          newWorkerPool(cfg.CoreWorkers, cfg.MaxWorkers, cfg.QueueSize),
		jobs:          newJobStore(cfg.ResultTTL, cfg.MaxJobs),
		logger:        log,
		maxFileSize:   cfg.MaxFileSize,
		maxBatchFiles: cfg.MaxBatchFiles,
		maxBatchSize:  cfg.MaxBatchSize,
	}
}

// log returns the logger attached to ctx if one is, otherwise the service logger
func (s *ScanService) log(ctx context.Context) *logger.Logger {
	if logger.HasLogger(ctx) {
		return logger.FromContext(ctx)
	}
	return s.logger
}

// Submit validates an upload, registers a pending job, and dispatches the
// pipeline to the worker pool. It returns the pending job snapshot immediately;
// the caller polls Status for the outcome. A saturated pool rejects the
// submission with domain.ErrPoolSaturated and leaves no job behind.
func (s *ScanService) Submit(ctx context.Context, storeID string, data []byte, filename string) (*domain.ReceiptJob, error) {
	if err := validateFile(data, filename, s.maxFileSize); err != nil {
		return nil, err
	}

	job := domain.NewReceiptJob(uuid.New().String(), filename)
	s.jobs.Put(job)

	s.archiveOriginal(ctx, job.ID, data, filename)

	// The pipeline outlives the HTTP request; it runs on a detached context
	// whose logger is derived from the service logger with job-scoped fields,
	// so everything the workers log goes where the service was told to log.
	jobCtx := s.logger.WithFields(logger.Fields{
		logger.FieldJobID:   job.ID,
		logger.FieldStoreID: storeID,
	}).WithContext(context.Background())
	task := func() { s.process(jobCtx, job, storeID, data, filename) }

	if err := s.pool.TrySubmit(task); err != nil {
		s.jobs.Remove(job.ID)
		return nil, err
	}

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldJobID: job.ID,
		"file":            filename,
	}).Info("Scan job submitted")

	return job, nil
}

// SubmitBatch submits up to the batch cap of files as independent jobs. A file
// that fails validation or dispatch yields a FAILED job outcome without
// affecting its siblings. Returns job snapshots in submission order.
func (s *ScanService) SubmitBatch(ctx context.Context, storeID string, files []UploadFile) ([]*domain.ReceiptJob, error) {
	if err := validateBatch(files, s.maxBatchFiles, s.maxBatchSize); err != nil {
		return nil, err
	}

	jobs := make([]*domain.ReceiptJob, 0, len(files))
	for _, f := range files {
		job, err := s.Submit(ctx, storeID, f.Data, f.Name)
		if err != nil {
			// Fault isolation: record the rejection as a terminal job so the
			// batch still resolves to one outcome per file.
			failed := domain.NewReceiptJob(uuid.New().String(), f.Name).Failed(err.Error())
			s.jobs.Put(failed)
			jobs = append(jobs, failed)
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// WaitAll joins a set of jobs: it blocks until every job is terminal or the
// context expires, then returns the terminal snapshots in the given order.
// Unknown ids resolve to a synthetic FAILED snapshot.
func (s *ScanService) WaitAll(ctx context.Context, ids []string) ([]*domain.ReceiptJob, error) {
	for _, id := range ids {
		select {
		case <-s.jobs.Done(id):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	results := make([]*domain.ReceiptJob, 0, len(ids))
	for _, id := range ids {
		job, ok := s.jobs.Get(id)
		if !ok {
			job = domain.NewReceiptJob(id, "").Failed("job not found")
		}
		results = append(results, job)
	}
	return results, nil
}

// Status returns the current snapshot for a job id, or domain.ErrJobNotFound.
func (s *ScanService) Status(jobID string) (*domain.ReceiptJob, error) {
	job, ok := s.jobs.Get(jobID)
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

// Shutdown drains the worker pool and stops the job store janitor.
func (s *ScanService) Shutdown() {
	s.pool.Shutdown()
	s.jobs.Close()
}

// process runs the full pipeline for one job on a pool worker. Extraction,
// parsing, and matching are sequenced because each step consumes the previous
// step's output; any failure moves the job to FAILED with the cause preserved.
func (s *ScanService) process(ctx context.Context, job *domain.ReceiptJob, storeID string, data []byte, filename string) {
	start := time.Now()
	s.jobs.Update(job.Processing())

	text, err := s.extractor.Extract(ctx, data, filename)
	if err != nil {
		s.fail(ctx, job, fmt.Errorf("text extraction failed: %w", err))
		return
	}

	doc := parser.Parse(text)

	raw := &domain.RawReceipt{
		ID:           uuid.New().String(),
		StoreID:      storeID,
		DocumentType: "RECEIPT",
		RawText:      text,
		Items:        toReceiptItems(doc.Items),
		SupplierName: doc.SupplierName,
		DocumentDate: doc.DocumentDate,
	}
	if err := s.receipts.Create(ctx, raw); err != nil {
		s.fail(ctx, job, fmt.Errorf("raw receipt persistence failed: %w", err))
		return
	}

	products, err := s.catalog.ListProductsForStore(ctx, storeID)
	if err != nil {
		s.fail(ctx, job, fmt.Errorf("catalog lookup failed: %w", err))
		return
	}

	items := make([]domain.ItemMatch, 0, len(raw.Items))
	for _, item := range raw.Items {
		items = append(items, matcher.Match(item, products))
	}

	result := &domain.ScanResult{
		RawReceiptID:  raw.ID,
		RawReceiptSeq: raw.Seq,
		RawText:       text,
		SupplierName:  raw.SupplierName,
		DocumentDate:  raw.DocumentDate,
		Items:         items,
	}
	s.jobs.Update(job.Completed(result))

	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
		logger.FieldCount:      len(items),
		logger.FieldReceiptSeq: raw.Seq,
	}).Info(ctx, "Scan job completed")
}

func (s *ScanService) fail(ctx context.Context, job *domain.ReceiptJob, err error) {
	s.jobs.Update(job.Failed(err.Error()))
	s.log(ctx).WithError(err).Error("Scan job failed")
}

// archiveOriginal stores the uploaded image for audit. Archival is best-effort:
// a storage failure is logged and never blocks the scan itself.
func (s *ScanService) archiveOriginal(ctx context.Context, jobID string, data []byte, filename string) {
	if s.storage == nil {
		return
	}

	ext := strings.ToLower(filepath.Ext(filename))
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := fmt.Sprintf("receipts/%s/%s%s", time.Now().Format("2006/01/02"), jobID, ext)

	if err := s.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		s.log(ctx).WithError(err).WithField("key", key).Warn("Failed to archive original image")
	}
}

func toReceiptItems(items []parser.Item) domain.ReceiptItemList {
	out := make(domain.ReceiptItemList, 0, len(items))
	for _, it := range items {
		out = append(out, domain.ReceiptItem{
			ProductName:  it.ProductName,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			TotalPrice:   it.TotalPrice,
			OriginalText: it.OriginalText,
		})
	}
	return out
}
