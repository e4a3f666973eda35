package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jaehyun/stocklens/internal/domain"
	"github.com/jaehyun/stocklens/internal/service"
)

// ScanHandler handles receipt scan submission and job status endpoints.
type ScanHandler struct {
	scanService *service.ScanService
}

// NewScanHandler creates a new scan handler.
// Parameters:
//   - scanService: scan orchestrator instance.
// Returns:
//   - *ScanHandler: initialized handler.
func NewScanHandler(scanService *service.ScanService) *ScanHandler {
	return &ScanHandler{
		scanService: scanService,
	}
}

// Scan handles POST /api/v1/stores/:storeId/receipts/scan.
// Accepts a single multipart image under the "file" field and returns the job
// id immediately with accepted-but-not-yet-processed semantics.
func (h *ScanHandler) Scan(c *gin.Context) {
	storeID := c.Param("storeId")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}

	data, err := readUpload(fileHeader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}

	job, err := h.scanService.Submit(c.Request.Context(), storeID, data, fileHeader.Filename)
	if err != nil {
		writeScanError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":     job.ID,
		"status":     job.Status,
		"status_url": fmt.Sprintf("/api/v1/receipts/jobs/%s", job.ID),
	})
}

// ScanBatch handles POST /api/v1/stores/:storeId/receipts/scan/batch.
// Accepts up to the batch cap of files under the "files" field, submits each as
// an independent job, waits for all of them, and returns per-file terminal
// outcomes. One file's failure does not affect its siblings.
func (h *ScanHandler) ScanBatch(c *gin.Context) {
	storeID := c.Param("storeId")

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form is required"})
		return
	}

	headers := form.File["files"]
	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file " + fh.Filename})
			return
		}
		files = append(files, service.UploadFile{Name: fh.Filename, Data: data})
	}

	jobs, err := h.scanService.SubmitBatch(c.Request.Context(), storeID, files)
	if err != nil {
		writeScanError(c, err)
		return
	}

	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.ID)
	}

	results, err := h.scanService.WaitAll(c.Request.Context(), ids)
	if err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "timed out waiting for batch: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(results),
		"results": results,
	})
}

// Status handles GET /api/v1/receipts/jobs/:jobId.
// An unknown job id returns a FAILED-shaped payload instead of a 404 so status
// pollers handle eviction and bad ids through one code path.
func (h *ScanHandler) Status(c *gin.Context) {
	jobID := c.Param("jobId")

	job, err := h.scanService.Status(jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusOK, gin.H{
				"job_id":        jobID,
				"status":        domain.JobStatusFailed,
				"progress":      domain.ProgressFailed,
				"error_message": "job not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, job)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func writeScanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPoolSaturated):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "scan capacity exhausted, retry later"})
	case errors.Is(err, domain.ErrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
