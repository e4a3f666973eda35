package domain

import "time"

// JobStatus represents the lifecycle state of a receipt scan job.
// Values include JobStatusPending, JobStatusProcessing, JobStatusCompleted, and JobStatusFailed.
type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// Progress sentinel values. ProgressFailed marks a job that ended in failure.
const (
	ProgressPending    = 0
	ProgressProcessing = 50
	ProgressCompleted  = 100
	ProgressFailed     = -1
)

// ReceiptJob is one asynchronous unit of OCR scan work for a single uploaded image.
// Jobs live in the orchestrator's in-memory store only; they are never persisted.
// A job record is an immutable snapshot: lifecycle transitions produce a new record
// that replaces the old one atomically in the store.
type ReceiptJob struct {
	ID               string      `json:"job_id"`
	Status           JobStatus   `json:"status"`
	OriginalFileName string      `json:"original_file_name"`
	Progress         int         `json:"progress"`
	StartedAt        time.Time   `json:"started_at"`
	CompletedAt      *time.Time  `json:"completed_at,omitempty"`
	Result           *ScanResult `json:"result,omitempty"`
	ErrorMessage     string      `json:"error_message,omitempty"`
}

// NewReceiptJob creates a pending job snapshot for an uploaded file.
func NewReceiptJob(id, fileName string) *ReceiptJob {
	return &ReceiptJob{
		ID:               id,
		Status:           JobStatusPending,
		OriginalFileName: fileName,
		Progress:         ProgressPending,
		StartedAt:        time.Now(),
	}
}

// Processing returns a new snapshot in the PROCESSING state.
func (j *ReceiptJob) Processing() *ReceiptJob {
	next := *j
	next.Status = JobStatusProcessing
	next.Progress = ProgressProcessing
	return &next
}

// Completed returns a new terminal snapshot carrying the scan result.
func (j *ReceiptJob) Completed(result *ScanResult) *ReceiptJob {
	now := time.Now()
	next := *j
	next.Status = JobStatusCompleted
	next.Progress = ProgressCompleted
	next.Result = result
	next.CompletedAt = &now
	return &next
}

// Failed returns a new terminal snapshot carrying the failure message.
func (j *ReceiptJob) Failed(message string) *ReceiptJob {
	now := time.Now()
	next := *j
	next.Status = JobStatusFailed
	next.Progress = ProgressFailed
	next.ErrorMessage = message
	next.CompletedAt = &now
	return &next
}

// Terminal reports whether the job has reached an absorbing state.
func (j *ReceiptJob) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// ScanResult is the structured outcome of a completed scan job.
type ScanResult struct {
	RawReceiptID  string      `json:"raw_receipt_id"`
	RawReceiptSeq uint        `json:"raw_receipt_seq"`
	RawText       string      `json:"raw_text"`
	SupplierName  string      `json:"supplier_name,omitempty"`
	DocumentDate  string      `json:"document_date,omitempty"`
	Items         []ItemMatch `json:"items"`
}

// ItemMatch pairs one parsed receipt line with its ranked catalog candidates.
type ItemMatch struct {
	Item              ReceiptItem      `json:"item"`
	Candidates        []MatchCandidate `json:"candidates"`
	Confirmed         bool             `json:"confirmed"`
	SelectedProductID string           `json:"selected_product_id,omitempty"`
}
