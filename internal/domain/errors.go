package domain

import "errors"

// Error kinds shared across layers. Callers branch with errors.Is instead of
// matching message strings.
var (
	// ErrNotFound marks a missing record (raw receipt, product, inventory row).
	ErrNotFound = errors.New("record not found")

	// ErrValidation marks a request rejected before any processing started.
	ErrValidation = errors.New("validation failed")

	// ErrUpstream marks a failure of the external OCR provider.
	ErrUpstream = errors.New("upstream provider failed")

	// ErrJobNotFound marks a status query for an unknown job id.
	ErrJobNotFound = errors.New("job not found")

	// ErrPoolSaturated marks a submission rejected because the worker pool and
	// its queue are full. Deliberate backpressure, not a transient fault.
	ErrPoolSaturated = errors.New("worker pool saturated")

	// ErrEmptyExtraction marks an OCR response that contained no recognizable text.
	ErrEmptyExtraction = errors.New("ocr provider returned no text")
)
