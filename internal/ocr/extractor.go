// Package ocr wraps the external text-recognition capability. It is a pure I/O
// boundary: image bytes and a filename go in, concatenated recognized text comes
// out. No parsing or business logic lives here, and failures are surfaced to the
// caller verbatim; the orchestrator decides what a failed extraction means.
package ocr

import "context"

// TextExtractor is the external OCR capability. Implementations must not retry;
// the caller owns failure policy. The context carries the deadline for the
// provider call so long-running requests can be aborted.
type TextExtractor interface {
	Extract(ctx context.Context, image []byte, filename string) (string, error)
}
