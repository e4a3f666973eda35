package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/jaehyun/stocklens/internal/domain"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// supportedExtensions enumerates upload formats accepted at the boundary.
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".gif":  true,
}

// validateFile rejects an upload before any processing starts. Rejections carry
// domain.ErrValidation so the HTTP layer maps them to 400 responses and no job
// or side effect is ever created for them.
func validateFile(data []byte, filename string, maxSize int64) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: file %q is empty", domain.ErrValidation, filename)
	}
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%w: file %q exceeds %d bytes", domain.ErrValidation, filename, maxSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !supportedExtensions[ext] {
		return fmt.Errorf("%w: unsupported file extension %q", domain.ErrValidation, ext)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: file %q is not a decodable image", domain.ErrValidation, filename)
	}

	return nil
}

// validateBatch enforces the batch-level caps before any file is touched.
func validateBatch(files []UploadFile, maxFiles int, maxTotal int64) error {
	if len(files) == 0 {
		return fmt.Errorf("%w: batch contains no files", domain.ErrValidation)
	}
	if len(files) > maxFiles {
		return fmt.Errorf("%w: batch of %d files exceeds limit of %d", domain.ErrValidation, len(files), maxFiles)
	}

	var total int64
	for _, f := range files {
		total += int64(len(f.Data))
	}
	if total > maxTotal {
		return fmt.Errorf("%w: batch size %d bytes exceeds limit of %d", domain.ErrValidation, total, maxTotal)
	}

	return nil
}
