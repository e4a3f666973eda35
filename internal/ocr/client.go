package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/jaehyun/stocklens/internal/domain"
)

// Client calls a CLOVA-style general OCR HTTP endpoint.
type Client struct {
	client   *resty.Client
	endpoint string
}

// Config holds configuration for the OCR client.
type Config struct {
	Endpoint  string
	SecretKey string
	Timeout   time.Duration
}

// NewClient creates a new OCR client.
// Parameters:
//   - cfg: OCR provider configuration including endpoint and secret key.
// Returns:
//   - *Client: initialized OCR client wrapper.
func NewClient(cfg *Config) *Client {
	client := resty.New()
	client.SetHeader("X-OCR-SECRET", cfg.SecretKey)
	client.SetHeader("Content-Type", "application/json")
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	client.SetTimeout(timeout)

	return &Client{
		client:   client,
		endpoint: cfg.Endpoint,
	}
}

// CLOVA-compatible general OCR request/response structures
type ocrRequest struct {
	Version   string     `json:"version"`
	RequestID string     `json:"requestId"`
	Timestamp int64      `json:"timestamp"`
	Images    []ocrImage `json:"images"`
}

type ocrImage struct {
	Format string `json:"format"`
	Name   string `json:"name"`
	Data   string `json:"data"`
}

type ocrResponse struct {
	Images []struct {
		InferResult string `json:"inferResult"`
		Message     string `json:"message"`
		Fields      []struct {
			InferText string `json:"inferText"`
			LineBreak bool   `json:"lineBreak"`
		} `json:"fields"`
	} `json:"images"`
}

// Extract sends an image to the OCR provider and returns the recognized text with
// fields joined by line breaks, in field order.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - image: raw image bytes.
//   - filename: original file name; its extension selects the provider format field.
// Returns:
//   - string: recognized text, newline separated.
//   - error: wraps domain.ErrUpstream on provider/network failure and
//     domain.ErrEmptyExtraction when no text was recognized.
func (c *Client) Extract(ctx context.Context, image []byte, filename string) (string, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if format == "jpeg" {
		format = "jpg"
	}

	req := ocrRequest{
		Version:   "V2",
		RequestID: uuid.New().String(),
		Timestamp: time.Now().UnixMilli(),
		Images: []ocrImage{
			{
				Format: format,
				Name:   filename,
				Data:   base64.StdEncoding.EncodeToString(image),
			},
		},
	}

	var result ocrResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: ocr provider returned status %d: %s",
			domain.ErrUpstream, resp.StatusCode(), resp.String())
	}
	if len(result.Images) == 0 {
		return "", fmt.Errorf("%w: response carried no images", domain.ErrEmptyExtraction)
	}

	img := result.Images[0]
	if img.InferResult == "ERROR" {
		return "", fmt.Errorf("%w: %s", domain.ErrUpstream, img.Message)
	}
	if len(img.Fields) == 0 {
		return "", domain.ErrEmptyExtraction
	}

	var sb strings.Builder
	for i, field := range img.Fields {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(field.InferText)
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyExtraction
	}
	return text, nil
}
