package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jaehyun/stocklens/internal/domain"
)

func ocrServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&Config{Endpoint: srv.URL, SecretKey: "test-secret"})
}

func TestExtractJoinsFields(t *testing.T) {
	var gotSecret string
	var gotReq ocrRequest

	client := ocrServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("X-OCR-SECRET")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"images": [{
				"inferResult": "SUCCESS",
				"fields": [
					{"inferText": "스타벅스 강남점", "lineBreak": true},
					{"inferText": "아메리카노 x2 8,000원", "lineBreak": true}
				]
			}]
		}`))
	})

	text, err := client.Extract(context.Background(), []byte("imagedata"), "receipt.jpeg")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "스타벅스 강남점\n아메리카노 x2 8,000원" {
		t.Errorf("text = %q", text)
	}

	if gotSecret != "test-secret" {
		t.Errorf("secret header = %q", gotSecret)
	}
	if gotReq.Version != "V2" || gotReq.RequestID == "" {
		t.Errorf("request envelope = %+v", gotReq)
	}
	if len(gotReq.Images) != 1 || gotReq.Images[0].Format != "jpg" {
		t.Errorf("images = %+v, want jpeg normalized to jpg", gotReq.Images)
	}
	if gotReq.Images[0].Data == "" {
		t.Error("image payload not base64 encoded into request")
	}
}

func TestExtractProviderError(t *testing.T) {
	client := ocrServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Extract(context.Background(), []byte("x"), "receipt.png")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
}

func TestExtractInferError(t *testing.T) {
	client := ocrServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"images": [{"inferResult": "ERROR", "message": "bad image"}]}`))
	})

	_, err := client.Extract(context.Background(), []byte("x"), "receipt.png")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
}

func TestExtractEmptyResult(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"no images", `{"images": []}`},
		{"no fields", `{"images": [{"inferResult": "SUCCESS", "fields": []}]}`},
		{"blank text", `{"images": [{"inferResult": "SUCCESS", "fields": [{"inferText": "  "}]}]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := ocrServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.Extract(context.Background(), []byte("x"), "receipt.png")
			if !errors.Is(err, domain.ErrEmptyExtraction) {
				t.Fatalf("error = %v, want ErrEmptyExtraction", err)
			}
		})
	}
}
