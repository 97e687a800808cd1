package imagestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HTTPStore posts images to an unsigned upload endpoint (Cloudinary-style)
// and reads the secure URL out of the JSON response.
type HTTPStore struct {
	client    *http.Client
	log       *zap.Logger
	uploadURL string
	preset    string
}

func NewHTTPStore(uploadURL, preset string, log *zap.Logger) *HTTPStore {
	return &HTTPStore{
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       log.Named("imagestore"),
		uploadURL: uploadURL,
		preset:    preset,
	}
}

func (s *HTTPStore) Upload(ctx context.Context, data []byte) (string, error) {
	if s.uploadURL == "" {
		return "", fmt.Errorf("%w: upload endpoint not configured", ErrUploadFailed)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image payload", ErrUploadFailed)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("upload_preset", s.preset); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	part, err := writer.CreateFormFile("file", uuid.NewString())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.uploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error("image upload request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.log.Error("image upload rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", payload),
		)
		return "", fmt.Errorf("%w: status %d", ErrUploadFailed, resp.StatusCode)
	}

	var parsed struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if parsed.SecureURL != "" {
		return parsed.SecureURL, nil
	}
	if parsed.URL != "" {
		return parsed.URL, nil
	}
	return "", fmt.Errorf("%w: response carried no url", ErrUploadFailed)
}
