package imagestore

import (
	"context"
	"errors"
)

// Store uploads raw image bytes and returns a durable URL.
type Store interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

var ErrUploadFailed = errors.New("image_upload_failed")
