package imagestore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestUploadReturnsSecureURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "medicines", r.FormValue("upload_preset"))
		_, _, err := r.FormFile("file")
		assert.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"secure_url":"https://cdn.example.com/pill.png","url":"http://cdn.example.com/pill.png"}`))
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL, "medicines", zaptest.NewLogger(t))
	url, err := store.Upload(context.Background(), []byte("png-bytes"))
	assert.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/pill.png", url)
}

func TestUploadFailsOnUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL, "medicines", zaptest.NewLogger(t))
	_, err := store.Upload(context.Background(), []byte("png-bytes"))
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestUploadRejectsEmptyPayload(t *testing.T) {
	store := NewHTTPStore("https://upload.example.com", "medicines", zaptest.NewLogger(t))
	_, err := store.Upload(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestUploadRequiresConfiguredEndpoint(t *testing.T) {
	store := NewHTTPStore("", "medicines", zaptest.NewLogger(t))
	_, err := store.Upload(context.Background(), []byte("png-bytes"))
	assert.ErrorIs(t, err, ErrUploadFailed)
}
