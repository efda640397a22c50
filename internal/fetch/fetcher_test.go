package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"billextract/internal/config"
	"billextract/internal/domain"
	"billextract/internal/fetch"
	"billextract/mocks"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newFetcher(storage *mocks.MockObjectStorage) *fetch.Fetcher {
	cfg := &config.FetchConfig{MaxFileSizeMB: 1, UserAgent: "billextract-test"}
	if storage == nil {
		return fetch.NewFetcher(cfg, nil, zerolog.Nop())
	}
	return fetch.NewFetcher(cfg, storage, zerolog.Nop())
}

func TestParseDocumentURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{"https", "https://example.com/bill.pdf", nil},
		{"s3", "s3://bills/2024/a.png", nil},
		{"empty", "  ", domain.ErrInvalidDocumentURL},
		{"no scheme", "example.com/bill.pdf", domain.ErrInvalidDocumentURL},
		{"no host", "https:///bill.pdf", domain.ErrInvalidDocumentURL},
		{"ftp", "ftp://example.com/bill.pdf", domain.ErrUnsupportedScheme},
		{"file", "file:///etc/passwd", domain.ErrUnsupportedScheme},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fetch.ParseDocumentURL(tt.url)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFetch_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "billextract-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 bill"))
	}))
	defer server.Close()

	doc, err := newFetcher(nil).Fetch(context.Background(), server.URL+"/bill.pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, []byte("%PDF-1.4 bill"), doc.Body)
	assert.Equal(t, server.URL+"/bill.pdf", doc.SourceURL)
}

func TestFetch_SniffsGenericContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(pngHeader)
	}))
	defer server.Close()

	doc, err := newFetcher(nil).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "image/png", doc.ContentType)
}

func TestFetch_HTTPStatusErrors(t *testing.T) {
	tests := []struct {
		status  int
		wantErr error
	}{
		{http.StatusNotFound, domain.ErrDocumentNotFound},
		{http.StatusGone, domain.ErrDocumentNotFound},
		{http.StatusForbidden, domain.ErrDownloadFailed},
		{http.StatusBadGateway, domain.ErrDownloadFailed},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := newFetcher(nil).Fetch(context.Background(), server.URL)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFetch_TooLarge(t *testing.T) {
	big := strings.Repeat("a", (1<<20)+10)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(big))
	}))
	defer server.Close()

	_, err := newFetcher(nil).Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, domain.ErrDocumentTooLarge)
}

func TestFetch_UnsupportedType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write([]byte("PK\x03\x04 archive"))
	}))
	defer server.Close()

	_, err := newFetcher(nil).Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestFetch_S3(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("Size", mock.Anything, "bills", "2024/a.png").Return(int64(len(pngHeader)), nil)
	storage.On("Download", mock.Anything, "bills", "2024/a.png").Return(pngHeader, nil)

	doc, err := newFetcher(storage).Fetch(context.Background(), "s3://bills/2024/a.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", doc.ContentType)
	storage.AssertExpectations(t)
}

func TestFetch_S3Errors(t *testing.T) {
	t.Run("missing object", func(t *testing.T) {
		storage := new(mocks.MockObjectStorage)
		storage.On("Size", mock.Anything, "bills", "gone.pdf").Return(int64(0), errors.New("NotFound"))

		_, err := newFetcher(storage).Fetch(context.Background(), "s3://bills/gone.pdf")
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("too large", func(t *testing.T) {
		storage := new(mocks.MockObjectStorage)
		storage.On("Size", mock.Anything, "bills", "big.pdf").Return(int64(5<<20), nil)

		_, err := newFetcher(storage).Fetch(context.Background(), "s3://bills/big.pdf")
		assert.ErrorIs(t, err, domain.ErrDocumentTooLarge)
		storage.AssertNotCalled(t, "Download", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := newFetcher(new(mocks.MockObjectStorage)).Fetch(context.Background(), "s3://bills/")
		assert.ErrorIs(t, err, domain.ErrInvalidDocumentURL)
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := newFetcher(nil).Fetch(context.Background(), "s3://bills/a.pdf")
		assert.ErrorIs(t, err, domain.ErrUnsupportedScheme)
	})
}

func TestDetectContentType(t *testing.T) {
	ct, err := fetch.DetectContentType("image/jpeg; charset=binary", nil)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)

	ct, err = fetch.DetectContentType("", []byte("Crocin 10\nDolo 20\n"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", ct)

	_, err = fetch.DetectContentType("", nil)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}
