package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"billextract/internal/config"
	"billextract/internal/domain"
	"billextract/internal/port"
)

// Fetcher downloads bill documents over http(s) or from S3.
type Fetcher struct {
	client    *http.Client
	storage   port.ObjectStorage
	maxBytes  int64
	userAgent string
	log       zerolog.Logger
}

// NewFetcher creates a Fetcher. storage may be nil, in which case s3:// URLs are rejected.
func NewFetcher(cfg *config.FetchConfig, storage port.ObjectStorage, log zerolog.Logger) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxBytes := cfg.MaxBytes()
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		storage:   storage,
		maxBytes:  maxBytes,
		userAgent: cfg.UserAgent,
		log:       log.With().Str("component", "fetch.Fetcher").Logger(),
	}
}

// ParseDocumentURL validates a document URL and returns it parsed.
func ParseDocumentURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: empty", domain.ErrInvalidDocumentURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocumentURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "s3":
	case "":
		return nil, fmt.Errorf("%w: missing scheme", domain.ErrInvalidDocumentURL)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedScheme, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", domain.ErrInvalidDocumentURL)
	}
	return u, nil
}

// Fetch downloads the document at rawURL and detects its content type.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.Document, error) {
	u, err := ParseDocumentURL(rawURL)
	if err != nil {
		return nil, err
	}

	var body []byte
	var declared string
	if strings.EqualFold(u.Scheme, "s3") {
		body, err = f.fetchS3(ctx, u)
	} else {
		body, declared, err = f.fetchHTTP(ctx, u)
	}
	if err != nil {
		return nil, err
	}

	ct, err := DetectContentType(declared, body)
	if err != nil {
		return nil, err
	}
	f.log.Debug().Str("url", u.Redacted()).Str("content_type", ct).Int("bytes", len(body)).Msg("document fetched")
	return &domain.Document{SourceURL: rawURL, ContentType: ct, Body: body}, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, u *url.URL) (body []byte, contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrInvalidDocumentURL, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, "", fmt.Errorf("%w: status %d", domain.ErrDocumentNotFound, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, "", fmt.Errorf("%w: status %d", domain.ErrDownloadFailed, resp.StatusCode)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, "", fmt.Errorf("%w: %d bytes", domain.ErrDocumentTooLarge, resp.ContentLength)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading body: %v", domain.ErrDownloadFailed, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, "", fmt.Errorf("%w: more than %d bytes", domain.ErrDocumentTooLarge, f.maxBytes)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func (f *Fetcher) fetchS3(ctx context.Context, u *url.URL) ([]byte, error) {
	if f.storage == nil {
		return nil, fmt.Errorf("%w: s3 storage is not configured", domain.ErrUnsupportedScheme)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return nil, fmt.Errorf("%w: missing object key", domain.ErrInvalidDocumentURL)
	}

	size, err := f.storage.Size(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDocumentNotFound, err)
	}
	if size > f.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", domain.ErrDocumentTooLarge, size)
	}
	body, err := f.storage.Download(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}
	return body, nil
}

// DetectContentType resolves the document type from the declared header, falling
// back to content sniffing when the header is missing or generic.
func DetectContentType(declared string, body []byte) (string, error) {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && domain.AllowedContentTypes[mt] {
		return mt, nil
	}
	if len(body) == 0 {
		return "", fmt.Errorf("%w: empty document", domain.ErrUnsupportedFileType)
	}
	raw := http.DetectContentType(body)
	sniffed, _, err := mime.ParseMediaType(raw)
	if err != nil || !domain.AllowedContentTypes[sniffed] {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, raw)
	}
	return sniffed, nil
}
