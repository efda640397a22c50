package port

import (
	"context"

	"billextract/internal/domain"
)

// DocumentFetcher downloads the document behind a public or s3:// URL.
type DocumentFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*domain.Document, error)
}
