package ocr

import (
	"context"
	"strings"

	"billextract/internal/port"
)

// ContentRouter sends text/plain documents to a pass-through extractor and
// everything else to the OCR chain.
type ContentRouter struct {
	text port.TextExtractor
	ocr  port.TextExtractor
}

// NewContentRouter creates a ContentRouter. ocr may be nil when no OCR provider
// is configured; non-text documents then fail with ErrNoProvider.
func NewContentRouter(text, ocr port.TextExtractor) *ContentRouter {
	return &ContentRouter{text: text, ocr: ocr}
}

func (r *ContentRouter) ExtractText(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	if strings.HasPrefix(strings.ToLower(input.ContentType), "text/plain") {
		return r.text.ExtractText(ctx, input)
	}
	if r.ocr == nil {
		return nil, ErrNoProvider
	}
	return r.ocr.ExtractText(ctx, input)
}
