package plaintext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"billextract/internal/domain"
	"billextract/internal/ocr"
	"billextract/internal/port"
)

// Extractor passes through documents that are already text.
type Extractor struct{}

// NewExtractor creates a pass-through extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) ExtractText(_ context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	ct := strings.ToLower(input.ContentType)
	if !strings.HasPrefix(ct, "text/plain") {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, input.ContentType)
	}
	if !utf8.Valid(input.FileBytes) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", domain.ErrUnsupportedFileType)
	}
	text := strings.TrimSpace(string(input.FileBytes))
	if text == "" {
		return nil, domain.ErrEmptyText
	}
	return &port.ExtractOutput{
		Text:      text,
		Pages:     ocr.CountPages(text),
		Provider:  "plaintext",
		ModelUsed: "none",
	}, nil
}
