package port

import "context"

// ExtractInput carries a downloaded document to an OCR provider.
type ExtractInput struct {
	FileBytes   []byte
	ContentType string
	SourceURL   string
}

// ExtractOutput is the plain text an OCR provider read from a document.
// Pages are separated by "Page N" marker lines when the provider can tell them apart.
type ExtractOutput struct {
	Text      string
	Pages     int
	Provider  string
	ModelUsed string
}

// TextExtractor abstracts OCR over bill documents.
type TextExtractor interface {
	ExtractText(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
