package domain

import "errors"

var (
	ErrInvalidDocumentURL  = errors.New("document url is invalid")
	ErrUnsupportedScheme   = errors.New("document url scheme is not supported")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrDocumentTooLarge    = errors.New("document exceeds maximum allowed size")
	ErrDownloadFailed      = errors.New("document download failed")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrOCRFailed           = errors.New("text extraction failed")
	ErrEmptyText           = errors.New("no text to extract from")
	ErrExtractionPanic     = errors.New("extraction failed")
)
