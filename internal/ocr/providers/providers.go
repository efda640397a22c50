// Package providers registers the built-in OCR providers with the ocr factory.
package providers

import (
	"context"
	"io"
	"sync"

	"billextract/internal/config"
	"billextract/internal/ocr"
	"billextract/internal/ocr/claude"
	"billextract/internal/ocr/gemini"
	"billextract/internal/ocr/gemsdk"
	"billextract/internal/ocr/openai"
	"billextract/internal/port"
)

// Names of the built-in providers.
const (
	Gemini = "gemini"
	Claude = "claude"
	OpenAI = "openai"
	GenAI  = "genai"
)

// RegisterAll registers every built-in provider. SDK-backed extractors are
// created with ctx; the returned func closes them and should be called on shutdown.
func RegisterAll(ctx context.Context) (closeAll func()) {
	var (
		mu      sync.Mutex
		closers []io.Closer
	)

	ocr.RegisterProvider(Gemini, func(cfg *config.OCRProviderConfig) (port.TextExtractor, error) {
		return gemini.NewExtractor(cfg), nil
	})
	ocr.RegisterProvider(Claude, func(cfg *config.OCRProviderConfig) (port.TextExtractor, error) {
		return claude.NewExtractor(cfg), nil
	})
	ocr.RegisterProvider(OpenAI, func(cfg *config.OCRProviderConfig) (port.TextExtractor, error) {
		return openai.NewExtractor(cfg), nil
	})
	ocr.RegisterProvider(GenAI, func(cfg *config.OCRProviderConfig) (port.TextExtractor, error) {
		e, err := gemsdk.NewExtractor(ctx, cfg)
		if err != nil {
			return nil, err
		}
		mu.Lock()
		closers = append(closers, e)
		mu.Unlock()
		return e, nil
	})

	return func() {
		mu.Lock()
		defer mu.Unlock()
		for _, c := range closers {
			_ = c.Close()
		}
		closers = nil
	}
}
