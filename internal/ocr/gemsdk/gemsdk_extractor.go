// Package gemsdk transcribes bills with the Gemini Go SDK. It is the SDK
// counterpart of the REST-based gemini provider and is registered as "genai".
package gemsdk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"billextract/internal/config"
	"billextract/internal/domain"
	"billextract/internal/ocr"
	"billextract/internal/port"
)

const defaultModel = "gemini-2.0-flash"

// ContentGenerator is the part of *genai.GenerativeModel the extractor uses.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Extractor implements port.TextExtractor with the generative-ai-go client.
type Extractor struct {
	client *genai.Client
	gen    ContentGenerator
	model  string
}

// NewExtractor creates an SDK-backed extractor. Call Close when done.
func NewExtractor(ctx context.Context, cfg *config.OCRProviderConfig) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("genai: api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	name := cfg.DefaultModel
	if name == "" {
		name = defaultModel
	}
	model := client.GenerativeModel(name)
	model.SetTemperature(0)
	model.ResponseMIMEType = "text/plain"

	return &Extractor{client: client, gen: model, model: name}, nil
}

// NewExtractorWithGenerator creates an extractor around an existing generator (for testing).
func NewExtractorWithGenerator(gen ContentGenerator, model string) *Extractor {
	return &Extractor{gen: gen, model: model}
}

// Close releases the underlying client.
func (e *Extractor) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}

func (e *Extractor) ExtractText(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	blob, err := toBlob(input)
	if err != nil {
		return nil, err
	}

	resp, err := e.gen.GenerateContent(ctx, blob, genai.Text(ocr.TranscriptionPrompt))
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == 429 {
			retryAfter := ocr.ParseRetryAfterHeader(apiErr.Header.Get("Retry-After"))
			return nil, ocr.NewRateLimitError("genai", err, retryAfter)
		}
		return nil, fmt.Errorf("generating content: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from API: no candidates")
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonMaxTokens {
		return nil, fmt.Errorf("output truncated (finish reason: max tokens)")
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	text := ocr.CleanTranscript(sb.String())
	if text == "" {
		return nil, fmt.Errorf("%w: genai returned no text", domain.ErrEmptyText)
	}

	return &port.ExtractOutput{
		Text:      text,
		Pages:     ocr.CountPages(text),
		Provider:  "genai",
		ModelUsed: e.model,
	}, nil
}

func toBlob(input port.ExtractInput) (genai.Part, error) {
	switch input.ContentType {
	case "image/jpeg", "image/png", "image/webp":
		return genai.ImageData(strings.TrimPrefix(input.ContentType, "image/"), input.FileBytes), nil
	case "application/pdf":
		return genai.Blob{MIMEType: input.ContentType, Data: input.FileBytes}, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, input.ContentType)
	}
}
