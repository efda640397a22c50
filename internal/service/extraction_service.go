package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"billextract/internal/domain"
	"billextract/internal/extraction"
	"billextract/internal/port"
	"billextract/internal/response"
)

// ExtractionService turns bill documents and raw OCR text into the public response.
type ExtractionService interface {
	// ExtractFromURL downloads and transcribes the document at documentURL, then
	// extracts its line items. Download errors are returned; an OCR step that yields
	// no text produces an empty but well-formed response.
	ExtractFromURL(ctx context.Context, documentURL string) (*domain.BillExtractionResponse, error)
	// ExtractFromText runs the extraction pipeline on already transcribed text.
	ExtractFromText(ctx context.Context, text string) *domain.BillExtractionResponse
	// Analyze returns the per-line decisions for text.
	Analyze(ctx context.Context, text string) *extraction.Trace
}

type extractionService struct {
	fetcher      port.DocumentFetcher
	extractor    port.TextExtractor
	engine       *extraction.Engine
	stats        StatsService
	strictSchema bool
	log          zerolog.Logger
}

// NewExtractionService creates a new ExtractionService implementation. When
// strictSchema is set every response is checked against the published schema
// before it is returned.
func NewExtractionService(
	fetcher port.DocumentFetcher,
	extractor port.TextExtractor,
	engine *extraction.Engine,
	stats StatsService,
	strictSchema bool,
	log zerolog.Logger,
) ExtractionService {
	return &extractionService{
		fetcher:      fetcher,
		extractor:    extractor,
		engine:       engine,
		stats:        stats,
		strictSchema: strictSchema,
		log:          log.With().Str("component", "service.ExtractionService").Logger(),
	}
}

func (s *extractionService) ExtractFromURL(ctx context.Context, documentURL string) (*domain.BillExtractionResponse, error) {
	doc, err := s.fetcher.Fetch(ctx, documentURL)
	if err != nil {
		s.stats.RecordFailure()
		return nil, fmt.Errorf("fetching document: %w", err)
	}

	out, err := s.extractor.ExtractText(ctx, port.ExtractInput{
		FileBytes:   doc.Body,
		ContentType: doc.ContentType,
		SourceURL:   doc.SourceURL,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.stats.RecordFailure()
			return nil, ctxErr
		}
		s.log.Warn().
			Err(fmt.Errorf("%w: %w", domain.ErrOCRFailed, err)).
			Str("content_type", doc.ContentType).
			Msg("no text from document, returning empty result")
		s.stats.RecordSuccess(0, 0)
		return response.Empty(), nil
	}

	s.log.Debug().
		Str("provider", out.Provider).
		Str("model", out.ModelUsed).
		Int("pages", out.Pages).
		Int("chars", len(out.Text)).
		Msg("document transcribed")
	return s.run(out.Text), nil
}

func (s *extractionService) ExtractFromText(_ context.Context, text string) *domain.BillExtractionResponse {
	return s.run(text)
}

func (s *extractionService) Analyze(_ context.Context, text string) *extraction.Trace {
	return s.engine.Analyze(text)
}

func (s *extractionService) run(text string) *domain.BillExtractionResponse {
	res, err := s.engine.Run(text)
	if err != nil {
		s.log.Error().Err(err).Msg("extraction failed")
		s.stats.RecordFailure()
		return response.Failure(response.GenericFailure)
	}

	resp := s.engine.Format(res)
	if s.strictSchema {
		if err := response.ValidateResponse(resp); err != nil {
			s.log.Error().Err(err).Msg("response failed schema check")
			s.stats.RecordFailure()
			return response.Failure(response.GenericFailure)
		}
	}

	s.stats.RecordSuccess(resp.Data.TotalItemCount, res.Confidence)
	return resp
}
