package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"billextract/internal/domain"
)

// BatchConfig holds settings for the batch runner.
type BatchConfig struct {
	Concurrency int
}

// BatchInput is one transcribed document to extract.
type BatchInput struct {
	Name string
	Text string
}

// BatchResult pairs an input name with its extraction response.
type BatchResult struct {
	Name     string
	Response *domain.BillExtractionResponse
}

// BatchRunner extracts many documents with bounded concurrency.
type BatchRunner struct {
	extractionService ExtractionService
	cfg               BatchConfig
	log               zerolog.Logger
}

// NewBatchRunner creates a new BatchRunner.
func NewBatchRunner(extractionService ExtractionService, cfg BatchConfig, log zerolog.Logger) *BatchRunner {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &BatchRunner{
		extractionService: extractionService,
		cfg:               cfg,
		log:               log.With().Str("component", "service.BatchRunner").Logger(),
	}
}

// Run extracts every input and returns the results in input order. Dispatch
// stops when ctx is canceled; inputs never dispatched have a nil Response and
// ctx.Err() is returned once in-flight work has finished.
func (b *BatchRunner) Run(ctx context.Context, inputs []BatchInput) ([]BatchResult, error) {
	results := make([]BatchResult, len(inputs))
	for i := range inputs {
		results[i].Name = inputs[i].Name
	}
	sem := make(chan struct{}, b.cfg.Concurrency)
	var wg sync.WaitGroup

	b.log.Debug().Int("inputs", len(inputs)).Int("concurrency", b.cfg.Concurrency).Msg("batch started")

dispatch:
	for i := range inputs {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}: // acquire
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }() // release

			results[i].Response = b.extractionService.ExtractFromText(ctx, inputs[i].Text)
		}(i)
	}

	wg.Wait()
	if err := ctx.Err(); err != nil {
		b.log.Warn().Err(err).Msg("batch interrupted")
		return results, err
	}
	b.log.Debug().Int("inputs", len(inputs)).Msg("batch complete")
	return results, nil
}
