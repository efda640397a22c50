package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"billextract/internal/domain"
	"billextract/internal/extraction"
	"billextract/internal/port"
	"billextract/internal/service"
	"billextract/mocks"
)

const bill = `Crocin 650 Tab 2 x 15.00 = 30.00
Dolo 650 Tab 1 x 20.00 = 20.00
Total 50.00`

func setupExtractionService() (service.ExtractionService, *mocks.MockDocumentFetcher, *mocks.MockTextExtractor, *mocks.MockStatsService) {
	fetcher := new(mocks.MockDocumentFetcher)
	extractor := new(mocks.MockTextExtractor)
	stats := new(mocks.MockStatsService)
	engine := extraction.NewEngine(extraction.DefaultHeuristics(), zerolog.Nop())
	svc := service.NewExtractionService(fetcher, extractor, engine, stats, true, zerolog.Nop())
	return svc, fetcher, extractor, stats
}

func TestExtractFromURL_Success(t *testing.T) {
	svc, fetcher, extractor, stats := setupExtractionService()
	ctx := context.Background()
	doc := &domain.Document{SourceURL: "https://example.com/b.pdf", ContentType: "application/pdf", Body: []byte("%PDF")}

	fetcher.On("Fetch", ctx, doc.SourceURL).Return(doc, nil)
	extractor.On("ExtractText", ctx, port.ExtractInput{
		FileBytes: doc.Body, ContentType: doc.ContentType, SourceURL: doc.SourceURL,
	}).Return(&port.ExtractOutput{Text: bill, Pages: 1, Provider: "gemini"}, nil)
	stats.On("RecordSuccess", 2, mock.AnythingOfType("float64")).Return()

	resp, err := svc.ExtractFromURL(ctx, doc.SourceURL)

	require.NoError(t, err)
	require.True(t, resp.IsSuccess)
	assert.Equal(t, 2, resp.Data.TotalItemCount)
	assert.InDelta(t, 50.0, resp.Data.ReconciledAmount, 0.001)
	fetcher.AssertExpectations(t)
	extractor.AssertExpectations(t)
	stats.AssertExpectations(t)
}

func TestExtractFromURL_FetchError(t *testing.T) {
	svc, fetcher, extractor, stats := setupExtractionService()
	ctx := context.Background()

	fetcher.On("Fetch", ctx, "https://example.com/missing.pdf").
		Return(nil, domain.ErrDocumentNotFound)
	stats.On("RecordFailure").Return()

	resp, err := svc.ExtractFromURL(ctx, "https://example.com/missing.pdf")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	extractor.AssertNotCalled(t, "ExtractText", mock.Anything, mock.Anything)
	stats.AssertExpectations(t)
}

func TestExtractFromURL_OCRFailureGivesEmptyResult(t *testing.T) {
	svc, fetcher, extractor, stats := setupExtractionService()
	ctx := context.Background()
	doc := &domain.Document{SourceURL: "https://example.com/b.png", ContentType: "image/png", Body: []byte{1}}

	fetcher.On("Fetch", ctx, doc.SourceURL).Return(doc, nil)
	extractor.On("ExtractText", ctx, mock.Anything).Return(nil, errors.New("provider down"))
	stats.On("RecordSuccess", 0, 0.0).Return()

	resp, err := svc.ExtractFromURL(ctx, doc.SourceURL)

	require.NoError(t, err)
	require.True(t, resp.IsSuccess)
	require.Len(t, resp.Data.PagewiseLineItems, 1)
	assert.Empty(t, resp.Data.PagewiseLineItems[0].BillItems)
	assert.Zero(t, resp.Data.ReconciledAmount)
	stats.AssertExpectations(t)
}

func TestExtractFromURL_Cancelled(t *testing.T) {
	svc, fetcher, extractor, stats := setupExtractionService()
	ctx, cancel := context.WithCancel(context.Background())
	doc := &domain.Document{SourceURL: "https://example.com/b.png", ContentType: "image/png", Body: []byte{1}}

	fetcher.On("Fetch", ctx, doc.SourceURL).Return(doc, nil)
	extractor.On("ExtractText", ctx, mock.Anything).Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.Canceled)
	stats.On("RecordFailure").Return()

	resp, err := svc.ExtractFromURL(ctx, doc.SourceURL)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, context.Canceled)
	stats.AssertExpectations(t)
}

func TestExtractFromText(t *testing.T) {
	svc, _, _, stats := setupExtractionService()
	stats.On("RecordSuccess", 0, 0.0).Return()

	resp := svc.ExtractFromText(context.Background(), "")

	require.True(t, resp.IsSuccess)
	assert.Equal(t, 0, resp.Data.TotalItemCount)
	stats.AssertExpectations(t)
}

func TestAnalyze(t *testing.T) {
	svc, _, _, stats := setupExtractionService()

	trace := svc.Analyze(context.Background(), bill)

	require.NotNil(t, trace)
	assert.NotEmpty(t, trace.Lines)
	require.NotNil(t, trace.Response)
	assert.Equal(t, 2, trace.Response.Data.TotalItemCount)
	stats.AssertNotCalled(t, "RecordSuccess", mock.Anything, mock.Anything)
}
