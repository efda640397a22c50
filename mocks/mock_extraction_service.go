package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"billextract/internal/domain"
	"billextract/internal/extraction"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) ExtractFromURL(ctx context.Context, documentURL string) (*domain.BillExtractionResponse, error) {
	args := m.Called(ctx, documentURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BillExtractionResponse), args.Error(1)
}

func (m *MockExtractionService) ExtractFromText(ctx context.Context, text string) *domain.BillExtractionResponse {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.BillExtractionResponse)
}

func (m *MockExtractionService) Analyze(ctx context.Context, text string) *extraction.Trace {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*extraction.Trace)
}
