package mocks

import (
	"github.com/stretchr/testify/mock"

	"billextract/internal/domain"
)

// MockStatsService is a mock implementation of service.StatsService.
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) RecordSuccess(items int, confidence float64) {
	m.Called(items, confidence)
}

func (m *MockStatsService) RecordFailure() {
	m.Called()
}

func (m *MockStatsService) GetStats() *domain.Stats {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.Stats)
}
