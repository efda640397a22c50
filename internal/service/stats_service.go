package service

import (
	"sync"
	"sync/atomic"
	"time"

	"billextract/internal/domain"
)

// StatsService keeps in-process request counters for the stats endpoint.
// It is safe for concurrent use.
type StatsService interface {
	RecordSuccess(items int, confidence float64)
	RecordFailure()
	GetStats() *domain.Stats
}

type statsService struct {
	total     atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	items     atomic.Int64

	mu      sync.Mutex
	confSum float64
	confN   int64

	startedAt time.Time
	now       func() time.Time
}

// NewStatsService creates a StatsService whose uptime starts now.
func NewStatsService() StatsService {
	return newStatsService(time.Now)
}

// NewStatsServiceWithClock creates a StatsService with a custom time source (for testing).
func NewStatsServiceWithClock(now func() time.Time) StatsService {
	return newStatsService(now)
}

func newStatsService(now func() time.Time) *statsService {
	return &statsService{startedAt: now(), now: now}
}

// RecordSuccess counts a successful extraction. Confidence only enters the
// running mean when items were found.
func (s *statsService) RecordSuccess(items int, confidence float64) {
	s.total.Add(1)
	s.succeeded.Add(1)
	s.items.Add(int64(items))
	if items == 0 {
		return
	}
	s.mu.Lock()
	s.confSum += confidence
	s.confN++
	s.mu.Unlock()
}

func (s *statsService) RecordFailure() {
	s.total.Add(1)
	s.failed.Add(1)
}

func (s *statsService) GetStats() *domain.Stats {
	s.mu.Lock()
	avg := 0.0
	if s.confN > 0 {
		avg = s.confSum / float64(s.confN)
	}
	s.mu.Unlock()

	return &domain.Stats{
		TotalRequests:     s.total.Load(),
		Succeeded:         s.succeeded.Load(),
		Failed:            s.failed.Load(),
		ItemsExtracted:    s.items.Load(),
		AverageConfidence: avg,
		StartedAt:         s.startedAt,
		UptimeSeconds:     int64(s.now().Sub(s.startedAt).Seconds()),
	}
}
