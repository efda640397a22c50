package ocr

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"billextract/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackOption configures a FallbackExtractor.
type FallbackOption func(*FallbackExtractor)

// WithLogger sets the logger used to report skipped and failed providers.
func WithLogger(log zerolog.Logger) FallbackOption {
	return func(f *FallbackExtractor) { f.log = log }
}

// WithClock overrides the time source used for circuit decisions.
func WithClock(now func() time.Time) FallbackOption {
	return func(f *FallbackExtractor) { f.now = now }
}

// FallbackExtractor tries extractors in order, skipping those with open circuits.
// It implements port.TextExtractor.
type FallbackExtractor struct {
	extractors []port.TextExtractor
	circuits   []*circuitState
	names      []string
	log        zerolog.Logger
	now        func() time.Time
}

// NewFallbackExtractor creates a FallbackExtractor from an ordered list of extractors and their names.
func NewFallbackExtractor(extractors []port.TextExtractor, names []string, opts ...FallbackOption) *FallbackExtractor {
	circuits := make([]*circuitState, len(extractors))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	f := &FallbackExtractor{
		extractors: extractors,
		circuits:   circuits,
		names:      names,
		log:        zerolog.Nop(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(f)
	}
	f.log = f.log.With().Str("component", "ocr.FallbackExtractor").Logger()
	return f
}

func (f *FallbackExtractor) ExtractText(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, e := range f.extractors {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.log.Warn().Str("provider", f.names[i]).Time("until", resetAt).Msg("skipping provider, circuit open")
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := e.ExtractText(ctx, input)
		if err == nil {
			return out, nil
		}

		f.log.Warn().Err(err).Str("provider", f.names[i]).Msg("provider failed")
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all ocr providers rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all ocr providers failed: %w", lastErr)
}
