package ocr_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"billextract/internal/ocr"
	"billextract/internal/port"
	"billextract/mocks"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func pdfInput() port.ExtractInput {
	return port.ExtractInput{FileBytes: []byte("%PDF-1.4"), ContentType: "application/pdf"}
}

func TestFallbackExtractor_PrimarySucceeds(t *testing.T) {
	primary := new(mocks.MockTextExtractor)
	secondary := new(mocks.MockTextExtractor)
	want := &port.ExtractOutput{Text: "Crocin 1 x 10 = 10", Pages: 1, Provider: "gemini"}
	primary.On("ExtractText", mock.Anything, mock.Anything).Return(want, nil)

	f := ocr.NewFallbackExtractor([]port.TextExtractor{primary, secondary}, []string{"gemini", "claude"})
	out, err := f.ExtractText(context.Background(), pdfInput())

	require.NoError(t, err)
	assert.Equal(t, want, out)
	secondary.AssertNotCalled(t, "ExtractText", mock.Anything, mock.Anything)
}

func TestFallbackExtractor_FallsBackOnError(t *testing.T) {
	primary := new(mocks.MockTextExtractor)
	secondary := new(mocks.MockTextExtractor)
	primary.On("ExtractText", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	secondary.On("ExtractText", mock.Anything, mock.Anything).
		Return(&port.ExtractOutput{Text: "ok", Provider: "claude"}, nil)

	f := ocr.NewFallbackExtractor([]port.TextExtractor{primary, secondary}, []string{"gemini", "claude"})
	out, err := f.ExtractText(context.Background(), pdfInput())

	require.NoError(t, err)
	assert.Equal(t, "claude", out.Provider)
}

func TestFallbackExtractor_AllFail(t *testing.T) {
	primary := new(mocks.MockTextExtractor)
	secondary := new(mocks.MockTextExtractor)
	primary.On("ExtractText", mock.Anything, mock.Anything).Return(nil, errors.New("first"))
	secondary.On("ExtractText", mock.Anything, mock.Anything).Return(nil, errors.New("second"))

	f := ocr.NewFallbackExtractor([]port.TextExtractor{primary, secondary}, []string{"gemini", "claude"})
	_, err := f.ExtractText(context.Background(), pdfInput())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all ocr providers failed")
	assert.Contains(t, err.Error(), "second")
	var rl *ocr.RateLimitError
	assert.False(t, errors.As(err, &rl))
}

func TestFallbackExtractor_RateLimitOpensCircuit(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	primary := new(mocks.MockTextExtractor)
	secondary := new(mocks.MockTextExtractor)
	primary.On("ExtractText", mock.Anything, mock.Anything).
		Return(nil, ocr.NewRateLimitError("gemini", errors.New("429"), 30)).Once()
	primary.On("ExtractText", mock.Anything, mock.Anything).
		Return(&port.ExtractOutput{Text: "back", Provider: "gemini"}, nil)
	secondary.On("ExtractText", mock.Anything, mock.Anything).
		Return(&port.ExtractOutput{Text: "ok", Provider: "claude"}, nil)

	f := ocr.NewFallbackExtractor(
		[]port.TextExtractor{primary, secondary},
		[]string{"gemini", "claude"},
		ocr.WithClock(clock.now),
	)

	out, err := f.ExtractText(context.Background(), pdfInput())
	require.NoError(t, err)
	assert.Equal(t, "claude", out.Provider)

	// Circuit is open: the primary is skipped.
	clock.advance(10 * time.Second)
	out, err = f.ExtractText(context.Background(), pdfInput())
	require.NoError(t, err)
	assert.Equal(t, "claude", out.Provider)
	primary.AssertNumberOfCalls(t, "ExtractText", 1)

	clock.advance(25 * time.Second)
	out, err = f.ExtractText(context.Background(), pdfInput())
	require.NoError(t, err)
	assert.Equal(t, "gemini", out.Provider)
	primary.AssertNumberOfCalls(t, "ExtractText", 2)
}

func TestFallbackExtractor_AllRateLimited(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	primary := new(mocks.MockTextExtractor)
	secondary := new(mocks.MockTextExtractor)
	primary.On("ExtractText", mock.Anything, mock.Anything).
		Return(nil, ocr.NewRateLimitError("gemini", errors.New("429"), 30))
	secondary.On("ExtractText", mock.Anything, mock.Anything).
		Return(nil, ocr.NewRateLimitError("claude", errors.New("429"), 10))

	f := ocr.NewFallbackExtractor(
		[]port.TextExtractor{primary, secondary},
		[]string{"gemini", "claude"},
		ocr.WithClock(clock.now),
	)

	_, err := f.ExtractText(context.Background(), pdfInput())
	var rl *ocr.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, "all", rl.Provider)
	assert.Equal(t, 10*time.Second, rl.RetryAfter)

	// Both circuits open: nothing is called and the earliest reset is reported.
	clock.advance(4 * time.Second)
	_, err = f.ExtractText(context.Background(), pdfInput())
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 6*time.Second, rl.RetryAfter)
	primary.AssertNumberOfCalls(t, "ExtractText", 1)
	secondary.AssertNumberOfCalls(t, "ExtractText", 1)
}

func TestRateLimitError(t *testing.T) {
	base := errors.New("too many")
	err := ocr.NewRateLimitError("gemini", base, 0)
	assert.Equal(t, 60*time.Second, err.RetryAfter)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "gemini rate limited")
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, ocr.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, ocr.ParseRetryAfterHeader("soon"))
	assert.Equal(t, 42, ocr.ParseRetryAfterHeader("42"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", ocr.Truncate("abc", 5))
	assert.Equal(t, "ab...", ocr.Truncate("abcdef", 2))
}
