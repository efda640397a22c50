package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billextract/internal/domain"
	"billextract/internal/handler"
	"billextract/mocks"
)

func get(h gin.HandlerFunc, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, path, http.NoBody)
	h(c)
	return w
}

func TestHealth(t *testing.T) {
	h := handler.NewHealthHandler("Bill Extraction API", "1.0.0", nil)

	w := get(h.Health, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp handler.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "1.0.0", resp.Version)

	assert.Equal(t, http.StatusOK, get(h.Liveness, "/healthz").Code)
}

func TestReadiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	broken := func(context.Context) error { return errors.New("no ocr provider configured") }

	h := handler.NewHealthHandler("svc", "1", map[string]handler.ReadinessCheck{"engine": ok})
	assert.Equal(t, http.StatusOK, get(h.Readiness, "/readyz").Code)

	h = handler.NewHealthHandler("svc", "1", map[string]handler.ReadinessCheck{"engine": ok, "ocr": broken})
	w := get(h.Readiness, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "no ocr provider configured")
}

func TestInfo(t *testing.T) {
	h := handler.NewInfoHandler("1.0.0", []string{"claude", "gemini"})

	w := get(h.Info, "/")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp handler.InfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Medical Bill Extraction API", resp.Message)
	assert.Contains(t, resp.Endpoints, "POST /extract-bill-data")
	assert.Equal(t, []string{"claude", "gemini"}, resp.OCRProviders)
}

func TestStatsHandler_GetStats(t *testing.T) {
	mockSvc := new(mocks.MockStatsService)
	expected := &domain.Stats{
		TotalRequests:     12,
		Succeeded:         10,
		Failed:            2,
		ItemsExtracted:    57,
		AverageConfidence: 0.82,
		StartedAt:         time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		UptimeSeconds:     3600,
	}
	mockSvc.On("GetStats").Return(expected)

	w := get(handler.NewStatsHandler(mockSvc).GetStats, "/api/v1/stats")

	assert.Equal(t, http.StatusOK, w.Code)
	var got domain.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, *expected, got)
	mockSvc.AssertExpectations(t)
}

func TestMapDomainError_Default(t *testing.T) {
	status, msg := handler.MapDomainError(errors.New("x"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, handler.MsgInternalError, msg)
}
