package handler

import (
	"github.com/gin-gonic/gin"

	"billextract/internal/service"
)

// StatsHandler handles stats endpoints.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetStats handles GET /api/v1/stats
// @Summary Get extraction statistics
// @Description Request counters and the running mean confidence since the process started.
// @Tags stats
// @Produce json
// @Success 200 {object} domain.Stats "Aggregate statistics"
// @Router /api/v1/stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	RespondOK(c, h.statsService.GetStats())
}
