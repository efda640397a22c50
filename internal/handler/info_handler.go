package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// InfoHandler serves the API description at the root path.
type InfoHandler struct {
	info InfoResponse
}

// NewInfoHandler creates a new InfoHandler.
func NewInfoHandler(version string, ocrProviders []string) *InfoHandler {
	endpoints := map[string]string{
		"POST /extract-bill-data":    "Extract bill data from document URL",
		"POST /api/v1/extract/text":  "Extract bill data from OCR text",
		"POST /api/v1/extract/debug": "Trace extraction decisions for OCR text",
		"GET /api/v1/stats":          "Request statistics",
		"GET /health":                "Health check",
	}
	return &InfoHandler{info: InfoResponse{
		Message:      "Medical Bill Extraction API",
		Version:      version,
		Endpoints:    endpoints,
		OCRProviders: ocrProviders,
	}}
}

// Info handles GET /
// @Summary API information
// @Tags health
// @Produce json
// @Success 200 {object} InfoResponse
// @Router / [get]
func (h *InfoHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, h.info)
}
