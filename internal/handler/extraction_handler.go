package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"billextract/internal/service"
)

// ExtractionHandler handles bill extraction endpoints.
type ExtractionHandler struct {
	extractionService service.ExtractionService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

// ExtractBillData handles POST /extract-bill-data
// @Summary Extract line items from a bill document
// @Description Download the document, transcribe it and extract the billed line items page by page.
// @Tags extraction
// @Accept json
// @Produce json
// @Param request body ExtractRequest true "Document URL (http, https or s3)"
// @Success 200 {object} domain.BillExtractionResponse "Extracted line items"
// @Failure 400 {object} ErrorResponseBody "Invalid request or document URL"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Failure 413 {object} ErrorResponseBody "Document too large"
// @Failure 415 {object} ErrorResponseBody "Unsupported document type"
// @Failure 502 {object} ErrorResponseBody "Download failed"
// @Router /extract-bill-data [post]
func (h *ExtractionHandler) ExtractBillData(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondFailure(c, http.StatusBadRequest, "Missing 'document' URL in request body")
		return
	}

	resp, err := h.extractionService.ExtractFromURL(c.Request.Context(), req.Document)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, resp)
}

// ExtractText handles POST /api/v1/extract/text
// @Summary Extract line items from OCR text
// @Description Run the extraction pipeline on already transcribed bill text.
// @Tags extraction
// @Accept json
// @Produce json
// @Param request body ExtractTextRequest true "OCR text"
// @Success 200 {object} domain.BillExtractionResponse "Extracted line items"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Router /api/v1/extract/text [post]
func (h *ExtractionHandler) ExtractText(c *gin.Context) {
	var req ExtractTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondFailure(c, http.StatusBadRequest, "Missing 'text' in request body")
		return
	}
	RespondOK(c, h.extractionService.ExtractFromText(c.Request.Context(), *req.Text))
}

// Debug handles POST /api/v1/extract/debug
// @Summary Trace the extraction of OCR text
// @Description Return the per-line classification, parsing and validation decisions along with the final response.
// @Tags extraction
// @Accept json
// @Produce json
// @Param request body ExtractTextRequest true "OCR text"
// @Success 200 {object} extraction.Trace "Extraction trace"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Router /api/v1/extract/debug [post]
func (h *ExtractionHandler) Debug(c *gin.Context) {
	var req ExtractTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondFailure(c, http.StatusBadRequest, "Missing 'text' in request body")
		return
	}
	RespondOK(c, h.extractionService.Analyze(c.Request.Context(), *req.Text))
}
