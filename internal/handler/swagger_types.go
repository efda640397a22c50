package handler

// Swagger type definitions for API documentation.

// ExtractRequest is the body of POST /extract-bill-data.
type ExtractRequest struct {
	Document string `json:"document" binding:"required" example:"https://example.com/bills/sample_1.png"`
}

// ExtractTextRequest is the body of the text extraction endpoints.
type ExtractTextRequest struct {
	Text *string `json:"text" binding:"required" example:"Crocin 650 Tab 2 x 15.00 = 30.00"`
}

// ErrorResponseBody documents the failure shape.
type ErrorResponseBody struct {
	IsSuccess bool   `json:"is_success" example:"false"`
	Error     string `json:"error" example:"Invalid document URL format"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status" example:"healthy"`
	Service string `json:"service" example:"Bill Extraction API"`
	Version string `json:"version" example:"1.0.0"`
}

// InfoResponse is returned by GET /.
type InfoResponse struct {
	Message      string            `json:"message" example:"Medical Bill Extraction API"`
	Version      string            `json:"version" example:"1.0.0"`
	Endpoints    map[string]string `json:"endpoints"`
	OCRProviders []string          `json:"ocr_providers"`
}
