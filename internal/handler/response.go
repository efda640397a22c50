package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"billextract/internal/domain"
	"billextract/internal/middleware"
	"billextract/internal/response"
)

// Failure messages shared by the router and handlers.
const (
	MsgEndpointNotFound = "Endpoint not found"
	MsgMethodNotAllowed = "Method not allowed. Use POST method."
	MsgInternalError    = "Internal server error"
)

// RespondOK sends a 200 response with the given body.
func RespondOK(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

// RespondFailure sends the failure body {is_success:false, error} with the given status code.
func RespondFailure(c *gin.Context, status int, msg string) {
	c.JSON(status, response.Failure(msg))
}

// MapDomainError translates domain errors to HTTP status codes and client messages.
func MapDomainError(err error) (status int, msg string) {
	switch {
	case errors.Is(err, domain.ErrInvalidDocumentURL):
		return http.StatusBadRequest, "Invalid document URL format"
	case errors.Is(err, domain.ErrUnsupportedScheme):
		return http.StatusBadRequest, "Unsupported document URL scheme; allowed: http, https, s3"
	case errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound, "Document not found at the given URL"
	case errors.Is(err, domain.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge, "Document exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType, "Unsupported document type; allowed: pdf, jpeg, png, webp, text"
	case errors.Is(err, domain.ErrDownloadFailed):
		return http.StatusBadGateway, "Failed to download document"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out"
	default:
		return http.StatusInternalServerError, MsgInternalError
	}
}

// HandleError maps a domain error and sends the appropriate failure response.
func HandleError(c *gin.Context, err error) {
	status, msg := MapDomainError(err)
	log := zerolog.Ctx(c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", c.GetString(middleware.RequestIDKey)).Msg("request failed")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	RespondFailure(c, status, msg)
}
