package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"timetabler/internal/domain"
	"timetabler/internal/middleware"
	"timetabler/internal/parser"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response with a message.
func RespondCreated(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Message: msg, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var rateErr *parser.RateLimitError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: jpg, jpeg, png, pdf, doc, docx"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrTextExtractionFailed):
		return http.StatusUnprocessableEntity, "TEXT_EXTRACTION_FAILED", "could not read text from document; save it as .docx and retry"
	case errors.Is(err, domain.ErrMalformedExtraction):
		return http.StatusUnprocessableEntity, "MALFORMED_EXTRACTION", "extraction result is not a valid timetable"
	case errors.As(err, &rateErr):
		return http.StatusTooManyRequests, "RATE_LIMITED", "extraction backend is rate limited; retry later"
	case errors.Is(err, parser.ErrOutputTruncated):
		return http.StatusBadGateway, "OUTPUT_TRUNCATED", "extraction result was cut off; try a smaller document"
	case errors.Is(err, domain.ErrExtractionFailed):
		return http.StatusBadGateway, "EXTRACTION_FAILED", "timetable extraction failed"
	case errors.Is(err, domain.ErrUnsupportedExportFormat):
		return http.StatusBadRequest, "UNSUPPORTED_EXPORT_FORMAT", "unsupported export format; allowed: csv, xlsx"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)

	var rateErr *parser.RateLimitError
	if errors.As(err, &rateErr) {
		c.Header("Retry-After", strconv.Itoa(int(rateErr.RetryAfter.Seconds())))
	}

	log := middleware.LoggerFrom(c)
	if status >= 500 {
		log.Error().Err(err).Str("code", code).Msg("request failed")
	} else {
		log.Debug().Err(err).Str("code", code).Msg("request rejected")
	}
	RespondError(c, status, code, msg)
}
