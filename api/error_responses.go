package api

import (
	stdErrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-lsh-search/internal/errors"
	"github.com/gcbaptista/go-lsh-search/internal/logger"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeInvalidConfig    ErrorCode = "INVALID_CONFIGURATION"
	ErrorCodeDocumentTooShort ErrorCode = "DOCUMENT_TOO_SHORT"
	ErrorCodeIndexNotFound    ErrorCode = "INDEX_NOT_FOUND"
	ErrorCodeDocumentNotFound ErrorCode = "DOCUMENT_NOT_FOUND"
	ErrorCodeJobNotFound      ErrorCode = "JOB_NOT_FOUND"
	ErrorCodeIndexExists      ErrorCode = "INDEX_ALREADY_EXISTS"
	ErrorCodeInvalidJSON      ErrorCode = "INVALID_JSON"
	ErrorCodeInvalidQuery     ErrorCode = "INVALID_QUERY"

	// Server Error Codes (5xx)
	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrorCodeIndexingFailed     ErrorCode = "INDEXING_FAILED"
	ErrorCodeSearchFailed       ErrorCode = "SEARCH_FAILED"
	ErrorCodeJobExecutionFailed ErrorCode = "JOB_EXECUTION_FAILED"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError represents a standardized API error response
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIErrorResponse creates a standardized error response
func APIErrorResponse(code ErrorCode, message string, details ...ErrorDetail) *APIError {
	return &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	errorResponse := APIErrorResponse(code, message, details...)

	if requestID, exists := c.Get(requestIDKey); exists {
		if id, ok := requestID.(string); ok {
			errorResponse.RequestID = id
		}
	}

	c.JSON(statusCode, errorResponse)
}

// SendStructuredValidationError sends a validation error with one detail per field problem
func SendStructuredValidationError(c *gin.Context, result *ValidationResult) {
	details := make([]ErrorDetail, len(result.Errors))
	for i, err := range result.Errors {
		details[i] = ErrorDetail{
			Field:   err.Field,
			Message: err.Message,
			Code:    "VALIDATION_ERROR",
		}
	}

	SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed", details...)
}

// SendIndexNotFoundError sends a standardized index not found error
func SendIndexNotFoundError(c *gin.Context, indexName string) {
	SendError(c, http.StatusNotFound, ErrorCodeIndexNotFound,
		"Index '"+indexName+"' not found")
}

// SendInvalidJSONError sends a standardized invalid JSON error
func SendInvalidJSONError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON,
		"Invalid JSON in request body: "+err.Error())
}

// SendEngineError maps an error returned by the engine or a search to a status
// code and error code. operation names what was attempted, for 5xx messages.
func SendEngineError(c *gin.Context, operation string, err error) {
	var (
		cfgErr      *errors.ConfigError
		tooShortErr *errors.DocumentTooShortError
		validErr    *errors.ValidationError
	)

	switch {
	case stdErrors.As(err, &cfgErr):
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidConfig, err.Error(),
			ErrorDetail{Field: cfgErr.Field, Message: cfgErr.Message})
	case stdErrors.As(err, &validErr):
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error(),
			ErrorDetail{Field: validErr.Field, Message: validErr.Message})
	case stdErrors.As(err, &tooShortErr):
		SendError(c, http.StatusUnprocessableEntity, ErrorCodeDocumentTooShort, err.Error())
	case stdErrors.Is(err, errors.ErrIndexNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeIndexNotFound, err.Error())
	case stdErrors.Is(err, errors.ErrDocumentNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeDocumentNotFound, err.Error())
	case stdErrors.Is(err, errors.ErrJobNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeJobNotFound, err.Error())
	case stdErrors.Is(err, errors.ErrIndexAlreadyExists):
		SendError(c, http.StatusConflict, ErrorCodeIndexExists, err.Error())
	default:
		logger.FromContext(c.Request.Context()).Error("request failed", "operation", operation, "error", err)
		SendError(c, http.StatusInternalServerError, internalCode(operation),
			"Internal error during "+operation+": "+err.Error())
	}
}

func internalCode(operation string) ErrorCode {
	switch operation {
	case "search", "multi search", "find duplicates":
		return ErrorCodeSearchFailed
	case "create index", "rebuild index":
		return ErrorCodeIndexingFailed
	case "start job":
		return ErrorCodeJobExecutionFailed
	default:
		return ErrorCodeInternalError
	}
}
