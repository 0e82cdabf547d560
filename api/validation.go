// Package api provides validation utilities for API request handling.
package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	maxTopN          = 1000
	defaultThreshold = 0.5
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateIndexName validates an index name parameter
func ValidateIndexName(indexName string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if indexName == "" {
		result.AddError("indexName", "Index name is required")
		return result
	}

	if strings.TrimSpace(indexName) != indexName {
		result.AddError("indexName", "Index name cannot have leading or trailing whitespace")
		return result
	}

	if strings.ContainsAny(indexName, "/\\") {
		result.AddError("indexName", "Index name cannot contain path separators")
	}

	return result
}

// ValidateDocumentID parses a document id path parameter.
func ValidateDocumentID(documentID string) (int, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	if documentID == "" {
		result.AddError("docId", "Document ID is required")
		return 0, result
	}

	id, err := strconv.Atoi(documentID)
	if err != nil || id < 0 {
		result.AddError("docId", "Document ID must be a non-negative integer")
		return 0, result
	}

	return id, result
}

// ValidateTopN checks an optional result count.
func ValidateTopN(topN *int) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if topN == nil {
		return result
	}
	if *topN < 0 {
		result.AddError("top_n", "top_n must be >= 0")
	}
	if *topN > maxTopN {
		result.AddError("top_n", fmt.Sprintf("top_n must be <= %d", maxTopN))
	}
	return result
}

// ValidateCreateIndexRequest validates the body of POST /indexes.
// Parameter combinations (K a multiple of W, positive sizes) are checked by the
// engine, and short or empty documents are skipped at build time rather than rejected.
func ValidateCreateIndexRequest(req *CreateIndexRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if req == nil {
		result.AddError("request_body", "Request body is required")
		return result
	}

	if req.Name == "" {
		result.AddError("name", "Index name is required")
	} else if nameResult := ValidateIndexName(req.Name); nameResult.HasErrors() {
		for _, err := range nameResult.Errors {
			result.AddError("name", err.Message)
		}
	}

	return result
}

// ParseOptionalInt reads an optional integer query parameter.
func ParseOptionalInt(c *gin.Context, name string) (*int, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, result
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		result.AddError(name, name+" must be an integer")
		return nil, result
	}
	return &value, result
}

// ParseThreshold reads the similarity threshold query parameter, defaulting to 0.5.
func ParseThreshold(c *gin.Context) (float64, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	raw, ok := c.GetQuery("threshold")
	if !ok || raw == "" {
		return defaultThreshold, result
	}
	threshold, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		result.AddError("threshold", "threshold must be a number")
		return 0, result
	}
	if threshold < 0 || threshold > 1 {
		result.AddError("threshold", "threshold must be between 0 and 1")
	}
	return threshold, result
}

// SendValidationError sends a standardized validation error response
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}

// ValidateJSONBinding validates JSON binding and returns a standardized error
func ValidateJSONBinding(c *gin.Context, target any) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if err := c.ShouldBindJSON(target); err != nil {
		result.AddError("request_body", "Invalid request body: "+err.Error())
	}

	return result
}
