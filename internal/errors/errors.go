package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrInvalidConfig is returned when index settings are rejected before a build starts
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDocumentTooShort is returned when a document or query cannot produce a usable signature
	ErrDocumentTooShort = errors.New("document too short")

	// ErrIndexNotFound is returned when an index is not found
	ErrIndexNotFound = errors.New("index not found")

	// ErrIndexAlreadyExists is returned when trying to create an index that already exists
	ErrIndexAlreadyExists = errors.New("index already exists")

	// ErrDocumentNotFound is returned when a document is not found
	ErrDocumentNotFound = errors.New("document not found")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// ConfigError reports an invalid shingle/signature/band configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid configuration for '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid configuration: %s", e.Message)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError creates a new ConfigError
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// Reasons reported by DocumentTooShortError.
const (
	// ReasonShingle means the text has fewer characters than the shingle size.
	ReasonShingle = "shingle"
	// ReasonBand means the signature has fewer values than one band.
	ReasonBand = "band"
)

// QueryDocID is the DocID carried by DocumentTooShortError when the text is a query.
const QueryDocID = -1

// DocumentTooShortError is raised when a document (or query) cannot be shingled,
// or yields fewer distinct shingles than the band width.
type DocumentTooShortError struct {
	DocID    int
	Length   int
	Required int
	Reason   string
}

func (e *DocumentTooShortError) Error() string {
	subject := "query"
	if e.DocID != QueryDocID {
		subject = fmt.Sprintf("document %d", e.DocID)
	}
	if e.Reason == ReasonBand {
		return fmt.Sprintf("%s too short: %d distinct shingles, need at least %d for one band", subject, e.Length, e.Required)
	}
	return fmt.Sprintf("%s too short: %d characters, need at least %d to form a shingle", subject, e.Length, e.Required)
}

func (e *DocumentTooShortError) Is(target error) bool {
	return target == ErrDocumentTooShort
}

// NewDocumentTooShortError creates a new DocumentTooShortError
func NewDocumentTooShortError(docID, length, required int, reason string) *DocumentTooShortError {
	return &DocumentTooShortError{DocID: docID, Length: length, Required: required, Reason: reason}
}

// IndexNotFoundError represents an index not found error with context
type IndexNotFoundError struct {
	IndexName string
}

func (e *IndexNotFoundError) Error() string {
	return fmt.Sprintf("index named '%s' not found", e.IndexName)
}

func (e *IndexNotFoundError) Is(target error) bool {
	return target == ErrIndexNotFound
}

// NewIndexNotFoundError creates a new IndexNotFoundError
func NewIndexNotFoundError(indexName string) *IndexNotFoundError {
	return &IndexNotFoundError{IndexName: indexName}
}

// IndexAlreadyExistsError represents an index already exists error with context
type IndexAlreadyExistsError struct {
	IndexName string
}

func (e *IndexAlreadyExistsError) Error() string {
	return fmt.Sprintf("index named '%s' already exists", e.IndexName)
}

func (e *IndexAlreadyExistsError) Is(target error) bool {
	return target == ErrIndexAlreadyExists
}

// NewIndexAlreadyExistsError creates a new IndexAlreadyExistsError
func NewIndexAlreadyExistsError(indexName string) *IndexAlreadyExistsError {
	return &IndexAlreadyExistsError{IndexName: indexName}
}

// DocumentNotFoundError represents a document not found error with context
type DocumentNotFoundError struct {
	DocID     int
	IndexName string
}

func (e *DocumentNotFoundError) Error() string {
	if e.IndexName != "" {
		return fmt.Sprintf("document with ID %d not found in index '%s'", e.DocID, e.IndexName)
	}
	return fmt.Sprintf("document with ID %d not found", e.DocID)
}

func (e *DocumentNotFoundError) Is(target error) bool {
	return target == ErrDocumentNotFound
}

// NewDocumentNotFoundError creates a new DocumentNotFoundError
func NewDocumentNotFoundError(docID int, indexName ...string) *DocumentNotFoundError {
	err := &DocumentNotFoundError{DocID: docID}
	if len(indexName) > 0 {
		err.IndexName = indexName[0]
	}
	return err
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
