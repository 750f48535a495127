// Package errors provides the standard failure shape shared by adapters,
// pipeline stages and the BPMN job path.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

type ErrorCode string

const (
	ErrCodeInputValidationFailed ErrorCode = "INPUT_VALIDATION_FAILED"
	ErrCodeClassificationFailed  ErrorCode = "CLASSIFICATION_FAILED"

	ErrCodeEvidenceSourceFailed  ErrorCode = "EVIDENCE_SOURCE_FAILED"
	ErrCodeEvidenceSourceTimeout ErrorCode = "EVIDENCE_SOURCE_TIMEOUT"
	ErrCodeDocumentStoreFailed   ErrorCode = "DOCUMENT_STORE_FAILED"
	ErrCodeCacheOperationFailed  ErrorCode = "CACHE_OPERATION_FAILED"

	ErrCodeGenerationFailed      ErrorCode = "GENERATION_FAILED"
	ErrCodeGenerationTimeout     ErrorCode = "GENERATION_TIMEOUT"
	ErrCodeChartGenerationFailed ErrorCode = "CHART_GENERATION_FAILED"

	ErrCodeExternalService  ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout          ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError extracts a StandardError anywhere in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	e := &StandardError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func NewInputValidationError(details string) *StandardError {
	e := newError(ErrCodeInputValidationFailed, "Request input failed validation", nil, false)
	e.Details = details
	return e
}

func NewClassificationFailedError(err error) *StandardError {
	return newError(ErrCodeClassificationFailed, "Question classification failed", err, false)
}

// NewEvidenceSourceError normalizes an adapter failure. Deadline and
// cancellation causes become EVIDENCE_SOURCE_TIMEOUT.
func NewEvidenceSourceError(source string, err error) *StandardError {
	if isTimeout(err) {
		return newError(ErrCodeEvidenceSourceTimeout, fmt.Sprintf("Evidence source '%s' timed out", source), err, true).
			WithMetadata("source", source)
	}
	return newError(ErrCodeEvidenceSourceFailed, fmt.Sprintf("Evidence source '%s' failed", source), err, true).
		WithMetadata("source", source)
}

func NewDocumentStoreError(operation string, err error) *StandardError {
	return newError(ErrCodeDocumentStoreFailed, fmt.Sprintf("Document store operation '%s' failed", operation), err, true).
		WithMetadata("operation", operation)
}

func NewCacheOperationError(operation string, err error) *StandardError {
	return newError(ErrCodeCacheOperationFailed, fmt.Sprintf("Cache operation '%s' failed", operation), err, true).
		WithMetadata("operation", operation)
}

// NewGenerationError normalizes a text-generation failure.
func NewGenerationError(provider string, err error) *StandardError {
	if isTimeout(err) {
		return newError(ErrCodeGenerationTimeout, fmt.Sprintf("Generation provider '%s' timed out", provider), err, true).
			WithMetadata("provider", provider)
	}
	return newError(ErrCodeGenerationFailed, fmt.Sprintf("Generation provider '%s' failed", provider), err, true).
		WithMetadata("provider", provider)
}

func NewChartGenerationError(kind string, err error) *StandardError {
	return newError(ErrCodeChartGenerationFailed, fmt.Sprintf("Chart generation for '%s' failed", kind), err, false).
		WithMetadata("chartKind", kind)
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err, true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err, true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	e := newError(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", service), nil, false)
	e.Details = details
	return e
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the BPMN error codes used in
// the process models. Codes are identical today.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInputValidationFailed: "INPUT_VALIDATION_FAILED",
	ErrCodeClassificationFailed:  "CLASSIFICATION_FAILED",
	ErrCodeEvidenceSourceFailed:  "EVIDENCE_SOURCE_FAILED",
	ErrCodeEvidenceSourceTimeout: "EVIDENCE_SOURCE_TIMEOUT",
	ErrCodeDocumentStoreFailed:   "DOCUMENT_STORE_FAILED",
	ErrCodeCacheOperationFailed:  "CACHE_OPERATION_FAILED",
	ErrCodeGenerationFailed:      "GENERATION_FAILED",
	ErrCodeGenerationTimeout:     "GENERATION_TIMEOUT",
	ErrCodeChartGenerationFailed: "CHART_GENERATION_FAILED",
}

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeGenerationFailed,
		ErrCodeDocumentStoreFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeEvidenceSourceFailed,
		ErrCodeEvidenceSourceTimeout,
		ErrCodeCacheOperationFailed,
		ErrCodeTimeout:
		return 2

	case ErrCodeGenerationTimeout:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for logging and dashboards.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "GENERATION") || strings.Contains(codeStr, "CLASSIFICATION"):
		return "AI"
	case strings.Contains(codeStr, "EVIDENCE") || strings.Contains(codeStr, "EXTERNAL"):
		return "EVIDENCE"
	case strings.Contains(codeStr, "DOCUMENT") || strings.Contains(codeStr, "CACHE"):
		return "STORAGE"
	case strings.Contains(codeStr, "TIMEOUT"):
		return "TIMEOUT"
	default:
		return "OTHER"
	}
}
