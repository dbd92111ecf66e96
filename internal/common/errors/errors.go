// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Job input errors
const (
	ErrCodeParseError             ErrorCode = "PARSE_ERROR"
	ErrCodeExtractionInputInvalid ErrorCode = "EXTRACTION_INPUT_INVALID"
	ErrCodePlaceNameRequired      ErrorCode = "PLACE_NAME_REQUIRED"
)

// Storage and upstream errors
const (
	ErrCodePointsLedgerFailed     ErrorCode = "POINTS_LEDGER_FAILED"
	ErrCodeImageGenerationFailed  ErrorCode = "IMAGE_GENERATION_FAILED"
	ErrCodeImageGenerationTimeout ErrorCode = "IMAGE_GENERATION_TIMEOUT"
	ErrCodeImageCacheFailed       ErrorCode = "IMAGE_CACHE_FAILED"
)

// Generic codes
const (
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
	ErrCodeExternalService      ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout              ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound     ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeBusinessRule         ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
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

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewParseError reports job variables that could not be decoded.
func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Job variables could not be parsed", err.Error(), false)
}

// NewExtractionInputInvalidError reports a job missing the message text.
func NewExtractionInputInvalidError(details string) *StandardError {
	return newError(ErrCodeExtractionInputInvalid, "Extraction input is invalid", details, false)
}

func NewPlaceNameRequiredError() *StandardError {
	return newError(ErrCodePlaceNameRequired, "placeName is required", "", false)
}

// NewPointsLedgerFailedError creates a retryable ledger error.
func NewPointsLedgerFailedError(userID string, err error) *StandardError {
	e := newError(ErrCodePointsLedgerFailed, "Points ledger update failed", err.Error(), true)
	e.Metadata = map[string]interface{}{"userId": userID}
	return e
}

// NewImageGenerationFailedError creates a retryable image-service error.
func NewImageGenerationFailedError(placeName string, err error) *StandardError {
	e := newError(ErrCodeImageGenerationFailed, "Destination image generation failed", err.Error(), true)
	e.Metadata = map[string]interface{}{"placeName": placeName}
	return e
}

func NewImageGenerationTimeoutError(placeName string) *StandardError {
	e := newError(ErrCodeImageGenerationTimeout, "Destination image generation timed out", "", true)
	e.Metadata = map[string]interface{}{"placeName": placeName}
	return e
}

// NewImageCacheFailedError creates a retryable cache error.
func NewImageCacheFailedError(err error) *StandardError {
	return newError(ErrCodeImageCacheFailed, "Destination image cache operation failed", err.Error(), true)
}

// Generic constructors

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

func NewBusinessRuleError(message, details string) *StandardError {
	return newError(ErrCodeBusinessRule, message, details, false)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", service), details, false)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthenticationFailed, "Authentication failed", details, false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the codes BPMN error events
// catch. Codes absent from the map are thrown unchanged.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeParseError:             "INVALID_INPUT",
	ErrCodeExtractionInputInvalid: "INVALID_INPUT",
	ErrCodePlaceNameRequired:      "INVALID_INPUT",
	ErrCodeImageGenerationTimeout: "IMAGE_GENERATION_FAILED",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodePointsLedgerFailed,
		ErrCodeImageCacheFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeImageGenerationFailed,
		ErrCodeTimeout:
		return 2

	case ErrCodeImageGenerationTimeout:
		return 1

	default:
		return 0 // input and business errors: no retry
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

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PARSE") || strings.Contains(codeStr, "INPUT") || strings.Contains(codeStr, "REQUIRED"):
		return "VALIDATION"
	case strings.Contains(codeStr, "LEDGER"):
		return "DATABASE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "IMAGE"):
		return "AI"
	case strings.Contains(codeStr, "EXTERNAL") || strings.Contains(codeStr, "TIMEOUT"):
		return "UPSTREAM"
	default:
		return "OTHER"
	}
}
