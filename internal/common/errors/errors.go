// Package errors provides standardized error handling for the onboarding service.
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

const (
	ErrCodeSessionNotFound     ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionDecodeFailed ErrorCode = "SESSION_DECODE_FAILED"
	ErrCodeSessionWriteFailed  ErrorCode = "SESSION_WRITE_FAILED"

	ErrCodeStageLocked          ErrorCode = "STAGE_LOCKED"
	ErrCodeStageUnknown         ErrorCode = "STAGE_UNKNOWN"
	ErrCodePayloadInvalid       ErrorCode = "PAYLOAD_INVALID"
	ErrCodePayloadStageMismatch ErrorCode = "PAYLOAD_STAGE_MISMATCH"

	ErrCodeSummaryGenerationFailed ErrorCode = "SUMMARY_GENERATION_FAILED"
	ErrCodeDraftGenerationFailed   ErrorCode = "DRAFT_GENERATION_FAILED"
	ErrCodeLogoGenerationFailed    ErrorCode = "LOGO_GENERATION_FAILED"
	ErrCodeLogoAttemptsExhausted   ErrorCode = "LOGO_ATTEMPTS_EXHAUSTED"
	ErrCodeGeminiTimeout           ErrorCode = "GEMINI_TIMEOUT"

	ErrCodeAuditWriteFailed   ErrorCode = "AUDIT_WRITE_FAILED"
	ErrCodeArchiveIndexFailed ErrorCode = "ARCHIVE_INDEX_FAILED"
	ErrCodeNotifySendFailed   ErrorCode = "NOTIFY_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
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
// 2. Error Constructors
// ==========================

// NewSessionNotFoundError creates a non-retryable session lookup error.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionDecodeFailedError creates a non-retryable decode error. The store
// treats this as "no prior session" and starts fresh.
func NewSessionDecodeFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionDecodeFailed,
		Message:   "Stored session could not be decoded",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionWriteFailedError creates a retryable persistence error.
func NewSessionWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionWriteFailed,
		Message:   "Session persistence write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStageLockedError creates a non-retryable stage precondition error.
func NewStageLockedError(stageID int) *StandardError {
	return &StandardError{
		Code:      ErrCodeStageLocked,
		Message:   "Stage is not unlocked",
		Details:   fmt.Sprintf("stageId: %d", stageID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStageUnknownError creates a non-retryable unknown-stage error.
func NewStageUnknownError(stageID int) *StandardError {
	return &StandardError{
		Code:      ErrCodeStageUnknown,
		Message:   "Stage id outside catalog range",
		Details:   fmt.Sprintf("stageId: %d", stageID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPayloadInvalidError creates a non-retryable payload validation error.
func NewPayloadInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadInvalid,
		Message:   "Stage payload validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPayloadStageMismatchError creates a non-retryable payload routing error.
func NewPayloadStageMismatchError(want, got int) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadStageMismatch,
		Message:   "Payload does not belong to the addressed stage",
		Details:   fmt.Sprintf("want stage %d, payload stage %d", want, got),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSummaryGenerationFailedError creates a retryable AI text error. Callers
// substitute the deterministic fallback instead of surfacing this.
func NewSummaryGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSummaryGenerationFailed,
		Message:   "Stage summary generation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDraftGenerationFailedError creates a retryable AI text error.
func NewDraftGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDraftGenerationFailed,
		Message:   "Outreach draft generation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLogoGenerationFailedError creates a retryable AI image error. Callers
// treat it as "no preview available".
func NewLogoGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLogoGenerationFailed,
		Message:   "Logo preview generation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLogoAttemptsExhaustedError creates a non-retryable cap error.
func NewLogoAttemptsExhaustedError(limit int) *StandardError {
	return &StandardError{
		Code:      ErrCodeLogoAttemptsExhausted,
		Message:   "Logo regeneration limit reached",
		Details:   fmt.Sprintf("limit: %d per session", limit),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGeminiTimeoutError creates a retryable timeout error.
func NewGeminiTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGeminiTimeout,
		Message:   "Gemini API timeout",
		Details:   "call exceeded configured timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditWriteFailedError creates a retryable audit trail error.
func NewAuditWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditWriteFailed,
		Message:   "Audit trail insert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewArchiveIndexFailedError creates a retryable archive error.
func NewArchiveIndexFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArchiveIndexFailed,
		Message:   "Stage report indexing failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotifySendFailedError creates a retryable notification error.
func NewNotifySendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotifySendFailed,
		Message:   "Operations notification failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unclassified failure.
func NewInternalError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal error",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSessionWriteFailed,
		ErrCodeAuditWriteFailed,
		ErrCodeArchiveIndexFailed,
		ErrCodeNotifySendFailed:
		return 3

	case ErrCodeSummaryGenerationFailed,
		ErrCodeDraftGenerationFailed,
		ErrCodeLogoGenerationFailed:
		return 2

	case ErrCodeGeminiTimeout:
		return 1

	default:
		return 0 // Business errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SESSION"):
		return "PERSISTENCE"
	case strings.Contains(codeStr, "STAGE") || strings.Contains(codeStr, "PAYLOAD"):
		return "STATE_MACHINE"
	case strings.Contains(codeStr, "SUMMARY") || strings.Contains(codeStr, "DRAFT") ||
		strings.Contains(codeStr, "LOGO") || strings.Contains(codeStr, "GEMINI"):
		return "AI"
	case strings.Contains(codeStr, "AUDIT") || strings.Contains(codeStr, "ARCHIVE") ||
		strings.Contains(codeStr, "NOTIFY"):
		return "BACK_OFFICE"
	default:
		return "OTHER"
	}
}
