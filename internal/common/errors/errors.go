// Package errors provides the error taxonomy shared by the fetch, digest and
// query steps, and its conversion into user-visible messages.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Dataset fetch failures
	ErrCodeTransport  ErrorCode = "TRANSPORT_ERROR"
	ErrCodeHTTPStatus ErrorCode = "HTTP_STATUS_ERROR"
	ErrCodeDecode     ErrorCode = "DECODE_ERROR"

	// User input / session failures
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeState      ErrorCode = "STATE_ERROR"

	// Completion provider failures
	ErrCodeUpstream ErrorCode = "UPSTREAM_ERROR"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	StatusCode int                    `json:"statusCode,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches on Code so the sentinels below work with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrTransport  = &StandardError{Code: ErrCodeTransport}
	ErrHTTPStatus = &StandardError{Code: ErrCodeHTTPStatus}
	ErrDecode     = &StandardError{Code: ErrCodeDecode}
	ErrValidation = &StandardError{Code: ErrCodeValidation}
	ErrState      = &StandardError{Code: ErrCodeState}
	ErrUpstream   = &StandardError{Code: ErrCodeUpstream}
)

// ==========================
// 2. Error Constructors
// ==========================

// NewTransportError wraps a network or DNS failure.
func NewTransportError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransport,
		Message:   "An error occurred",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewHTTPStatusError reports a non-2xx response with the server's reason text.
func NewHTTPStatusError(statusCode int, reason string) *StandardError {
	if reason == "" {
		reason = http.StatusText(statusCode)
	}
	return &StandardError{
		Code:       ErrCodeHTTPStatus,
		Message:    "HTTP Error",
		Details:    fmt.Sprintf("%d - %s", statusCode, reason),
		StatusCode: statusCode,
		Metadata: map[string]interface{}{
			"reason": reason,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewDecodeError reports a body that is not valid JSON.
func NewDecodeError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecode,
		Message:   "An error occurred",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewValidationError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidation,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

func NewStateError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeState,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamError carries the completion provider's error message. err may be nil.
func NewUpstreamError(message string, err error) *StandardError {
	stdErr := &StandardError{
		Code:      ErrCodeUpstream,
		Message:   message,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
	if err != nil {
		stdErr.Details = err.Error()
	}
	return stdErr
}

// WithStatus records the provider's HTTP status on an upstream error.
func (e *StandardError) WithStatus(statusCode int) *StandardError {
	e.StatusCode = statusCode
	return e
}

// ==========================
// 3. Helpers
// ==========================

// AsStandard extracts a *StandardError from err, or normalizes it to an internal error.
func AsStandard(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return AsStandard(err).Code
}

// UserMessage renders err the way it is shown to the person at the keyboard.
func UserMessage(err error) string {
	stdErr := AsStandard(err)
	if stdErr == nil {
		return ""
	}
	switch stdErr.Code {
	case ErrCodeHTTPStatus:
		return fmt.Sprintf("HTTP Error: %s", stdErr.Details)
	case ErrCodeTransport, ErrCodeDecode:
		return fmt.Sprintf("An error occurred: %s", stdErr.Details)
	case ErrCodeUpstream:
		if stdErr.Details != "" {
			return fmt.Sprintf("%s: %s", stdErr.Message, stdErr.Details)
		}
		return stdErr.Message
	case ErrCodeValidation, ErrCodeState:
		return capitalize(stdErr.Message)
	default:
		return fmt.Sprintf("An error occurred: %s", stdErr.Details)
	}
}

// HTTPStatus maps an error code to the status an API front end answers with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeState:
		return http.StatusConflict
	case ErrCodeHTTPStatus, ErrCodeTransport, ErrCodeDecode, ErrCodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeTransport, ErrCodeHTTPStatus, ErrCodeDecode:
		return "FETCH"
	case ErrCodeValidation, ErrCodeState:
		return "USER"
	case ErrCodeUpstream:
		return "AI"
	default:
		return "OTHER"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	s = strings.TrimSpace(s)
	out := strings.ToUpper(s[:1]) + s[1:]
	if !strings.HasSuffix(out, ".") {
		out += "."
	}
	return out
}
