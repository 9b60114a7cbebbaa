package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the client-side failure taxonomy.
var (
	ErrSessionExpired      = errors.New("session expired")
	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrRequestFailed       = errors.New("request failed")
	ErrNetworkFailure      = errors.New("network failure")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrInvalidInput        = errors.New("invalid input")
)

// Error codes carried by AppError.
const (
	CodeSessionExpired      = "SESSION_EXPIRED"
	CodeAuthorizationDenied = "AUTHORIZATION_DENIED"
	CodeRequestFailed       = "REQUEST_FAILED"
	CodeNetworkFailure      = "NETWORK_FAILURE"
	CodeMalformedResponse   = "MALFORMED_RESPONSE"
	CodeInvalidInput        = "INVALID_INPUT"
)

// AppError is a structured failure returned by the access layer. Status is the
// HTTP status of the response that produced it, or 0 when no response arrived.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets AuthorizationDenied and MalformedResponse also match ErrRequestFailed,
// so callers that only care about "the call failed" need one check.
func (e *AppError) Is(target error) bool {
	if target != ErrRequestFailed {
		return false
	}
	switch e.Code {
	case CodeRequestFailed, CodeAuthorizationDenied, CodeMalformedResponse:
		return true
	}
	return false
}

// SessionExpired creates the terminal error returned after a forced logout.
func SessionExpired(message string) *AppError {
	return &AppError{
		Code:    CodeSessionExpired,
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrSessionExpired,
	}
}

// AuthorizationDenied creates a 401/403 failure that did not look like an
// expired session.
func AuthorizationDenied(message string, status int) *AppError {
	return &AppError{
		Code:    CodeAuthorizationDenied,
		Message: message,
		Status:  status,
		Err:     ErrAuthorizationDenied,
	}
}

// RequestFailed creates a failure for any other non-success status.
func RequestFailed(message string, status int) *AppError {
	return &AppError{
		Code:    CodeRequestFailed,
		Message: message,
		Status:  status,
		Err:     ErrRequestFailed,
	}
}

// NetworkFailure wraps a transport error.
func NetworkFailure(err error) *AppError {
	return &AppError{
		Code:    CodeNetworkFailure,
		Message: "could not reach server",
		Err:     fmt.Errorf("%w: %w", ErrNetworkFailure, err),
	}
}

// MalformedResponse is returned when a success body is not JSON.
func MalformedResponse(status int) *AppError {
	return &AppError{
		Code:    CodeMalformedResponse,
		Message: "Request failed",
		Status:  status,
		Err:     ErrMalformedResponse,
	}
}

// InvalidInput rejects a call before anything is sent.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: message,
		Err:     ErrInvalidInput,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// IsSessionExpired reports whether err ended in a forced logout.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// Kind returns the AppError code for err, or "" if err is not an AppError.
func Kind(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HTTPStatus returns the HTTP status associated with err, or 0.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return 0
}

// Message returns the user-facing message for err.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
