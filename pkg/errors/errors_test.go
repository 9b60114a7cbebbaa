package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrSessionExpired, ErrAuthorizationDenied, ErrRequestFailed,
		ErrNetworkFailure, ErrMalformedResponse, ErrInvalidInput,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- AppError behavior ---

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	appErr := &AppError{Code: CodeNetworkFailure, Message: "could not reach server", Err: inner}
	assert.Contains(t, appErr.Error(), "NETWORK_FAILURE")
	assert.Contains(t, appErr.Error(), "could not reach server")
	assert.Contains(t, appErr.Error(), "connection refused")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: CodeRequestFailed, Message: "restaurant not found"}
	assert.Equal(t, "REQUEST_FAILED: restaurant not found", appErr.Error())
}

func TestAppError_Unwrap_Nil(t *testing.T) {
	appErr := &AppError{Code: "TEST", Message: "test"}
	assert.Nil(t, appErr.Unwrap())
}

// --- Constructor functions ---

func TestSessionExpired(t *testing.T) {
	err := SessionExpired("Session expired. Please login again.")
	assert.Equal(t, CodeSessionExpired, err.Code)
	assert.True(t, errors.Is(err, ErrSessionExpired))
	assert.False(t, errors.Is(err, ErrRequestFailed))
	assert.True(t, IsSessionExpired(fmt.Errorf("delete user: %w", err)))
}

func TestAuthorizationDenied_MatchesRequestFailed(t *testing.T) {
	err := AuthorizationDenied("forbidden resource", http.StatusForbidden)
	assert.Equal(t, http.StatusForbidden, err.Status)
	assert.True(t, errors.Is(err, ErrAuthorizationDenied))
	assert.True(t, errors.Is(err, ErrRequestFailed))
	assert.False(t, IsSessionExpired(err))
}

func TestRequestFailed(t *testing.T) {
	err := RequestFailed("HTTP 500", http.StatusInternalServerError)
	assert.Equal(t, CodeRequestFailed, err.Code)
	assert.Equal(t, "HTTP 500", err.Message)
	assert.True(t, errors.Is(err, ErrRequestFailed))
}

func TestMalformedResponse_MatchesRequestFailed(t *testing.T) {
	err := MalformedResponse(http.StatusOK)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
	assert.True(t, errors.Is(err, ErrRequestFailed))
	assert.Equal(t, "Request failed", err.Message)
}

func TestNetworkFailure(t *testing.T) {
	inner := errors.New("dial tcp: connection refused")
	err := NetworkFailure(inner)
	assert.True(t, errors.Is(err, ErrNetworkFailure))
	assert.True(t, errors.Is(err, inner))
	assert.False(t, errors.Is(err, ErrRequestFailed))
	assert.Equal(t, 0, err.Status)
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("email is required")
	assert.Equal(t, CodeInvalidInput, err.Code)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

// --- Helpers ---

func TestWrap(t *testing.T) {
	inner := RequestFailed("boom", http.StatusBadGateway)
	err := Wrap(inner, "list orders")
	assert.Contains(t, err.Error(), "list orders")
	assert.True(t, errors.Is(err, ErrRequestFailed))
}

func TestKindStatusMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    string
		status  int
		message string
	}{
		{"session expired", SessionExpired("gone"), CodeSessionExpired, http.StatusUnauthorized, "gone"},
		{"denied", AuthorizationDenied("no", http.StatusForbidden), CodeAuthorizationDenied, http.StatusForbidden, "no"},
		{"wrapped", fmt.Errorf("x: %w", RequestFailed("bad", 400)), CodeRequestFailed, 400, "bad"},
		{"plain", errors.New("plain"), "", 0, "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, Kind(tt.err))
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
			require.Equal(t, tt.message, Message(tt.err))
		})
	}
}
