package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := map[string]int{
		ErrCodeInternal:         http.StatusInternalServerError,
		ErrCodeValidation:       http.StatusBadRequest,
		ErrCodeValidationFormat: http.StatusBadRequest,
		ErrCodeUnauthorized:     http.StatusUnauthorized,
		ErrCodeTokenExpired:     http.StatusUnauthorized,
		ErrCodeForbidden:        http.StatusForbidden,
		ErrCodeNotFound:         http.StatusNotFound,
		ErrCodeDuplicateRequest: http.StatusConflict,
		ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
		ErrCodeRateLimited:      http.StatusTooManyRequests,
		"ERR_SOMETHING_NEW":     http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, GetHTTPStatus(code), code)
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	// every sentinel in domain/shared must map onto an API code
	for domain, want := range map[string]string{
		"NOT_FOUND":      ErrCodeNotFound,
		"ALREADY_EXISTS": ErrCodeAlreadyExists,
		"INVALID_INPUT":  ErrCodeInvalidInput,
		"CONFLICT":       ErrCodeConflict,
		"UNAUTHORIZED":   ErrCodeUnauthorized,
		"FORBIDDEN":      ErrCodeForbidden,
		"INVALID_STATE":  ErrCodeInvalidState,
	} {
		assert.Equal(t, want, NormalizeErrorCode(domain), domain)
	}

	assert.Equal(t, ErrCodeValidation, NormalizeErrorCode(ErrCodeValidation))
	assert.Equal(t, "CUSTOM_ERROR", NormalizeErrorCode("CUSTOM_ERROR"))
}

func TestErrorCodeTable(t *testing.T) {
	seen := map[string]bool{}
	for _, e := range errorCodes {
		assert.True(t, strings.HasPrefix(e.code, "ERR_"), e.code)
		assert.False(t, seen[e.code], "duplicate %s", e.code)
		seen[e.code] = true
		assert.GreaterOrEqual(t, e.status, 400, e.code)
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("NOT_FOUND", "Resource not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code) // Should be normalized
	assert.Equal(t, "Resource not found", resp.Error.Message)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "data", Message: "data failed required"},
		{Field: "format", Message: "format failed oneof"},
	}

	resp := NewValidationErrorResponse("Request validation failed", "req-789", details)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "format", resp.Error.Details[1].Field)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, `"nope" is not recognized data type`, "req-test-123")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.False(t, decoded.Success)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeValidation, decoded.Error.Code)
	assert.Equal(t, `"nope" is not recognized data type`, decoded.Error.Message)
	assert.Equal(t, "req-test-123", decoded.Error.RequestID)
}

func TestErrorResponseTimestamp(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponse(ErrCodeInternal, "Server error")
	after := time.Now()

	assert.False(t, resp.Error.Timestamp.Before(before))
	assert.False(t, resp.Error.Timestamp.After(after))
}

func TestNewListResponse(t *testing.T) {
	resp := NewListResponse([]string{"a", "b"}, 2, 20)

	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Total)
	assert.Equal(t, 20, resp.Meta.Limit)
}
