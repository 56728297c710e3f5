package dto

import "net/http"

// API error codes. Every code is ERR_<CATEGORY>[_<DETAIL>].
const (
	ErrCodeInternal = "ERR_INTERNAL"

	// ErrCodeValidation covers rejected archives (unknown type, missing
	// dependency, unsupported format) as well as invalid request bodies.
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"

	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
	ErrCodeInvalidState  = "ERR_INVALID_STATE"
	// ErrCodeDuplicateRequest rejects a repeated Idempotency-Key
	ErrCodeDuplicateRequest = "ERR_DUPLICATE_REQUEST"

	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge rejects bodies over http.max_body_size
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"

	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// errorCode ties an API code to its status and, when one exists, the
// shared.DomainError code it is derived from.
type errorCode struct {
	code   string
	status int
	domain string
}

var errorCodes = []errorCode{
	{ErrCodeInternal, http.StatusInternalServerError, "INTERNAL_ERROR"},
	{ErrCodeValidation, http.StatusBadRequest, "VALIDATION_ERROR"},
	{ErrCodeValidationRequired, http.StatusBadRequest, ""},
	{ErrCodeValidationFormat, http.StatusBadRequest, ""},
	{ErrCodeUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{ErrCodeForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrCodeTokenExpired, http.StatusUnauthorized, ""},
	{ErrCodeTokenInvalid, http.StatusUnauthorized, ""},
	{ErrCodeNotFound, http.StatusNotFound, "NOT_FOUND"},
	{ErrCodeAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
	{ErrCodeConflict, http.StatusConflict, "CONFLICT"},
	{ErrCodeInvalidState, http.StatusConflict, "INVALID_STATE"},
	{ErrCodeDuplicateRequest, http.StatusConflict, ""},
	{ErrCodeBadRequest, http.StatusBadRequest, "BAD_REQUEST"},
	{ErrCodeInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	{ErrCodeInvalidJSON, http.StatusBadRequest, ""},
	{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge, ""},
	{ErrCodeRateLimited, http.StatusTooManyRequests, ""},
}

var (
	statusByCode = make(map[string]int, len(errorCodes))
	codeByDomain = make(map[string]string, len(errorCodes))
)

func init() {
	for _, e := range errorCodes {
		statusByCode[e.code] = e.status
		if e.domain != "" {
			codeByDomain[e.domain] = e.code
		}
	}
}

// GetHTTPStatus returns the status of an API code, 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode maps a domain error code to its API code.
// API codes and unknown codes are returned unchanged.
func NormalizeErrorCode(code string) string {
	if mapped, ok := codeByDomain[code]; ok {
		return mapped
	}
	return code
}
