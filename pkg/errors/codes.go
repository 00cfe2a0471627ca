package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeUnknown            ErrorCode = "COMMON_000"
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeMessagingError     ErrorCode = "COMMON_014"
)

// Simulation Module Error Codes
const (
	ErrCodeSimulationNotFound   ErrorCode = "SIM_001"
	ErrCodeSimulationIncomplete ErrorCode = "SIM_002"
	ErrCodeSimulationCorrupt    ErrorCode = "SIM_003"
)

// Projection Module Error Codes
const (
	ErrCodeProjectionFailed ErrorCode = "PRJ_001"
	ErrCodeProjectionStale  ErrorCode = "PRJ_002"
	ErrCodeSnapshotInvalid  ErrorCode = "PRJ_003"
)

// Short aliases used throughout the codebase.
const (
	CodeUnknown      = ErrCodeUnknown
	CodeOK           = ErrorCode("OK")
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeUnauthorized = ErrCodeUnauthorized
	CodeForbidden    = ErrCodeForbidden
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeValidation   = ErrCodeValidation

	CodeSimulationNotFound = ErrCodeSimulationNotFound
	CodeProjectionFailed   = ErrCodeProjectionFailed
)

// HTTPStatus maps an ErrorCode to the HTTP status code a handler should emit.
// Unmapped codes fall back to 500.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeSnapshotInvalid:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound, ErrCodeSimulationNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	case ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
