// Package apperrors defines the error codes returned in sam-ui json error responses.
package apperrors

type ErrorCode string

const (
	ErrCodeInternalError     ErrorCode = "internal_error"
	ErrCodeRateLimitExceeded ErrorCode = "rate_limit_exceeded"
	ErrCodeReportNotFound    ErrorCode = "report_not_found"
)
