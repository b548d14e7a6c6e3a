package errors

const (
	HttpInternalError       = "internal_error"
	HttpInvalidQueryError   = "invalid_query"
	HttpReportNotFoundError = "report_not_found"
)

// ErrorResponse is the error response body for analytics API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
