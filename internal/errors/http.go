package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/go-chi/render"
)

// APIError is the structured error body returned by the HTTP surface.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// NewAPIError creates an APIError with the given parameters.
func NewAPIError(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// Predefined errors for the request surface.
var (
	ErrInvalidRequest    = NewAPIError(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrPayloadTooLarge   = NewAPIError(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
	ErrRateLimitExceeded = NewAPIError(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")
	ErrInternalServer    = NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// httpStatusByKind maps pipeline error kinds onto HTTP status codes.
// Insufficient or over-rejected data is the client's payload problem.
var httpStatusByKind = map[Kind]int{
	KindInsufficientData:    http.StatusUnprocessableEntity,
	KindInvalidDataFormat:   http.StatusUnprocessableEntity,
	KindUnsupportedDataType: http.StatusBadRequest,
	KindConfigurationError:  http.StatusBadRequest,
}

// FromPipeline converts a classified pipeline error into an APIError. Plain
// errors map to an opaque internal server error so nothing internal leaks.
func FromPipeline(err error) *APIError {
	var perr *Error
	if stderrors.As(err, &perr) {
		status, known := httpStatusByKind[perr.Kind]
		if !known {
			status = http.StatusInternalServerError
		}
		return NewAPIError(status, string(perr.Kind), perr.Message)
	}
	return ErrInternalServer
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse wraps an APIError in the standard envelope.
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{Success: false, Error: err}
}

// Render implements the render.Renderer interface.
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}
