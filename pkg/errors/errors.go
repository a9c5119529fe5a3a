package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeConflict         = "CONFLICT"
	CodeInternal         = "INTERNAL_ERROR"
	CodeTimeout          = "TIMEOUT"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeInvalidInput     = "INVALID_INPUT"
	CodePaymentNotReady  = "PAYMENT_NOT_READY"
	CodeInvalidSignature = "INVALID_SIGNATURE"
	CodeRateLimited      = "RATE_LIMITED"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NotFoundWithID(resource, id string) *AppError {
	return NotFound(resource).WithDetails(map[string]any{
		"resource": resource,
		"id":       id,
	})
}

// Validation reports a malformed request. Clients of this API treat every
// validation failure as 400.
func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden)
}

// Conflict is a retryable contention error (another request holds the resource).
func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

// DateConflict rejects a request whose date range collides with stored state.
// It is a client error, not a retryable one.
func DateConflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusBadRequest)
}

// PaymentNotReady means the referenced payment is absent or not yet settled.
func PaymentNotReady(message string) *AppError {
	return New(CodePaymentNotReady, message, http.StatusNotFound)
}

// InvalidSignature is terminal: the payment provider must not retry it.
func InvalidSignature(err error) *AppError {
	return Wrap(err, CodeInvalidSignature, "Webhook signature verification failed", http.StatusBadRequest)
}

func RateLimited() *AppError {
	return New(CodeRateLimited, "Rate limit exceeded", http.StatusTooManyRequests)
}

func Internal(message string, err error) *AppError {
	return Wrap(err, CodeInternal, message, http.StatusInternalServerError)
}

func Timeout(message string) *AppError {
	return New(CodeTimeout, message, http.StatusGatewayTimeout)
}

func Unavailable(service string) *AppError {
	return New(CodeUnavailable, fmt.Sprintf("%s is temporarily unavailable", service), http.StatusServiceUnavailable)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError unwraps err into an AppError, falling back to a generic 500.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
