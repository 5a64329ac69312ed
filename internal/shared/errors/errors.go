// Package errors holds the cross-cutting error kinds shared by every HTTP
// surface and the JSON envelope they are rendered in.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels for errors that are not owned by a single module.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrConflict     = errors.New("resource conflict")
	ErrValidation   = errors.New("validation failed")
	ErrTooLarge     = errors.New("payload too large")
	ErrRateLimited  = errors.New("rate limited")
)

type kind struct {
	err    error
	status int
	code   string
}

// kinds is consulted in order by GetStatusCode and Code.
var kinds = []kind{
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrBadRequest, http.StatusBadRequest, "BAD_REQUEST"},
	{ErrConflict, http.StatusConflict, "CONFLICT"},
	{ErrValidation, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
	{ErrTooLarge, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
	{ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
}

const internalCode = "INTERNAL_ERROR"

// AppError is an error that knows how it is rendered over HTTP.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ToResponse renders the error body.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: e.Code, Message: e.Message}}
}

// ErrorResponse is the JSON envelope of every error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail is the body of ErrorResponse.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewAppError builds an AppError with an explicit code and status.
func NewAppError(code, message string, statusCode int, err error) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusCode, Err: err}
}

func fromKind(sentinel error, message, fallback string) *AppError {
	if message == "" {
		message = fallback
	}
	for _, k := range kinds {
		if k.err == sentinel {
			return NewAppError(k.code, message, k.status, sentinel)
		}
	}
	return NewAppError(internalCode, message, http.StatusInternalServerError, sentinel)
}

// Unauthorized is returned for missing or invalid credentials.
func Unauthorized(message string) *AppError {
	return fromKind(ErrUnauthorized, message, "authentication required")
}

// Forbidden is returned when the caller lacks a role.
func Forbidden(message string) *AppError {
	return fromKind(ErrForbidden, message, "access denied")
}

func BadRequest(message string) *AppError {
	return fromKind(ErrBadRequest, message, "bad request")
}

// ValidationError reports a request body or query that failed binding.
func ValidationError(message string) *AppError {
	return fromKind(ErrValidation, message, "validation failed")
}

func TooLarge(message string) *AppError {
	return fromKind(ErrTooLarge, message, "payload too large")
}

func RateLimited(message string) *AppError {
	return fromKind(ErrRateLimited, message, "too many requests")
}

// Internal hides err from the caller; it stays reachable through Unwrap for
// logging.
func Internal(message string, err error) *AppError {
	if message == "" {
		message = "internal error"
	}
	return NewAppError(internalCode, message, http.StatusInternalServerError, err)
}

// GetStatusCode returns the HTTP status for err. Errors of no known kind
// are 500.
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}

// Code returns the machine readable code for err.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.code
		}
	}
	return internalCode
}
