package response

import (
	"errors"
	"net/http"

	apperrors "github.com/datalake/server/internal/shared/errors"
	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON envelope of every error response.
type ErrorBody = apperrors.ErrorResponse

// Error sends an error response with the given status code and code.
func Error(c *gin.Context, status int, code, message string) {
	AppError(c, apperrors.NewAppError(code, message, status, nil))
}

// AppError aborts the request with err rendered as the error envelope.
func AppError(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.StatusCode, err.ToResponse())
}

// BadRequest sends a 400 Bad Request response.
func BadRequest(c *gin.Context, message string) {
	AppError(c, apperrors.BadRequest(message))
}

// Validation sends a 422 response for request binding failures.
func Validation(c *gin.Context, err error) {
	AppError(c, apperrors.ValidationError(err.Error()))
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context, message string) {
	AppError(c, apperrors.Unauthorized(message))
}

// Forbidden sends a 403 Forbidden response.
func Forbidden(c *gin.Context, message string) {
	AppError(c, apperrors.Forbidden(message))
}

// NotFound sends a 404 Not Found response.
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "not found"
	}
	AppError(c, apperrors.NewAppError("NOT_FOUND", message, http.StatusNotFound, apperrors.ErrNotFound))
}

// InternalError sends a 500 Internal Server Error response.
func InternalError(c *gin.Context, message string) {
	AppError(c, apperrors.Internal(message, nil))
}

// ErrorMapping maps domain errors to HTTP status codes.
type ErrorMapping struct {
	Err     error
	Status  int
	Code    string
	Message string
}

// HandleError handles an error using the provided mappings.
// Returns true if the error was handled, false otherwise.
func HandleError(c *gin.Context, err error, mappings []ErrorMapping) bool {
	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			msg := m.Message
			if msg == "" {
				msg = m.Err.Error()
			}
			Error(c, m.Status, m.Code, msg)
			return true
		}
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		AppError(c, appErr)
		return true
	}
	if status := apperrors.GetStatusCode(err); status != http.StatusInternalServerError {
		Error(c, status, apperrors.Code(err), err.Error())
		return true
	}
	return false
}

// HandleErrorWithDefault handles an error with a default fallback.
// Unmapped errors are attached to the context so the access log records them.
func HandleErrorWithDefault(c *gin.Context, err error, mappings []ErrorMapping) {
	if !HandleError(c, err, mappings) {
		_ = c.Error(err)
		AppError(c, apperrors.Internal("", err))
	}
}
