package middleware

import (
	"fmt"
	"runtime/debug"

	apperrors "github.com/datalake/server/internal/shared/errors"
	"github.com/datalake/server/internal/shared/logger"
	"github.com/datalake/server/internal/shared/response"
	"github.com/gin-gonic/gin"
)

// Recovery returns a middleware that recovers from panics.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.New(nil)
	}

	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("Panic recovered",
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"request_id", c.GetString(RequestIDKey),
					"stack", string(debug.Stack()),
				)

				response.AppError(c, apperrors.Internal("internal server error", fmt.Errorf("panic: %v", err)))
			}
		}()
		c.Next()
	}
}
