package middleware

import (
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/datalake/server/internal/shared/errors"
	"github.com/datalake/server/internal/shared/requestctx"
	"github.com/datalake/server/internal/shared/response"
	"github.com/gin-gonic/gin"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// PrincipalKey is the gin context key for the authenticated caller.
	PrincipalKey = "principal"
)

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*requestctx.Principal, error)
}

// Auth returns a middleware that validates bearer tokens.
// If optional is true, missing or invalid tokens do not abort the request.
func Auth(validator TokenValidator, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			if !optional {
				c.Header("WWW-Authenticate", "Bearer")
				response.AppError(c, apperrors.Unauthorized("Could not validate credentials"))
				return
			}
			c.Next()
			return
		}

		principal, err := validator.ValidateToken(token)
		if err != nil {
			if !optional {
				c.Header("WWW-Authenticate", "Bearer")
				response.AppError(c, apperrors.NewAppError("INVALID_TOKEN", "Invalid or expired token",
					http.StatusUnauthorized, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)))
				return
			}
			c.Next()
			return
		}

		c.Set(PrincipalKey, *principal)
		c.Request = c.Request.WithContext(requestctx.WithPrincipal(c.Request.Context(), *principal))

		c.Next()
	}
}

// RequireAuth returns a middleware that requires a valid token.
func RequireAuth(validator TokenValidator) gin.HandlerFunc {
	return Auth(validator, false)
}

// RequireRole aborts with 403 unless the caller has one of the roles.
// It must run after RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			response.AppError(c, apperrors.Unauthorized(""))
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		response.AppError(c, apperrors.Forbidden("insufficient role"))
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if strings.HasPrefix(authHeader, BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
	}
	return ""
}

// GetPrincipal returns the authenticated caller from the gin context.
func GetPrincipal(c *gin.Context) (requestctx.Principal, bool) {
	if val, exists := c.Get(PrincipalKey); exists {
		if p, ok := val.(requestctx.Principal); ok {
			return p, true
		}
	}
	return requestctx.Principal{}, false
}

// GetUserID returns the authenticated user id, or 0.
func GetUserID(c *gin.Context) uint {
	p, _ := GetPrincipal(c)
	return p.UserID
}
