package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/models"
	"github.com/stackit-qa/stackit/backend/internal/response"
)

const identityKey = "identity"

// Authenticator resolves a session token to the caller.
type Authenticator interface {
	Authenticate(token string) (models.Identity, error)
}

// TokenFrom returns the session token from the auth cookie, falling back to
// an "Authorization: Bearer" header.
func TokenFrom(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// AuthMiddleware rejects requests without a valid session token and stores
// the caller identity on the context.
func AuthMiddleware(a Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFrom(c, cookieName)
		if token == "" {
			response.Abort(c, apperr.Unauthorized("Unauthorized"))
			return
		}

		id, err := a.Authenticate(token)
		if err != nil {
			response.Abort(c, apperr.Unauthorized("Invalid or expired token"))
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// OptionalAuth stores the caller identity when a valid token is present and
// lets the request through either way.
func OptionalAuth(a Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := TokenFrom(c, cookieName); token != "" {
			if id, err := a.Authenticate(token); err == nil {
				c.Set(identityKey, id)
			}
		}
		c.Next()
	}
}

// IdentityFrom returns the identity stored by AuthMiddleware or OptionalAuth.
func IdentityFrom(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}
