package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

// TokenAuthenticator resolves an identity token.
type TokenAuthenticator interface {
	Authenticate(token string) (*services.Identity, error)
}

// RequireAuth checks the bearer token, falling back to the token stored in
// the session cookie. Every failure gets the same 401 response.
func RequireAuth(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := auth.Authenticate(RequestToken(c))
		if err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		SetIdentity(c, identity)
		c.Next()
	}
}

// RequestToken extracts the identity token from the Authorization header or,
// when absent, from the session.
func RequestToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}

	// Sessions middleware is optional on a route.
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return ""
	}
	if token, ok := sessions.Default(c).Get(constants.SessionKeyToken).(string); ok {
		return token
	}
	return ""
}

// SetIdentity stores the authenticated caller in the request context.
func SetIdentity(c *gin.Context, identity *services.Identity) {
	c.Set(constants.ContextKeyUserID, identity.UserID)
	c.Set(constants.ContextKeyUsername, identity.Username)
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
