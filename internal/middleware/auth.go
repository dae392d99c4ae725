package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shopsphere/shopsphere-backend/internal/auth"
	"github.com/shopsphere/shopsphere-backend/internal/models"
	"github.com/shopsphere/shopsphere-backend/internal/repository"
)

const userContextKey = "currentUser"

// Authenticate verifies the bearer token and loads the matching local user
// into the request context. The three failure modes keep their distinct
// messages so clients can tell a missing token from an unknown account.
func Authenticate(verifier auth.TokenVerifier, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abortUnauthorized(c, "No token provided")
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}

		user, err := users.GetByEmail(c.Request.Context(), strings.ToLower(identity.Email))
		if err != nil {
			abortUnauthorized(c, "User not found")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireAdmin rejects authenticated non-admin callers. Must run after
// Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":  false,
				"message": "Forbidden",
				"data":    nil,
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by Authenticate.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  false,
		"message": message,
		"data":    nil,
	})
}
