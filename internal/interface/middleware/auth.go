package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/traklab/workout-tracker/internal/application"
	"github.com/traklab/workout-tracker/pkg/helpers"
)

const loginPath = "/users/login"

// resolve loads the session identity into the Gin context. Returns false
// when no valid session is attached to the request.
func resolve(c *gin.Context, auth *application.AuthService) bool {
	token, err := c.Cookie(helpers.SessionCookieName)
	if err != nil || token == "" {
		return false
	}
	sess, err := auth.CurrentUser(c.Request.Context(), token)
	if err != nil {
		return false
	}
	c.Set("userID", sess.UserID)
	c.Set("userName", sess.Username)
	c.Set("userEmail", sess.Email)
	return true
}

// RequireUser validates the session cookie against the Redis session
// record. Unauthenticated requests are redirected to the login page; this
// is a server-rendered app, not an API.
func RequireUser(auth *application.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !resolve(c, auth) {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalUser resolves the session when present and continues either way.
func OptionalUser(auth *application.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolve(c, auth)
		c.Next()
	}
}
