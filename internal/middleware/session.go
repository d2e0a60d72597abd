package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/jobhunter-dashboard/internal/session"
)

// ContextKeyUserID is the key for the signed-in user's ID in the Gin context
const ContextKeyUserID = "user_id"

// RequireSession lets requests through only while a user is signed in.
// Nothing is served until the stored session has been restored.
func RequireSession(sess session.Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch sess.State() {
		case session.StateLoading:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "Session is still loading",
			})
			return
		case session.StateUnauthenticated:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Not signed in",
			})
			return
		}

		if user := sess.User(); user != nil {
			c.Set(ContextKeyUserID, user.ID)
		}
		c.Next()
	}
}

// GetUserID extracts the signed-in user's ID from the Gin context
func GetUserID(c *gin.Context) string {
	uid, _ := c.Get(ContextKeyUserID)
	if s, ok := uid.(string); ok {
		return s
	}
	return ""
}
