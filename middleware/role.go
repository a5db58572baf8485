package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireElevated gates routes that act on other users' flows. Must run after
// AuthMiddleware.
func RequireElevated() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role != "admin" && role != "operator" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}
		c.Next()
	}
}
