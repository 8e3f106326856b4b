package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"anonmsg/internal/session" // Session store

	"github.com/gin-gonic/gin" // Gin web framework
)

// SessionAuthMiddleware resolves the bearer token to a user id via the
// session store and stores it in the request context
func SessionAuthMiddleware(sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ") // Extract the opaque session token
		userID, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			// Unknown, expired or revoked session
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set("userID", userID)      // Store userID in context
		c.Set("sessionToken", token) // Keep the raw token for logout
		c.Next()                     // Proceed to the next handler
	}
}
