package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyMiddleware admits requests whose X-API-Key equals expected.
func APIKeyMiddleware(expected string) gin.HandlerFunc {
	want := []byte(expected)

	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")

		if key == "" || len(want) == 0 || subtle.ConstantTimeCompare([]byte(key), want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}

		c.Next()
	}
}
