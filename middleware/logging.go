package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs every request with the acting user, path and
// duration. Anonymous requests are logged as such.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		user := "anonymous"
		if id, exists := c.Get(ContextUserIDKey); exists {
			if idStr, ok := id.(string); ok && idStr != "" {
				user = idStr
			}
		}

		log.Printf("User: %s - %s %s - %d (%s)",
			user,
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start).Round(time.Millisecond),
		)
	}
}
