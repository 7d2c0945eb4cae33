package server

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
)

// adminSecretMiddleware gates the admin surface behind a shared secret. An
// unset secret disables the whole surface rather than leaving it open.
func adminSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		provided := c.GetHeader("X-Admin-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}
