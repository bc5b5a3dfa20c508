package middleware

import (
	"github.com/Philgatex/huashang-hais-app/internal/shared/apperror"

	"github.com/gin-gonic/gin"
)

// NotFound answers unknown routes with the standard error envelope instead of
// gin's plain text 404.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortWith(c, apperror.ErrNotFound, gin.H{"path": c.Request.URL.Path})
	}
}
