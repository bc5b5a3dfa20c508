package middleware

import (
	"github.com/Philgatex/huashang-hais-app/internal/shared/apperror"

	"github.com/gin-gonic/gin"
)

// ExtractUserID re-publishes the authenticated user id under
// "user_id_validated" as a guaranteed non-empty string.
func ExtractUserID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, exists := ctx.Get(ContextUserID)
		if !exists {
			abortWith(ctx, apperror.ErrUnauthorized, nil)
			return
		}

		userIDStr, ok := userID.(string)
		if !ok || userIDStr == "" {
			abortWith(ctx, apperror.ErrUnauthorized, "invalid user_id format")
			return
		}

		ctx.Set("user_id_validated", userIDStr)
		ctx.Next()
	}
}
