// login_required.go
package middleware

import (
	"net/http"

	"catalog-service/internal/dto"

	"github.com/gin-gonic/gin"
)

const LoginFirstMessage = "Please login first."

// RequireSession corta el pedido si no hay usuario en la sesión.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := SessionUserID(c)
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.MessageResponse{Message: LoginFirstMessage})
			return
		}
		c.Set(ctxUserID, id)
		c.Next()
	}
}
