// auth_middleware.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"catalog-service/internal/dto"
	"catalog-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*service.AuthUser, error)
}

// BearerSession abre la sesión a partir de un token del servicio de auth.
// Sin header Authorization, o con sesión ya abierta, no hace nada.
func BearerSession(auth TokenValidator, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || SessionUserID(c) != "" {
			c.Next()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		user, err := auth.ValidateToken(c.Request.Context(), token)
		if err != nil {
			log.Debug().Err(err).Msg("rejected bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.MessageResponse{Message: "invalid or expired token"})
			return
		}

		if err := SetSessionUser(c, user.ID); err != nil {
			log.Error().Err(err).Msg("could not save session")
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.MessageResponse{Message: "could not start session"})
			return
		}
		log.Info().Str("user_id", user.ID).Str("login", user.Login).Msg("session opened")
		c.Next()
	}
}
