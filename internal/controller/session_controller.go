package controller

import (
	"context"
	"net/http"

	"catalog-service/internal/dto"
	"catalog-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type SessionController struct{}

func NewSessionController() *SessionController {
	return &SessionController{}
}

// POST /api/session: la sesión ya la abrió BearerSession, acá solo se informa.
func (ctl *SessionController) Login(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "userId": middleware.UserID(c)})
}

// DELETE /api/session
func (ctl *SessionController) Logout(c *gin.Context) {
	if err := middleware.ClearSession(c); err != nil {
		internalError(c, err, "Error while logging out. Try again.")
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Logged out."})
}

type HealthController struct {
	ping func(ctx context.Context) error
}

func NewHealthController(ping func(ctx context.Context) error) *HealthController {
	return &HealthController{ping: ping}
}

// GET /healthz
func (ctl *HealthController) Health(c *gin.Context) {
	if err := ctl.ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
