// session.go
package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const (
	sessionName    = "catalog_session"
	sessionUserKey = "user"
	ctxUserID      = "userID"
)

// Sessions guarda la sesión en una cookie firmada con secret.
func Sessions(secret string) gin.HandlerFunc {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, MaxAge: 7 * 24 * 3600})
	return sessions.Sessions(sessionName, store)
}

// SessionUserID devuelve el id guardado en la sesión, o "".
func SessionUserID(c *gin.Context) string {
	id, _ := sessions.Default(c).Get(sessionUserKey).(string)
	return id
}

func SetSessionUser(c *gin.Context, userID string) error {
	s := sessions.Default(c)
	s.Set(sessionUserKey, userID)
	return s.Save()
}

func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	return s.Save()
}

// UserID es el usuario de la sesión que RequireSession dejó en el contexto.
func UserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// SameUser compara el usuario de la sesión con el userId que manda el cliente.
func SameUser(c *gin.Context, clientUserID string) bool {
	id := UserID(c)
	return id != "" && id == clientUserID
}
