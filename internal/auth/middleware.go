package auth

import (
	"context"
	"net/http"

	dom "ventas/internal/domain"

	"github.com/gin-gonic/gin"
)

const sessionCookieName = "session_id"

const contextKeyUserID = "user_id"

// UserGetter loads an account by id. Satisfied by service.UserService.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (dom.User, error)
}

// UserIDFromContext returns the current account ID set by RequireSession. 0 if not set.
func UserIDFromContext(c *gin.Context) int64 {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return 0
	}
	id, ok := v.(int64)
	if !ok {
		return 0
	}
	return id
}

// RequireSession returns a middleware that checks for a valid session cookie
// and sets the current account ID in context. If missing or invalid, the
// browser is redirected to the login form.
func RequireSession(sessions *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(sessionCookieName)
		if err != nil || sessionID == "" {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		userID, ok := sessions.GetUserID(c.Request.Context(), sessionID)
		if !ok {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}

// RequireAdmin returns a middleware that loads the current account and
// rejects non-admins with a flash and a redirect to the dashboard.
// Must run after RequireSession.
func RequireAdmin(users UserGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := users.GetByID(c.Request.Context(), UserIDFromContext(c))
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		if !u.IsAdmin {
			c.SetCookie("flash", "No tienes permisos para crear usuarios", 60, "/", "", false, true)
			c.Redirect(http.StatusSeeOther, "/dashboard")
			c.Abort()
			return
		}
		c.Next()
	}
}
