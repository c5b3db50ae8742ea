package handlers

import (
	"errors"
	"net/http"

	"ventas/internal/auth"
	"ventas/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionCookieName = "session_id"

// AuthHandler handles the login, logout, registration and password forms.
type AuthHandler struct {
	sessions *auth.Store
	users    *service.UserService
	logger   *zap.Logger
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(sessions *auth.Store, users *service.UserService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{sessions: sessions, users: users, logger: logger}
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"Title": "Iniciar sesión", "Flash": takeFlash(c)})
}

// Login validates credentials and establishes a session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	user, err := h.users.ValidateCredentials(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.HTML(http.StatusUnauthorized, "login.html", gin.H{
				"Title": "Iniciar sesión",
				"Flash": "Usuario o contraseña incorrectos",
			})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "error interno")
		return
	}
	sessionID, err := h.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("create session", zap.Error(err))
		c.String(http.StatusInternalServerError, "error interno")
		return
	}
	c.SetCookie(sessionCookieName, sessionID, int(h.sessions.TTL().Seconds()), "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout invalidates the session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie(sessionCookieName)
	if err == nil && sessionID != "" {
		_ = h.sessions.Delete(c.Request.Context(), sessionID)
	}
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/login")
}

// RegisterForm renders the admin-only account creation page.
func (h *AuthHandler) RegisterForm(c *gin.Context) {
	c.HTML(http.StatusOK, "registro.html", gin.H{"Title": "Registrar usuario", "Flash": takeFlash(c)})
}

// Register creates a new non-admin account.
func (h *AuthHandler) Register(c *gin.Context) {
	_, err := h.users.Register(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			h.renderRegister(c, "Usuario y contraseña son obligatorios")
		case errors.Is(err, service.ErrUsernameTaken):
			h.renderRegister(c, "Ese usuario ya existe")
		default:
			h.logger.Error("register failed", zap.Error(err))
			c.String(http.StatusInternalServerError, "error interno")
		}
		return
	}
	setFlash(c, "Usuario creado con éxito")
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *AuthHandler) renderRegister(c *gin.Context, msg string) {
	c.HTML(http.StatusBadRequest, "registro.html", gin.H{"Title": "Registrar usuario", "Flash": msg})
}

// ChangePasswordForm renders the password change page.
func (h *AuthHandler) ChangePasswordForm(c *gin.Context) {
	c.HTML(http.StatusOK, "cambiar_password.html", gin.H{"Title": "Cambiar contraseña", "Flash": takeFlash(c)})
}

// ChangePassword verifies the current password and stores a new hash.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	err := h.users.ChangePassword(c.Request.Context(), userID,
		c.PostForm("actual"), c.PostForm("nueva"), c.PostForm("confirmar"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			h.renderChangePassword(c, "La contraseña actual es incorrecta")
		case errors.Is(err, service.ErrPasswordRequired):
			h.renderChangePassword(c, "La nueva contraseña es obligatoria")
		case errors.Is(err, service.ErrPasswordMismatch):
			h.renderChangePassword(c, "La nueva contraseña y la confirmación no coinciden")
		default:
			h.logger.Error("change password failed", zap.Error(err))
			c.String(http.StatusInternalServerError, "error interno")
		}
		return
	}
	setFlash(c, "Contraseña cambiada con éxito")
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *AuthHandler) renderChangePassword(c *gin.Context, msg string) {
	c.HTML(http.StatusBadRequest, "cambiar_password.html", gin.H{"Title": "Cambiar contraseña", "Flash": msg})
}
