package app

import (
	"fmt"
	"net/http"
	"time"

	"ventas/internal/auth"
	"ventas/internal/config"
	"ventas/internal/handlers"
	"ventas/internal/scheduler"
	"ventas/internal/service"
	"ventas/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newRouter(cfg config.Config, rdb *redis.Client, users *service.UserService,
	sales *service.SaleService, sched *scheduler.Scheduler, logger *zap.Logger) (*gin.Engine, error) {

	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	Setup(r, cfg, rdb, users, sales, sched, logger)
	return r, nil
}

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, rdb *redis.Client, users *service.UserService,
	sales *service.SaleService, sched *scheduler.Scheduler, logger *zap.Logger) {

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": cfg.App.Env, "version": cfg.App.Version})
	})

	sessions := auth.NewStore(rdb, cfg.Session.TTL.Duration())
	authHandler := handlers.NewAuthHandler(sessions, users, logger)
	saleHandler := handlers.NewSaleHandler(sales, users, sched, logger)

	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusSeeOther, "/login") })
	r.GET("/login", authHandler.LoginForm)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	protected := r.Group("", auth.RequireSession(sessions))
	protected.GET("/dashboard", saleHandler.Dashboard)
	protected.GET("/nueva", saleHandler.NewForm)
	protected.POST("/nueva", saleHandler.Create)
	protected.GET("/editar/:id", saleHandler.EditForm)
	protected.POST("/editar/:id", saleHandler.Update)
	// Delete is state-changing: POST only, a GET gets a 404 from the router.
	protected.POST("/eliminar/:id", saleHandler.Delete)
	protected.GET("/cambiar-password", authHandler.ChangePasswordForm)
	protected.POST("/cambiar-password", authHandler.ChangePassword)
	protected.GET("/test-alerta", saleHandler.TestAlert)

	admin := protected.Group("", auth.RequireAdmin(users))
	admin.GET("/registro", authHandler.RegisterForm)
	admin.POST("/registro", authHandler.Register)
}

// requestLogger logs one line per request with a generated request id.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Next()
		logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}
