package handlers

import (
	"errors"
	"net/http"

	"ventas/internal/auth"
	"ventas/internal/scheduler"
	"ventas/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SaleHandler handles the dashboard and the sale CRUD forms.
type SaleHandler struct {
	sales   *service.SaleService
	users   *service.UserService
	checker *scheduler.Scheduler
	logger  *zap.Logger
}

// NewSaleHandler returns a new SaleHandler.
func NewSaleHandler(sales *service.SaleService, users *service.UserService, checker *scheduler.Scheduler, logger *zap.Logger) *SaleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleHandler{sales: sales, users: users, checker: checker, logger: logger}
}

// Dashboard renders the full listing with the fresh revenue total.
func (h *SaleHandler) Dashboard(c *gin.Context) {
	list, total, err := h.sales.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list sales", zap.Error(err))
		c.String(http.StatusInternalServerError, "error interno")
		return
	}
	username := ""
	if u, err := h.users.GetByID(c.Request.Context(), auth.UserIDFromContext(c)); err == nil {
		username = u.Username
	}
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":    "Ventas",
		"Flash":    takeFlash(c),
		"Username": username,
		"Sales":    list,
		"Total":    total,
	})
}

// NewForm renders an empty sale form.
func (h *SaleHandler) NewForm(c *gin.Context) {
	c.HTML(http.StatusOK, "nueva_venta.html", gin.H{
		"Title": "Nueva venta",
		"Flash": takeFlash(c),
		"Form":  service.SaleInput{},
	})
}

// Create validates and inserts a new sale. A validation failure re-renders
// the form with the message and the submitted values.
func (h *SaleHandler) Create(c *gin.Context) {
	in := saleInputFromForm(c)
	_, err := h.sales.Create(c.Request.Context(), in)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.HTML(http.StatusBadRequest, "nueva_venta.html", gin.H{
				"Title": "Nueva venta",
				"Flash": verr.Msg,
				"Form":  in,
			})
			return
		}
		h.logger.Error("create sale", zap.Error(err))
		c.String(http.StatusInternalServerError, "error interno")
		return
	}
	setFlash(c, "Venta registrada con éxito")
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// EditForm renders the sale form prefilled with the stored record.
func (h *SaleHandler) EditForm(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sale, err := h.sales.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.String(http.StatusNotFound, "registro no encontrado")
			return
		}
		h.logger.Error("get sale", zap.Error(err))
		c.String(http.StatusInternalServerError, "error interno")
		return
	}
	c.HTML(http.StatusOK, "editar_venta.html", gin.H{
		"Title": "Editar venta",
		"Flash": takeFlash(c),
		"ID":    id,
		"Form":  saleInputFromSale(sale),
	})
}

// Update overwrites every field of the record with the submitted form.
func (h *SaleHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	in := saleInputFromForm(c)
	_, err := h.sales.Update(c.Request.Context(), id, in)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			c.HTML(http.StatusBadRequest, "editar_venta.html", gin.H{
				"Title": "Editar venta",
				"Flash": verr.Msg,
				"ID":    id,
				"Form":  in,
			})
		case errors.Is(err, service.ErrNotFound):
			c.String(http.StatusNotFound, "registro no encontrado")
		default:
			h.logger.Error("update sale", zap.Error(err))
			c.String(http.StatusInternalServerError, "error interno")
		}
		return
	}
	setFlash(c, "Venta actualizada con éxito")
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Delete removes the record. Registered for POST only.
func (h *SaleHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.sales.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.String(http.StatusNotFound, "registro no encontrado")
			return
		}
		h.logger.Error("delete sale", zap.Error(err))
		c.String(http.StatusInternalServerError, "error interno")
		return
	}
	setFlash(c, "Venta eliminada")
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// TestAlert runs the expiration check immediately. Re-sending the same
// day's reminder is expected here.
func (h *SaleHandler) TestAlert(c *gin.Context) {
	if err := h.checker.CheckNow(c.Request.Context()); err != nil {
		h.logger.Error("manual expiration check", zap.Error(err))
		c.String(http.StatusInternalServerError, "error interno")
		return
	}
	setFlash(c, "Se envió alerta de prueba a Telegram")
	c.Redirect(http.StatusSeeOther, "/dashboard")
}
