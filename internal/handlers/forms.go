package handlers

import (
	"net/http"
	"strconv"

	dom "ventas/internal/domain"
	"ventas/internal/service"

	"github.com/gin-gonic/gin"
)

// saleInputFromForm collects the raw sale form fields. Field names match
// the templates; validation happens in the service.
func saleInputFromForm(c *gin.Context) service.SaleInput {
	return service.SaleInput{
		ClientName:    c.PostForm("nombre_cliente"),
		ClientPhone:   c.PostForm("numero_cliente"),
		ClientEmail:   c.PostForm("correo_cliente"),
		PaymentMethod: c.PostForm("medio_pago"),
		PaymentStatus: c.PostForm("estado_pago"),
		Service:       c.PostForm("servicio"),
		AccountLabel:  c.PostForm("cuenta_asociada"),
		AccountSecret: c.PostForm("contrasena_cuenta"),
		Amount:        c.PostForm("dinero"),
		StartDate:     c.PostForm("fecha_inicio"),
		EndDate:       c.PostForm("fecha_fin"),
		PayingAdmin:   c.PostForm("admin_pago"),
	}
}

// saleInputFromSale turns a stored record back into form values for the
// edit form prefill.
func saleInputFromSale(s dom.Sale) service.SaleInput {
	amount := ""
	if s.Amount != 0 {
		amount = strconv.FormatFloat(s.Amount, 'f', -1, 64)
	}
	return service.SaleInput{
		ClientName:    s.ClientName,
		ClientPhone:   s.ClientPhone,
		ClientEmail:   s.ClientEmail,
		PaymentMethod: s.PaymentMethod,
		PaymentStatus: s.PaymentStatus,
		Service:       s.Service,
		AccountLabel:  s.AccountLabel,
		AccountSecret: s.AccountSecret,
		Amount:        amount,
		StartDate:     s.StartDate.Format("2006-01-02"),
		EndDate:       s.EndDate.Format("2006-01-02"),
		PayingAdmin:   s.PayingAdmin,
	}
}

// parseID reads the :id path param. On a malformed id it writes a 404 and
// reports false.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.String(http.StatusNotFound, "registro no encontrado")
		return 0, false
	}
	return id, true
}
