package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopsphere/shopsphere-backend/internal/middleware"
	"github.com/shopsphere/shopsphere-backend/internal/models"
)

// GetInvoice handles POST /order/invoice: a priced and taxed preview of the
// caller's current cart, with no side effects.
func (h *Handlers) GetInvoice(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	invoice, err := h.invoices.Project(c.Request.Context(), user.Cart)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, "Invoice generated", invoice)
}

// CreateOrder handles POST /order/create
func (h *Handlers) CreateOrder(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	result, err := h.orders.Create(c.Request.Context(), user.Email)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Order created", result)
}

// ProcessOrder handles PUT /order/process
func (h *Handlers) ProcessOrder(c *gin.Context) {
	var req models.ProcessOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orders.Process(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, "Order processed", order)
}

// CancelOrder handles PUT /order/:id/cancel
func (h *Handlers) CancelOrder(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	order, err := h.orders.Cancel(c.Request.Context(), user.Email, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, "Order cancelled", order)
}

type pagedOrders struct {
	Orders []models.Order `json:"orders"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// GetOrders handles GET /order
func (h *Handlers) GetOrders(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	limit, offset := pagination(c)

	orders, total, err := h.orders.GetOrders(c.Request.Context(), user.Email, limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, "Orders retrieved", pagedOrders{
		Orders: orders,
		Total:  total,
		Limit:  effectiveLimit(limit),
		Offset: offset,
	})
}

// AdminGetOrders handles GET /order/admin
func (h *Handlers) AdminGetOrders(c *gin.Context) {
	limit, offset := pagination(c)

	orders, total, err := h.orders.AdminGetOrders(c.Request.Context(), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, "Orders retrieved", pagedOrders{
		Orders: orders,
		Total:  total,
		Limit:  effectiveLimit(limit),
		Offset: offset,
	})
}

func effectiveLimit(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > 100:
		return 100
	default:
		return limit
	}
}
