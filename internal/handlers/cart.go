package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopsphere/shopsphere-backend/internal/middleware"
	"github.com/shopsphere/shopsphere-backend/internal/models"
)

// GetCart handles GET /cart
func (h *Handlers) GetCart(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	lines, err := h.carts.Get(c.Request.Context(), user.Email)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, "Cart retrieved", lines)
}

type cartMutationRequest struct {
	Items []models.CartLineItem `json:"items"`
}

// AddToCart handles POST /cart
func (h *Handlers) AddToCart(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req cartMutationRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.carts.Add(c.Request.Context(), user.Email, req.Items)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, "Items added to cart", cart)
}

// UpdateCart handles PUT /cart
func (h *Handlers) UpdateCart(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req cartMutationRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.carts.Update(c.Request.Context(), user.Email, req.Items)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, "Cart updated", cart)
}

type cartRemovalRequest struct {
	Items []models.CartItemRef `json:"items"`
}

// RemoveFromCart handles DELETE /cart
func (h *Handlers) RemoveFromCart(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req cartRemovalRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.carts.Remove(c.Request.Context(), user.Email, req.Items)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, "Items removed from cart", cart)
}

// ClearCart handles PUT /cart/clear
func (h *Handlers) ClearCart(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	cart, err := h.carts.Clear(c.Request.Context(), user.Email)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, "Cart cleared", cart)
}
