package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopsphere/shopsphere-backend/internal/models"
)

// catalogHandler binds one catalog kind to the shared CRUD surface, so the
// product and service routes stay symmetric.
type catalogHandler struct {
	parent *Handlers
	kind   models.ItemType
}

func (h *Handlers) Products() catalogHandler {
	return catalogHandler{parent: h, kind: models.ItemTypeProduct}
}

func (h *Handlers) Services() catalogHandler {
	return catalogHandler{parent: h, kind: models.ItemTypeService}
}

// List handles GET /product and GET /service
func (h catalogHandler) List(c *gin.Context) {
	limit, offset := pagination(c)

	items, err := h.parent.catalog.List(c.Request.Context(), h.kind, limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, h.kind.DisplayName()+"s retrieved", items)
}

// Get handles GET /product/:id and GET /service/:id
func (h catalogHandler) Get(c *gin.Context) {
	item, err := h.parent.catalog.Get(c.Request.Context(), h.kind, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, h.kind.DisplayName()+" retrieved", item)
}

// Create handles POST /product and POST /service (admin)
func (h catalogHandler) Create(c *gin.Context) {
	var req models.CreateCatalogItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.parent.catalog.Create(c.Request.Context(), h.kind, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusCreated, h.kind.DisplayName()+" created", item)
}

// Update handles PUT /product/:id and PUT /service/:id (admin)
func (h catalogHandler) Update(c *gin.Context) {
	var req models.CreateCatalogItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.parent.catalog.Update(c.Request.Context(), h.kind, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, h.kind.DisplayName()+" updated", item)
}

// Delete handles DELETE /product/:id and DELETE /service/:id (admin)
func (h catalogHandler) Delete(c *gin.Context) {
	if err := h.parent.catalog.Delete(c.Request.Context(), h.kind, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, h.kind.DisplayName()+" deleted", nil)
}
