package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopsphere/shopsphere-backend/internal/middleware"
	"github.com/shopsphere/shopsphere-backend/internal/models"
)

// Signup handles POST /auth/signup
func (h *Handlers) Signup(c *gin.Context) {
	var req models.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Signup(c.Request.Context(), &req, false)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusCreated, "User created", user)
}

// SignupAdmin handles POST /auth/signup/admin (admin)
func (h *Handlers) SignupAdmin(c *gin.Context) {
	var req models.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Signup(c.Request.Context(), &req, true)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Admin user created", user)
}

// GetProfile handles GET /user
func (h *Handlers) GetProfile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	respond(c, http.StatusOK, "User retrieved", user)
}

// UpdateProfile handles PUT /user
func (h *Handlers) UpdateProfile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req models.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.users.UpdateProfile(c.Request.Context(), user.Email, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, "User updated", updated)
}

// MakeAdmin handles PUT /user/:email/admin (admin)
func (h *Handlers) MakeAdmin(c *gin.Context) {
	user, err := h.users.MakeAdmin(c.Request.Context(), c.Param("email"))
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, "User elevated to admin", user)
}
