package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shopsphere/shopsphere-backend/internal/apperrors"
	"github.com/shopsphere/shopsphere-backend/internal/logging"
	"github.com/shopsphere/shopsphere-backend/internal/service"
)

// Handlers carries the service dependencies for all HTTP endpoints.
type Handlers struct {
	users    *service.UserService
	catalog  *service.CatalogService
	carts    *service.CartService
	invoices *service.InvoiceService
	orders   *service.OrderService
	logger   *slog.Logger
}

func New(
	users *service.UserService,
	catalog *service.CatalogService,
	carts *service.CartService,
	invoices *service.InvoiceService,
	orders *service.OrderService,
) *Handlers {
	return &Handlers{
		users:    users,
		catalog:  catalog,
		carts:    carts,
		invoices: invoices,
		orders:   orders,
		logger:   logging.New("handlers"),
	}
}

// envelope is the uniform response shape for every endpoint.
type envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope{Status: true, Message: message, Data: data})
}

// handleError translates application errors to the response envelope. This is
// the only place errors become HTTP; services never see status codes.
func handleError(c *gin.Context, err error) {
	appErr := apperrors.As(err)

	if appErr.Kind == apperrors.KindInternal {
		logging.From(c).Error("request failed", "error", err)
	}

	var data interface{}
	if len(appErr.Fields) > 0 {
		data = appErr.Fields
	}

	c.JSON(appErr.HTTPStatus(), envelope{
		Status:  false,
		Message: appErr.Message,
		Data:    data,
	})
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, envelope{
			Status:  false,
			Message: "Invalid request body",
			Data:    nil,
		})
		return false
	}
	return true
}

// pagination reads limit/offset query parameters, leaving defaults to the
// service layer.
func pagination(c *gin.Context) (limit, offset int) {
	if v, err := parsePositiveInt(c.Query("limit")); err == nil {
		limit = v
	}
	if v, err := parsePositiveInt(c.Query("offset")); err == nil {
		offset = v
	}
	return limit, offset
}

func parsePositiveInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, errInvalidNumber
	}
	return v, nil
}

var errInvalidNumber = errors.New("invalid number")
