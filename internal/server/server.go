package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopsphere/shopsphere-backend/internal/auth"
	"github.com/shopsphere/shopsphere-backend/internal/config"
	"github.com/shopsphere/shopsphere-backend/internal/handlers"
	"github.com/shopsphere/shopsphere-backend/internal/logging"
	"github.com/shopsphere/shopsphere-backend/internal/middleware"
	"github.com/shopsphere/shopsphere-backend/internal/repository"
)

type Server struct {
	config   *config.Config
	router   *gin.Engine
	handlers *handlers.Handlers
	http     *http.Server
}

func NewServer(
	cfg *config.Config,
	h *handlers.Handlers,
	verifier auth.TokenVerifier,
	users repository.UserRepository,
	db *sql.DB,
) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logging.New("http")))
	router.Use(middleware.Metrics())

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
	}

	s.setupRoutes(verifier, users, db)

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

func (s *Server) setupRoutes(verifier auth.TokenVerifier, users repository.UserRepository, db *sql.DB) {
	h := s.handlers

	s.router.GET("/health", h.Health)
	s.router.GET("/ready", handlers.Ready(db))
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := middleware.Authenticate(verifier, users)
	admin := middleware.RequireAdmin()

	s.router.POST("/auth/signup", h.Signup)
	s.router.POST("/auth/signup/admin", authed, admin, h.SignupAdmin)

	user := s.router.Group("/user", authed)
	{
		user.GET("", h.GetProfile)
		user.PUT("", h.UpdateProfile)
		user.PUT("/:email/admin", admin, h.MakeAdmin)
	}

	products := h.Products()
	product := s.router.Group("/product")
	{
		product.GET("", products.List)
		product.GET("/:id", products.Get)
		product.POST("", authed, admin, products.Create)
		product.PUT("/:id", authed, admin, products.Update)
		product.DELETE("/:id", authed, admin, products.Delete)
	}

	services := h.Services()
	service := s.router.Group("/service")
	{
		service.GET("", services.List)
		service.GET("/:id", services.Get)
		service.POST("", authed, admin, services.Create)
		service.PUT("/:id", authed, admin, services.Update)
		service.DELETE("/:id", authed, admin, services.Delete)
	}

	cart := s.router.Group("/cart", authed)
	{
		cart.GET("", h.GetCart)
		cart.POST("", h.AddToCart)
		cart.PUT("", h.UpdateCart)
		cart.DELETE("", h.RemoveFromCart)
		cart.PUT("/clear", h.ClearCart)
	}

	order := s.router.Group("/order", authed)
	{
		order.GET("", h.GetOrders)
		order.POST("/invoice", h.GetInvoice)
		order.POST("/create", h.CreateOrder)
		order.PUT("/process", admin, h.ProcessOrder)
		order.PUT("/:id/cancel", h.CancelOrder)
		order.GET("/admin", admin, h.AdminGetOrders)
	}
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Run() error {
	logging.Base().Info("starting server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
