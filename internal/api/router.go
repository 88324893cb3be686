// Package api provides the HTTP API for ProdTrack.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/prodtrack/prodtrack/internal/adminauth"
	"github.com/prodtrack/prodtrack/internal/api/handler"
	"github.com/prodtrack/prodtrack/internal/api/middleware"
	"github.com/prodtrack/prodtrack/internal/device"
	"github.com/prodtrack/prodtrack/internal/order"
	"github.com/prodtrack/prodtrack/internal/product"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version         string
	Host            string
	Port            int
	Logger          zerolog.Logger
	ServiceName     string
	Metrics         *middleware.Metrics
	DeviceService   *device.Service
	ProductService  *product.Service
	OrderService    *order.Service
	AdminService    *adminauth.Service
	ReadinessChecks map[string]handler.ReadinessChecker
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "prodtrack-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.Host, cfg.Port, cfg.ReadinessChecks)
	authHandler := handler.NewAuthHandler(cfg.DeviceService, cfg.Logger)
	terminalHandler := handler.NewTerminalHandler(cfg.ProductService, cfg.Logger)
	productHandler := handler.NewProductHandler(cfg.ProductService, cfg.Logger)
	orderHandler := handler.NewOrderHandler(cfg.OrderService, cfg.Logger)

	// Device classification runs on everything a terminal touches. It
	// annotates, never blocks.
	deviceAuth := middleware.DeviceAuth(cfg.DeviceService, cfg.Logger)

	// Admin gate; pass-through unless a signing key is configured.
	adminGate := adminauth.Middleware(cfg.AdminService)

	// Rate limits per endpoint category
	pollRateLimit := middleware.RateLimitByDevice(middleware.PollRateLimit) // 120 req/min
	adminRateLimit := middleware.RateLimitByIP(middleware.AdminRateLimit)   // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	// Terminal entry point
	r.With(deviceAuth).Get("/maquina", terminalHandler.Workspace)

	// Discovery document, outside /api on purpose: the tablet fetches it
	// before it knows anything else about the server.
	r.Get("/server_info.json", opsHandler.ServerInfo)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireJSON)

		// Ops endpoints (public)
		r.Get("/health", opsHandler.HealthCheck)
		r.Get("/ready", opsHandler.ReadinessCheck)

		// Device authorization endpoints
		r.Route("/auth", func(r chi.Router) {
			// Polled by every terminal; device-keyed rate limiting.
			r.With(pollRateLimit).Get("/device", authHandler.CheckDevice)
			r.With(pollRateLimit).Post("/register-device", authHandler.RegisterDevice)
			r.With(pollRateLimit).Get("/clear-cache", authHandler.ClearCache)

			// Admin console operations
			r.Group(func(r chi.Router) {
				r.Use(adminGate)
				r.Use(adminRateLimit)
				r.Get("/devices", authHandler.ListDevices)
				r.Post("/update-device", authHandler.UpdateDevice)
				r.Post("/reject-device", authHandler.RejectDevice)
				r.Post("/reset-devices", authHandler.ResetDevices)
			})
		})

		// Catalog endpoints
		r.Route("/products", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", productHandler.Catalog)
			r.Get("/{category}", productHandler.Category)
			r.With(adminGate).Post("/{category}", productHandler.AddProduct)
			r.With(adminGate).Delete("/{category}/{productID}", productHandler.RemoveProduct)
		})

		// Production order endpoints; classified so writes can record the
		// device and refresh its activity.
		r.Route("/orders", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Use(deviceAuth)
			r.Get("/", orderHandler.ListOrders)
			r.Post("/", orderHandler.StartOrder)
			r.Route("/{orderCode}", func(r chi.Router) {
				r.Get("/", orderHandler.GetOrder)
				r.Post("/", orderHandler.StartOrder)
				r.Post("/complete", orderHandler.CompleteOrder)
				r.With(adminGate).Delete("/", orderHandler.RemoveOrder)
			})
		})
	})

	return r
}
