// Package main provides the entrypoint for the ProdTrack API server.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/prodtrack/prodtrack/internal/adminauth"
	"github.com/prodtrack/prodtrack/internal/api"
	"github.com/prodtrack/prodtrack/internal/api/handler"
	"github.com/prodtrack/prodtrack/internal/api/middleware"
	"github.com/prodtrack/prodtrack/internal/config"
	"github.com/prodtrack/prodtrack/internal/database"
	"github.com/prodtrack/prodtrack/internal/device"
	"github.com/prodtrack/prodtrack/internal/netutil"
	"github.com/prodtrack/prodtrack/internal/order"
	"github.com/prodtrack/prodtrack/internal/product"
	"github.com/prodtrack/prodtrack/internal/telemetry"
)

// Version is set at compile time via ldflags.
var Version = "dev"

func main() {
	const serviceName = "prodtrack-api"

	mintToken := flag.Bool("mint-admin-token", false,
		"print an admin bearer token signed with ADMIN_JWT_KEY and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if *mintToken {
		os.Exit(mintAdminToken(cfg))
	}
	if cfg.ServerVersion == "dev" && Version != "dev" {
		cfg.ServerVersion = Version
	}

	log := newLogger(cfg, serviceName)
	log.Info().Str("environment", cfg.Environment).Msg("starting ProdTrack API")

	ctx := context.Background()

	// Initialize OpenTelemetry
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: cfg.ServerVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OtelEndpoint,
		Enabled:        cfg.OtelEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OtelEnabled {
		log.Info().Str("otlp_endpoint", cfg.OtelEndpoint).Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	authMetrics, err := middleware.NewAuthMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize auth metrics")
		os.Exit(1)
	}

	// Open SQLite. A broken database must not take the production line down:
	// on failure the server keeps running against in-memory stores and the
	// readiness endpoint reports the degradation.
	var db *sql.DB
	if !cfg.MemoryOnly {
		dbCfg := database.DefaultConfig(cfg.DataDir)
		if cfg.DatabasePath != "" {
			dbCfg.Path = cfg.DatabasePath
		}
		db, err = database.Open(ctx, dbCfg)
		if err != nil {
			log.Error().Err(err).Str("path", dbCfg.Path).
				Msg("database unavailable, falling back to in-memory stores")
		} else {
			defer db.Close()
			log.Info().Str("path", dbCfg.Path).Msg("database connected")
		}
	} else {
		log.Warn().Msg("MEMORY_ONLY set, nothing will be persisted")
	}

	// Stores: SQLite when available, in-memory otherwise.
	var (
		deviceStore  device.Store
		productStore product.Store
		orderStore   order.Store
	)
	if db != nil {
		deviceStore = device.NewSQLiteStore(db)
		productStore = product.NewSQLiteStore(db)
		orderStore = order.NewSQLiteStore(db)
	} else {
		deviceStore = device.NewMemoryStore()
		productStore = product.NewMemoryStore()
		orderStore = order.NewMemoryStore()
	}

	deviceService := device.NewService(device.ServiceConfig{
		Store:    deviceStore,
		Logger:   log,
		CacheTTL: time.Duration(cfg.CacheTTLSec) * time.Second,
		Metrics:  authMetrics,
	})
	defer deviceService.Close()
	log.Info().Msg("device authorization service initialized")

	productService := product.NewService(productStore, log)
	if cfg.SeedCatalog {
		if err := product.SeedDefaults(ctx, productStore); err != nil {
			log.Error().Err(err).Msg("catalog seeding failed")
		}
	}
	log.Info().Msg("product service initialized")

	orderService := order.NewService(orderStore, deviceStore, log)
	log.Info().Msg("order service initialized")

	adminService := adminauth.NewService(adminauth.Config{SigningKey: cfg.AdminJWTKey})
	if adminService == nil {
		log.Warn().Msg("no admin signing key configured, admin endpoints are open")
	}

	readiness := map[string]handler.ReadinessChecker{
		"database": func(ctx context.Context) error {
			if db == nil {
				return fmt.Errorf("running on in-memory stores")
			}
			return db.PingContext(ctx)
		},
	}

	// The port is advertised in server_info.json, so resolve conflicts before
	// the router learns it.
	port, err := netutil.FindFreePort(cfg.Host, cfg.Port, 10)
	if err != nil {
		log.Fatal().Err(err).Msg("no free port")
	}
	if port != cfg.Port {
		log.Warn().Int("preferred", cfg.Port).Int("port", port).Msg("preferred port busy")
	}

	router := api.NewRouter(api.RouterConfig{
		Version:         cfg.ServerVersion,
		Host:            netutil.LocalIP(),
		Port:            port,
		Logger:          log,
		ServiceName:     serviceName,
		Metrics:         metrics,
		DeviceService:   deviceService,
		ProductService:  productService,
		OrderService:    orderService,
		AdminService:    adminService,
		ReadinessChecks: readiness,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("lan_ip", netutil.LocalIP()).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	if db != nil {
		if err := database.AddLog(ctx, db, "system", "info", "servidor iniciado"); err != nil {
			log.Warn().Err(err).Msg("startup log entry failed")
		}
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if db != nil {
		if err := database.AddLog(shutdownCtx, db, "system", "info", "servidor encerrado"); err != nil {
			log.Warn().Err(err).Msg("shutdown log entry failed")
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// mintAdminToken prints a bearer token for the admin endpoints. Run on the
// server host where ADMIN_JWT_KEY is configured; the admin console sends it
// as "Authorization: Bearer <token>".
func mintAdminToken(cfg *config.Config) int {
	svc := adminauth.NewService(adminauth.Config{SigningKey: cfg.AdminJWTKey})
	if svc == nil {
		fmt.Fprintln(os.Stderr, "ADMIN_JWT_KEY is not set; the admin gate is disabled and no token is needed")
		return 1
	}

	token, expiresAt, err := svc.GenerateToken("operator")
	if err != nil {
		fmt.Fprintf(os.Stderr, "minting admin token: %v\n", err)
		return 1
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.Format(time.RFC3339))
	return 0
}

// newLogger builds the process logger from configuration.
func newLogger(cfg *config.Config, serviceName string) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout)
	if cfg.LogPretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	return logger.Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", cfg.ServerVersion).
		Logger()
}
