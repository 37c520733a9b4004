package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/astrobsm/criticalcare/internal/config"
	"github.com/astrobsm/criticalcare/internal/domain/history"
	"github.com/astrobsm/criticalcare/internal/engine"
	"github.com/astrobsm/criticalcare/internal/platform/auth"
	"github.com/astrobsm/criticalcare/internal/platform/cdshooks"
	"github.com/astrobsm/criticalcare/internal/platform/db"
	"github.com/astrobsm/criticalcare/internal/platform/middleware"
	"github.com/astrobsm/criticalcare/internal/refdata"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ccc-server",
		Short:        "Critical care calculator engine and API server",
		SilenceUsage: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(calcCmd())
	root.AddCommand(calculatorsCmd())
	root.AddCommand(tablesCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(tokenCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger.Level(cfg.Level())
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(cfg)

	// Reference data
	tables, err := refdata.Load(cfg.ReferenceDataDir)
	if err != nil {
		return fmt.Errorf("load reference data: %w", err)
	}
	for file, version := range tables.Versions() {
		logger.Info().Str("table", file).Str("version", version).Msg("reference data loaded")
	}
	if review := tables.Dosing.Review(); len(review) > 0 {
		logger.Warn().Strs("items", review).Msg("dosing table has entries pending clinical review")
	}

	registry, err := engine.NewRegistry(tables)
	if err != nil {
		return err
	}
	svc := engine.NewService(registry, logger)

	// Database (optional)
	ctx := context.Background()
	var pinger db.Pinger
	var historySvc *history.Service
	if cfg.HistoryEnabled() {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		logger.Info().Msg("connected to database")

		pinger = pool
		historySvc = history.NewService(history.NewRepoPG(pool))
		svc.SetRecorder(historySvc)
	} else {
		logger.Info().Msg("DATABASE_URL not set, calculation history disabled")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))

	// Health check, unauthenticated
	e.GET("/health", db.HealthHandler(pinger, tables.Versions()))

	// Auth middleware
	jwtCfg := auth.JWTConfig{
		SigningKey: []byte(cfg.AuthSigningKey),
		Issuer:     cfg.AuthIssuer,
		Audience:   cfg.AuthAudience,
	}
	authMW := auth.JWTMiddleware(jwtCfg)
	if cfg.IsDev() {
		authMW = auth.DevAuthMiddleware(jwtCfg)
	}

	apiV1 := e.Group("/api/v1", authMW)
	engine.NewHandler(svc, tables).RegisterRoutes(apiV1)
	if historySvc != nil {
		history.NewHandler(historySvc).RegisterRoutes(apiV1)
	}

	hooks := cdshooks.NewHandler()
	svc.RegisterCDSServices(hooks)
	hooks.RegisterRoutes(e.Group("", authMW, auth.RequireRole(auth.RoleClinician)))

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
