package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/1989Cristianq/modelodatos/internal/config"
	"github.com/1989Cristianq/modelodatos/internal/controllers"
	"github.com/1989Cristianq/modelodatos/internal/database"
	"github.com/1989Cristianq/modelodatos/internal/logging"
	"github.com/1989Cristianq/modelodatos/internal/metrics"
	"github.com/1989Cristianq/modelodatos/internal/services"
	"github.com/1989Cristianq/modelodatos/internal/storage"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "accidentes",
		Short:         "Registro de accidentes de tránsito",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	})
	return root
}

func serve(ctx context.Context, cfg *config.Config) error {
	log, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer closer.Close()
	slog.SetDefault(log)

	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	var (
		m   *metrics.RegistryMetrics
		reg *prometheus.Registry
	)
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		if m, err = metrics.NewRegistryMetrics(reg); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	maxUpload := cfg.Storage.MaxUploadMB << 20
	userSvc := services.NewUserService(db, cfg.Cache.IdentityTTL, m)
	accidentSvc := services.NewAccidentService(db, store, cfg.Records, m, log)
	vehicleSvc := services.NewVehicleService(db, m, log)
	attachmentSvc := services.NewAttachmentService(db, store, maxUpload, m, log)
	referenceSvc := services.NewReferenceService(db, cfg.Cache.ReferenceTTL, m)
	reportSvc := services.NewReportService(db, cfg.Records.RecentLimit, m, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				level = slog.LevelWarn
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			log.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	if len(cfg.Server.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.Server.CORSOrigins,
			AllowHeaders: []string{
				echo.HeaderContentType,
				controllers.HeaderUserName,
				controllers.HeaderUserRole,
				controllers.HeaderUserFullName,
			},
			ExposeHeaders: []string{echo.HeaderContentDisposition},
		}))
	}
	// multipart overhead on top of the sketch itself
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.Storage.MaxUploadMB+1)))

	e.GET("/healthz", func(c echo.Context) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request().Context())
		}
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if reg != nil {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api/v1", controllers.Identity(userSvc))
	controllers.NewAccidentController(accidentSvc).Register(api)
	controllers.NewVehicleController(vehicleSvc).Register(api)
	controllers.NewSketchController(attachmentSvc).Register(api)
	controllers.NewReferenceController(referenceSvc).Register(api)
	controllers.NewReportController(reportSvc).Register(api)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "database", cfg.Database.Driver, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
