package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/config"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	appHTTP "github.com/cmlabs-hris/attendance-dashboard-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/raster"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/repository/upstream"
	dashboardService "github.com/cmlabs-hris/attendance-dashboard-go/internal/service/dashboard"
	reportService "github.com/cmlabs-hris/attendance-dashboard-go/internal/service/report"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	if cfg.Database.Migrate {
		if err := postgresql.Migrate(ctx, db); err != nil {
			return err
		}
		slog.Info("database schema applied")
	}

	var source metric.Source
	switch cfg.App.MetricSource {
	case config.SourceUpstream:
		source, err = upstream.NewClient(ctx, upstream.Config{
			BaseURL:      cfg.Upstream.BaseURL,
			Timeout:      cfg.Upstream.Timeout,
			ClientID:     cfg.Upstream.ClientID,
			ClientSecret: cfg.Upstream.ClientSecret,
			TokenURL:     cfg.Upstream.TokenURL,
			Scopes:       cfg.Upstream.Scopes,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize upstream client: %w", err)
		}
	default:
		source = postgresql.NewMetricRepository(db)
	}
	slog.Info("metric source selected", "source", cfg.App.MetricSource)

	filterRepo := postgresql.NewFilterStateRepository(db)

	exportStorage, err := storage.NewLocalStorage(cfg.Export.Dir, cfg.Export.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize local storage: %w", err)
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	hub := sse.NewHub()

	loader := dashboardService.NewLoader(source, cfg.Dashboard.CacheTTL, cfg.Dashboard.FetchTimeout)
	loader.SetFetchLimit(cfg.Dashboard.FetchLimit)
	chartCache := dashboardService.NewChartCache(0)
	dashboardSvc := dashboardService.NewDashboardService(loader, chartCache, filterRepo, cfg.Dashboard.PageSize)

	renderer := raster.NewRenderer(cfg.Export.RasterScale)
	reportSvc := reportService.NewReportService(dashboardSvc, renderer, exportStorage, hub)

	dashboardHandler := appHTTP.NewDashboardHandler(dashboardSvc)
	reportHandler := appHTTP.NewReportHandler(reportSvc, JWTService, hub)

	router := appHTTP.NewRouter(JWTService, dashboardHandler, reportHandler, appHTTP.RouterOptions{
		AllowedOrigins: []string{cfg.App.FrontendURL},
		Env:            cfg.App.Env,
		Version:        version,
		LogLevel:       cfg.SlogLevel(),
	})

	scheduler := cron.NewScheduler()
	dashboardJobs := cron.NewDashboardJobs(dashboardSvc, exportStorage, cfg.Dashboard.CacheTTL, cfg.Export.Retention)
	dashboardJobs.PruneIdleState(cfg.Dashboard.SessionIdle, map[string]cron.IdlePruner{
		"dashboard_sessions": dashboardSvc,
		"export_users":       reportSvc,
	})
	dashboardJobs.RegisterJobs(scheduler)
	scheduler.Start(ctx)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts end on SIGTERM so open event streams return
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	scheduler.Stop()
	reportSvc.CancelAll()
	reportSvc.Wait()
	return nil
}
