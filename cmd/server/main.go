package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/taichu-system/rental-management/internal/audit"
	"github.com/taichu-system/rental-management/internal/cache"
	"github.com/taichu-system/rental-management/internal/config"
	"github.com/taichu-system/rental-management/internal/database"
	"github.com/taichu-system/rental-management/internal/handler"
	"github.com/taichu-system/rental-management/internal/logger"
	"github.com/taichu-system/rental-management/internal/notify"
	"github.com/taichu-system/rental-management/internal/repository"
	"github.com/taichu-system/rental-management/internal/routes"
	"github.com/taichu-system/rental-management/internal/service"
	"github.com/taichu-system/rental-management/internal/service/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg := logger.New(cfg.Logging)
	slog.SetDefault(logg)
	gin.SetMode(cfg.Server.Mode)

	db, err := database.Open(cfg.Database, logg)
	if err != nil {
		fatal(logg, "failed to connect to database", err)
	}
	defer database.Close(db)

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, database.Options{RowSecurity: cfg.Database.EnableRowSecurity}, logg); err != nil {
			fatal(logg, "failed to migrate database", err)
		}
	}

	store := repository.NewStore(db)
	recorder := audit.NewRecorder(store, logg)
	dispatcher := notify.NewDispatcher(logg, cfg.Notify.Timeout, notify.NewLogSink(logg))

	checks := map[string]handler.Checker{
		"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
	}
	var statusCache service.TenantStatusCache
	if cfg.Redis.Enabled {
		rdb, err := cache.NewClient(context.Background(), cfg.Redis.URL)
		if err != nil {
			fatal(logg, "failed to connect to redis", err)
		}
		defer rdb.Close()
		tenantCache := cache.NewTenantStatusCache(rdb, cfg.Redis.TenantStatusTTL, logg)
		statusCache = tenantCache
		checks["redis"] = tenantCache.Ping
	}

	clock := service.SystemClock
	tenantService := service.NewTenantService(store, statusCache, recorder, logg)
	leaseService := service.NewLeaseService(store, recorder, logg)
	indexationService := service.NewIndexationService(store, recorder, logg, clock)
	renewalService := service.NewRenewalService(store, recorder, logg, clock)
	paymentGenerator := service.NewPaymentGenerator(store, recorder, logg, clock)
	paymentService := service.NewPaymentService(store, recorder, dispatcher, logg, clock)
	exitNoticeService := service.NewExitNoticeService(store, recorder, logg, clock)
	auditService := service.NewAuditService(store)

	var scheduler *worker.LifecycleScheduler
	if cfg.Scheduler.Enabled {
		scheduler = worker.NewLifecycleScheduler(tenantService, renewalService, paymentGenerator, cfg.Scheduler, logg)
		if err := scheduler.Start(); err != nil {
			fatal(logg, "failed to start scheduler", err)
		}
	} else {
		logg.Info("scheduler is disabled in configuration")
	}

	r := routes.Setup(routes.Handlers{
		Lease:      handler.NewLeaseHandler(leaseService, renewalService),
		Increase:   handler.NewIncreaseHandler(indexationService),
		ExitNotice: handler.NewExitNoticeHandler(exitNoticeService),
		Payment:    handler.NewPaymentHandler(paymentService, paymentGenerator),
		Tenant:     handler.NewTenantHandler(tenantService),
		Audit:      handler.NewAuditHandler(auditService),
		Health:     handler.NewHealthHandler(checks),
	}, routes.Options{
		JWTSecret:    cfg.Auth.JWTSecret,
		JWTIssuer:    cfg.Auth.Issuer,
		TenantStatus: tenantService,
		Logger:       logg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logg.Info("server starting", slog.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logg, "failed to start server", err)
		}
	}()

	<-quit
	logg.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logg.Error("server forced to shutdown", slog.String("error", err.Error()))
	}
	if scheduler != nil {
		scheduler.Stop(ctx)
	}
	drain(ctx, recorder.Wait, dispatcher.Wait)

	logg.Info("server exited")
}

// drain waits for background writers until ctx expires.
func drain(ctx context.Context, waits ...func()) {
	done := make(chan struct{})
	go func() {
		for _, wait := range waits {
			wait()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func fatal(logg *slog.Logger, msg string, err error) {
	logg.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}
