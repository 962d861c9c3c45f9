package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/taichu-system/rental-management/internal/audit"
	"github.com/taichu-system/rental-management/internal/config"
	"github.com/taichu-system/rental-management/internal/database"
	"github.com/taichu-system/rental-management/internal/logger"
	"github.com/taichu-system/rental-management/internal/repository"
	"github.com/taichu-system/rental-management/internal/service"
	"github.com/taichu-system/rental-management/internal/service/worker"
	"gorm.io/gorm"
)

// app holds the collaborators of one CLI invocation.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	db       *gorm.DB
	store    *repository.Store
	recorder *audit.Recorder
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Logging)

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	store := repository.NewStore(db)
	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		store:    store,
		recorder: audit.NewRecorder(store, log),
	}, nil
}

// Close flushes pending audit writes and releases the connection pool.
func (a *app) Close() {
	a.recorder.Wait()
	if err := database.Close(a.db); err != nil {
		a.log.Warn("closing database failed", slog.String("error", err.Error()))
	}
}

func (a *app) tenantService() *service.TenantService {
	return service.NewTenantService(a.store, nil, a.recorder, a.log)
}

func (a *app) scheduler() *worker.LifecycleScheduler {
	clock := service.SystemClock
	return worker.NewLifecycleScheduler(
		a.tenantService(),
		service.NewRenewalService(a.store, a.recorder, a.log, clock),
		service.NewPaymentGenerator(a.store, a.recorder, a.log, clock),
		a.cfg.Scheduler,
		a.log,
	)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
