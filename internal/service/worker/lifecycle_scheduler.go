package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/taichu-system/rental-management/internal/config"
	"github.com/taichu-system/rental-management/internal/constants"
	"github.com/taichu-system/rental-management/internal/metrics"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/service"
	"github.com/taichu-system/rental-management/internal/tenancy"
)

// JobSummary aggregates one job run over all processed tenants.
type JobSummary struct {
	Job           string        `json:"job"`
	Tenants       int           `json:"tenants"`
	FailedTenants int           `json:"failed_tenants"`
	EntityErrors  int           `json:"entity_errors"`
	Duration      time.Duration `json:"duration"`
}

// LifecycleScheduler runs the daily renewal and payment jobs. Every run
// walks the ACTIVE tenants and processes each one inside its own system
// context, so one tenant's failure never stops the others.
type LifecycleScheduler struct {
	tenants  *service.TenantService
	renewals *service.RenewalService
	payments *service.PaymentGenerator
	cfg      config.SchedulerConfig
	log      *slog.Logger
	cron     *cron.Cron
}

func NewLifecycleScheduler(
	tenants *service.TenantService,
	renewals *service.RenewalService,
	payments *service.PaymentGenerator,
	cfg config.SchedulerConfig,
	log *slog.Logger,
) *LifecycleScheduler {
	cronLog := cronLogger{log: log.With(slog.String("component", "cron"))}
	return &LifecycleScheduler{
		tenants:  tenants,
		renewals: renewals,
		payments: payments,
		cfg:      cfg,
		log:      log,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
	}
}

func (s *LifecycleScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.RenewalCron, func() {
		s.RunRenewals(context.Background())
	}); err != nil {
		return fmt.Errorf("schedule %s: %w", constants.JobLeaseRenewal, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.PaymentsCron, func() {
		s.RunPayments(context.Background())
	}); err != nil {
		return fmt.Errorf("schedule %s: %w", constants.JobPendingPayments, err)
	}

	s.cron.Start()
	s.log.Info("lifecycle scheduler started",
		slog.String("renewal_cron", s.cfg.RenewalCron),
		slog.String("payments_cron", s.cfg.PaymentsCron),
	)
	return nil
}

// Stop prevents new runs and waits for running jobs until ctx expires.
func (s *LifecycleScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("lifecycle scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("lifecycle scheduler stop timed out")
	}
}

// RunRenewals renews expired leases of the given tenants, or of every
// ACTIVE tenant when none are given.
func (s *LifecycleScheduler) RunRenewals(ctx context.Context, tenantIDs ...uuid.UUID) JobSummary {
	return s.run(ctx, constants.JobLeaseRenewal, tenantIDs, func(ctx context.Context) (int, error) {
		result, err := s.renewals.ProcessAutomaticRenewals(ctx)
		if err != nil {
			return 0, err
		}
		return len(result.Errors), nil
	})
}

// RunPayments generates pending payments for the given tenants, or for
// every ACTIVE tenant when none are given.
func (s *LifecycleScheduler) RunPayments(ctx context.Context, tenantIDs ...uuid.UUID) JobSummary {
	return s.run(ctx, constants.JobPendingPayments, tenantIDs, func(ctx context.Context) (int, error) {
		result, err := s.payments.GenerateAllPendingPayments(ctx)
		if err != nil {
			return 0, err
		}
		return len(result.Errors), nil
	})
}

func (s *LifecycleScheduler) run(ctx context.Context, job string, tenantIDs []uuid.UUID, fn func(ctx context.Context) (int, error)) JobSummary {
	start := time.Now()
	summary := JobSummary{Job: job}

	ids, err := s.resolveTenants(ctx, tenantIDs)
	if err != nil {
		s.log.Error("listing tenants failed", slog.String("job", job), slog.String("error", err.Error()))
		metrics.ObserveJobRun(job, constants.JobResultFailed)
		summary.Duration = time.Since(start)
		return summary
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		summary.Tenants++

		var entityErrors int
		err := tenancy.Run(ctx, tenancy.System(id), func(ctx context.Context) error {
			var err error
			entityErrors, err = fn(ctx)
			return err
		})
		summary.EntityErrors += entityErrors

		switch {
		case err != nil:
			summary.FailedTenants++
			metrics.ObserveJobRun(job, constants.JobResultFailed)
			s.log.Error("job failed for tenant",
				slog.String("job", job),
				slog.String("tenant_id", id.String()),
				slog.String("error", err.Error()),
			)
		case entityErrors > 0:
			metrics.ObserveJobRun(job, constants.JobResultPartial)
		default:
			metrics.ObserveJobRun(job, constants.JobResultSuccess)
		}
	}

	summary.Duration = time.Since(start)
	s.log.Info("job finished",
		slog.String("job", job),
		slog.Int("tenants", summary.Tenants),
		slog.Int("failed_tenants", summary.FailedTenants),
		slog.Int("entity_errors", summary.EntityErrors),
		slog.Duration("duration", summary.Duration),
	)
	return summary
}

// resolveTenants drops explicitly requested tenants that are suspended or
// unknown.
func (s *LifecycleScheduler) resolveTenants(ctx context.Context, requested []uuid.UUID) ([]uuid.UUID, error) {
	if len(requested) == 0 {
		return s.tenants.ListActiveTenantIDs(ctx)
	}
	ids := make([]uuid.UUID, 0, len(requested))
	for _, id := range requested {
		status, err := s.tenants.GetStatus(ctx, id)
		if err != nil {
			s.log.Warn("skipping tenant", slog.String("tenant_id", id.String()), slog.String("error", err.Error()))
			continue
		}
		if status != model.TenantStatusActive {
			s.log.Info("skipping suspended tenant", slog.String("tenant_id", id.String()))
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err.Error())...)
}
