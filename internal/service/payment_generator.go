package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/constants"
	"github.com/taichu-system/rental-management/internal/metrics"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/repository"
	"github.com/taichu-system/rental-management/internal/tenancy"
	"github.com/taichu-system/rental-management/internal/utils"
)

// GenerationResult summarizes one pending-payment run.
type GenerationResult struct {
	Processed int           `json:"processed"`
	Created   int           `json:"created"`
	Skipped   int           `json:"skipped"`
	Errors    []EntityError `json:"errors"`
}

type PaymentGenerator struct {
	store *repository.Store
	audit AuditSink
	log   *slog.Logger
	now   Clock
}

func NewPaymentGenerator(store *repository.Store, audit AuditSink, log *slog.Logger, now Clock) *PaymentGenerator {
	return &PaymentGenerator{store: store, audit: audit, log: log, now: now}
}

// DueDate is the billing day of lease in the given month: the anchor day of
// its start date, clamped to the last day of the month.
func DueDate(lease *model.Lease, year int, month time.Month) time.Time {
	day := lease.StartDate.Day()
	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DuePeriods returns the period starts that must have a payment on today.
// When the current month's due date has not arrived yet, the previous
// month's period is returned instead as a catch-up for missed runs. An
// ACTIVE lease past its end date is still billed until it is renewed or
// terminated.
func DuePeriods(lease *model.Lease, today time.Time) []time.Time {
	today = startOfDay(today)
	due := DueDate(lease, today.Year(), today.Month())
	if today.Before(due) {
		prev := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		due = DueDate(lease, prev.Year(), prev.Month())
	}

	if due.Before(startOfDay(lease.StartDate)) {
		return nil
	}
	return []time.Time{due}
}

func validateBillable(lease *model.Lease) error {
	if lease.MonthlyRent <= 0 {
		return fmt.Errorf("lease %s has non-positive rent %v", lease.ID, lease.MonthlyRent)
	}
	if lease.StartDate.IsZero() || lease.EndDate.IsZero() {
		return fmt.Errorf("lease %s has no term", lease.ID)
	}
	return nil
}

type periodKey struct {
	leaseID uuid.UUID
	start   time.Time
}

// planLease appends the missing payments of lease to batch. seen holds the
// keys already planned in this run.
func (g *PaymentGenerator) planLease(ctx context.Context, tx *repository.Tx, lease *model.Lease, today time.Time, seen map[periodKey]bool, batch []*model.Payment) ([]*model.Payment, int, error) {
	if err := validateBillable(lease); err != nil {
		return batch, 0, err
	}

	skipped := 0
	for _, periodStart := range DuePeriods(lease, today) {
		key := periodKey{leaseID: lease.ID, start: periodStart}
		if seen[key] {
			skipped++
			continue
		}
		exists, err := tx.Payments.ExistsForPeriod(ctx, lease.ID, periodStart)
		if err != nil {
			return batch, skipped, err
		}
		if exists {
			skipped++
			continue
		}
		seen[key] = true
		batch = append(batch, &model.Payment{
			TenantID:    lease.TenantID,
			LeaseID:     lease.ID,
			Amount:      lease.MonthlyRent,
			PaymentDate: periodStart,
			PeriodStart: periodStart,
			PeriodEnd:   addMonths(periodStart, 1),
			Status:      model.PaymentStatusPending,
		})
	}
	return batch, skipped, nil
}

// GenerateForLease ensures the current period of one ACTIVE lease has a
// pending payment and returns the number of payments created.
func (g *PaymentGenerator) GenerateForLease(ctx context.Context, leaseID uuid.UUID) (int, error) {
	today := startOfDay(g.now())
	created := 0
	err := g.store.Transaction(ctx, func(tx *repository.Tx) error {
		lease, err := tx.Leases.GetByID(ctx, leaseID)
		if err != nil {
			return notFound(err, constants.ResourceTypeLease, leaseID.String())
		}
		if lease.Status != model.LeaseStatusActive {
			return utils.Validation(utils.ReasonInvalidState, "lease %s is %s, payments are generated for ACTIVE leases only", lease.ID, lease.Status)
		}
		batch, _, err := g.planLease(ctx, tx, lease, today, map[periodKey]bool{}, nil)
		if err != nil {
			return utils.Validation(utils.ReasonInvalidInput, "%s", err.Error())
		}
		n, err := tx.Payments.CreateBatch(ctx, batch)
		created = int(n)
		return err
	})
	if err != nil {
		return 0, err
	}
	metrics.AddPaymentsGenerated(created)
	if created > 0 {
		g.audit.Log(ctx, constants.ActionGeneratePayments, constants.ResourceTypeLease, leaseID.String(),
			nil, map[string]interface{}{"created": created, "as_of": today.Format(utils.DateLayout)})
	}
	return created, nil
}

// GenerateAllPendingPayments runs the generator over every ACTIVE lease
// visible to ctx. Planned payments are flushed in one batch at the end.
// Per-lease failures are collected; a failed flush aborts the run.
func (g *PaymentGenerator) GenerateAllPendingPayments(ctx context.Context) (*GenerationResult, error) {
	today := startOfDay(g.now())
	result := &GenerationResult{Errors: []EntityError{}}

	err := g.store.Transaction(ctx, func(tx *repository.Tx) error {
		leases, err := tx.Leases.ListByStatus(ctx, model.LeaseStatusActive)
		if err != nil {
			return err
		}
		result.Processed = len(leases)

		seen := make(map[periodKey]bool)
		var batch []*model.Payment
		for _, lease := range leases {
			var skipped int
			batch, skipped, err = g.planLease(ctx, tx, lease, today, seen, batch)
			result.Skipped += skipped
			if err != nil {
				g.log.Warn("pending payment planning failed",
					slog.String("lease_id", lease.ID.String()),
					slog.String("error", err.Error()),
				)
				result.Errors = append(result.Errors, EntityError{ID: lease.ID.String(), Error: err.Error()})
			}
		}

		created, err := tx.Payments.CreateBatch(ctx, batch)
		if err != nil {
			return fmt.Errorf("flush pending payments: %w", err)
		}
		result.Created = int(created)
		result.Skipped += len(batch) - int(created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.AddPaymentsGenerated(result.Created)
	metrics.ObserveJobEntityErrors(constants.JobPendingPayments, len(result.Errors))

	tc, _ := tenancy.FromContext(ctx)
	if result.Created > 0 {
		g.audit.Log(ctx, constants.ActionGeneratePayments, constants.ResourceTypePayment, tc.TenantIDString(),
			nil, map[string]interface{}{"created": result.Created, "as_of": today.Format(utils.DateLayout)})
	}
	g.log.Info("pending payments generated",
		slog.String("tenant_id", tc.TenantIDString()),
		slog.Int("processed", result.Processed),
		slog.Int("created", result.Created),
		slog.Int("skipped", result.Skipped),
		slog.Int("errors", len(result.Errors)),
	)
	return result, nil
}
