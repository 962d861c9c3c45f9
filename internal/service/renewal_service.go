package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/constants"
	"github.com/taichu-system/rental-management/internal/metrics"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/repository"
	"github.com/taichu-system/rental-management/internal/tenancy"
	"github.com/taichu-system/rental-management/internal/utils"
)

// RenewalResult summarizes one automatic renewal run.
type RenewalResult struct {
	Processed int           `json:"processed"`
	Renewed   int           `json:"renewed"`
	Errors    []EntityError `json:"errors"`
}

type RenewalService struct {
	store *repository.Store
	audit AuditSink
	log   *slog.Logger
	now   Clock
}

func NewRenewalService(store *repository.Store, audit AuditSink, log *slog.Logger, now Clock) *RenewalService {
	return &RenewalService{store: store, audit: audit, log: log, now: now}
}

// FindExpiredLeasesForRenewal lists ACTIVE leases whose end date is strictly
// before today.
func (s *RenewalService) FindExpiredLeasesForRenewal(ctx context.Context) ([]*model.Lease, error) {
	today := startOfDay(s.now())
	var leases []*model.Lease
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		var err error
		leases, err = tx.Leases.ListActiveEndingBefore(ctx, today)
		return err
	})
	return leases, err
}

// RenewLease extends the lease by one calendar year. The pre-renewal end
// date is kept in OriginalEndDate on the first renewal only. The status is
// left unchanged.
func (s *RenewalService) RenewLease(ctx context.Context, id uuid.UUID) (*model.Lease, error) {
	var before, after model.Lease
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		lease, err := tx.Leases.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, constants.ResourceTypeLease, id.String())
		}
		if lease.Status != model.LeaseStatusActive {
			return utils.Validation(utils.ReasonInvalidState, "lease %s is %s, only ACTIVE leases can be renewed", lease.ID, lease.Status)
		}
		before = *lease

		if lease.OriginalEndDate == nil {
			original := lease.EndDate
			lease.OriginalEndDate = &original
		}
		lease.EndDate = addYears(lease.EndDate, 1)
		lease.RenewalCount++

		if err := tx.Leases.Update(ctx, lease); err != nil {
			return err
		}
		after = *lease
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, constants.ActionRenew, constants.ResourceTypeLease, id.String(), &before, &after)
	return &after, nil
}

// ProcessAutomaticRenewals renews every lease past its end date, each in its
// own unit of work. Per-lease failures are collected; only a failure to list
// the candidates aborts the run.
func (s *RenewalService) ProcessAutomaticRenewals(ctx context.Context) (*RenewalResult, error) {
	leases, err := s.FindExpiredLeasesForRenewal(ctx)
	if err != nil {
		return nil, err
	}

	result := &RenewalResult{Processed: len(leases), Errors: []EntityError{}}
	for _, lease := range leases {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, err := s.RenewLease(ctx, lease.ID); err != nil {
			s.log.Warn("lease renewal failed",
				slog.String("lease_id", lease.ID.String()),
				slog.String("error", err.Error()),
			)
			result.Errors = append(result.Errors, EntityError{ID: lease.ID.String(), Error: err.Error()})
			continue
		}
		result.Renewed++
	}

	metrics.AddLeasesRenewed(result.Renewed)
	metrics.ObserveJobEntityErrors(constants.JobLeaseRenewal, len(result.Errors))

	tc, _ := tenancy.FromContext(ctx)
	s.log.Info("automatic renewals processed",
		slog.String("tenant_id", tc.TenantIDString()),
		slog.Int("processed", result.Processed),
		slog.Int("renewed", result.Renewed),
		slog.Int("errors", len(result.Errors)),
	)
	return result, nil
}
