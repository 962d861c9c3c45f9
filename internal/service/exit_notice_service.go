package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/constants"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/repository"
	"github.com/taichu-system/rental-management/internal/utils"
)

type CreateExitNoticeRequest struct {
	LeaseID         uuid.UUID `json:"lease_id"`
	PlannedExitDate time.Time `json:"planned_exit_date"`
	Reason          string    `json:"reason"`
	MutualAgreement bool      `json:"mutual_agreement"`
}

type ExitNoticeService struct {
	store *repository.Store
	audit AuditSink
	log   *slog.Logger
	now   Clock
}

func NewExitNoticeService(store *repository.Store, audit AuditSink, log *slog.Logger, now Clock) *ExitNoticeService {
	return &ExitNoticeService{store: store, audit: audit, log: log, now: now}
}

// EarlyTerminationPenalty is owed only when the exit falls inside the first
// year of the lease and is not mutually agreed. It is the lease override
// when set, otherwise two months of rent.
func EarlyTerminationPenalty(lease *model.Lease, today time.Time, mutual bool) float64 {
	if mutual {
		return 0
	}
	if !startOfDay(today).Before(addYears(lease.StartDate, 1)) {
		return 0
	}
	if lease.EarlyTerminationPenalty != nil {
		return *lease.EarlyTerminationPenalty
	}
	return 2 * lease.MonthlyRent
}

// CreateExitNotice validates the notice period against the lease and
// records a PENDING notice with its penalty.
func (s *ExitNoticeService) CreateExitNotice(ctx context.Context, req CreateExitNoticeRequest) (*model.ExitNotice, error) {
	today := startOfDay(s.now())
	planned := startOfDay(req.PlannedExitDate)
	if req.PlannedExitDate.IsZero() {
		return nil, utils.Validation(utils.ReasonInvalidInput, "planned exit date is required")
	}

	var notice *model.ExitNotice
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		lease, err := tx.Leases.GetForUpdate(ctx, req.LeaseID)
		if err != nil {
			return notFound(err, constants.ResourceTypeLease, req.LeaseID.String())
		}
		if lease.Status != model.LeaseStatusActive {
			return utils.Validation(utils.ReasonInvalidState, "lease %s is %s, only ACTIVE leases accept exit notices", lease.ID, lease.Status)
		}

		required := lease.NoticeRequiredDays
		if required <= 0 {
			required = model.DefaultNoticeRequiredDays
		}
		if days := daysBetween(today, planned); days < required {
			return utils.Validation(utils.ReasonInsufficientNotice,
				"exit requires %d days of notice, %s is only %d days away",
				required, planned.Format(utils.DateLayout), days)
		}

		pending, err := tx.ExitNotices.HasPending(ctx, lease.ID)
		if err != nil {
			return err
		}
		if pending {
			return utils.Validation(utils.ReasonDuplicate, "lease %s already has a pending exit notice", lease.ID)
		}

		notice = &model.ExitNotice{
			LeaseID:         lease.ID,
			NoticeDate:      today,
			PlannedExitDate: planned,
			Reason:          req.Reason,
			Status:          model.ExitNoticeStatusPending,
			PenaltyAmount:   EarlyTerminationPenalty(lease, today, req.MutualAgreement),
			PenaltyWaived:   req.MutualAgreement,
			MutualAgreement: req.MutualAgreement,
		}
		return tx.ExitNotices.Create(ctx, notice)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, constants.ActionCreateNotice, constants.ResourceTypeExitNotice, notice.ID.String(), nil, notice)
	return notice, nil
}

// ConfirmExitNotice shortens the lease to the planned exit date and marks
// the notice CONFIRMED, atomically.
func (s *ExitNoticeService) ConfirmExitNotice(ctx context.Context, id uuid.UUID) (*model.ExitNotice, error) {
	var notice *model.ExitNotice
	var leaseBefore, leaseAfter model.Lease
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		var err error
		notice, err = tx.ExitNotices.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, constants.ResourceTypeExitNotice, id.String())
		}
		if notice.Status != model.ExitNoticeStatusPending {
			return utils.Validation(utils.ReasonInvalidState, "exit notice %s is %s, only PENDING notices can be confirmed", notice.ID, notice.Status)
		}

		lease, err := tx.Leases.GetForUpdate(ctx, notice.LeaseID)
		if err != nil {
			return notFound(err, constants.ResourceTypeLease, notice.LeaseID.String())
		}
		leaseBefore = *lease
		lease.EndDate = notice.PlannedExitDate
		if err := tx.Leases.Update(ctx, lease); err != nil {
			return err
		}
		leaseAfter = *lease

		if err := tx.ExitNotices.UpdateStatus(ctx, notice.ID, model.ExitNoticeStatusConfirmed); err != nil {
			return err
		}
		notice.Status = model.ExitNoticeStatusConfirmed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, constants.ActionConfirmNotice, constants.ResourceTypeLease, leaseAfter.ID.String(), &leaseBefore, &leaseAfter)
	s.audit.Log(ctx, constants.ActionConfirmNotice, constants.ResourceTypeExitNotice, notice.ID.String(),
		map[string]string{"status": model.ExitNoticeStatusPending}, notice)
	return notice, nil
}

// CancelExitNotice marks a PENDING notice CANCELLED. The lease is untouched.
func (s *ExitNoticeService) CancelExitNotice(ctx context.Context, id uuid.UUID) (*model.ExitNotice, error) {
	var notice *model.ExitNotice
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		var err error
		notice, err = tx.ExitNotices.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, constants.ResourceTypeExitNotice, id.String())
		}
		if notice.Status != model.ExitNoticeStatusPending {
			return utils.Validation(utils.ReasonInvalidState, "exit notice %s is %s, only PENDING notices can be cancelled", notice.ID, notice.Status)
		}
		if err := tx.ExitNotices.UpdateStatus(ctx, notice.ID, model.ExitNoticeStatusCancelled); err != nil {
			return err
		}
		notice.Status = model.ExitNoticeStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, constants.ActionCancelNotice, constants.ResourceTypeExitNotice, notice.ID.String(),
		map[string]string{"status": model.ExitNoticeStatusPending}, notice)
	return notice, nil
}
