package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/constants"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/repository"
	"github.com/taichu-system/rental-management/internal/utils"
)

type CreateLeaseRequest struct {
	UnitID                  uuid.UUID `json:"unit_id"`
	RenterID                uuid.UUID `json:"renter_id"`
	StartDate               time.Time `json:"start_date"`
	EndDate                 time.Time `json:"end_date"`
	MonthlyRent             float64   `json:"monthly_rent"`
	NoticeRequiredDays      int       `json:"notice_required_days"`
	EarlyTerminationPenalty *float64  `json:"early_termination_penalty"`
}

type LeaseService struct {
	store *repository.Store
	audit AuditSink
	log   *slog.Logger
}

func NewLeaseService(store *repository.Store, audit AuditSink, log *slog.Logger) *LeaseService {
	return &LeaseService{store: store, audit: audit, log: log}
}

func overlapping(unitID uuid.UUID) error {
	return utils.Validation(utils.ReasonOverlappingLease, "unit %s already has a draft or active lease in that period", unitID)
}

func (s *LeaseService) GetLease(ctx context.Context, id uuid.UUID) (*model.Lease, error) {
	var lease *model.Lease
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		var err error
		lease, err = tx.Leases.GetByID(ctx, id)
		return notFound(err, constants.ResourceTypeLease, id.String())
	})
	return lease, err
}

// CreateLease stores a DRAFT lease. Overlap with another DRAFT or ACTIVE
// lease of the same unit is rejected; the storage constraint is the final
// word when two requests race.
func (s *LeaseService) CreateLease(ctx context.Context, req CreateLeaseRequest) (*model.Lease, error) {
	start, end := startOfDay(req.StartDate), startOfDay(req.EndDate)
	if req.StartDate.IsZero() || req.EndDate.IsZero() || end.Before(start) {
		return nil, utils.Validation(utils.ReasonInvalidInput, "lease term must have a start date on or before its end date")
	}
	if req.MonthlyRent <= 0 {
		return nil, utils.Validation(utils.ReasonInvalidInput, "monthly rent must be positive")
	}
	if req.NoticeRequiredDays < 0 {
		return nil, utils.Validation(utils.ReasonInvalidInput, "notice period cannot be negative")
	}

	lease := &model.Lease{
		UnitID:                  req.UnitID,
		RenterID:                req.RenterID,
		StartDate:               start,
		EndDate:                 end,
		MonthlyRent:             RoundRent(req.MonthlyRent),
		Status:                  model.LeaseStatusDraft,
		NoticeRequiredDays:      req.NoticeRequiredDays,
		EarlyTerminationPenalty: req.EarlyTerminationPenalty,
	}
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		if _, err := tx.Units.GetByID(ctx, req.UnitID); err != nil {
			return notFound(err, constants.ResourceTypeUnit, req.UnitID.String())
		}
		count, err := tx.Leases.CountOverlapping(ctx, req.UnitID, start, end, uuid.Nil)
		if err != nil {
			return err
		}
		if count > 0 {
			return overlapping(req.UnitID)
		}
		if err := tx.Leases.Create(ctx, lease); err != nil {
			return asDuplicate(err, utils.ReasonOverlappingLease, "unit already has a draft or active lease in that period")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, constants.ActionCreate, constants.ResourceTypeLease, lease.ID.String(), nil, lease)
	return lease, nil
}

// ActivateLease moves a DRAFT lease to ACTIVE and marks its unit OCCUPIED.
func (s *LeaseService) ActivateLease(ctx context.Context, id uuid.UUID) (*model.Lease, error) {
	return s.transition(ctx, id, constants.ActionActivate, model.LeaseStatusDraft, model.LeaseStatusActive, model.UnitStatusOccupied)
}

// TerminateLease moves an ACTIVE lease to TERMINATED and frees its unit.
func (s *LeaseService) TerminateLease(ctx context.Context, id uuid.UUID) (*model.Lease, error) {
	return s.transition(ctx, id, constants.ActionTerminate, model.LeaseStatusActive, model.LeaseStatusTerminated, model.UnitStatusVacant)
}

func (s *LeaseService) transition(ctx context.Context, id uuid.UUID, action, from, to, unitStatus string) (*model.Lease, error) {
	var before, after model.Lease
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		lease, err := tx.Leases.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, constants.ResourceTypeLease, id.String())
		}
		if lease.Status != from {
			return utils.Validation(utils.ReasonInvalidState, "lease %s is %s, expected %s", lease.ID, lease.Status, from)
		}
		before = *lease

		if to == model.LeaseStatusActive {
			count, err := tx.Leases.CountOverlapping(ctx, lease.UnitID, lease.StartDate, lease.EndDate, lease.ID)
			if err != nil {
				return err
			}
			if count > 0 {
				return overlapping(lease.UnitID)
			}
		}

		lease.Status = to
		if err := tx.Leases.Update(ctx, lease); err != nil {
			return asDuplicate(err, utils.ReasonOverlappingLease, "unit already has a draft or active lease in that period")
		}
		if err := tx.Units.UpdateStatus(ctx, lease.UnitID, unitStatus); err != nil {
			return notFound(err, constants.ResourceTypeUnit, lease.UnitID.String())
		}
		after = *lease
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, action, constants.ResourceTypeLease, id.String(), &before, &after)
	return &after, nil
}

// SetContractPath stores the document reference of the signed contract.
func (s *LeaseService) SetContractPath(ctx context.Context, id uuid.UUID, path string) (*model.Lease, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, utils.Validation(utils.ReasonInvalidInput, "contract path is required")
	}
	return s.updateContractPath(ctx, id, path, constants.ActionSetContract)
}

func (s *LeaseService) ClearContractPath(ctx context.Context, id uuid.UUID) (*model.Lease, error) {
	return s.updateContractPath(ctx, id, "", constants.ActionClearContract)
}

func (s *LeaseService) updateContractPath(ctx context.Context, id uuid.UUID, path, action string) (*model.Lease, error) {
	var before, after model.Lease
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		lease, err := tx.Leases.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, constants.ResourceTypeLease, id.String())
		}
		before = *lease
		lease.ContractPath = path
		if err := tx.Leases.Update(ctx, lease); err != nil {
			return err
		}
		after = *lease
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, action, constants.ResourceTypeLease, id.String(),
		map[string]string{"contract_path": before.ContractPath},
		map[string]string{"contract_path": after.ContractPath})
	return &after, nil
}
