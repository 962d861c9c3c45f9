package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/constants"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/repository"
	"github.com/taichu-system/rental-management/internal/tenancy"
	"github.com/taichu-system/rental-management/internal/utils"
)

// IncreasePreview describes the candidate increase of one ACTIVE lease.
type IncreasePreview struct {
	LeaseID      uuid.UUID `json:"lease_id"`
	UnitID       uuid.UUID `json:"unit_id"`
	CurrentRent  float64   `json:"current_rent"`
	NewRent      float64   `json:"new_rent"`
	Percentage   float64   `json:"percentage"`
	Eligible     bool      `json:"eligible"`
	EligibleFrom time.Time `json:"eligible_from"`
	Reason       string    `json:"reason,omitempty"`
}

// ApplyIncreaseRequest sets either NewRent or Percentage. An explicit
// NewRent wins and the percentage is derived from it.
type ApplyIncreaseRequest struct {
	LeaseID       uuid.UUID `json:"lease_id"`
	NewRent       *float64  `json:"new_rent"`
	Percentage    *float64  `json:"percentage"`
	EffectiveDate time.Time `json:"effective_date"`
	Reason        string    `json:"reason"`
}

// BulkIncreaseResult is the outcome of one entry of a bulk apply.
type BulkIncreaseResult struct {
	LeaseID  uuid.UUID           `json:"lease_id"`
	Applied  bool                `json:"applied"`
	Increase *model.RentIncrease `json:"increase,omitempty"`
	Error    string              `json:"error,omitempty"`
}

type IndexationService struct {
	store *repository.Store
	audit AuditSink
	log   *slog.Logger
	now   Clock
}

func NewIndexationService(store *repository.Store, audit AuditSink, log *slog.Logger, now Clock) *IndexationService {
	return &IndexationService{store: store, audit: audit, log: log, now: now}
}

// RoundRent rounds to the nearest whole currency unit.
func RoundRent(v float64) float64 {
	return math.Round(v)
}

func roundPercentage(v float64) float64 {
	return math.Round(v*100) / 100
}

// EligibleFrom is the first day lease may receive its next increase.
func EligibleFrom(lease *model.Lease) time.Time {
	return addYears(lease.IncreaseBase(), 1)
}

func previewLease(lease *model.Lease, percentage float64, target time.Time) IncreasePreview {
	eligibleFrom := EligibleFrom(lease)
	p := IncreasePreview{
		LeaseID:      lease.ID,
		UnitID:       lease.UnitID,
		CurrentRent:  lease.MonthlyRent,
		NewRent:      RoundRent(lease.MonthlyRent * (1 + percentage/100)),
		Percentage:   percentage,
		EligibleFrom: eligibleFrom,
		Eligible:     !startOfDay(target).Before(eligibleFrom),
	}
	if !p.Eligible {
		p.Reason = fmt.Sprintf("last change on %s; next increase allowed from %s",
			startOfDay(lease.IncreaseBase()).Format(utils.DateLayout),
			eligibleFrom.Format(utils.DateLayout))
	}
	return p
}

// PreviewIncreases computes the candidate rent of every ACTIVE lease at
// targetDate. It never writes.
func (s *IndexationService) PreviewIncreases(ctx context.Context, percentage float64, targetDate time.Time) ([]IncreasePreview, error) {
	if percentage <= -100 || math.IsNaN(percentage) || math.IsInf(percentage, 0) {
		return nil, utils.Validation(utils.ReasonInvalidInput, "invalid percentage %v", percentage)
	}

	var previews []IncreasePreview
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		leases, err := tx.Leases.ListByStatus(ctx, model.LeaseStatusActive)
		if err != nil {
			return err
		}
		previews = make([]IncreasePreview, 0, len(leases))
		for _, lease := range leases {
			previews = append(previews, previewLease(lease, percentage, targetDate))
		}
		return nil
	})
	return previews, err
}

// PreviewIncreasesByIPC previews with the tenant's reference rate for the
// year of targetDate.
func (s *IndexationService) PreviewIncreasesByIPC(ctx context.Context, targetDate time.Time) ([]IncreasePreview, error) {
	rate, err := s.GetIPCForYear(ctx, targetDate.Year())
	if err != nil {
		return nil, err
	}
	return s.PreviewIncreases(ctx, rate, targetDate)
}

func resolveIncrease(current float64, req ApplyIncreaseRequest) (newRent, percentage float64, err error) {
	switch {
	case req.NewRent != nil:
		if *req.NewRent <= 0 {
			return 0, 0, utils.Validation(utils.ReasonInvalidInput, "new rent must be positive")
		}
		newRent = RoundRent(*req.NewRent)
		if current > 0 {
			percentage = roundPercentage((newRent/current - 1) * 100)
		}
	case req.Percentage != nil:
		if *req.Percentage <= -100 {
			return 0, 0, utils.Validation(utils.ReasonInvalidInput, "invalid percentage %v", *req.Percentage)
		}
		percentage = *req.Percentage
		newRent = RoundRent(current * (1 + percentage/100))
	default:
		return 0, 0, utils.Validation(utils.ReasonInvalidInput, "either new_rent or percentage is required")
	}
	return newRent, percentage, nil
}

// ApplyIncrease records a rent increase and updates the lease in one unit of
// work. A second increase for the same lease in the same calendar year is
// rejected whatever its amount.
func (s *IndexationService) ApplyIncrease(ctx context.Context, req ApplyIncreaseRequest) (*model.RentIncrease, error) {
	tc, err := tenancy.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req.EffectiveDate.IsZero() {
		req.EffectiveDate = s.now()
	}
	effective := startOfDay(req.EffectiveDate)
	year := effective.Year()

	var before, after model.Lease
	var increase *model.RentIncrease
	err = s.store.Transaction(ctx, func(tx *repository.Tx) error {
		lease, err := tx.Leases.GetForUpdate(ctx, req.LeaseID)
		if err != nil {
			return notFound(err, constants.ResourceTypeLease, req.LeaseID.String())
		}
		if lease.Status != model.LeaseStatusActive {
			return utils.Validation(utils.ReasonInvalidState, "lease %s is %s, only ACTIVE leases can be increased", lease.ID, lease.Status)
		}
		before = *lease

		exists, err := tx.RentIncreases.ExistsForYear(ctx, lease.ID, year)
		if err != nil {
			return err
		}
		if exists {
			return duplicateIncrease(lease.ID, year)
		}

		newRent, percentage, err := resolveIncrease(lease.MonthlyRent, req)
		if err != nil {
			return err
		}

		increase = &model.RentIncrease{
			LeaseID:            lease.ID,
			OldRent:            lease.MonthlyRent,
			NewRent:            newRent,
			IncreasePercentage: percentage,
			EffectiveDate:      effective,
			Reason:             req.Reason,
			AppliedBy:          tc.UserID,
		}
		if err := tx.RentIncreases.Create(ctx, increase); err != nil {
			if utils.IsConstraintViolation(err) {
				return duplicateIncrease(lease.ID, year)
			}
			return err
		}

		lease.MonthlyRent = newRent
		lease.LastIncreaseDate = &effective
		if err := tx.Leases.Update(ctx, lease); err != nil {
			return err
		}
		after = *lease
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, constants.ActionApplyIncrease, constants.ResourceTypeLease, req.LeaseID.String(), &before, &after)
	s.log.Info("rent increase applied",
		slog.String("tenant_id", tc.TenantIDString()),
		slog.String("lease_id", req.LeaseID.String()),
		slog.Float64("old_rent", increase.OldRent),
		slog.Float64("new_rent", increase.NewRent),
	)
	return increase, nil
}

func duplicateIncrease(leaseID uuid.UUID, year int) error {
	return utils.Validation(utils.ReasonDuplicateIncrease, "lease %s already has a rent increase in %d", leaseID, year)
}

// BulkApplyIncreases applies each entry in order through ApplyIncrease. It is
// best effort: a failed entry does not undo the entries applied before it.
func (s *IndexationService) BulkApplyIncreases(ctx context.Context, reqs []ApplyIncreaseRequest) []BulkIncreaseResult {
	results := make([]BulkIncreaseResult, 0, len(reqs))
	for _, req := range reqs {
		result := BulkIncreaseResult{LeaseID: req.LeaseID}
		increase, err := s.ApplyIncrease(ctx, req)
		if err != nil {
			result.Error = err.Error()
			if appErr, ok := utils.AsError(err); ok {
				result.Error = appErr.Message
			}
		} else {
			result.Applied = true
			result.Increase = increase
		}
		results = append(results, result)
	}
	return results
}

// GetIPCForYear returns the reference index rate the tenant stored for year.
func (s *IndexationService) GetIPCForYear(ctx context.Context, year int) (float64, error) {
	tenantID, err := tenancy.OwnerID(ctx)
	if err != nil {
		return 0, err
	}
	var rate float64
	err = s.store.Transaction(ctx, func(tx *repository.Tx) error {
		tenant, err := tx.Tenants.GetByID(ctx, tenantID)
		if err != nil {
			return notFound(err, constants.ResourceTypeTenant, tenantID.String())
		}
		r, ok := tenant.IPCRate(year)
		if !ok {
			return utils.Validation(utils.ReasonMissingConfig, "no IPC rate configured for %d", year)
		}
		rate = r
		return nil
	})
	return rate, err
}

// SetIPCForYear stores rate for year in the tenant configuration.
func (s *IndexationService) SetIPCForYear(ctx context.Context, year int, rate float64) error {
	tenantID, err := tenancy.OwnerID(ctx)
	if err != nil {
		return err
	}
	if year < 1900 || year > 9999 {
		return utils.Validation(utils.ReasonInvalidInput, "invalid year %d", year)
	}
	if rate <= -100 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return utils.Validation(utils.ReasonInvalidInput, "invalid rate %v", rate)
	}

	var previous interface{}
	err = s.store.Transaction(ctx, func(tx *repository.Tx) error {
		tenant, err := tx.Tenants.GetByID(ctx, tenantID)
		if err != nil {
			return notFound(err, constants.ResourceTypeTenant, tenantID.String())
		}
		if old, ok := tenant.IPCRate(year); ok {
			previous = map[string]float64{"rate": old}
		}
		tenant.SetIPCRate(year, rate)
		return tx.Tenants.UpdateConfig(ctx, tenant.ID, tenant.Config)
	})
	if err != nil {
		return err
	}

	s.audit.Log(ctx, constants.ActionSetIPC, constants.ResourceTypeTenant, tenantID.String(),
		previous, map[string]interface{}{"year": year, "rate": rate})
	return nil
}
