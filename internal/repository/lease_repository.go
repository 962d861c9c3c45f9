package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeaseRepository struct {
	db *gorm.DB
}

func NewLeaseRepository(db *gorm.DB) *LeaseRepository {
	return &LeaseRepository{db: db}
}

func (r *LeaseRepository) Create(ctx context.Context, lease *model.Lease) error {
	owner, err := ownerFor(ctx, lease.TenantID)
	if err != nil {
		return err
	}
	lease.TenantID = owner
	return r.db.WithContext(ctx).Create(lease).Error
}

func (r *LeaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Lease, error) {
	var lease model.Lease
	if err := scoped(ctx, r.db).Where("id = ?", id).First(&lease).Error; err != nil {
		return nil, err
	}
	return &lease, nil
}

// GetForUpdate locks the lease row for the rest of the transaction.
func (r *LeaseRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Lease, error) {
	var lease model.Lease
	err := scoped(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&lease).Error
	if err != nil {
		return nil, err
	}
	return &lease, nil
}

// Update writes every mutable column of lease.
func (r *LeaseRepository) Update(ctx context.Context, lease *model.Lease) error {
	res := scoped(ctx, r.db).
		Model(lease).
		Select("*").
		Omit("id", "tenant_id", "created_at").
		Updates(lease)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *LeaseRepository) ListByStatus(ctx context.Context, status string) ([]*model.Lease, error) {
	var leases []*model.Lease
	err := scoped(ctx, r.db).Where("status = ?", status).Order("start_date ASC").Find(&leases).Error
	return leases, err
}

// ListActiveEndingBefore returns ACTIVE leases whose end date is strictly
// before cutoff.
func (r *LeaseRepository) ListActiveEndingBefore(ctx context.Context, cutoff time.Time) ([]*model.Lease, error) {
	var leases []*model.Lease
	err := scoped(ctx, r.db).
		Where("status = ? AND end_date < ?", model.LeaseStatusActive, cutoff).
		Order("end_date ASC").
		Find(&leases).Error
	return leases, err
}

// CountOverlapping counts DRAFT or ACTIVE leases of unit whose term
// intersects [start, end], excluding the lease excludeID.
func (r *LeaseRepository) CountOverlapping(ctx context.Context, unitID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (int64, error) {
	var count int64
	query := scoped(ctx, r.db).Model(&model.Lease{}).
		Where("unit_id = ?", unitID).
		Where("status IN ?", []string{model.LeaseStatusDraft, model.LeaseStatusActive}).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count, err
}
