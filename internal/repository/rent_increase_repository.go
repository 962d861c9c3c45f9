package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/model"
	"gorm.io/gorm"
)

type RentIncreaseRepository struct {
	db *gorm.DB
}

func NewRentIncreaseRepository(db *gorm.DB) *RentIncreaseRepository {
	return &RentIncreaseRepository{db: db}
}

func (r *RentIncreaseRepository) Create(ctx context.Context, increase *model.RentIncrease) error {
	owner, err := ownerFor(ctx, increase.TenantID)
	if err != nil {
		return err
	}
	increase.TenantID = owner
	return r.db.WithContext(ctx).Create(increase).Error
}

// ExistsForYear checks the one-increase-per-calendar-year policy.
func (r *RentIncreaseRepository) ExistsForYear(ctx context.Context, leaseID uuid.UUID, year int) (bool, error) {
	var count int64
	err := scoped(ctx, r.db).Model(&model.RentIncrease{}).
		Where("lease_id = ? AND effective_year = ?", leaseID, year).
		Count(&count).Error
	return count > 0, err
}

func (r *RentIncreaseRepository) ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*model.RentIncrease, error) {
	var increases []*model.RentIncrease
	err := scoped(ctx, r.db).Where("lease_id = ?", leaseID).Order("effective_date ASC").Find(&increases).Error
	return increases, err
}
