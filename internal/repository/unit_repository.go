package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/model"
	"gorm.io/gorm"
)

type UnitRepository struct {
	db *gorm.DB
}

func NewUnitRepository(db *gorm.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

func (r *UnitRepository) Create(ctx context.Context, unit *model.Unit) error {
	owner, err := ownerFor(ctx, unit.TenantID)
	if err != nil {
		return err
	}
	unit.TenantID = owner
	return r.db.WithContext(ctx).Create(unit).Error
}

func (r *UnitRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Unit, error) {
	var unit model.Unit
	if err := scoped(ctx, r.db).Where("id = ?", id).First(&unit).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *UnitRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := scoped(ctx, r.db).Model(&model.Unit{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
