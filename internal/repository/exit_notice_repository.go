package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExitNoticeRepository struct {
	db *gorm.DB
}

func NewExitNoticeRepository(db *gorm.DB) *ExitNoticeRepository {
	return &ExitNoticeRepository{db: db}
}

func (r *ExitNoticeRepository) Create(ctx context.Context, notice *model.ExitNotice) error {
	owner, err := ownerFor(ctx, notice.TenantID)
	if err != nil {
		return err
	}
	notice.TenantID = owner
	return r.db.WithContext(ctx).Create(notice).Error
}

func (r *ExitNoticeRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.ExitNotice, error) {
	var notice model.ExitNotice
	err := scoped(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&notice).Error
	if err != nil {
		return nil, err
	}
	return &notice, nil
}

func (r *ExitNoticeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := scoped(ctx, r.db).Model(&model.ExitNotice{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ExitNoticeRepository) HasPending(ctx context.Context, leaseID uuid.UUID) (bool, error) {
	var count int64
	err := scoped(ctx, r.db).Model(&model.ExitNotice{}).
		Where("lease_id = ? AND status = ?", leaseID, model.ExitNoticeStatusPending).
		Count(&count).Error
	return count > 0, err
}
