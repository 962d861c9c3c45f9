package repository

import (
	"context"
	"time"

	"github.com/taichu-system/rental-management/internal/model"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create appends an audit row. The owner is taken from the entry itself
// because super administrators log without a tenant.
func (r *AuditRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

type AuditListParams struct {
	Action       string
	ResourceType string
	ResourceID   string
	UserID       string
	StartTime    time.Time
	EndTime      time.Time
	Limit        int
	Offset       int
}

func (r *AuditRepository) List(ctx context.Context, params AuditListParams) ([]*model.AuditLog, int64, error) {
	var logs []*model.AuditLog
	var total int64

	query := scoped(ctx, r.db).Model(&model.AuditLog{})

	if params.Action != "" {
		query = query.Where("action = ?", params.Action)
	}

	if params.ResourceType != "" {
		query = query.Where("resource_type = ?", params.ResourceType)
	}

	if params.ResourceID != "" {
		query = query.Where("resource_id = ?", params.ResourceID)
	}

	if params.UserID != "" {
		query = query.Where("user_id = ?", params.UserID)
	}

	if !params.StartTime.IsZero() {
		query = query.Where("timestamp >= ?", params.StartTime)
	}

	if !params.EndTime.IsZero() {
		query = query.Where("timestamp <= ?", params.EndTime)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Limit > 0 {
		query = query.Limit(params.Limit)
	}

	if params.Offset > 0 {
		query = query.Offset(params.Offset)
	}

	if err := query.Order("timestamp DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
