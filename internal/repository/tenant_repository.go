package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/model"
	"gorm.io/gorm"
)

// TenantRepository reads and writes the tenants table. Tenants are not
// tenant-owned rows; callers reach other tenants only through bypassed
// contexts, which the service layer reserves for admin and system paths.
type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) Create(ctx context.Context, tenant *model.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *TenantRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Tenant{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *TenantRepository) ListByStatus(ctx context.Context, status string) ([]*model.Tenant, error) {
	var tenants []*model.Tenant
	err := r.db.WithContext(ctx).Where("status = ?", status).Order("created_at ASC").Find(&tenants).Error
	return tenants, err
}

func (r *TenantRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&model.Tenant{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *TenantRepository) UpdateConfig(ctx context.Context, id uuid.UUID, config model.JSONMap) error {
	res := r.db.WithContext(ctx).Model(&model.Tenant{}).Where("id = ?", id).Update("config", config)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
