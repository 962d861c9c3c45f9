package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStatusChanged is returned when a conditional status update finds the
// payment no longer in the expected status.
var ErrStatusChanged = errors.New("payment status changed concurrently")

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := scoped(ctx, r.db).Where("id = ?", id).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetForUpdate locks the payment row for the rest of the transaction.
func (r *PaymentRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	err := scoped(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ExistsForPeriod checks the de-duplication key (lease, period start).
func (r *PaymentRepository) ExistsForPeriod(ctx context.Context, leaseID uuid.UUID, periodStart time.Time) (bool, error) {
	var count int64
	err := scoped(ctx, r.db).Model(&model.Payment{}).
		Where("lease_id = ? AND period_start = ?", leaseID, periodStart).
		Count(&count).Error
	return count > 0, err
}

// CreateBatch inserts payments, silently skipping rows whose (lease,
// period start) already exists. It returns the number of rows inserted.
func (r *PaymentRepository) CreateBatch(ctx context.Context, payments []*model.Payment) (int64, error) {
	if len(payments) == 0 {
		return 0, nil
	}
	for _, p := range payments {
		owner, err := ownerFor(ctx, p.TenantID)
		if err != nil {
			return 0, err
		}
		p.TenantID = owner
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lease_id"}, {Name: "period_start"}},
			DoNothing: true,
		}).
		CreateInBatches(payments, 100)
	return res.RowsAffected, res.Error
}

// UpdateStatus writes the settlement fields of payment only while the row
// is still in status from.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, payment *model.Payment, from string) error {
	res := scoped(ctx, r.db).Model(&model.Payment{}).
		Where("id = ? AND status = ?", payment.ID, from).
		Updates(map[string]interface{}{
			"status":       payment.Status,
			"method":       payment.Method,
			"payment_date": payment.PaymentDate,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (r *PaymentRepository) ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*model.Payment, error) {
	var payments []*model.Payment
	err := scoped(ctx, r.db).Where("lease_id = ?", leaseID).Order("period_start ASC").Find(&payments).Error
	return payments, err
}
