package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment is one billing-period charge of a lease. (lease_id, period_start)
// is unique.
type Payment struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index"`
	LeaseID     uuid.UUID `json:"lease_id" gorm:"type:uuid;not null;uniqueIndex:uq_payments_lease_period"`
	Amount      float64   `json:"amount" gorm:"type:numeric(12,2);not null"`
	PaymentDate time.Time `json:"payment_date" gorm:"type:date;not null"`
	PeriodStart time.Time `json:"period_start" gorm:"type:date;not null;uniqueIndex:uq_payments_lease_period"`
	PeriodEnd   time.Time `json:"period_end" gorm:"type:date;not null"`
	Status      string    `json:"status" gorm:"size:20;not null;default:'PENDING';index"`
	Method      string    `json:"method" gorm:"size:50"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusRefunded  = "REFUNDED"
)
