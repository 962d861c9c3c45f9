package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog is append-only; the application never updates or deletes rows.
type AuditLog struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID     *uuid.UUID `json:"tenant_id" gorm:"type:uuid;index"`
	UserID       string     `json:"user_id" gorm:"size:100;not null"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:100;not null"`
	ResourceID   string     `json:"resource_id" gorm:"size:255;index"`
	OldValues    JSONMap    `json:"old_values" gorm:"type:jsonb"`
	NewValues    JSONMap    `json:"new_values" gorm:"type:jsonb"`
	Timestamp    time.Time  `json:"timestamp" gorm:"autoCreateTime;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Tenant{},
		&Unit{},
		&Lease{},
		&Payment{},
		&RentIncrease{},
		&ExitNotice{},
		&AuditLog{},
	}
}

// TenantOwnedTables lists the tables protected by row security.
func TenantOwnedTables() []string {
	return []string{
		Unit{}.TableName(),
		Lease{}.TableName(),
		Payment{}.TableName(),
		RentIncrease{}.TableName(),
		ExitNotice{}.TableName(),
		AuditLog{}.TableName(),
	}
}
