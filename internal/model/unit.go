package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Unit is a rentable space inside a property.
type Unit struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index"`
	PropertyName string    `json:"property_name" gorm:"size:255"`
	Label        string    `json:"label" gorm:"size:100;not null"`
	Status       string    `json:"status" gorm:"size:20;not null;default:'VACANT'"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Unit) TableName() string {
	return "units"
}

func (u *Unit) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

const (
	UnitStatusVacant   = "VACANT"
	UnitStatusOccupied = "OCCUPIED"
)
