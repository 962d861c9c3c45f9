package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RentIncrease is the append-only history of lease rent changes, at most one
// per lease and calendar year.
type RentIncrease struct {
	ID                 uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID           uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index"`
	LeaseID            uuid.UUID `json:"lease_id" gorm:"type:uuid;not null;uniqueIndex:uq_rent_increases_lease_year"`
	OldRent            float64   `json:"old_rent" gorm:"type:numeric(12,2);not null"`
	NewRent            float64   `json:"new_rent" gorm:"type:numeric(12,2);not null"`
	IncreasePercentage float64   `json:"increase_percentage" gorm:"type:numeric(6,2);not null"`
	EffectiveDate      time.Time `json:"effective_date" gorm:"type:date;not null"`
	EffectiveYear      int       `json:"effective_year" gorm:"not null;uniqueIndex:uq_rent_increases_lease_year"`
	Reason             string    `json:"reason" gorm:"type:text"`
	AppliedBy          string    `json:"applied_by" gorm:"size:100;not null"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (RentIncrease) TableName() string {
	return "rent_increases"
}

func (r *RentIncrease) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.EffectiveYear = r.EffectiveDate.Year()
	return nil
}
