package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExitNotice struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID        uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index"`
	LeaseID         uuid.UUID `json:"lease_id" gorm:"type:uuid;not null;index"`
	NoticeDate      time.Time `json:"notice_date" gorm:"type:date;not null"`
	PlannedExitDate time.Time `json:"planned_exit_date" gorm:"type:date;not null"`
	Reason          string    `json:"reason" gorm:"type:text"`
	Status          string    `json:"status" gorm:"size:20;not null;default:'PENDING'"`
	PenaltyAmount   float64   `json:"penalty_amount" gorm:"type:numeric(12,2);not null;default:0"`
	PenaltyWaived   bool      `json:"penalty_waived" gorm:"not null;default:false"`
	MutualAgreement bool      `json:"mutual_agreement" gorm:"not null;default:false"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ExitNotice) TableName() string {
	return "exit_notices"
}

func (e *ExitNotice) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

const (
	ExitNoticeStatusPending   = "PENDING"
	ExitNoticeStatusConfirmed = "CONFIRMED"
	ExitNoticeStatusCancelled = "CANCELLED"
)
