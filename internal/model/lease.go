package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultNoticeRequiredDays applies when a lease does not set its own notice period.
const DefaultNoticeRequiredDays = 90

type Lease struct {
	ID                      uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID                uuid.UUID  `json:"tenant_id" gorm:"type:uuid;not null;index"`
	UnitID                  uuid.UUID  `json:"unit_id" gorm:"type:uuid;not null;index"`
	RenterID                uuid.UUID  `json:"renter_id" gorm:"type:uuid;index"`
	StartDate               time.Time  `json:"start_date" gorm:"type:date;not null"`
	EndDate                 time.Time  `json:"end_date" gorm:"type:date;not null;index"`
	MonthlyRent             float64    `json:"monthly_rent" gorm:"type:numeric(12,2);not null"`
	Status                  string     `json:"status" gorm:"size:20;not null;default:'DRAFT';index"`
	OriginalEndDate         *time.Time `json:"original_end_date" gorm:"type:date"`
	RenewalCount            int        `json:"renewal_count" gorm:"not null;default:0"`
	NoticeRequiredDays      int        `json:"notice_required_days" gorm:"not null;default:90"`
	EarlyTerminationPenalty *float64   `json:"early_termination_penalty" gorm:"type:numeric(12,2)"`
	LastIncreaseDate        *time.Time `json:"last_increase_date" gorm:"type:date"`
	ContractPath            string     `json:"contract_path" gorm:"size:500"`
	CreatedAt               time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt               time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Lease) TableName() string {
	return "leases"
}

func (l *Lease) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.NoticeRequiredDays == 0 {
		l.NoticeRequiredDays = DefaultNoticeRequiredDays
	}
	return nil
}

const (
	LeaseStatusDraft      = "DRAFT"
	LeaseStatusActive     = "ACTIVE"
	LeaseStatusExpired    = "EXPIRED"
	LeaseStatusTerminated = "TERMINATED"
)

// IncreaseBase is the date the next rent increase window is counted from.
func (l *Lease) IncreaseBase() time.Time {
	if l.LastIncreaseDate != nil {
		return *l.LastIncreaseDate
	}
	return l.StartDate
}
