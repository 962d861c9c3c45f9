package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant is a landlord or property-management account.
type Tenant struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;size:100;not null"`
	Status    string    `json:"status" gorm:"size:20;not null;default:'ACTIVE'"`
	Plan      string    `json:"plan" gorm:"size:50"`
	Config    JSONMap   `json:"config" gorm:"type:jsonb"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Tenant) TableName() string {
	return "tenants"
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

const (
	TenantStatusActive    = "ACTIVE"
	TenantStatusSuspended = "SUSPENDED"
)

// Tenant config keys.
const (
	ConfigKeyTimezone = "timezone"
	ConfigKeyFeatures = "features"
	ConfigKeyIPCRates = "ipc_rates"
)

func (t *Tenant) IsSuspended() bool {
	return t.Status == TenantStatusSuspended
}

// IPCRate returns the reference index rate stored for year.
func (t *Tenant) IPCRate(year int) (float64, bool) {
	rates, ok := t.Config.GetMap(ConfigKeyIPCRates)
	if !ok {
		return 0, false
	}
	switch v := rates[strconv.Itoa(year)].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// SetIPCRate records rate for year, keeping the rest of the history.
func (t *Tenant) SetIPCRate(year int, rate float64) {
	if t.Config == nil {
		t.Config = JSONMap{}
	}
	rates, ok := t.Config.GetMap(ConfigKeyIPCRates)
	if !ok {
		rates = JSONMap{}
	}
	updated := make(map[string]interface{}, len(rates)+1)
	for k, v := range rates {
		updated[k] = v
	}
	updated[strconv.Itoa(year)] = rate
	t.Config[ConfigKeyIPCRates] = updated
}
