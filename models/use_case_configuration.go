package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackvolt/wattwise/utils"
)

// LoadProfileType represents the duty-cycle shape of a default load profile.
type LoadProfileType string

const (
	LoadProfileFlat     LoadProfileType = "flat"
	LoadProfileDaytime  LoadProfileType = "daytime_peak"
	LoadProfileEvening  LoadProfileType = "evening_peak"
	LoadProfileTwoShift LoadProfileType = "two_shift"
	LoadProfileAlwaysOn LoadProfileType = "always_on"
)

// Valid checks if the load profile type is valid.
func (t LoadProfileType) Valid() bool {
	switch t {
	case LoadProfileFlat,
		LoadProfileDaytime,
		LoadProfileEvening,
		LoadProfileTwoShift,
		LoadProfileAlwaysOn:
		return true
	default:
		return false
	}
}

// UseCaseConfiguration is a named default load profile for a use case.
// At most one configuration per use case may be the default; the partial
// unique index enforces the invariant at the schema level.
type UseCaseConfiguration struct {
	ID                   uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID                 uuid.UUID       `gorm:"type:uuid;uniqueIndex:uk_use_case_configurations_uuid;not null" json:"uuid"`
	UseCaseID            uint            `gorm:"not null;index:idx_use_case_configurations_use_case_id;uniqueIndex:uk_use_case_configurations_default,where:is_default" json:"use_case_id"`
	Name                 string          `gorm:"type:varchar(255);not null" json:"name"`
	TypicalLoadKW        float64         `gorm:"not null" json:"typical_load_kw"`
	PeakLoadKW           float64         `gorm:"not null" json:"peak_load_kw"`
	ProfileType          LoadProfileType `gorm:"type:varchar(30);not null;default:'flat'" json:"profile_type"`
	OperatingHoursPerDay float64         `gorm:"not null;default:12" json:"operating_hours_per_day"`
	StorageDurationHours float64         `gorm:"not null;default:4" json:"storage_duration_hours"`
	IsDefault            bool            `gorm:"not null;default:false" json:"is_default"`
	CreatedAt            time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	UseCase *UseCase `gorm:"foreignKey:UseCaseID;references:ID;constraint:OnDelete:CASCADE" json:"use_case,omitempty"`
}

func (UseCaseConfiguration) TableName() string { return "use_case_configurations" }

// BeforeCreate ensures UUID and timestamps are set.
func (c *UseCaseConfiguration) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// UseCaseConfigurationFilter represents filter criteria for configuration queries
type UseCaseConfigurationFilter struct {
	ID        *uint      `json:"id,omitempty"`
	UUID      *uuid.UUID `json:"uuid,omitempty"`
	UseCaseID *uint      `json:"use_case_id,omitempty"`
	IsDefault *bool      `json:"is_default,omitempty"`
}
