// Package models contains domain entities and business models for the sizing wizard
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackvolt/wattwise/utils"
)

// UseCase represents an industry vertical the wizard can size a battery system for
type UseCase struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID        uuid.UUID `gorm:"type:uuid;uniqueIndex:uk_use_cases_uuid;not null" json:"uuid"`
	Slug        string    `gorm:"type:varchar(100);not null;uniqueIndex:uk_use_cases_slug" json:"slug"`
	DisplayName string    `gorm:"type:varchar(255);not null" json:"display_name"`
	Category    string    `gorm:"type:varchar(100);not null;index:idx_use_cases_category" json:"category"`
	ImageURL    *string   `gorm:"type:varchar(500)" json:"image_url,omitempty"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	IsActive    *bool     `gorm:"default:true;index:idx_use_cases_is_active" json:"is_active"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Questions      []CustomQuestion       `gorm:"foreignKey:UseCaseID;references:ID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	Configurations []UseCaseConfiguration `gorm:"foreignKey:UseCaseID;references:ID;constraint:OnDelete:CASCADE" json:"configurations,omitempty"`
}

func (UseCase) TableName() string { return "use_cases" }

// BeforeCreate ensures UUID and timestamps are set.
func (u *UseCase) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == uuid.Nil {
		u.UUID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = utils.UTCNow()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// UseCaseFilter represents filter criteria for use case queries
type UseCaseFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	Slug          *string    `json:"slug,omitempty"`
	Category      *string    `json:"category,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
