package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackvolt/wattwise/utils"
)

// SavedScenario is a snapshot of one wizard run: the full input state, the
// cached sizing result, and denormalized summary metrics for sorting and
// comparison without re-parsing JSON. A scenario is owned by a user or by an
// anonymous session token, never both.
type SavedScenario struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID        uuid.UUID `gorm:"type:uuid;uniqueIndex:uk_saved_scenarios_uuid;not null" json:"uuid"`
	UserID      *uint     `gorm:"index:idx_saved_scenarios_user_id" json:"user_id,omitempty"`
	SessionID   *string   `gorm:"type:varchar(128);index:idx_saved_scenarios_session_id" json:"session_id,omitempty"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	UseCaseSlug string    `gorm:"type:varchar(100);not null;index:idx_saved_scenarios_use_case_slug" json:"use_case_slug"`

	InputState        json.RawMessage `gorm:"type:jsonb;not null" json:"input_state"`
	CalculatedResults json.RawMessage `gorm:"type:jsonb;default:'{}'" json:"calculated_results"`

	PeakKW        float64 `gorm:"not null;default:0" json:"peak_kw"`
	KWhCapacity   float64 `gorm:"not null;default:0" json:"kwh_capacity"`
	TotalCost     float64 `gorm:"not null;default:0" json:"total_cost"`
	AnnualSavings float64 `gorm:"not null;default:0" json:"annual_savings"`
	PaybackYears  float64 `gorm:"not null;default:0" json:"payback_years"`

	IsBaseline *bool     `gorm:"default:false" json:"is_baseline"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_saved_scenarios_created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (SavedScenario) TableName() string { return "saved_scenarios" }

// BeforeCreate ensures UUID and timestamps are set.
func (s *SavedScenario) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == uuid.Nil {
		s.UUID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = utils.UTCNow()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// IsAnonymous reports whether the scenario belongs to a session rather than a user.
func (s *SavedScenario) IsAnonymous() bool {
	return s.UserID == nil
}

// SavedScenarioFilter represents filter criteria for saved scenario queries
type SavedScenarioFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	UserID        *uint      `json:"user_id,omitempty"`
	SessionID     *string    `json:"session_id,omitempty"`
	UseCaseSlug   *string    `json:"use_case_slug,omitempty"`
	IsBaseline    *bool      `json:"is_baseline,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
