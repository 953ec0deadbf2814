package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/stackvolt/wattwise/utils"
)

// ComparisonSet groups saved scenarios for a side-by-side view. Ordering is
// the array order of ScenarioIDs; position is resolved explicitly at query
// time rather than by storage order.
type ComparisonSet struct {
	ID          uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID        uuid.UUID     `gorm:"type:uuid;uniqueIndex:uk_comparison_sets_uuid;not null" json:"uuid"`
	UserID      *uint         `gorm:"index:idx_comparison_sets_user_id" json:"user_id,omitempty"`
	SessionID   *string       `gorm:"type:varchar(128);index:idx_comparison_sets_session_id" json:"session_id,omitempty"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	ScenarioIDs pq.Int64Array `gorm:"type:bigint[];not null" json:"scenario_ids"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_comparison_sets_created_at" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ComparisonSet) TableName() string { return "comparison_sets" }

// BeforeCreate ensures UUID and timestamps are set.
func (c *ComparisonSet) BeforeCreate(tx *gorm.DB) error {
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

// ComparisonSetFilter represents filter criteria for comparison set queries
type ComparisonSetFilter struct {
	ID        *uint      `json:"id,omitempty"`
	UUID      *uuid.UUID `json:"uuid,omitempty"`
	UserID    *uint      `json:"user_id,omitempty"`
	SessionID *string    `json:"session_id,omitempty"`
}
