package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/stackvolt/wattwise/utils"
)

// ConfigCategory tags the shape of a pricing configuration document.
type ConfigCategory string

const (
	ConfigCategoryEquipmentPricing ConfigCategory = "equipment_pricing"
	ConfigCategoryUIBounds         ConfigCategory = "ui_bounds"
	ConfigCategoryElectricityRates ConfigCategory = "electricity_rates"
)

// Valid checks if the config category is valid.
func (c ConfigCategory) Valid() bool {
	switch c {
	case ConfigCategoryEquipmentPricing,
		ConfigCategoryUIBounds,
		ConfigCategoryElectricityRates:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ConfigCategory.
func (c *ConfigCategory) Scan(value any) error {
	if value == nil {
		*c = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*c = ConfigCategory(v)
	case []byte:
		*c = ConfigCategory(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ConfigCategory", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ConfigCategory.
func (c ConfigCategory) Value() (driver.Value, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid ConfigCategory: %s", c)
	}
	return string(c), nil
}

// PricingConfiguration is a keyed JSON document holding nested numeric tables
// (equipment prices, UI slider bounds, electricity rates). Consumers fetch by
// config_key and interpret the body per the category contract; the shape is
// validated at write time by the flow layer.
type PricingConfiguration struct {
	ID             uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	ConfigKey      string          `gorm:"type:varchar(100);not null;uniqueIndex:uk_pricing_configurations_config_key" json:"config_key"`
	ConfigCategory ConfigCategory  `gorm:"type:varchar(50);not null;index:idx_pricing_configurations_category" json:"config_category"`
	ConfigData     json.RawMessage `gorm:"type:jsonb;not null" json:"config_data"`
	Version        string          `gorm:"type:varchar(20);not null;default:'1.0'" json:"version"`
	Description    *string         `gorm:"type:text" json:"description,omitempty"`
	IsActive       *bool           `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (PricingConfiguration) TableName() string { return "pricing_configurations" }

// BeforeCreate ensures timestamps are set.
func (p *PricingConfiguration) BeforeCreate(tx *gorm.DB) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// PricingConfigurationFilter represents filter criteria for pricing configuration queries
type PricingConfigurationFilter struct {
	ID             *uint           `json:"id,omitempty"`
	ConfigKey      *string         `json:"config_key,omitempty"`
	ConfigCategory *ConfigCategory `json:"config_category,omitempty"`
	IsActive       *bool           `json:"is_active,omitempty"`
}
