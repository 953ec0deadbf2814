package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/stackvolt/wattwise/utils"
)

// EquipmentType represents the kind of equipment a price quote covers.
// The type determines which unit-price column is semantically valid.
type EquipmentType string

const (
	EquipmentTypeBattery     EquipmentType = "battery"
	EquipmentTypeInverter    EquipmentType = "inverter"
	EquipmentTypeSolarPanel  EquipmentType = "solar_panel"
	EquipmentTypeTransformer EquipmentType = "transformer"
	EquipmentTypeGenerator   EquipmentType = "generator"
)

// Valid checks if the equipment type is valid.
func (t EquipmentType) Valid() bool {
	switch t {
	case EquipmentTypeBattery,
		EquipmentTypeInverter,
		EquipmentTypeSolarPanel,
		EquipmentTypeTransformer,
		EquipmentTypeGenerator:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for EquipmentType.
func (t *EquipmentType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = EquipmentType(v)
	case []byte:
		*t = EquipmentType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into EquipmentType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for EquipmentType.
func (t EquipmentType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid EquipmentType: %s", t)
	}
	return string(t), nil
}

// ConfidenceLevel rates how reliable a vendor quote is.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// EquipmentPricing is a vendor price quote row. Exactly one unit-price column
// is populated depending on EquipmentType; min_capacity_mw <= max_capacity_mw
// when both are present.
type EquipmentPricing struct {
	ID            uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	EquipmentType EquipmentType `gorm:"type:varchar(30);not null;index:idx_equipment_pricing_type" json:"equipment_type"`
	Vendor        string        `gorm:"type:varchar(255);not null" json:"vendor"`

	PricePerKWh  *float64 `json:"price_per_kwh,omitempty"`  // battery
	PricePerKW   *float64 `json:"price_per_kw,omitempty"`   // inverter, generator
	PricePerWatt *float64 `json:"price_per_watt,omitempty"` // solar_panel
	PricePerUnit *float64 `json:"price_per_unit,omitempty"` // transformer

	MinCapacityMW   *float64        `json:"min_capacity_mw,omitempty"`
	MaxCapacityMW   *float64        `json:"max_capacity_mw,omitempty"`
	Region          *string         `gorm:"type:varchar(100);index:idx_equipment_pricing_region" json:"region,omitempty"`
	ConfidenceLevel ConfidenceLevel `gorm:"type:varchar(10);not null;default:'medium'" json:"confidence_level"`
	Source          *string         `gorm:"type:varchar(500)" json:"source,omitempty"`
	EffectiveDate   time.Time       `gorm:"not null;index:idx_equipment_pricing_effective_date" json:"effective_date"`
	ExpirationDate  *time.Time      `json:"expiration_date,omitempty"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (EquipmentPricing) TableName() string { return "equipment_pricing" }

// BeforeCreate ensures timestamps are set and the capacity range is ordered.
func (e *EquipmentPricing) BeforeCreate(tx *gorm.DB) error {
	if e.MinCapacityMW != nil && e.MaxCapacityMW != nil && *e.MinCapacityMW > *e.MaxCapacityMW {
		return fmt.Errorf("min_capacity_mw %f exceeds max_capacity_mw %f", *e.MinCapacityMW, *e.MaxCapacityMW)
	}
	if e.EffectiveDate.IsZero() {
		e.EffectiveDate = utils.UTCNow()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = utils.UTCNow()
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// UnitPrice returns the populated price column for the row's equipment type.
func (e *EquipmentPricing) UnitPrice() *float64 {
	switch e.EquipmentType {
	case EquipmentTypeBattery:
		return e.PricePerKWh
	case EquipmentTypeInverter, EquipmentTypeGenerator:
		return e.PricePerKW
	case EquipmentTypeSolarPanel:
		return e.PricePerWatt
	case EquipmentTypeTransformer:
		return e.PricePerUnit
	default:
		return nil
	}
}

// EquipmentPricingFilter represents filter criteria for equipment pricing queries
type EquipmentPricingFilter struct {
	ID              *uint            `json:"id,omitempty"`
	EquipmentType   *EquipmentType   `json:"equipment_type,omitempty"`
	Vendor          *string          `json:"vendor,omitempty"`
	Region          *string          `json:"region,omitempty"`
	ConfidenceLevel *ConfidenceLevel `json:"confidence_level,omitempty"`
	ValidAt         *time.Time       `json:"valid_at,omitempty"`
}
