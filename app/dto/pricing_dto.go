package dto

import "encoding/json"

// GetPricingConfigResponse returns one keyed JSON configuration document.
// The body shape depends on config_category; the consumer must know the
// contract for its category.
type GetPricingConfigResponse struct {
	Message        string          `json:"message"`
	ConfigKey      string          `json:"config_key"`
	ConfigCategory string          `json:"config_category"`
	ConfigData     json.RawMessage `json:"config_data"`
	Version        string          `json:"version"`
	UpdatedAt      string          `json:"updated_at"`
}

// UpsertPricingConfigRequest inserts or replaces a configuration document by key.
type UpsertPricingConfigRequest struct {
	ConfigCategory string          `json:"config_category" validate:"required,oneof=equipment_pricing ui_bounds electricity_rates"`
	ConfigData     json.RawMessage `json:"config_data" validate:"required"`
	Version        string          `json:"version" validate:"required,max=20"`
	Description    *string         `json:"description,omitempty"`
}

// UpsertPricingConfigResponse confirms the upsert.
type UpsertPricingConfigResponse struct {
	Message   string `json:"message"`
	ConfigKey string `json:"config_key"`
	Version   string `json:"version"`
}

// EquipmentPricingItem is one vendor quote row.
type EquipmentPricingItem struct {
	ID              uint     `json:"id"`
	EquipmentType   string   `json:"equipment_type"`
	Vendor          string   `json:"vendor"`
	PricePerKWh     *float64 `json:"price_per_kwh,omitempty"`
	PricePerKW      *float64 `json:"price_per_kw,omitempty"`
	PricePerWatt    *float64 `json:"price_per_watt,omitempty"`
	PricePerUnit    *float64 `json:"price_per_unit,omitempty"`
	MinCapacityMW   *float64 `json:"min_capacity_mw,omitempty"`
	MaxCapacityMW   *float64 `json:"max_capacity_mw,omitempty"`
	Region          *string  `json:"region,omitempty"`
	ConfidenceLevel string   `json:"confidence_level"`
	EffectiveDate   string   `json:"effective_date"`
	ExpirationDate  *string  `json:"expiration_date,omitempty"`
}

// ListEquipmentPricingResponse lists valid vendor quotes.
type ListEquipmentPricingResponse struct {
	Message string                 `json:"message"`
	Items   []EquipmentPricingItem `json:"items"`
}

// CreateEquipmentPricingRequest adds a vendor quote (admin only).
type CreateEquipmentPricingRequest struct {
	EquipmentType   string   `json:"equipment_type" validate:"required,oneof=battery inverter solar_panel transformer generator"`
	Vendor          string   `json:"vendor" validate:"required,max=255"`
	PricePerKWh     *float64 `json:"price_per_kwh,omitempty" validate:"omitempty,gt=0"`
	PricePerKW      *float64 `json:"price_per_kw,omitempty" validate:"omitempty,gt=0"`
	PricePerWatt    *float64 `json:"price_per_watt,omitempty" validate:"omitempty,gt=0"`
	PricePerUnit    *float64 `json:"price_per_unit,omitempty" validate:"omitempty,gt=0"`
	MinCapacityMW   *float64 `json:"min_capacity_mw,omitempty" validate:"omitempty,gte=0"`
	MaxCapacityMW   *float64 `json:"max_capacity_mw,omitempty" validate:"omitempty,gte=0"`
	Region          *string  `json:"region,omitempty" validate:"omitempty,max=100"`
	ConfidenceLevel string   `json:"confidence_level" validate:"required,oneof=high medium low"`
	Source          *string  `json:"source,omitempty" validate:"omitempty,max=500"`
	ExpirationDate  *string  `json:"expiration_date,omitempty"`
}

// CreateEquipmentPricingResponse returns the created quote.
type CreateEquipmentPricingResponse struct {
	Message string               `json:"message"`
	Item    EquipmentPricingItem `json:"item"`
}

// ConfigurationItem is one default load profile for a use case.
type ConfigurationItem struct {
	ID                   uint    `json:"id"`
	UUID                 string  `json:"uuid"`
	Name                 string  `json:"name"`
	TypicalLoadKW        float64 `json:"typical_load_kw"`
	PeakLoadKW           float64 `json:"peak_load_kw"`
	ProfileType          string  `json:"profile_type"`
	OperatingHoursPerDay float64 `json:"operating_hours_per_day"`
	StorageDurationHours float64 `json:"storage_duration_hours"`
	IsDefault            bool    `json:"is_default"`
}

// ListConfigurationsResponse lists load profiles of a use case, default first.
type ListConfigurationsResponse struct {
	Message string              `json:"message"`
	Items   []ConfigurationItem `json:"items"`
}

// ConfigurationInput is one profile inside a replace request.
type ConfigurationInput struct {
	Name                 string  `json:"name" validate:"required,max=255"`
	TypicalLoadKW        float64 `json:"typical_load_kw" validate:"required,gt=0"`
	PeakLoadKW           float64 `json:"peak_load_kw" validate:"required,gt=0"`
	ProfileType          string  `json:"profile_type" validate:"required,oneof=flat daytime_peak evening_peak two_shift always_on"`
	OperatingHoursPerDay float64 `json:"operating_hours_per_day" validate:"required,gt=0,lte=24"`
	StorageDurationHours float64 `json:"storage_duration_hours" validate:"required,gt=0"`
	IsDefault            bool    `json:"is_default"`
}

// ReplaceConfigurationsRequest wholesale replaces a use case's profile set (admin only).
type ReplaceConfigurationsRequest struct {
	Configurations []ConfigurationInput `json:"configurations" validate:"required,min=1,dive"`
}

// ReplaceConfigurationsResponse confirms the replacement.
type ReplaceConfigurationsResponse struct {
	Message string              `json:"message"`
	Items   []ConfigurationItem `json:"items"`
}

// SetDefaultConfigurationResponse confirms the atomic default switch.
type SetDefaultConfigurationResponse struct {
	Message string            `json:"message"`
	Item    ConfigurationItem `json:"item"`
}
