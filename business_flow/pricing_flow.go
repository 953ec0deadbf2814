package businessflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stackvolt/wattwise/app/dto"
	"github.com/stackvolt/wattwise/models"
	"github.com/stackvolt/wattwise/repository"
	"github.com/stackvolt/wattwise/utils"
)

// PricingFlow serves keyed pricing configuration documents and vendor
// equipment quotes.
type PricingFlow interface {
	GetPricingConfig(ctx context.Context, configKey string) (*dto.GetPricingConfigResponse, error)
	UpsertPricingConfig(ctx context.Context, configKey string, req *dto.UpsertPricingConfigRequest, metadata *ClientMetadata) (*dto.UpsertPricingConfigResponse, error)
	ListEquipmentPricing(ctx context.Context, equipmentType, region *string) (*dto.ListEquipmentPricingResponse, error)
	CreateEquipmentPricing(ctx context.Context, req *dto.CreateEquipmentPricingRequest, metadata *ClientMetadata) (*dto.CreateEquipmentPricingResponse, error)
}

// PricingFlowImpl implements PricingFlow.
type PricingFlowImpl struct {
	pricingRepo   repository.PricingConfigurationRepository
	equipmentRepo repository.EquipmentPricingRepository
	rc            *redis.Client
	cacheConfig   *CacheConfig
}

// NewPricingFlow creates a new pricing flow.
func NewPricingFlow(
	pricingRepo repository.PricingConfigurationRepository,
	equipmentRepo repository.EquipmentPricingRepository,
	rc *redis.Client,
	cacheConfig *CacheConfig,
) PricingFlow {
	return &PricingFlowImpl{
		pricingRepo:   pricingRepo,
		equipmentRepo: equipmentRepo,
		rc:            rc,
		cacheConfig:   cacheConfig,
	}
}

func (f *PricingFlowImpl) GetPricingConfig(ctx context.Context, configKey string) (*dto.GetPricingConfigResponse, error) {
	if configKey == "" {
		return nil, NewBusinessError("MISSING_CONFIG_KEY", "config key is required", ErrConfigKeyRequired)
	}

	cacheKey := redisKey(derefCacheConfig(f.cacheConfig), utils.PricingConfigCacheKey, configKey)
	if cacheAvailable(f.cacheConfig, f.rc) {
		if bs, err := f.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var out dto.GetPricingConfigResponse
			if err := json.Unmarshal(bs, &out); err == nil {
				return &out, nil
			}
		}
	}

	row, err := f.pricingRepo.ByConfigKey(ctx, configKey)
	if err != nil {
		return nil, NewBusinessError("PRICING_CONFIG_LOOKUP_FAILED", "Failed to lookup pricing configuration", err)
	}
	if row == nil || !utils.IsTrue(row.IsActive) {
		return nil, NewBusinessError("PRICING_CONFIG_NOT_FOUND", "Pricing configuration not found", ErrPricingConfigNotFound)
	}

	resp := &dto.GetPricingConfigResponse{
		Message:        "Pricing configuration retrieved",
		ConfigKey:      row.ConfigKey,
		ConfigCategory: string(row.ConfigCategory),
		ConfigData:     row.ConfigData,
		Version:        row.Version,
		UpdatedAt:      row.UpdatedAt.Format(time.RFC3339),
	}

	if cacheAvailable(f.cacheConfig, f.rc) {
		if bs, err := json.Marshal(resp); err == nil {
			_ = f.rc.Set(ctx, cacheKey, bs, 0).Err()
		}
	}

	return resp, nil
}

// UpsertPricingConfig inserts or replaces a configuration document by key.
// The body is validated against its category contract before it is stored so
// consumers can trust the stored shape.
func (f *PricingFlowImpl) UpsertPricingConfig(ctx context.Context, configKey string, req *dto.UpsertPricingConfigRequest, metadata *ClientMetadata) (*dto.UpsertPricingConfigResponse, error) {
	if req == nil {
		return nil, NewBusinessError("INVALID_REQUEST", "request is required", nil)
	}
	if configKey == "" {
		return nil, NewBusinessError("MISSING_CONFIG_KEY", "config key is required", ErrConfigKeyRequired)
	}

	category := models.ConfigCategory(req.ConfigCategory)
	if !category.Valid() {
		return nil, NewBusinessError("INVALID_CONFIG_CATEGORY", "Invalid config category", ErrInvalidConfigCategory)
	}

	if err := checkConfigShape(category, req.ConfigData); err != nil {
		return nil, NewBusinessError("CONFIG_SHAPE_INVALID", "Config data does not match the category contract", err)
	}

	row := models.PricingConfiguration{
		ConfigKey:      configKey,
		ConfigCategory: category,
		ConfigData:     req.ConfigData,
		Version:        req.Version,
		Description:    req.Description,
		IsActive:       utils.ToPtr(true),
	}

	if err := f.pricingRepo.Upsert(ctx, &row); err != nil {
		return nil, NewBusinessError("UPSERT_PRICING_CONFIG_FAILED", "Failed to upsert pricing configuration", err)
	}

	if cacheAvailable(f.cacheConfig, f.rc) {
		_ = f.rc.Del(ctx, redisKey(*f.cacheConfig, utils.PricingConfigCacheKey, configKey)).Err()
	}

	return &dto.UpsertPricingConfigResponse{
		Message:   "Pricing configuration saved",
		ConfigKey: configKey,
		Version:   req.Version,
	}, nil
}

func (f *PricingFlowImpl) ListEquipmentPricing(ctx context.Context, equipmentType, region *string) (*dto.ListEquipmentPricingResponse, error) {
	var et *models.EquipmentType
	if equipmentType != nil && *equipmentType != "" {
		t := models.EquipmentType(*equipmentType)
		if !t.Valid() {
			return nil, NewBusinessError("INVALID_EQUIPMENT_TYPE", "Invalid equipment type", ErrInvalidEquipmentType)
		}
		et = &t
	}

	rows, err := f.equipmentRepo.ListValid(ctx, et, region, utils.UTCNow())
	if err != nil {
		return nil, NewBusinessError("LIST_EQUIPMENT_PRICING_FAILED", "Failed to list equipment pricing", err)
	}

	items := make([]dto.EquipmentPricingItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toEquipmentPricingItem(row))
	}

	return &dto.ListEquipmentPricingResponse{
		Message: "Equipment pricing retrieved",
		Items:   items,
	}, nil
}

func (f *PricingFlowImpl) CreateEquipmentPricing(ctx context.Context, req *dto.CreateEquipmentPricingRequest, metadata *ClientMetadata) (*dto.CreateEquipmentPricingResponse, error) {
	if req == nil {
		return nil, NewBusinessError("INVALID_REQUEST", "request is required", nil)
	}

	equipmentType := models.EquipmentType(req.EquipmentType)
	if !equipmentType.Valid() {
		return nil, NewBusinessError("INVALID_EQUIPMENT_TYPE", "Invalid equipment type", ErrInvalidEquipmentType)
	}
	if err := checkUnitPrice(equipmentType, req); err != nil {
		return nil, NewBusinessError("UNIT_PRICE_REQUIRED", "Unit price for the equipment type is required", err)
	}
	if req.MinCapacityMW != nil && req.MaxCapacityMW != nil && *req.MinCapacityMW > *req.MaxCapacityMW {
		return nil, NewBusinessError("CAPACITY_RANGE_INVALID", "Min capacity exceeds max capacity", ErrCapacityRangeInvalid)
	}

	var expirationDate *time.Time
	if req.ExpirationDate != nil && *req.ExpirationDate != "" {
		t, err := time.Parse(time.RFC3339, *req.ExpirationDate)
		if err != nil {
			return nil, NewBusinessError("INVALID_EXPIRATION_DATE", "Expiration date must be RFC3339", err)
		}
		expirationDate = &t
	}

	row := models.EquipmentPricing{
		EquipmentType:   equipmentType,
		Vendor:          req.Vendor,
		PricePerKWh:     req.PricePerKWh,
		PricePerKW:      req.PricePerKW,
		PricePerWatt:    req.PricePerWatt,
		PricePerUnit:    req.PricePerUnit,
		MinCapacityMW:   req.MinCapacityMW,
		MaxCapacityMW:   req.MaxCapacityMW,
		Region:          req.Region,
		ConfidenceLevel: models.ConfidenceLevel(req.ConfidenceLevel),
		Source:          req.Source,
		EffectiveDate:   utils.UTCNow(),
		ExpirationDate:  expirationDate,
	}

	if err := f.equipmentRepo.Save(ctx, &row); err != nil {
		return nil, NewBusinessError("CREATE_EQUIPMENT_PRICING_FAILED", "Failed to create equipment pricing", err)
	}

	return &dto.CreateEquipmentPricingResponse{
		Message: "Equipment pricing created successfully",
		Item:    toEquipmentPricingItem(&row),
	}, nil
}

// checkUnitPrice enforces the per-type required price column.
func checkUnitPrice(equipmentType models.EquipmentType, req *dto.CreateEquipmentPricingRequest) error {
	switch equipmentType {
	case models.EquipmentTypeBattery:
		if req.PricePerKWh == nil {
			return ErrUnitPriceRequired
		}
	case models.EquipmentTypeInverter, models.EquipmentTypeGenerator:
		if req.PricePerKW == nil {
			return ErrUnitPriceRequired
		}
	case models.EquipmentTypeSolarPanel:
		if req.PricePerWatt == nil {
			return ErrUnitPriceRequired
		}
	case models.EquipmentTypeTransformer:
		if req.PricePerUnit == nil {
			return ErrUnitPriceRequired
		}
	}
	return nil
}

// checkConfigShape validates a config document against its category contract.
// equipment_pricing maps equipment type to a numeric price object, ui_bounds
// maps field name to {min, max, step?}, electricity_rates maps region or tier
// to numeric rates.
func checkConfigShape(category models.ConfigCategory, raw json.RawMessage) error {
	switch category {
	case models.ConfigCategoryEquipmentPricing:
		var doc map[string]map[string]float64
		if err := json.Unmarshal(raw, &doc); err != nil {
			return ErrConfigShape
		}
		if len(doc) == 0 {
			return ErrConfigShape
		}
		for _, prices := range doc {
			if len(prices) == 0 {
				return ErrConfigShape
			}
			for _, v := range prices {
				if v < 0 {
					return ErrConfigShape
				}
			}
		}

	case models.ConfigCategoryUIBounds:
		var doc map[string]struct {
			Min  *float64 `json:"min"`
			Max  *float64 `json:"max"`
			Step *float64 `json:"step"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return ErrConfigShape
		}
		if len(doc) == 0 {
			return ErrConfigShape
		}
		for _, b := range doc {
			if b.Min == nil || b.Max == nil {
				return ErrConfigShape
			}
			if *b.Min > *b.Max {
				return ErrConfigShape
			}
			if b.Step != nil && *b.Step <= 0 {
				return ErrConfigShape
			}
		}

	case models.ConfigCategoryElectricityRates:
		var doc map[string]map[string]float64
		if err := json.Unmarshal(raw, &doc); err != nil {
			return ErrConfigShape
		}
		if len(doc) == 0 {
			return ErrConfigShape
		}
		for _, rates := range doc {
			for _, v := range rates {
				if v < 0 {
					return ErrConfigShape
				}
			}
		}

	default:
		return ErrInvalidConfigCategory
	}
	return nil
}

func toEquipmentPricingItem(row *models.EquipmentPricing) dto.EquipmentPricingItem {
	var expiration *string
	if row.ExpirationDate != nil {
		s := row.ExpirationDate.Format(time.RFC3339)
		expiration = &s
	}
	return dto.EquipmentPricingItem{
		ID:              row.ID,
		EquipmentType:   string(row.EquipmentType),
		Vendor:          row.Vendor,
		PricePerKWh:     row.PricePerKWh,
		PricePerKW:      row.PricePerKW,
		PricePerWatt:    row.PricePerWatt,
		PricePerUnit:    row.PricePerUnit,
		MinCapacityMW:   row.MinCapacityMW,
		MaxCapacityMW:   row.MaxCapacityMW,
		Region:          row.Region,
		ConfidenceLevel: string(row.ConfidenceLevel),
		EffectiveDate:   row.EffectiveDate.Format(time.RFC3339),
		ExpirationDate:  expiration,
	}
}
