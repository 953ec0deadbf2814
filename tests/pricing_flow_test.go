package tests

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvolt/wattwise/app/dto"
	businessflow "github.com/stackvolt/wattwise/business_flow"
	"github.com/stackvolt/wattwise/models"
	"github.com/stackvolt/wattwise/repository"
	testingutil "github.com/stackvolt/wattwise/testing"
	"github.com/stackvolt/wattwise/utils"
)

func TestPricingConfigFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		pricingRepo := repository.NewPricingConfigurationRepository(testDB.DB)
		equipmentRepo := repository.NewEquipmentPricingRepository(testDB.DB)
		flow := businessflow.NewPricingFlow(pricingRepo, equipmentRepo, nil, nil)

		ctx := testingutil.CreateTestContext()
		metadata := testClientMetadata()

		t.Run("UpsertAndGet", func(t *testing.T) {
			resp, err := flow.UpsertPricingConfig(ctx, "battery_pricing", &dto.UpsertPricingConfigRequest{
				ConfigCategory: "equipment_pricing",
				ConfigData:     json.RawMessage(`{"battery":{"lfp":300,"nmc":340}}`),
				Version:        "1.0",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "battery_pricing", resp.ConfigKey)

			got, err := flow.GetPricingConfig(ctx, "battery_pricing")
			require.NoError(t, err)
			assert.Equal(t, "equipment_pricing", got.ConfigCategory)
			assert.JSONEq(t, `{"battery":{"lfp":300,"nmc":340}}`, string(got.ConfigData))
		})

		t.Run("UpsertReplacesByKey", func(t *testing.T) {
			_, err := flow.UpsertPricingConfig(ctx, "battery_pricing", &dto.UpsertPricingConfigRequest{
				ConfigCategory: "equipment_pricing",
				ConfigData:     json.RawMessage(`{"battery":{"lfp":280}}`),
				Version:        "1.1",
			}, metadata)
			require.NoError(t, err)

			got, err := flow.GetPricingConfig(ctx, "battery_pricing")
			require.NoError(t, err)
			assert.Equal(t, "1.1", got.Version)
			assert.JSONEq(t, `{"battery":{"lfp":280}}`, string(got.ConfigData))
		})

		t.Run("GetUnknownKey", func(t *testing.T) {
			_, err := flow.GetPricingConfig(ctx, "unknown_key")
			assertBusinessCode(t, err, "PRICING_CONFIG_NOT_FOUND")
		})

		t.Run("GetMissingKey", func(t *testing.T) {
			_, err := flow.GetPricingConfig(ctx, "")
			assertBusinessCode(t, err, "MISSING_CONFIG_KEY")
		})

		t.Run("RejectsInvalidCategory", func(t *testing.T) {
			_, err := flow.UpsertPricingConfig(ctx, "tax_rates", &dto.UpsertPricingConfigRequest{
				ConfigCategory: "tax_rates",
				ConfigData:     json.RawMessage(`{"us":{"federal":0.21}}`),
				Version:        "1.0",
			}, metadata)
			assertBusinessCode(t, err, "INVALID_CONFIG_CATEGORY")
		})

		t.Run("EquipmentPricingShape", func(t *testing.T) {
			// Prices must be a non-empty map of maps with non-negative numbers.
			_, err := flow.UpsertPricingConfig(ctx, "bad_pricing", &dto.UpsertPricingConfigRequest{
				ConfigCategory: "equipment_pricing",
				ConfigData:     json.RawMessage(`{"battery":{"lfp":-5}}`),
				Version:        "1.0",
			}, metadata)
			assertBusinessCode(t, err, "CONFIG_SHAPE_INVALID")

			_, err = flow.UpsertPricingConfig(ctx, "bad_pricing", &dto.UpsertPricingConfigRequest{
				ConfigCategory: "equipment_pricing",
				ConfigData:     json.RawMessage(`{}`),
				Version:        "1.0",
			}, metadata)
			assertBusinessCode(t, err, "CONFIG_SHAPE_INVALID")
		})

		t.Run("UIBoundsShape", func(t *testing.T) {
			_, err := flow.UpsertPricingConfig(ctx, "wizard_bounds", &dto.UpsertPricingConfigRequest{
				ConfigCategory: "ui_bounds",
				ConfigData:     json.RawMessage(`{"peakLoad":{"min":10,"max":100000,"step":10}}`),
				Version:        "1.0",
			}, metadata)
			require.NoError(t, err)

			// Inverted bounds are rejected.
			_, err = flow.UpsertPricingConfig(ctx, "wizard_bounds", &dto.UpsertPricingConfigRequest{
				ConfigCategory: "ui_bounds",
				ConfigData:     json.RawMessage(`{"peakLoad":{"min":500,"max":100}}`),
				Version:        "1.1",
			}, metadata)
			assertBusinessCode(t, err, "CONFIG_SHAPE_INVALID")

			// Missing max is rejected.
			_, err = flow.UpsertPricingConfig(ctx, "wizard_bounds", &dto.UpsertPricingConfigRequest{
				ConfigCategory: "ui_bounds",
				ConfigData:     json.RawMessage(`{"peakLoad":{"min":10}}`),
				Version:        "1.1",
			}, metadata)
			assertBusinessCode(t, err, "CONFIG_SHAPE_INVALID")
		})

		t.Run("ElectricityRatesShape", func(t *testing.T) {
			_, err := flow.UpsertPricingConfig(ctx, "rates_us", &dto.UpsertPricingConfigRequest{
				ConfigCategory: "electricity_rates",
				ConfigData:     json.RawMessage(`{"us-west":{"peak":0.32,"off_peak":0.11}}`),
				Version:        "1.0",
			}, metadata)
			require.NoError(t, err)

			_, err = flow.UpsertPricingConfig(ctx, "rates_us", &dto.UpsertPricingConfigRequest{
				ConfigCategory: "electricity_rates",
				ConfigData:     json.RawMessage(`{"us-west":{"peak":-0.32}}`),
				Version:        "1.1",
			}, metadata)
			assertBusinessCode(t, err, "CONFIG_SHAPE_INVALID")
		})

		return nil
	})
	require.NoError(t, err)
}

func TestEquipmentPricingFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		pricingRepo := repository.NewPricingConfigurationRepository(testDB.DB)
		equipmentRepo := repository.NewEquipmentPricingRepository(testDB.DB)
		flow := businessflow.NewPricingFlow(pricingRepo, equipmentRepo, nil, nil)

		ctx := testingutil.CreateTestContext()
		metadata := testClientMetadata()

		t.Run("CreateAndList", func(t *testing.T) {
			created, err := flow.CreateEquipmentPricing(ctx, &dto.CreateEquipmentPricingRequest{
				EquipmentType:   "battery",
				Vendor:          "VoltCell",
				PricePerKWh:     utils.ToPtr(310.0),
				Region:          utils.ToPtr("us-west"),
				ConfidenceLevel: "high",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "battery", created.Item.EquipmentType)
			require.NotNil(t, created.Item.PricePerKWh)
			assert.Equal(t, 310.0, *created.Item.PricePerKWh)

			listed, err := flow.ListEquipmentPricing(ctx, utils.ToPtr("battery"), nil)
			require.NoError(t, err)
			require.Len(t, listed.Items, 1)
			assert.Equal(t, "VoltCell", listed.Items[0].Vendor)
		})

		t.Run("ListRejectsInvalidType", func(t *testing.T) {
			_, err := flow.ListEquipmentPricing(ctx, utils.ToPtr("flywheel"), nil)
			assertBusinessCode(t, err, "INVALID_EQUIPMENT_TYPE")
		})

		t.Run("UnitPriceMatchesType", func(t *testing.T) {
			// A battery quote without price_per_kwh is rejected even when
			// another price column is populated.
			_, err := flow.CreateEquipmentPricing(ctx, &dto.CreateEquipmentPricingRequest{
				EquipmentType:   "battery",
				Vendor:          "VoltCell",
				PricePerKW:      utils.ToPtr(120.0),
				ConfidenceLevel: "medium",
			}, metadata)
			assertBusinessCode(t, err, "UNIT_PRICE_REQUIRED")

			_, err = flow.CreateEquipmentPricing(ctx, &dto.CreateEquipmentPricingRequest{
				EquipmentType:   "inverter",
				Vendor:          "GridFlow",
				PricePerKW:      utils.ToPtr(85.0),
				ConfidenceLevel: "medium",
			}, metadata)
			require.NoError(t, err)
		})

		t.Run("CapacityRangeOrdered", func(t *testing.T) {
			_, err := flow.CreateEquipmentPricing(ctx, &dto.CreateEquipmentPricingRequest{
				EquipmentType:   "transformer",
				Vendor:          "AmpWorks",
				PricePerUnit:    utils.ToPtr(25000.0),
				MinCapacityMW:   utils.ToPtr(10.0),
				MaxCapacityMW:   utils.ToPtr(2.0),
				ConfidenceLevel: "low",
			}, metadata)
			assertBusinessCode(t, err, "CAPACITY_RANGE_INVALID")
		})

		t.Run("ExpirationDateMustBeRFC3339", func(t *testing.T) {
			_, err := flow.CreateEquipmentPricing(ctx, &dto.CreateEquipmentPricingRequest{
				EquipmentType:   "battery",
				Vendor:          "VoltCell",
				PricePerKWh:     utils.ToPtr(300.0),
				ConfidenceLevel: "high",
				ExpirationDate:  utils.ToPtr("2026/01/01"),
			}, metadata)
			assertBusinessCode(t, err, "INVALID_EXPIRATION_DATE")
		})

		t.Run("ExpiredQuoteIsHidden", func(t *testing.T) {
			created, err := flow.CreateEquipmentPricing(ctx, &dto.CreateEquipmentPricingRequest{
				EquipmentType:   "generator",
				Vendor:          "DieselCo",
				PricePerKW:      utils.ToPtr(400.0),
				ConfidenceLevel: "medium",
			}, metadata)
			require.NoError(t, err)

			expiredAt := utils.UTCNow().Add(-time.Hour)
			require.NoError(t, testDB.DB.Model(&models.EquipmentPricing{}).
				Where("id = ?", created.Item.ID).
				UpdateColumn("expiration_date", expiredAt).Error)

			listed, err := flow.ListEquipmentPricing(ctx, utils.ToPtr("generator"), nil)
			require.NoError(t, err)
			assert.Empty(t, listed.Items)
		})

		return nil
	})
	require.NoError(t, err)
}
