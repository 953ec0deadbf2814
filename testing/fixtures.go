// Package testing provides test utilities and database setup for testing the sizing wizard backend
package testing

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"golang.org/x/crypto/bcrypt"

	"github.com/stackvolt/wattwise/models"
	"github.com/stackvolt/wattwise/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUseCase creates an active use case with a unique slug
func (tf *TestFixtures) CreateTestUseCase(slug string) (*models.UseCase, error) {
	if slug == "" {
		slug = fmt.Sprintf("test-use-case-%d", rand.Intn(10000000))
	}

	useCase := &models.UseCase{
		Slug:        slug,
		DisplayName: "Test Use Case",
		Category:    "commercial",
		Description: utils.ToPtr("Test use case for the sizing wizard"),
		IsActive:    utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(useCase).Error; err != nil {
		return nil, fmt.Errorf("failed to create test use case: %w", err)
	}

	return useCase, nil
}

// SeedUniversalQuestions inserts the baseline question set every vertical shares:
// facility size, operating hours, peak load, grid connection and grid capacity.
func (tf *TestFixtures) SeedUniversalQuestions(useCaseID uint) ([]*models.CustomQuestion, error) {
	questions := []*models.CustomQuestion{
		{
			UseCaseID:    useCaseID,
			FieldName:    "facilitySize",
			QuestionText: "What is the size of your facility?",
			QuestionType: models.QuestionTypeNumber,
			MinValue:     utils.ToPtr(100.0),
			MaxValue:     utils.ToPtr(1000000.0),
			Unit:         utils.ToPtr("sq ft"),
			IsRequired:   utils.ToPtr(true),
			DisplayOrder: 1,
		},
		{
			UseCaseID:    useCaseID,
			FieldName:    "operatingHours",
			QuestionText: "How many hours per day does the facility operate?",
			QuestionType: models.QuestionTypeNumber,
			MinValue:     utils.ToPtr(1.0),
			MaxValue:     utils.ToPtr(24.0),
			Unit:         utils.ToPtr("hours"),
			IsRequired:   utils.ToPtr(true),
			DisplayOrder: 2,
		},
		{
			UseCaseID:    useCaseID,
			FieldName:    "peakLoad",
			QuestionText: "What is your peak electrical load?",
			QuestionType: models.QuestionTypeNumber,
			MinValue:     utils.ToPtr(10.0),
			MaxValue:     utils.ToPtr(100000.0),
			Unit:         utils.ToPtr("kW"),
			IsRequired:   utils.ToPtr(true),
			DisplayOrder: 3,
		},
		{
			UseCaseID:    useCaseID,
			FieldName:    "gridConnection",
			QuestionText: "What type of grid connection does the site have?",
			QuestionType: models.QuestionTypeSelect,
			IsRequired:   utils.ToPtr(true),
			DisplayOrder: 4,
			Options: models.QuestionOptions{
				{Value: utils.ToPtr("on_grid"), Label: "Grid connected"},
				{Value: utils.ToPtr("off_grid"), Label: "Off grid"},
				{Value: utils.ToPtr("limited"), Label: "Limited connection"},
			},
		},
		{
			UseCaseID:    useCaseID,
			FieldName:    "gridCapacity",
			QuestionText: "What is the available grid capacity?",
			QuestionType: models.QuestionTypeRangeButtons,
			IsAdvanced:   utils.ToPtr(true),
			DisplayOrder: 5,
			Options: models.QuestionOptions{
				{Min: utils.ToPtr(0.0), Max: utils.ToPtr(500.0), Label: "Under 500 kW"},
				{Min: utils.ToPtr(500.0), Max: utils.ToPtr(2000.0), Label: "500 kW - 2 MW"},
				{Min: utils.ToPtr(2000.0), Max: utils.ToPtr(10000.0), Label: "2 MW - 10 MW"},
			},
		},
	}

	for _, q := range questions {
		if err := tf.DB.DB.Create(q).Error; err != nil {
			return nil, fmt.Errorf("failed to create test question %s: %w", q.FieldName, err)
		}
	}

	return questions, nil
}

// CreateTestConfiguration creates a default load profile for a use case
func (tf *TestFixtures) CreateTestConfiguration(useCaseID uint, name string, isDefault bool) (*models.UseCaseConfiguration, error) {
	config := &models.UseCaseConfiguration{
		UseCaseID:            useCaseID,
		Name:                 name,
		TypicalLoadKW:        250,
		PeakLoadKW:           400,
		ProfileType:          models.LoadProfileDaytime,
		OperatingHoursPerDay: 12,
		StorageDurationHours: 4,
		IsDefault:            isDefault,
	}

	if err := tf.DB.DB.Create(config).Error; err != nil {
		return nil, fmt.Errorf("failed to create test configuration: %w", err)
	}

	return config, nil
}

// CreateTestScenario creates a saved scenario owned by a user or a session
func (tf *TestFixtures) CreateTestScenario(userID *uint, sessionID *string, name string) (*models.SavedScenario, error) {
	scenario := &models.SavedScenario{
		UserID:      userID,
		SessionID:   sessionID,
		Name:        name,
		UseCaseSlug: "manufacturing",
		InputState:  json.RawMessage(`{"facilitySize":50000,"operatingHours":16,"peakLoad":400}`),
		CalculatedResults: json.RawMessage(
			`{"recommended_kwh":1600,"recommended_kw":400}`),
		PeakKW:        400,
		KWhCapacity:   1600,
		TotalCost:     480000,
		AnnualSavings: 96000,
		PaybackYears:  5,
		IsBaseline:    utils.ToPtr(false),
	}

	if err := tf.DB.DB.Create(scenario).Error; err != nil {
		return nil, fmt.Errorf("failed to create test scenario: %w", err)
	}

	return scenario, nil
}

// CreateTestComparisonSet creates a comparison set referencing scenario internal IDs
func (tf *TestFixtures) CreateTestComparisonSet(userID *uint, sessionID *string, name string, scenarioIDs []int64) (*models.ComparisonSet, error) {
	set := &models.ComparisonSet{
		UserID:      userID,
		SessionID:   sessionID,
		Name:        name,
		ScenarioIDs: scenarioIDs,
	}

	if err := tf.DB.DB.Create(set).Error; err != nil {
		return nil, fmt.Errorf("failed to create test comparison set: %w", err)
	}

	return set, nil
}

// CreateTestAdmin creates an active admin with a bcrypt password hash
func (tf *TestFixtures) CreateTestAdmin(username, password string) (*models.Admin, error) {
	if username == "" {
		username = fmt.Sprintf("admin%d", rand.Intn(10000000))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		Username:     username,
		PasswordHash: string(hashedPassword),
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}

	return admin, nil
}

// CreateTestEquipmentPricing creates a battery price quote
func (tf *TestFixtures) CreateTestEquipmentPricing(vendor string, pricePerKWh float64) (*models.EquipmentPricing, error) {
	row := &models.EquipmentPricing{
		EquipmentType:   models.EquipmentTypeBattery,
		Vendor:          vendor,
		PricePerKWh:     utils.ToPtr(pricePerKWh),
		Region:          utils.ToPtr("us-west"),
		ConfidenceLevel: models.ConfidenceHigh,
		Source:          utils.ToPtr("vendor quote"),
	}

	if err := tf.DB.DB.Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create test equipment pricing: %w", err)
	}

	return row, nil
}

// CreateTestPricingConfiguration creates a keyed pricing config document
func (tf *TestFixtures) CreateTestPricingConfiguration(key string, category models.ConfigCategory, data json.RawMessage) (*models.PricingConfiguration, error) {
	if data == nil {
		data = json.RawMessage(`{"battery":{"lfp":300}}`)
	}

	config := &models.PricingConfiguration{
		ConfigKey:      key,
		ConfigCategory: category,
		ConfigData:     data,
		Version:        "1.0",
		IsActive:       utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(config).Error; err != nil {
		return nil, fmt.Errorf("failed to create test pricing configuration: %w", err)
	}

	return config, nil
}
