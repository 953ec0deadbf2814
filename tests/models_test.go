// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stackvolt/wattwise/models"
	testingutil "github.com/stackvolt/wattwise/testing"
	"github.com/stackvolt/wattwise/utils"
)

func TestQuestionType(t *testing.T) {
	t.Run("ValidTypes", func(t *testing.T) {
		assert.True(t, models.QuestionTypeNumber.Valid())
		assert.True(t, models.QuestionTypeBoolean.Valid())
		assert.True(t, models.QuestionTypeSelect.Valid())
		assert.True(t, models.QuestionTypeRangeButtons.Valid())
	})

	t.Run("InvalidType", func(t *testing.T) {
		assert.False(t, models.QuestionType("slider").Valid())
		assert.False(t, models.QuestionType("").Valid())
	})

	t.Run("ValueRejectsInvalid", func(t *testing.T) {
		_, err := models.QuestionType("slider").Value()
		assert.Error(t, err)
	})
}

func TestConfigCategory(t *testing.T) {
	t.Run("ValidCategories", func(t *testing.T) {
		assert.True(t, models.ConfigCategoryEquipmentPricing.Valid())
		assert.True(t, models.ConfigCategoryUIBounds.Valid())
		assert.True(t, models.ConfigCategoryElectricityRates.Valid())
	})

	t.Run("InvalidCategory", func(t *testing.T) {
		assert.False(t, models.ConfigCategory("tax_rates").Valid())
	})
}

func TestUseCase(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("TableName", func(t *testing.T) {
			assert.Equal(t, "use_cases", models.UseCase{}.TableName())
		})

		t.Run("BeforeCreateSetsUUID", func(t *testing.T) {
			useCase, err := fixtures.CreateTestUseCase("manufacturing")
			require.NoError(t, err)
			assert.NotZero(t, useCase.ID)
			assert.NotEqual(t, uuid.Nil, useCase.UUID)
			assert.False(t, useCase.CreatedAt.IsZero())
			assert.True(t, utils.IsTrue(useCase.IsActive))
		})

		t.Run("SlugUniqueConstraint", func(t *testing.T) {
			_, err := fixtures.CreateTestUseCase("cold-storage")
			require.NoError(t, err)

			dup := &models.UseCase{
				Slug:        "cold-storage",
				DisplayName: "Cold Storage Again",
				Category:    "commercial",
			}
			err = testDB.DB.Create(dup).Error
			assert.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCustomQuestion(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		useCase, err := fixtures.CreateTestUseCase("")
		require.NoError(t, err)

		t.Run("TableName", func(t *testing.T) {
			assert.Equal(t, "custom_questions", models.CustomQuestion{}.TableName())
		})

		t.Run("SeedUniversalQuestions", func(t *testing.T) {
			questions, err := fixtures.SeedUniversalQuestions(useCase.ID)
			require.NoError(t, err)
			require.Len(t, questions, 5)

			assert.Equal(t, "facilitySize", questions[0].FieldName)
			assert.Equal(t, models.QuestionTypeNumber, questions[0].QuestionType)
			assert.Equal(t, models.QuestionTypeSelect, questions[3].QuestionType)
			assert.Equal(t, models.QuestionTypeRangeButtons, questions[4].QuestionType)
			assert.True(t, utils.IsTrue(questions[4].IsAdvanced))
		})

		t.Run("OptionsRoundTrip", func(t *testing.T) {
			var loaded models.CustomQuestion
			err := testDB.DB.Where("use_case_id = ? AND field_name = ?", useCase.ID, "gridCapacity").First(&loaded).Error
			require.NoError(t, err)
			require.Len(t, loaded.Options, 3)
			assert.Equal(t, 0.0, *loaded.Options[0].Min)
			assert.Equal(t, 500.0, *loaded.Options[0].Max)
			assert.Equal(t, "Under 500 kW", loaded.Options[0].Label)
		})

		t.Run("FieldNameUniquePerUseCase", func(t *testing.T) {
			dup := &models.CustomQuestion{
				UseCaseID:    useCase.ID,
				FieldName:    "facilitySize",
				QuestionText: "Duplicate field",
				QuestionType: models.QuestionTypeNumber,
			}
			err := testDB.DB.Create(dup).Error
			assert.Error(t, err)

			// Same field name under a different use case is fine
			other, err := fixtures.CreateTestUseCase("")
			require.NoError(t, err)
			ok := &models.CustomQuestion{
				UseCaseID:    other.ID,
				FieldName:    "facilitySize",
				QuestionText: "Same field, different vertical",
				QuestionType: models.QuestionTypeNumber,
			}
			err = testDB.DB.Create(ok).Error
			assert.NoError(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSavedScenario(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("TableName", func(t *testing.T) {
			assert.Equal(t, "saved_scenarios", models.SavedScenario{}.TableName())
		})

		t.Run("AnonymousOwnership", func(t *testing.T) {
			sessionID := "test-session-token"
			scenario, err := fixtures.CreateTestScenario(nil, &sessionID, "Anonymous run")
			require.NoError(t, err)
			assert.True(t, scenario.IsAnonymous())
			assert.NotEqual(t, uuid.Nil, scenario.UUID)
		})

		t.Run("UserOwnership", func(t *testing.T) {
			userID := uint(42)
			scenario, err := fixtures.CreateTestScenario(&userID, nil, "User run")
			require.NoError(t, err)
			assert.False(t, scenario.IsAnonymous())
			assert.Equal(t, uint(42), *scenario.UserID)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestComparisonSet(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("TableName", func(t *testing.T) {
			assert.Equal(t, "comparison_sets", models.ComparisonSet{}.TableName())
		})

		t.Run("ScenarioIDsPreserveOrder", func(t *testing.T) {
			sessionID := "set-order-session"
			set, err := fixtures.CreateTestComparisonSet(nil, &sessionID, "Ordered set", []int64{7, 3, 11})
			require.NoError(t, err)

			var loaded models.ComparisonSet
			err = testDB.DB.Where("id = ?", set.ID).First(&loaded).Error
			require.NoError(t, err)
			assert.Equal(t, []int64{7, 3, 11}, []int64(loaded.ScenarioIDs))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestEquipmentPricing(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("TableName", func(t *testing.T) {
			assert.Equal(t, "equipment_pricing", models.EquipmentPricing{}.TableName())
		})

		t.Run("UnitPricePerType", func(t *testing.T) {
			row, err := fixtures.CreateTestEquipmentPricing("Tesla", 300)
			require.NoError(t, err)
			require.NotNil(t, row.UnitPrice())
			assert.Equal(t, 300.0, *row.UnitPrice())

			inverter := &models.EquipmentPricing{
				EquipmentType: models.EquipmentTypeInverter,
				Vendor:        "SMA",
				PricePerKW:    utils.ToPtr(80.0),
			}
			require.NoError(t, testDB.DB.Create(inverter).Error)
			assert.Equal(t, 80.0, *inverter.UnitPrice())
		})

		t.Run("CapacityRangeOrdered", func(t *testing.T) {
			bad := &models.EquipmentPricing{
				EquipmentType: models.EquipmentTypeBattery,
				Vendor:        "BadVendor",
				PricePerKWh:   utils.ToPtr(250.0),
				MinCapacityMW: utils.ToPtr(10.0),
				MaxCapacityMW: utils.ToPtr(1.0),
			}
			err := testDB.DB.Create(bad).Error
			assert.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAdmin(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("TableName", func(t *testing.T) {
			assert.Equal(t, "admins", models.Admin{}.TableName())
		})

		t.Run("PasswordHashing", func(t *testing.T) {
			admin, err := fixtures.CreateTestAdmin("", "SuperSecret1!")
			require.NoError(t, err)
			assert.NotEmpty(t, admin.PasswordHash)

			err = bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("SuperSecret1!"))
			assert.NoError(t, err)

			err = bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("WrongPassword"))
			assert.Error(t, err)
		})

		t.Run("UsernameUnique", func(t *testing.T) {
			admin, err := fixtures.CreateTestAdmin("catalog-admin", "SuperSecret1!")
			require.NoError(t, err)

			dup := &models.Admin{
				Username:     admin.Username,
				PasswordHash: "hash",
			}
			err = testDB.DB.Create(dup).Error
			assert.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}
