package tests

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvolt/wattwise/models"
	"github.com/stackvolt/wattwise/repository"
	testingutil "github.com/stackvolt/wattwise/testing"
	"github.com/stackvolt/wattwise/utils"
)

func TestUseCaseRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewUseCaseRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("BySlug", func(t *testing.T) {
			created, err := fixtures.CreateTestUseCase("data-center")
			require.NoError(t, err)

			found, err := repo.BySlug(ctx, "data-center")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, created.ID, found.ID)
			assert.Equal(t, created.UUID, found.UUID)
		})

		t.Run("BySlugNotFound", func(t *testing.T) {
			found, err := repo.BySlug(ctx, "no-such-slug")
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("ListActiveExcludesInactive", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			active, err := fixtures.CreateTestUseCase("manufacturing")
			require.NoError(t, err)

			inactive, err := fixtures.CreateTestUseCase("cold-storage")
			require.NoError(t, err)
			inactive.IsActive = utils.ToPtr(false)
			require.NoError(t, repo.Update(ctx, inactive))

			listed, err := repo.ListActive(ctx)
			require.NoError(t, err)
			require.Len(t, listed, 1)
			assert.Equal(t, active.Slug, listed[0].Slug)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCustomQuestionRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewCustomQuestionRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		useCase, err := fixtures.CreateTestUseCase("hospital")
		require.NoError(t, err)
		seeded, err := fixtures.SeedUniversalQuestions(useCase.ID)
		require.NoError(t, err)

		t.Run("ListByUseCaseOrdered", func(t *testing.T) {
			questions, err := repo.ListByUseCase(ctx, useCase.ID)
			require.NoError(t, err)
			require.Len(t, questions, len(seeded))
			for i := 1; i < len(questions); i++ {
				assert.LessOrEqual(t, questions[i-1].DisplayOrder, questions[i].DisplayOrder)
			}
		})

		t.Run("ByUseCaseAndField", func(t *testing.T) {
			question, err := repo.ByUseCaseAndField(ctx, useCase.ID, "peakLoad")
			require.NoError(t, err)
			require.NotNil(t, question)
			assert.Equal(t, models.QuestionTypeNumber, question.QuestionType)
		})

		t.Run("ByUseCaseAndFieldScopedToUseCase", func(t *testing.T) {
			other, err := fixtures.CreateTestUseCase("ev-fleet")
			require.NoError(t, err)

			question, err := repo.ByUseCaseAndField(ctx, other.ID, "peakLoad")
			require.NoError(t, err)
			assert.Nil(t, question)
		})

		t.Run("Delete", func(t *testing.T) {
			target, err := repo.ByUseCaseAndField(ctx, useCase.ID, "gridConnection")
			require.NoError(t, err)
			require.NotNil(t, target)

			require.NoError(t, repo.Delete(ctx, target.ID))

			gone, err := repo.ByUseCaseAndField(ctx, useCase.ID, "gridConnection")
			require.NoError(t, err)
			assert.Nil(t, gone)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSavedScenarioRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewSavedScenarioRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByUUID", func(t *testing.T) {
			created, err := fixtures.CreateTestScenario(nil, utils.ToPtr("sess-by-uuid"), "Baseline plan")
			require.NoError(t, err)

			found, err := repo.ByUUID(ctx, created.UUID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, created.ID, found.ID)

			missing, err := repo.ByUUID(ctx, uuid.New())
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("ByUUIDs", func(t *testing.T) {
			first, err := fixtures.CreateTestScenario(nil, utils.ToPtr("sess-multi"), "First")
			require.NoError(t, err)
			second, err := fixtures.CreateTestScenario(nil, utils.ToPtr("sess-multi"), "Second")
			require.NoError(t, err)

			rows, err := repo.ByUUIDs(ctx, []uuid.UUID{first.UUID, second.UUID, uuid.New()})
			require.NoError(t, err)
			assert.Len(t, rows, 2)
		})

		t.Run("ListByOwnerSeparatesOwners", func(t *testing.T) {
			userID := uint(42)
			_, err := fixtures.CreateTestScenario(&userID, nil, "User scenario")
			require.NoError(t, err)
			_, err = fixtures.CreateTestScenario(nil, utils.ToPtr("sess-owner"), "Anonymous scenario")
			require.NoError(t, err)

			userRows, err := repo.ListByOwner(ctx, &userID, nil, 0, 0)
			require.NoError(t, err)
			require.Len(t, userRows, 1)
			assert.Equal(t, "User scenario", userRows[0].Name)

			sessionRows, err := repo.ListByOwner(ctx, nil, utils.ToPtr("sess-owner"), 0, 0)
			require.NoError(t, err)
			require.Len(t, sessionRows, 1)
			assert.Equal(t, "Anonymous scenario", sessionRows[0].Name)
		})

		t.Run("ListByOwnerNoOwnerMatchesNothing", func(t *testing.T) {
			rows, err := repo.ListByOwner(ctx, nil, nil, 0, 0)
			require.NoError(t, err)
			assert.Empty(t, rows)
		})

		t.Run("ClearBaselineForOwner", func(t *testing.T) {
			session := utils.ToPtr("sess-baseline")
			first, err := fixtures.CreateTestScenario(nil, session, "Marked")
			require.NoError(t, err)
			first.IsBaseline = utils.ToPtr(true)
			require.NoError(t, repo.Update(ctx, first))

			otherSession := utils.ToPtr("sess-baseline-other")
			other, err := fixtures.CreateTestScenario(nil, otherSession, "Untouched")
			require.NoError(t, err)
			other.IsBaseline = utils.ToPtr(true)
			require.NoError(t, repo.Update(ctx, other))

			require.NoError(t, repo.ClearBaselineForOwner(ctx, nil, session))

			cleared, err := repo.ByUUID(ctx, first.UUID)
			require.NoError(t, err)
			assert.False(t, *cleared.IsBaseline)

			kept, err := repo.ByUUID(ctx, other.UUID)
			require.NoError(t, err)
			assert.True(t, *kept.IsBaseline)
		})

		t.Run("DeleteAnonymousOlderThan", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			old, err := fixtures.CreateTestScenario(nil, utils.ToPtr("sess-old"), "Stale")
			require.NoError(t, err)
			staleCreatedAt := utils.UTCNow().Add(-31 * 24 * time.Hour)
			require.NoError(t, testDB.DB.Model(old).UpdateColumn("created_at", staleCreatedAt).Error)

			_, err = fixtures.CreateTestScenario(nil, utils.ToPtr("sess-fresh"), "Fresh")
			require.NoError(t, err)

			userID := uint(7)
			oldOwned, err := fixtures.CreateTestScenario(&userID, nil, "Owned stale")
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(oldOwned).UpdateColumn("created_at", staleCreatedAt).Error)

			cutoff := utils.UTCNow().Add(-utils.AnonymousScenarioRetention)
			purged, err := repo.DeleteAnonymousOlderThan(ctx, cutoff)
			require.NoError(t, err)
			assert.Equal(t, int64(1), purged)

			// Second sweep over the same rows is a no-op.
			purged, err = repo.DeleteAnonymousOlderThan(ctx, cutoff)
			require.NoError(t, err)
			assert.Zero(t, purged)

			remaining, err := repo.ByUUID(ctx, oldOwned.UUID)
			require.NoError(t, err)
			assert.NotNil(t, remaining)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestComparisonSetRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewComparisonSetRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ListByOwner", func(t *testing.T) {
			session := utils.ToPtr("sess-sets")
			created, err := fixtures.CreateTestComparisonSet(nil, session, "Shortlist", []int64{1, 2, 3})
			require.NoError(t, err)

			sets, err := repo.ListByOwner(ctx, nil, session)
			require.NoError(t, err)
			require.Len(t, sets, 1)
			assert.Equal(t, created.UUID, sets[0].UUID)

			foreign, err := repo.ListByOwner(ctx, nil, utils.ToPtr("sess-other"))
			require.NoError(t, err)
			assert.Empty(t, foreign)
		})

		t.Run("DeleteAnonymousOlderThan", func(t *testing.T) {
			stale, err := fixtures.CreateTestComparisonSet(nil, utils.ToPtr("sess-stale-set"), "Stale set", []int64{5})
			require.NoError(t, err)
			staleCreatedAt := utils.UTCNow().Add(-40 * 24 * time.Hour)
			require.NoError(t, testDB.DB.Model(stale).UpdateColumn("created_at", staleCreatedAt).Error)

			cutoff := utils.UTCNow().Add(-utils.AnonymousScenarioRetention)
			purged, err := repo.DeleteAnonymousOlderThan(ctx, cutoff)
			require.NoError(t, err)
			assert.Equal(t, int64(1), purged)

			gone, err := repo.ByUUID(ctx, stale.UUID)
			require.NoError(t, err)
			assert.Nil(t, gone)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestPricingConfigurationRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPricingConfigurationRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByConfigKey", func(t *testing.T) {
			_, err := fixtures.CreateTestPricingConfiguration("battery_pricing", models.ConfigCategoryEquipmentPricing, nil)
			require.NoError(t, err)

			found, err := repo.ByConfigKey(ctx, "battery_pricing")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, models.ConfigCategoryEquipmentPricing, found.ConfigCategory)

			missing, err := repo.ByConfigKey(ctx, "unknown_key")
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("UpsertReplacesExistingKey", func(t *testing.T) {
			existing, err := fixtures.CreateTestPricingConfiguration("ui_bounds", models.ConfigCategoryUIBounds, nil)
			require.NoError(t, err)

			replacement := &models.PricingConfiguration{
				ConfigKey:      "ui_bounds",
				ConfigCategory: models.ConfigCategoryUIBounds,
				ConfigData:     []byte(`{"peakLoad":{"min":10,"max":50000}}`),
				Version:        "2.0",
				IsActive:       utils.ToPtr(true),
			}
			require.NoError(t, repo.Upsert(ctx, replacement))

			after, err := repo.ByConfigKey(ctx, "ui_bounds")
			require.NoError(t, err)
			require.NotNil(t, after)
			assert.Equal(t, existing.ID, after.ID)
			assert.Equal(t, "2.0", after.Version)
			assert.JSONEq(t, `{"peakLoad":{"min":10,"max":50000}}`, string(after.ConfigData))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestEquipmentPricingRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewEquipmentPricingRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		current, err := fixtures.CreateTestEquipmentPricing("VoltCell", 310)
		require.NoError(t, err)

		expired, err := fixtures.CreateTestEquipmentPricing("OldCell", 280)
		require.NoError(t, err)
		expiredAt := utils.UTCNow().Add(-24 * time.Hour)
		require.NoError(t, testDB.DB.Model(expired).UpdateColumn("expiration_date", expiredAt).Error)

		t.Run("ListValidExcludesExpired", func(t *testing.T) {
			rows, err := repo.ListValid(ctx, nil, nil, utils.UTCNow())
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, current.Vendor, rows[0].Vendor)
		})

		t.Run("ListValidFiltersByType", func(t *testing.T) {
			inverterType := models.EquipmentTypeInverter
			rows, err := repo.ListValid(ctx, &inverterType, nil, utils.UTCNow())
			require.NoError(t, err)
			assert.Empty(t, rows)
		})

		t.Run("ListValidFiltersByRegion", func(t *testing.T) {
			rows, err := repo.ListValid(ctx, nil, utils.ToPtr("us-west"), utils.UTCNow())
			require.NoError(t, err)
			assert.Len(t, rows, 1)

			rows, err = repo.ListValid(ctx, nil, utils.ToPtr("eu-central"), utils.UTCNow())
			require.NoError(t, err)
			assert.Empty(t, rows)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAdminRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewAdminRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByUsername", func(t *testing.T) {
			created, err := fixtures.CreateTestAdmin("ops-admin", "SuperSecret123!")
			require.NoError(t, err)

			found, err := repo.ByUsername(ctx, "ops-admin")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, created.ID, found.ID)

			missing, err := repo.ByUsername(ctx, "nobody")
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("UpdateLastLogin", func(t *testing.T) {
			admin, err := fixtures.CreateTestAdmin("login-admin", "SuperSecret123!")
			require.NoError(t, err)
			require.Nil(t, admin.LastLoginAt)

			at := utils.UTCNow()
			require.NoError(t, repo.UpdateLastLogin(ctx, admin.ID, at))

			after, err := repo.ByUsername(ctx, "login-admin")
			require.NoError(t, err)
			require.NotNil(t, after.LastLoginAt)
			assert.WithinDuration(t, at, *after.LastLoginAt, time.Second)
		})

		return nil
	})
	require.NoError(t, err)
}
