package tests

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvolt/wattwise/app/dto"
	businessflow "github.com/stackvolt/wattwise/business_flow"
	"github.com/stackvolt/wattwise/models"
	"github.com/stackvolt/wattwise/repository"
	testingutil "github.com/stackvolt/wattwise/testing"
	"github.com/stackvolt/wattwise/utils"
)

// assertBusinessCode asserts that err is a BusinessError carrying the given code.
func assertBusinessCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var bizErr *businessflow.BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, code, bizErr.Code)
}

func testClientMetadata() *businessflow.ClientMetadata {
	return businessflow.NewClientMetadata("127.0.0.1", "wattwise-tests")
}

func TestQuestionCatalogFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		useCaseRepo := repository.NewUseCaseRepository(testDB.DB)
		questionRepo := repository.NewCustomQuestionRepository(testDB.DB)
		flow := businessflow.NewQuestionCatalogFlow(useCaseRepo, questionRepo, nil, nil)

		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		useCase, err := fixtures.CreateTestUseCase("manufacturing")
		require.NoError(t, err)
		_, err = fixtures.SeedUniversalQuestions(useCase.ID)
		require.NoError(t, err)

		// A boolean question on top of the seeded universal set.
		hasGenerator := &models.CustomQuestion{
			UseCaseID:    useCase.ID,
			FieldName:    "hasBackupGenerator",
			QuestionText: "Do you already have a backup generator?",
			QuestionType: models.QuestionTypeBoolean,
			IsRequired:   utils.ToPtr(false),
			DisplayOrder: 6,
			IsAdvanced:   utils.ToPtr(true),
		}
		require.NoError(t, questionRepo.Save(ctx, hasGenerator))

		t.Run("ListUseCases", func(t *testing.T) {
			resp, err := flow.ListUseCases(ctx)
			require.NoError(t, err)
			require.Len(t, resp.Items, 1)
			assert.Equal(t, "manufacturing", resp.Items[0].Slug)
		})

		t.Run("ListQuestionsTierSplit", func(t *testing.T) {
			resp, err := flow.ListQuestions(ctx, "manufacturing")
			require.NoError(t, err)
			assert.Equal(t, "manufacturing", resp.UseCase.Slug)

			// gridCapacity and hasBackupGenerator are advanced, the rest basic.
			require.Len(t, resp.Basic, 4)
			require.Len(t, resp.Advanced, 2)
			for i := 1; i < len(resp.Basic); i++ {
				assert.LessOrEqual(t, resp.Basic[i-1].DisplayOrder, resp.Basic[i].DisplayOrder)
			}
			assert.Equal(t, "gridCapacity", resp.Advanced[0].FieldName)
			assert.Equal(t, "hasBackupGenerator", resp.Advanced[1].FieldName)
		})

		t.Run("ListQuestionsUnknownSlug", func(t *testing.T) {
			_, err := flow.ListQuestions(ctx, "agriculture")
			assertBusinessCode(t, err, "USE_CASE_NOT_FOUND")
		})

		t.Run("ListQuestionsEmptySlug", func(t *testing.T) {
			_, err := flow.ListQuestions(ctx, "")
			assertBusinessCode(t, err, "MISSING_USE_CASE_SLUG")
		})

		validate := func(field string, value string) (*dto.ValidateAnswerResponse, error) {
			return flow.ValidateAnswer(ctx, &dto.ValidateAnswerRequest{
				UseCaseSlug: "manufacturing",
				FieldName:   field,
				Value:       json.RawMessage(value),
			})
		}

		t.Run("ValidateNumberWithinBounds", func(t *testing.T) {
			resp, err := validate("peakLoad", `500`)
			require.NoError(t, err)
			assert.True(t, resp.Valid)
			assert.Empty(t, resp.Reason)
		})

		t.Run("ValidateNumericString", func(t *testing.T) {
			resp, err := validate("peakLoad", `"750.5"`)
			require.NoError(t, err)
			assert.True(t, resp.Valid)
		})

		t.Run("ValidateNumberOutOfBounds", func(t *testing.T) {
			resp, err := validate("peakLoad", `5`)
			require.NoError(t, err)
			assert.False(t, resp.Valid)
			assert.NotEmpty(t, resp.Reason)
		})

		t.Run("ValidateNumberNotNumeric", func(t *testing.T) {
			resp, err := validate("peakLoad", `"lots"`)
			require.NoError(t, err)
			assert.False(t, resp.Valid)
		})

		t.Run("ValidateBoolean", func(t *testing.T) {
			resp, err := validate("hasBackupGenerator", `true`)
			require.NoError(t, err)
			assert.True(t, resp.Valid)

			resp, err = validate("hasBackupGenerator", `"yes"`)
			require.NoError(t, err)
			assert.False(t, resp.Valid)
		})

		t.Run("ValidateSelect", func(t *testing.T) {
			resp, err := validate("gridConnection", `"off_grid"`)
			require.NoError(t, err)
			assert.True(t, resp.Valid)

			resp, err = validate("gridConnection", `"islanded"`)
			require.NoError(t, err)
			assert.False(t, resp.Valid)
		})

		t.Run("ValidateRangeButtonsBoundaries", func(t *testing.T) {
			// Buckets are [0,500), [500,2000), [2000,10000): the lower bound
			// belongs to the bucket, the upper bound to the next one.
			resp, err := validate("gridCapacity", `499.99`)
			require.NoError(t, err)
			assert.True(t, resp.Valid)

			resp, err = validate("gridCapacity", `500`)
			require.NoError(t, err)
			assert.True(t, resp.Valid)

			resp, err = validate("gridCapacity", `10000`)
			require.NoError(t, err)
			assert.False(t, resp.Valid)
		})

		t.Run("ValidateUnknownField", func(t *testing.T) {
			_, err := validate("squareFootage", `100`)
			assertBusinessCode(t, err, "QUESTION_NOT_FOUND")
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCatalogAdminFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		useCaseRepo := repository.NewUseCaseRepository(testDB.DB)
		questionRepo := repository.NewCustomQuestionRepository(testDB.DB)
		configRepo := repository.NewUseCaseConfigurationRepository(testDB.DB)
		flow := businessflow.NewCatalogAdminFlow(useCaseRepo, questionRepo, configRepo, testDB.DB, nil, nil)

		ctx := testingutil.CreateTestContext()
		metadata := testClientMetadata()

		t.Run("CreateUseCase", func(t *testing.T) {
			resp, err := flow.CreateUseCase(ctx, &dto.CreateUseCaseRequest{
				Slug:        "cold-storage",
				DisplayName: "Cold Storage",
				Category:    "commercial",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "cold-storage", resp.UseCase.Slug)
			assert.True(t, resp.UseCase.IsActive)
		})

		t.Run("CreateUseCaseDuplicateSlug", func(t *testing.T) {
			_, err := flow.CreateUseCase(ctx, &dto.CreateUseCaseRequest{
				Slug:        "cold-storage",
				DisplayName: "Cold Storage Again",
				Category:    "commercial",
			}, metadata)
			assertBusinessCode(t, err, "DUPLICATE_SLUG")
		})

		t.Run("CreateQuestion", func(t *testing.T) {
			resp, err := flow.CreateQuestion(ctx, &dto.CreateQuestionRequest{
				UseCaseSlug:  "cold-storage",
				FieldName:    "compressorLoad",
				QuestionText: "What is the compressor load?",
				QuestionType: "number",
				MinValue:     utils.ToPtr(1.0),
				MaxValue:     utils.ToPtr(5000.0),
				Unit:         utils.ToPtr("kW"),
				IsRequired:   true,
				DisplayOrder: 1,
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "compressorLoad", resp.Question.FieldName)
			assert.True(t, resp.Question.IsRequired)
		})

		t.Run("CreateQuestionDuplicateField", func(t *testing.T) {
			_, err := flow.CreateQuestion(ctx, &dto.CreateQuestionRequest{
				UseCaseSlug:  "cold-storage",
				FieldName:    "compressorLoad",
				QuestionText: "Duplicate field",
				QuestionType: "number",
			}, metadata)
			assertBusinessCode(t, err, "DUPLICATE_FIELD_NAME")
		})

		t.Run("CreateQuestionBucketOverlap", func(t *testing.T) {
			_, err := flow.CreateQuestion(ctx, &dto.CreateQuestionRequest{
				UseCaseSlug:  "cold-storage",
				FieldName:    "storageVolume",
				QuestionText: "How large is the cold store?",
				QuestionType: "range_buttons",
				Options: []dto.QuestionOptionItem{
					{Min: utils.ToPtr(0.0), Max: utils.ToPtr(600.0), Label: "Small"},
					{Min: utils.ToPtr(500.0), Max: utils.ToPtr(2000.0), Label: "Medium"},
				},
			}, metadata)
			assertBusinessCode(t, err, "QUESTION_DEFINITION_INVALID")
			assert.ErrorIs(t, err, businessflow.ErrBucketsOverlap)
		})

		t.Run("CreateQuestionBucketGap", func(t *testing.T) {
			_, err := flow.CreateQuestion(ctx, &dto.CreateQuestionRequest{
				UseCaseSlug:  "cold-storage",
				FieldName:    "storageVolume",
				QuestionText: "How large is the cold store?",
				QuestionType: "range_buttons",
				Options: []dto.QuestionOptionItem{
					{Min: utils.ToPtr(0.0), Max: utils.ToPtr(400.0), Label: "Small"},
					{Min: utils.ToPtr(500.0), Max: utils.ToPtr(2000.0), Label: "Medium"},
				},
			}, metadata)
			assertBusinessCode(t, err, "QUESTION_DEFINITION_INVALID")
			assert.ErrorIs(t, err, businessflow.ErrBucketsNotContiguous)
		})

		t.Run("CreateQuestionDefaultOutOfBounds", func(t *testing.T) {
			_, err := flow.CreateQuestion(ctx, &dto.CreateQuestionRequest{
				UseCaseSlug:  "cold-storage",
				FieldName:    "ambientTemp",
				QuestionText: "What is the ambient temperature?",
				QuestionType: "number",
				MinValue:     utils.ToPtr(-40.0),
				MaxValue:     utils.ToPtr(50.0),
				DefaultValue: utils.ToPtr("100"),
			}, metadata)
			assertBusinessCode(t, err, "QUESTION_DEFINITION_INVALID")
			assert.ErrorIs(t, err, businessflow.ErrDefaultOutOfBounds)
		})

		t.Run("UpdateQuestionRevalidatesMergedDefinition", func(t *testing.T) {
			created, err := flow.CreateQuestion(ctx, &dto.CreateQuestionRequest{
				UseCaseSlug:  "cold-storage",
				FieldName:    "doorOpenings",
				QuestionText: "Door openings per day?",
				QuestionType: "number",
				MinValue:     utils.ToPtr(0.0),
				MaxValue:     utils.ToPtr(1000.0),
			}, metadata)
			require.NoError(t, err)

			// Raising the minimum above the existing maximum must be rejected.
			_, err = flow.UpdateQuestion(ctx, created.Question.ID, &dto.UpdateQuestionRequest{
				MinValue: utils.ToPtr(2000.0),
			}, metadata)
			assertBusinessCode(t, err, "QUESTION_DEFINITION_INVALID")

			updated, err := flow.UpdateQuestion(ctx, created.Question.ID, &dto.UpdateQuestionRequest{
				QuestionText: utils.ToPtr("How many door openings per day?"),
				MaxValue:     utils.ToPtr(2000.0),
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "How many door openings per day?", updated.Question.QuestionText)
			assert.Equal(t, 2000.0, *updated.Question.MaxValue)
		})

		t.Run("DeleteQuestion", func(t *testing.T) {
			created, err := flow.CreateQuestion(ctx, &dto.CreateQuestionRequest{
				UseCaseSlug:  "cold-storage",
				FieldName:    "obsoleteField",
				QuestionText: "To be removed",
				QuestionType: "boolean",
			}, metadata)
			require.NoError(t, err)

			require.NoError(t, flow.DeleteQuestion(ctx, created.Question.ID, metadata))

			err = flow.DeleteQuestion(ctx, created.Question.ID, metadata)
			assertBusinessCode(t, err, "QUESTION_NOT_FOUND")
		})

		t.Run("ReplaceConfigurationsMultipleDefaults", func(t *testing.T) {
			_, err := flow.ReplaceConfigurations(ctx, "cold-storage", &dto.ReplaceConfigurationsRequest{
				Configurations: []dto.ConfigurationInput{
					{Name: "Small", TypicalLoadKW: 100, PeakLoadKW: 150, ProfileType: "always_on", OperatingHoursPerDay: 24, StorageDurationHours: 4, IsDefault: true},
					{Name: "Large", TypicalLoadKW: 400, PeakLoadKW: 600, ProfileType: "always_on", OperatingHoursPerDay: 24, StorageDurationHours: 4, IsDefault: true},
				},
			}, metadata)
			assertBusinessCode(t, err, "MULTIPLE_DEFAULTS")
		})

		t.Run("ReplaceConfigurationsFirstBecomesDefault", func(t *testing.T) {
			resp, err := flow.ReplaceConfigurations(ctx, "cold-storage", &dto.ReplaceConfigurationsRequest{
				Configurations: []dto.ConfigurationInput{
					{Name: "Small", TypicalLoadKW: 100, PeakLoadKW: 150, ProfileType: "always_on", OperatingHoursPerDay: 24, StorageDurationHours: 4},
					{Name: "Large", TypicalLoadKW: 400, PeakLoadKW: 600, ProfileType: "always_on", OperatingHoursPerDay: 24, StorageDurationHours: 4},
				},
			}, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Items, 2)
			assert.True(t, resp.Items[0].IsDefault)
			assert.False(t, resp.Items[1].IsDefault)
		})

		t.Run("SetDefaultConfiguration", func(t *testing.T) {
			listed, err := flow.ListConfigurations(ctx, "cold-storage")
			require.NoError(t, err)
			require.Len(t, listed.Items, 2)

			var nonDefaultID uint
			for _, item := range listed.Items {
				if !item.IsDefault {
					nonDefaultID = item.ID
				}
			}
			require.NotZero(t, nonDefaultID)

			resp, err := flow.SetDefaultConfiguration(ctx, "cold-storage", nonDefaultID, metadata)
			require.NoError(t, err)
			assert.True(t, resp.Item.IsDefault)

			// Exactly one default survives the switch.
			after, err := flow.ListConfigurations(ctx, "cold-storage")
			require.NoError(t, err)
			defaults := 0
			for _, item := range after.Items {
				if item.IsDefault {
					defaults++
					assert.Equal(t, nonDefaultID, item.ID)
				}
			}
			assert.Equal(t, 1, defaults)
		})

		t.Run("SetDefaultConfigurationUnknownID", func(t *testing.T) {
			_, err := flow.SetDefaultConfiguration(ctx, "cold-storage", 999999, metadata)
			assertBusinessCode(t, err, "CONFIGURATION_NOT_FOUND")
		})

		return nil
	})
	require.NoError(t, err)
}
