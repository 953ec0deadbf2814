package tests

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvolt/wattwise/app/dto"
	businessflow "github.com/stackvolt/wattwise/business_flow"
	"github.com/stackvolt/wattwise/repository"
	testingutil "github.com/stackvolt/wattwise/testing"
	"github.com/stackvolt/wattwise/utils"
)

func sessionOwner(token string) businessflow.Owner {
	return businessflow.Owner{SessionID: utils.ToPtr(token)}
}

func userOwner(id uint) businessflow.Owner {
	return businessflow.Owner{UserID: utils.ToPtr(id)}
}

func saveScenarioRequest(name string, totalCost, kwhCapacity, annualSavings float64) *dto.SaveScenarioRequest {
	return &dto.SaveScenarioRequest{
		Name:          name,
		UseCaseSlug:   "manufacturing",
		InputState:    json.RawMessage(`{"peakLoad":400,"operatingHours":16}`),
		PeakKW:        400,
		KWhCapacity:   kwhCapacity,
		TotalCost:     totalCost,
		AnnualSavings: annualSavings,
		PaybackYears:  5,
	}
}

func TestScenarioFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		scenarioRepo := repository.NewSavedScenarioRepository(testDB.DB)
		setRepo := repository.NewComparisonSetRepository(testDB.DB)
		flow := businessflow.NewScenarioFlow(scenarioRepo, setRepo, testDB.DB)

		ctx := testingutil.CreateTestContext()
		metadata := testClientMetadata()

		t.Run("SaveScenarioEchoesSessionToken", func(t *testing.T) {
			owner := sessionOwner("sess-save")
			resp, err := flow.SaveScenario(ctx, owner, saveScenarioRequest("First plan", 480000, 1600, 96000), metadata)
			require.NoError(t, err)
			assert.NotEmpty(t, resp.Scenario.UUID)
			assert.False(t, resp.Scenario.IsBaseline)
			require.NotNil(t, resp.SessionToken)
			assert.Equal(t, "sess-save", *resp.SessionToken)

			// Missing calculated results are stored as an empty document.
			got, err := flow.GetScenario(ctx, owner, resp.Scenario.UUID)
			require.NoError(t, err)
			assert.JSONEq(t, `{}`, string(got.CalculatedResults))
		})

		t.Run("SaveScenarioUserGetsNoToken", func(t *testing.T) {
			resp, err := flow.SaveScenario(ctx, userOwner(11), saveScenarioRequest("User plan", 480000, 1600, 96000), metadata)
			require.NoError(t, err)
			assert.Nil(t, resp.SessionToken)
		})

		t.Run("SaveScenarioRejectsMissingOwner", func(t *testing.T) {
			_, err := flow.SaveScenario(ctx, businessflow.Owner{}, saveScenarioRequest("Nobody", 1, 1, 1), metadata)
			assertBusinessCode(t, err, "MISSING_OWNER")
		})

		t.Run("SaveScenarioRejectsMissingName", func(t *testing.T) {
			req := saveScenarioRequest("", 1, 1, 1)
			_, err := flow.SaveScenario(ctx, sessionOwner("sess-noname"), req, metadata)
			assertBusinessCode(t, err, "MISSING_SCENARIO_NAME")
		})

		t.Run("ForeignOwnerNeverSeesScenario", func(t *testing.T) {
			owner := sessionOwner("sess-mine")
			saved, err := flow.SaveScenario(ctx, owner, saveScenarioRequest("Private", 480000, 1600, 96000), metadata)
			require.NoError(t, err)

			_, err = flow.GetScenario(ctx, sessionOwner("sess-theirs"), saved.Scenario.UUID)
			assertBusinessCode(t, err, "SCENARIO_NOT_FOUND")

			err = flow.DeleteScenario(ctx, userOwner(99), saved.Scenario.UUID)
			assertBusinessCode(t, err, "SCENARIO_NOT_FOUND")

			// Owner still sees it.
			_, err = flow.GetScenario(ctx, owner, saved.Scenario.UUID)
			require.NoError(t, err)
		})

		t.Run("DeleteScenario", func(t *testing.T) {
			owner := sessionOwner("sess-delete")
			saved, err := flow.SaveScenario(ctx, owner, saveScenarioRequest("Short lived", 480000, 1600, 96000), metadata)
			require.NoError(t, err)

			require.NoError(t, flow.DeleteScenario(ctx, owner, saved.Scenario.UUID))

			listed, err := flow.ListScenarios(ctx, owner, 0, 0)
			require.NoError(t, err)
			assert.Empty(t, listed.Items)
		})

		t.Run("MarkBaselineIsExclusive", func(t *testing.T) {
			owner := sessionOwner("sess-baseline")
			first, err := flow.SaveScenario(ctx, owner, saveScenarioRequest("Plan A", 480000, 1600, 96000), metadata)
			require.NoError(t, err)
			second, err := flow.SaveScenario(ctx, owner, saveScenarioRequest("Plan B", 250000, 1000, 120000), metadata)
			require.NoError(t, err)

			item, err := flow.MarkBaseline(ctx, owner, first.Scenario.UUID)
			require.NoError(t, err)
			assert.True(t, item.IsBaseline)

			item, err = flow.MarkBaseline(ctx, owner, second.Scenario.UUID)
			require.NoError(t, err)
			assert.True(t, item.IsBaseline)

			reloaded, err := flow.GetScenario(ctx, owner, first.Scenario.UUID)
			require.NoError(t, err)
			assert.False(t, reloaded.Scenario.IsBaseline)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCompareScenarios(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		scenarioRepo := repository.NewSavedScenarioRepository(testDB.DB)
		setRepo := repository.NewComparisonSetRepository(testDB.DB)
		flow := businessflow.NewScenarioFlow(scenarioRepo, setRepo, testDB.DB)

		ctx := testingutil.CreateTestContext()
		metadata := testClientMetadata()
		owner := sessionOwner("sess-compare")

		base, err := flow.SaveScenario(ctx, owner, saveScenarioRequest("Base", 480000, 1600, 96000), metadata)
		require.NoError(t, err)
		cheaper, err := flow.SaveScenario(ctx, owner, saveScenarioRequest("Cheaper", 250000, 1000, 120000), metadata)
		require.NoError(t, err)
		noStorage, err := flow.SaveScenario(ctx, owner, saveScenarioRequest("No storage", 100000, 0, 48000), metadata)
		require.NoError(t, err)

		t.Run("RowsFollowRequestOrder", func(t *testing.T) {
			resp, err := flow.CompareScenarios(ctx, owner, &dto.CompareScenariosRequest{
				ScenarioUUIDs: []string{cheaper.Scenario.UUID, base.Scenario.UUID},
			})
			require.NoError(t, err)
			require.Len(t, resp.Rows, 2)
			assert.Equal(t, "Cheaper", resp.Rows[0].Name)
			assert.Equal(t, "Base", resp.Rows[1].Name)
			assert.True(t, resp.Rows[0].IsBaseline)
			assert.False(t, resp.Rows[1].IsBaseline)
		})

		t.Run("DerivedMetrics", func(t *testing.T) {
			resp, err := flow.CompareScenarios(ctx, owner, &dto.CompareScenariosRequest{
				ScenarioUUIDs: []string{base.Scenario.UUID, cheaper.Scenario.UUID, noStorage.Scenario.UUID},
			})
			require.NoError(t, err)
			require.Len(t, resp.Rows, 3)

			assert.InDelta(t, 300.0, resp.Rows[0].CostPerKWh, 0.001)
			assert.Zero(t, resp.Rows[0].SavingsDeltaPct)

			assert.InDelta(t, 250.0, resp.Rows[1].CostPerKWh, 0.001)
			assert.InDelta(t, 25.0, resp.Rows[1].SavingsDeltaPct, 0.001)

			// Zero capacity yields cost_per_kwh 0, not Inf.
			assert.Zero(t, resp.Rows[2].CostPerKWh)
			assert.InDelta(t, -50.0, resp.Rows[2].SavingsDeltaPct, 0.001)
		})

		t.Run("ZeroSavingsBaselinePinsDeltas", func(t *testing.T) {
			flat, err := flow.SaveScenario(ctx, owner, saveScenarioRequest("Flat", 100000, 400, 0), metadata)
			require.NoError(t, err)

			resp, err := flow.CompareScenarios(ctx, owner, &dto.CompareScenariosRequest{
				ScenarioUUIDs: []string{flat.Scenario.UUID, base.Scenario.UUID},
			})
			require.NoError(t, err)
			require.Len(t, resp.Rows, 2)
			assert.Zero(t, resp.Rows[0].SavingsDeltaPct)
			assert.Zero(t, resp.Rows[1].SavingsDeltaPct)
		})

		t.Run("NegativeSavingsBaselinePinsDeltas", func(t *testing.T) {
			losing, err := flow.SaveScenario(ctx, owner, saveScenarioRequest("Losing", 100000, 400, -1000), metadata)
			require.NoError(t, err)
			worse, err := flow.SaveScenario(ctx, owner, saveScenarioRequest("Worse", 120000, 400, -500), metadata)
			require.NoError(t, err)

			resp, err := flow.CompareScenarios(ctx, owner, &dto.CompareScenariosRequest{
				ScenarioUUIDs: []string{losing.Scenario.UUID, worse.Scenario.UUID},
			})
			require.NoError(t, err)
			require.Len(t, resp.Rows, 2)
			assert.Zero(t, resp.Rows[0].SavingsDeltaPct)
			assert.Zero(t, resp.Rows[1].SavingsDeltaPct)
		})

		t.Run("LenientOmitsUnknownAndForeign", func(t *testing.T) {
			foreign, err := flow.SaveScenario(ctx, sessionOwner("sess-other"), saveScenarioRequest("Foreign", 1, 1, 1), metadata)
			require.NoError(t, err)

			resp, err := flow.CompareScenarios(ctx, owner, &dto.CompareScenariosRequest{
				ScenarioUUIDs: []string{
					base.Scenario.UUID,
					uuid.NewString(),
					"not-a-uuid",
					foreign.Scenario.UUID,
				},
			})
			require.NoError(t, err)
			require.Len(t, resp.Rows, 1)
			assert.Equal(t, "Base", resp.Rows[0].Name)
		})

		t.Run("StrictRejectsUnknown", func(t *testing.T) {
			_, err := flow.CompareScenarios(ctx, owner, &dto.CompareScenariosRequest{
				ScenarioUUIDs: []string{base.Scenario.UUID, uuid.NewString()},
				Strict:        true,
			})
			assertBusinessCode(t, err, "SCENARIO_NOT_FOUND")
		})

		t.Run("StrictRejectsMalformedUUID", func(t *testing.T) {
			_, err := flow.CompareScenarios(ctx, owner, &dto.CompareScenariosRequest{
				ScenarioUUIDs: []string{"not-a-uuid"},
				Strict:        true,
			})
			assertBusinessCode(t, err, "SCENARIO_NOT_FOUND")
		})

		t.Run("EmptyRequestComparesNothing", func(t *testing.T) {
			resp, err := flow.CompareScenarios(ctx, owner, &dto.CompareScenariosRequest{})
			require.NoError(t, err)
			assert.Equal(t, "Nothing to compare", resp.Message)
			assert.Empty(t, resp.Rows)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestComparisonSets(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		scenarioRepo := repository.NewSavedScenarioRepository(testDB.DB)
		setRepo := repository.NewComparisonSetRepository(testDB.DB)
		flow := businessflow.NewScenarioFlow(scenarioRepo, setRepo, testDB.DB)

		ctx := testingutil.CreateTestContext()
		metadata := testClientMetadata()
		owner := sessionOwner("sess-sets")

		first, err := flow.SaveScenario(ctx, owner, saveScenarioRequest("First", 480000, 1600, 96000), metadata)
		require.NoError(t, err)
		second, err := flow.SaveScenario(ctx, owner, saveScenarioRequest("Second", 250000, 1000, 120000), metadata)
		require.NoError(t, err)

		t.Run("CreateIsAllOrNothing", func(t *testing.T) {
			_, err := flow.CreateComparisonSet(ctx, owner, &dto.CreateComparisonSetRequest{
				Name:          "Broken",
				ScenarioUUIDs: []string{first.Scenario.UUID, uuid.NewString()},
			}, metadata)
			assertBusinessCode(t, err, "SCENARIO_NOT_FOUND")

			foreign, err := flow.SaveScenario(ctx, sessionOwner("sess-foreign"), saveScenarioRequest("Foreign", 1, 1, 1), metadata)
			require.NoError(t, err)

			_, err = flow.CreateComparisonSet(ctx, owner, &dto.CreateComparisonSetRequest{
				Name:          "Mixed",
				ScenarioUUIDs: []string{first.Scenario.UUID, foreign.Scenario.UUID},
			}, metadata)
			assertBusinessCode(t, err, "SCENARIO_NOT_FOUND")

			sets, err := flow.ListComparisonSets(ctx, owner)
			require.NoError(t, err)
			assert.Empty(t, sets.Items)
		})

		t.Run("CreateAndListPreserveOrder", func(t *testing.T) {
			created, err := flow.CreateComparisonSet(ctx, owner, &dto.CreateComparisonSetRequest{
				Name:          "Shortlist",
				ScenarioUUIDs: []string{second.Scenario.UUID, first.Scenario.UUID},
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, []string{second.Scenario.UUID, first.Scenario.UUID}, created.Set.ScenarioUUIDs)

			listed, err := flow.ListComparisonSets(ctx, owner)
			require.NoError(t, err)
			require.Len(t, listed.Items, 1)
			assert.Equal(t, created.Set.UUID, listed.Items[0].UUID)
			assert.Equal(t, created.Set.ScenarioUUIDs, listed.Items[0].ScenarioUUIDs)
		})

		t.Run("CompareSetUsesStoredOrder", func(t *testing.T) {
			sets, err := flow.ListComparisonSets(ctx, owner)
			require.NoError(t, err)
			require.Len(t, sets.Items, 1)

			resp, err := flow.CompareSet(ctx, owner, sets.Items[0].UUID)
			require.NoError(t, err)
			require.Len(t, resp.Rows, 2)
			assert.Equal(t, "Second", resp.Rows[0].Name)
			assert.True(t, resp.Rows[0].IsBaseline)
			assert.Equal(t, "First", resp.Rows[1].Name)
		})

		t.Run("CompareSetSkipsDeletedScenarios", func(t *testing.T) {
			sets, err := flow.ListComparisonSets(ctx, owner)
			require.NoError(t, err)
			require.Len(t, sets.Items, 1)
			setUUID := sets.Items[0].UUID

			require.NoError(t, flow.DeleteScenario(ctx, owner, second.Scenario.UUID))

			resp, err := flow.CompareSet(ctx, owner, setUUID)
			require.NoError(t, err)
			require.Len(t, resp.Rows, 1)
			assert.Equal(t, "First", resp.Rows[0].Name)

			require.NoError(t, flow.DeleteScenario(ctx, owner, first.Scenario.UUID))

			_, err = flow.CompareSet(ctx, owner, setUUID)
			assertBusinessCode(t, err, "COMPARISON_SET_EMPTY")
		})

		t.Run("ForeignOwnerNeverSeesSet", func(t *testing.T) {
			sets, err := flow.ListComparisonSets(ctx, owner)
			require.NoError(t, err)
			require.Len(t, sets.Items, 1)

			_, err = flow.CompareSet(ctx, sessionOwner("sess-else"), sets.Items[0].UUID)
			assertBusinessCode(t, err, "COMPARISON_SET_NOT_FOUND")

			err = flow.DeleteComparisonSet(ctx, sessionOwner("sess-else"), sets.Items[0].UUID)
			assertBusinessCode(t, err, "COMPARISON_SET_NOT_FOUND")
		})

		t.Run("DeleteComparisonSet", func(t *testing.T) {
			sets, err := flow.ListComparisonSets(ctx, owner)
			require.NoError(t, err)
			require.Len(t, sets.Items, 1)

			require.NoError(t, flow.DeleteComparisonSet(ctx, owner, sets.Items[0].UUID))

			after, err := flow.ListComparisonSets(ctx, owner)
			require.NoError(t, err)
			assert.Empty(t, after.Items)
		})

		return nil
	})
	require.NoError(t, err)
}
