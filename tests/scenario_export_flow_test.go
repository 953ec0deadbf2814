package tests

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/stackvolt/wattwise/app/dto"
	businessflow "github.com/stackvolt/wattwise/business_flow"
	"github.com/stackvolt/wattwise/repository"
	testingutil "github.com/stackvolt/wattwise/testing"
)

func TestScenarioExportFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		scenarioRepo := repository.NewSavedScenarioRepository(testDB.DB)
		setRepo := repository.NewComparisonSetRepository(testDB.DB)
		scenarioFlow := businessflow.NewScenarioFlow(scenarioRepo, setRepo, testDB.DB)
		exportFlow := businessflow.NewScenarioExportFlow(scenarioFlow)

		ctx := testingutil.CreateTestContext()
		metadata := testClientMetadata()
		owner := sessionOwner("sess-export")

		base, err := scenarioFlow.SaveScenario(ctx, owner, saveScenarioRequest("Base", 480000, 1600, 96000), metadata)
		require.NoError(t, err)
		alt, err := scenarioFlow.SaveScenario(ctx, owner, saveScenarioRequest("Alternative", 250000, 1000, 120000), metadata)
		require.NoError(t, err)

		t.Run("ExportBuildsSpreadsheet", func(t *testing.T) {
			filename, data, err := exportFlow.ExportComparison(ctx, owner, &dto.CompareScenariosRequest{
				ScenarioUUIDs: []string{base.Scenario.UUID, alt.Scenario.UUID},
			})
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(filename, "comparison_"))
			assert.True(t, strings.HasSuffix(filename, ".xlsx"))
			require.NotEmpty(t, data)

			xl, err := excelize.OpenReader(bytes.NewReader(data))
			require.NoError(t, err)
			defer func() { _ = xl.Close() }()

			rows, err := xl.GetRows("Comparison")
			require.NoError(t, err)
			require.Len(t, rows, 3)
			assert.Equal(t, "name", rows[0][0])
			assert.Equal(t, "Base", rows[1][0])
			assert.Equal(t, "yes", rows[1][9])
			assert.Equal(t, "Alternative", rows[2][0])
			assert.Equal(t, "no", rows[2][9])
		})

		t.Run("ExportRejectsEmptyComparison", func(t *testing.T) {
			_, _, err := exportFlow.ExportComparison(ctx, owner, &dto.CompareScenariosRequest{})
			assertBusinessCode(t, err, "COMPARISON_SET_EMPTY")
		})

		return nil
	})
	require.NoError(t, err)
}
