package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLedger struct{}

func (failingLedger) ListLedger(context.Context) ([]model.Transaction, error) {
	return nil, errors.New("disk on fire")
}

func TestEngineOverStorage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	db.MustInsert("2024-01-01", "SALARY CREDIT", "50000", model.DirectionCredit, testutil.WithCategory("Salary"))
	db.MustInsert("2024-01-02", "ZOMATO ORDER", "500", model.DirectionDebit, testutil.WithCategory("Food & Dining"))
	db.MustInsert("2024-02-02", "ZOMATO ORDER 2", "700", model.DirectionDebit, testutil.WithCategory("Food & Dining"))

	engine := NewEngine(db.Storage, 0)

	summary, err := engine.Summary(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 50000, summary.TotalIncome, 0.001)
	assert.InDelta(t, 1200, summary.TotalExpenses, 0.001)

	trends, err := engine.MonthlyTrends(ctx)
	require.NoError(t, err)
	assert.Len(t, trends, 2)

	forecast, err := engine.ForecastNextMonth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, forecast.MonthsAnalyzed)

	growth, err := engine.CategoryGrowthRates(ctx)
	require.NoError(t, err)
	require.Len(t, growth, 1)
	assert.InDelta(t, 40, growth[0].GrowthPct, 0.001)

	anomalies, err := engine.DetectAnomalies(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, anomalies)

	seasonal, err := engine.SeasonalPatterns(ctx)
	require.NoError(t, err)
	assert.Len(t, seasonal, 2)

	breakdown, err := engine.CategoryBreakdown(ctx, model.DirectionCredit)
	require.NoError(t, err)
	assert.Equal(t, []model.CategoryTotal{{Category: "Salary", Total: 50000}}, breakdown)

	monthly, err := engine.MonthlyBreakdown(ctx)
	require.NoError(t, err)
	assert.Len(t, monthly, 2)

	daily, err := engine.DailySpending(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, daily, 2)
}

func TestEngineEmptyLedger(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := NewEngine(db.Storage, 1.5)

	trends, err := engine.MonthlyTrends(context.Background())
	require.NoError(t, err)
	assert.Empty(t, trends)

	_, err = engine.ForecastNextMonth(context.Background())
	assert.ErrorIs(t, err, common.ErrInsufficientData)
}

func TestEngineLedgerError(t *testing.T) {
	engine := NewEngine(failingLedger{}, 1.5)

	_, err := engine.Summary(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load ledger")
}
