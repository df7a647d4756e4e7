package suggestion

import (
	"context"
	"testing"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBudgets struct {
	usage []model.BudgetUsage
}

func (f fakeBudgets) VsActual(context.Context, string) ([]model.BudgetUsage, error) {
	return f.usage, nil
}

func seedLedger(t *testing.T) *testutil.TestDB {
	t.Helper()
	db := testutil.SetupTestDB(t)

	db.MustInsert("2024-03-01", "SALARY CREDIT", "10000", model.DirectionCredit, testutil.WithCategory("Salary"))
	db.MustInsert("2024-03-02", "ZOMATO ORDER", "3000", model.DirectionDebit, testutil.WithCategory("Food & Dining"))
	db.MustInsert("2024-03-03", "SWIGGY ORDER", "1000", model.DirectionDebit, testutil.WithCategory("Food & Dining"))
	db.MustInsert("2024-03-04", "AMAZON", "500", model.DirectionDebit, testutil.WithCategory("Shopping"))
	db.MustInsert("2024-02-10", "NETFLIX", "649", model.DirectionDebit, testutil.WithCategory("Subscriptions"))
	db.MustInsert("2024-03-10", "NETFLIX", "649", model.DirectionDebit, testutil.WithCategory("Subscriptions"))
	db.MustInsert("2024-03-05", "HOUSE RENT", "2000", model.DirectionDebit, testutil.WithCategory("Rent"))
	db.MustInsert("2024-03-06", "SIP MUTUAL FUND", "1000", model.DirectionDebit,
		testutil.WithCategory("Mutual Fund SIP"), testutil.AsSaving())
	db.MustInsert("2024-03-07", "GYM RECURRING PAYMENT", "800", model.DirectionDebit)

	return db
}

func TestTopDiscretionary(t *testing.T) {
	db := seedLedger(t)
	svc := NewService(db.Storage, nil, DefaultPolicy())

	top, err := svc.TopDiscretionary(context.Background())
	require.NoError(t, err)
	require.Len(t, top, 3)

	assert.Equal(t, DiscretionaryTotal{Category: "Food & Dining", Total: 4000, TxnCount: 2, AvgAmount: 2000}, top[0])
	assert.Equal(t, "Subscriptions", top[1].Category)
	assert.Equal(t, "Shopping", top[2].Category)
}

func TestSubscriptionAudit(t *testing.T) {
	db := seedLedger(t)
	svc := NewService(db.Storage, nil, DefaultPolicy())

	subs, err := svc.SubscriptionAudit(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1, "single recurring debits are not subscriptions yet")

	assert.Equal(t, Subscription{
		Description:     "NETFLIX",
		Occurrences:     2,
		TotalSpent:      1298,
		AvgAmount:       649,
		EstimatedAnnual: 7788,
		FirstSeen:       "2024-02-10",
		LastSeen:        "2024-03-10",
	}, subs[0])
}

func TestWhatIf(t *testing.T) {
	db := seedLedger(t)
	svc := NewService(db.Storage, nil, DefaultPolicy())
	ctx := context.Background()

	result, err := svc.WhatIf(ctx, "Food & Dining", 25)
	require.NoError(t, err)
	assert.Equal(t, &WhatIfResult{
		Category:          "Food & Dining",
		CurrentMonthlyAvg: 4000,
		ReductionPct:      25,
		MonthlySaving:     1000,
		AnnualSaving:      12000,
		NewMonthlyAvg:     3000,
	}, result)

	subs, err := svc.WhatIf(ctx, "Subscriptions", 50)
	require.NoError(t, err)
	assert.InDelta(t, 649, subs.CurrentMonthlyAvg, 0.001)

	_, err = svc.WhatIf(ctx, "Travel", 10)
	assert.ErrorIs(t, err, common.ErrInsufficientData)

	_, err = svc.WhatIf(ctx, "Food & Dining", 120)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestSpendingRatio(t *testing.T) {
	db := seedLedger(t)
	svc := NewService(db.Storage, nil, DefaultPolicy())

	ratio, err := svc.SpendingRatio(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 10000, ratio.Income, 0.001)
	assert.InDelta(t, 2000, ratio.Needs, 0.001)
	assert.InDelta(t, 6598, ratio.Wants, 0.001)
	assert.InDelta(t, 1000, ratio.Savings, 0.001)
	assert.InDelta(t, 20, ratio.NeedsPct, 0.001)
	assert.InDelta(t, 66, ratio.WantsPct, 0.001)
	assert.InDelta(t, 10, ratio.SavingsPct, 0.001)
	assert.InDelta(t, 50, ratio.Ideal["needs"], 0.001)

	empty := NewService(testutil.SetupTestDB(t).Storage, nil, DefaultPolicy())
	_, err = empty.SpendingRatio(context.Background())
	assert.ErrorIs(t, err, common.ErrInsufficientData)
}

func TestGenerate(t *testing.T) {
	db := seedLedger(t)
	budgets := fakeBudgets{usage: []model.BudgetUsage{
		{Category: "Food & Dining", Budget: 3000, Spent: 4000, Remaining: -1000, UtilizationPct: 133.3, Status: model.BudgetOver},
		{Category: "Shopping", Budget: 600, Spent: 500, Remaining: 100, UtilizationPct: 83.3, Status: model.BudgetWarning},
		{Category: "Rent", Budget: 5000, Spent: 2000, Remaining: 3000, UtilizationPct: 40, Status: model.BudgetOK},
	}}
	svc := NewService(db.Storage, budgets, DefaultPolicy())

	suggestions, err := svc.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, suggestions, 8)

	types := make([]string, len(suggestions))
	for i, s := range suggestions {
		types[i] = s.Type
	}
	assert.Equal(t, []string{
		TypeBudgetOverrun,
		TypeSpendingRatio,
		TypeSavingsLow,
		TypeBudgetWarning,
		TypeDiscretionary,
		TypeDiscretionary,
		TypeDiscretionary,
		TypeSubscriptionAudit,
	}, types)

	overrun := suggestions[0]
	assert.Equal(t, PriorityHigh, overrun.Priority)
	assert.Equal(t, "You've exceeded your Food & Dining budget by ₹1,000 (133.3% used). Consider reducing spending here.", overrun.Message)
	require.NotNil(t, overrun.PotentialSaving)
	assert.InDelta(t, 1000, *overrun.PotentialSaving, 0.001)

	assert.Equal(t, "Food & Dining is one of your top discretionary expenses (total: ₹4,000). "+Tips("Food & Dining")[0],
		suggestions[4].Message)

	audit := suggestions[7]
	require.NotNil(t, audit.PotentialSaving)
	assert.InDelta(t, 1557.6, *audit.PotentialSaving, 0.001)
	assert.Contains(t, audit.Message, "1 recurring subscriptions costing ~₹7,788/year")
}

func TestGeneratePolicyThresholds(t *testing.T) {
	db := seedLedger(t)
	policy := DefaultPolicy()
	policy.WantsPctLimit = 80
	policy.SavingsPctFloor = 5
	policy.CurrencySymbol = "$"
	svc := NewService(db.Storage, nil, policy)

	suggestions, err := svc.Generate(context.Background())
	require.NoError(t, err)
	for _, s := range suggestions {
		assert.NotEqual(t, TypeSpendingRatio, s.Type)
		assert.NotEqual(t, TypeSavingsLow, s.Type)
		assert.Equal(t, PriorityMedium, s.Priority)
	}
	assert.Contains(t, suggestions[0].Message, "$4,000")
}

func TestGenerateEmptyLedger(t *testing.T) {
	svc := NewService(testutil.SetupTestDB(t).Storage, fakeBudgets{}, DefaultPolicy())

	suggestions, err := svc.Generate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestFirstTip(t *testing.T) {
	assert.Equal(t, genericTip, firstTip("Personal Care"))
	assert.NotEqual(t, genericTip, firstTip("Shopping"))
}
