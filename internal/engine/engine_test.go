package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Veraticus/finsight/internal/classification"
	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/ml"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePredictor returns canned predictions per head and records queries.
type fakePredictor struct {
	debitType ml.Prediction
	expense   ml.Prediction
	savings   ml.Prediction
	queried   []ml.Head
	trained   int
	stale     int
	mu        sync.Mutex
}

func (f *fakePredictor) record(h ml.Head) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queried = append(f.queried, h)
}

func (f *fakePredictor) PredictDebitType(_ context.Context, _ string) (ml.Prediction, error) {
	f.record(ml.HeadDebitType)
	return f.debitType, nil
}

func (f *fakePredictor) PredictExpenseCategory(_ context.Context, _ string) (ml.Prediction, error) {
	f.record(ml.HeadExpense)
	return f.expense, nil
}

func (f *fakePredictor) PredictSavingsCategory(_ context.Context, _ string) (ml.Prediction, error) {
	f.record(ml.HeadSavings)
	return f.savings, nil
}

func (f *fakePredictor) Train(_ context.Context) error {
	f.trained++
	return nil
}

func (f *fakePredictor) MarkStale() {
	f.stale++
}

type countingTrigger struct {
	count int
}

func (c *countingTrigger) Trigger() {
	c.count++
}

func newTestEngine(t *testing.T, predictor Predictor, cfg Config) (*Engine, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	rules := classification.NewRuleClassifier(classification.DefaultTaxonomy())
	return New(db.Storage, rules, predictor, cfg), db
}

func TestEngine_ClassifyRules(t *testing.T) {
	eng, _ := newTestEngine(t, &fakePredictor{}, Config{})
	ctx := context.Background()

	tests := []struct {
		name         string
		description  string
		direction    model.Direction
		wantCategory string
		wantKind     model.Kind
		wantSaving   bool
	}{
		{
			name:         "salary credit",
			description:  "Salary for January-998877665544",
			direction:    model.DirectionCredit,
			wantCategory: "Salary",
			wantKind:     model.KindIncome,
		},
		{
			name:         "expense debit",
			description:  "Zomato Order-110889182110",
			direction:    model.DirectionDebit,
			wantCategory: "Food & Dining",
			wantKind:     model.KindExpense,
		},
		{
			name:         "savings debit",
			description:  "SIP MUTUAL FUND INVESTNOWIP",
			direction:    model.DirectionDebit,
			wantCategory: "Mutual Fund SIP",
			wantKind:     model.KindSavings,
			wantSaving:   true,
		},
		{
			name:         "credit only searches income",
			description:  "NEFT FROM ZOMATO",
			direction:    model.DirectionCredit,
			wantCategory: "Transfer In",
			wantKind:     model.KindIncome,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := eng.Classify(ctx, tt.description, decimal.NewFromInt(100), tt.direction)
			require.NoError(t, err)
			require.NotNil(t, result.Category)
			assert.Equal(t, tt.wantCategory, *result.Category)
			assert.Equal(t, tt.wantKind, result.Kind)
			assert.Equal(t, tt.wantSaving, result.IsSaving)
			assert.Equal(t, tt.direction, result.Direction)
			assert.Equal(t, model.SourceRule, result.Source)
		})
	}
}

func TestEngine_ClassifyCreditUnresolved(t *testing.T) {
	predictor := &fakePredictor{expense: ml.Prediction{Label: "Salary", Confidence: 0.99}}
	eng, _ := newTestEngine(t, predictor, Config{})
	ctx := context.Background()

	result, err := eng.Classify(ctx, "MYSTERY MONEY", decimal.NewFromInt(10), model.DirectionCredit)
	require.NoError(t, err)
	assert.Nil(t, result.Category)
	assert.Equal(t, model.SourceNone, result.Source)
	assert.Empty(t, predictor.queried, "credits never consult the model")

	prompter := NewMockPrompter(map[string]string{"MYSTERY MONEY": "Freelance"})
	eng.SetPrompter(prompter)

	result, err = eng.Classify(ctx, "MYSTERY MONEY", decimal.NewFromInt(10), model.DirectionCredit)
	require.NoError(t, err)
	require.NotNil(t, result.Category)
	assert.Equal(t, "Freelance", *result.Category)
	assert.Equal(t, model.SourceUser, result.Source)

	calls := prompter.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, model.KindIncome, calls[0].Kind)
	assert.Equal(t, eng.Taxonomy().Categories(model.KindIncome), calls[0].Options)
}

func TestEngine_ClassifyDebitWithModel(t *testing.T) {
	tests := []struct {
		name         string
		predictor    *fakePredictor
		description  string
		wantCategory *string
		wantKind     model.Kind
		wantSource   model.ClassificationSource
		wantSaving   bool
		wantQueried  []ml.Head
	}{
		{
			name: "confident savings prediction",
			predictor: &fakePredictor{
				debitType: ml.Prediction{Label: "Savings/Investment", Confidence: 0.9},
				savings:   ml.Prediction{Label: "Gold", Confidence: 0.8},
			},
			description:  "AUGMONT PURCHASE",
			wantCategory: model.StringPtr("Gold"),
			wantKind:     model.KindSavings,
			wantSource:   model.SourceModel,
			wantSaving:   true,
			wantQueried:  []ml.Head{ml.HeadDebitType, ml.HeadSavings},
		},
		{
			name: "unsure debit type defaults to expense",
			predictor: &fakePredictor{
				debitType: ml.Prediction{Label: "Savings/Investment", Confidence: 0.6},
				expense:   ml.Prediction{Label: "Groceries", Confidence: 0.95},
			},
			description:  "LOCAL KIRANA",
			wantCategory: model.StringPtr("Groceries"),
			wantKind:     model.KindExpense,
			wantSource:   model.SourceModel,
			wantQueried:  []ml.Head{ml.HeadDebitType, ml.HeadExpense},
		},
		{
			name: "other sentinel is never accepted",
			predictor: &fakePredictor{
				expense: ml.Prediction{Label: model.OtherCategory, Confidence: 0.99},
			},
			description: "LOCAL KIRANA",
			wantKind:    model.KindExpense,
			wantSource:  model.SourceNone,
			wantQueried: []ml.Head{ml.HeadDebitType, ml.HeadExpense},
		},
		{
			name: "confidence must exceed the threshold",
			predictor: &fakePredictor{
				expense: ml.Prediction{Label: "Groceries", Confidence: 0.7},
			},
			description: "LOCAL KIRANA",
			wantKind:    model.KindExpense,
			wantSource:  model.SourceNone,
			wantQueried: []ml.Head{ml.HeadDebitType, ml.HeadExpense},
		},
		{
			name: "income labels are rejected for debits",
			predictor: &fakePredictor{
				expense: ml.Prediction{Label: "Salary", Confidence: 0.95},
			},
			description: "LOCAL KIRANA",
			wantKind:    model.KindExpense,
			wantSource:  model.SourceNone,
			wantQueried: []ml.Head{ml.HeadDebitType, ml.HeadExpense},
		},
		{
			name: "income keyword on a debit consults the model",
			predictor: &fakePredictor{
				expense: ml.Prediction{Label: "Rent", Confidence: 0.9},
			},
			description:  "NEFT TO LANDLORD",
			wantCategory: model.StringPtr("Rent"),
			wantKind:     model.KindExpense,
			wantSource:   model.SourceModel,
			wantQueried:  []ml.Head{ml.HeadDebitType, ml.HeadExpense},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _ := newTestEngine(t, tt.predictor, Config{})

			result, err := eng.Classify(context.Background(), tt.description, decimal.NewFromInt(250), model.DirectionDebit)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCategory, result.Category)
			assert.Equal(t, tt.wantKind, result.Kind)
			assert.Equal(t, tt.wantSource, result.Source)
			assert.Equal(t, tt.wantSaving, result.IsSaving)
			assert.Equal(t, tt.wantQueried, tt.predictor.queried)
		})
	}
}

func TestEngine_ClassifyDebitPromptsWithKindOptions(t *testing.T) {
	prompter := NewMockPrompter(map[string]string{"AUGMONT PURCHASE": "Gold"})
	predictor := &fakePredictor{debitType: ml.Prediction{Label: "Savings/Investment", Confidence: 0.95}}
	eng, _ := newTestEngine(t, predictor, Config{Prompter: prompter})

	result, err := eng.Classify(context.Background(), "AUGMONT PURCHASE", decimal.NewFromInt(1000), model.DirectionDebit)
	require.NoError(t, err)
	require.NotNil(t, result.Category)
	assert.Equal(t, "Gold", *result.Category)
	assert.True(t, result.IsSaving)
	assert.Equal(t, model.SourceUser, result.Source)

	calls := prompter.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, eng.Taxonomy().Categories(model.KindSavings), calls[0].Options)
}

func TestEngine_ClassifyPrompterError(t *testing.T) {
	prompter := NewMockPrompter(nil).WithError(errors.New("terminal closed"))
	eng, _ := newTestEngine(t, nil, Config{Prompter: prompter})

	_, err := eng.Classify(context.Background(), "UNKNOWN", decimal.NewFromInt(1), model.DirectionDebit)
	assert.ErrorContains(t, err, "terminal closed")
}

func TestEngine_ClassifyInvalidDirection(t *testing.T) {
	eng, _ := newTestEngine(t, nil, Config{})

	_, err := eng.Classify(context.Background(), "X", decimal.NewFromInt(1), model.Direction("Transfer"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestEngine_ClassifyWithoutFeedback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	taxonomy := classification.DefaultTaxonomy()
	classifier := ml.NewClassifier(db.Storage, ml.NewMemoryModelStore(), taxonomy.IsSavings)
	eng := New(db.Storage, classification.NewRuleClassifier(taxonomy), classifier, Config{})

	result, err := eng.Classify(context.Background(), "RANDOM TRANSACTION XYZ", decimal.NewFromInt(99), model.DirectionDebit)
	require.NoError(t, err)
	assert.Nil(t, result.Category)
	assert.Equal(t, model.KindExpense, result.Kind)
	assert.False(t, result.IsSaving)

	p, err := eng.PredictDebitType(context.Background(), "RANDOM TRANSACTION XYZ")
	require.NoError(t, err)
	assert.Equal(t, ml.Prediction{}, p)
}

func TestEngine_Correct(t *testing.T) {
	predictor := &fakePredictor{}
	trigger := &countingTrigger{}
	eng, db := newTestEngine(t, predictor, Config{Retrainer: trigger})
	ctx := context.Background()

	txn := db.MustInsert("2024-03-01", "Augmont Gold-1234567890", "2000", model.DirectionDebit)

	require.NoError(t, eng.Correct(ctx, txn.Hash, "Gold", true))

	stored, err := db.Storage.GetTransactionByHash(ctx, txn.Hash)
	require.NoError(t, err)
	assert.Equal(t, "Gold", stored.CategoryName())
	assert.True(t, stored.IsSaving)

	samples, err := db.Storage.ListFeedback(ctx)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, "AUGMONT GOLD", samples[0].Description)
	assert.Equal(t, "Gold", samples[0].Category)

	assert.Equal(t, 1, predictor.stale)
	assert.Equal(t, 1, trigger.count)

	t.Run("credits never become savings", func(t *testing.T) {
		credit := db.MustInsert("2024-03-02", "Gift from aunt", "500", model.DirectionCredit)
		require.NoError(t, eng.Correct(ctx, credit.Hash, "Transfer In", true))

		stored, err := db.Storage.GetTransactionByHash(ctx, credit.Hash)
		require.NoError(t, err)
		assert.False(t, stored.IsSaving)
	})

	t.Run("unknown hash", func(t *testing.T) {
		err := eng.Correct(ctx, "does-not-exist", "Gold", true)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("empty category", func(t *testing.T) {
		err := eng.Correct(ctx, txn.Hash, "  ", false)
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})
}

func TestEngine_TrainDelegates(t *testing.T) {
	predictor := &fakePredictor{}
	eng, _ := newTestEngine(t, predictor, Config{})

	require.NoError(t, eng.Train(context.Background()))
	assert.Equal(t, 1, predictor.trained)

	noModel, _ := newTestEngine(t, nil, Config{})
	assert.NoError(t, noModel.Train(context.Background()))
}
