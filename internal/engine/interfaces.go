package engine

import (
	"context"

	"github.com/Veraticus/finsight/internal/ml"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/shopspring/decimal"
)

// Predictor is the statistical fallback consulted when rules are undecided.
type Predictor interface {
	PredictDebitType(ctx context.Context, desc string) (ml.Prediction, error)
	PredictExpenseCategory(ctx context.Context, desc string) (ml.Prediction, error)
	PredictSavingsCategory(ctx context.Context, desc string) (ml.Prediction, error)
	Train(ctx context.Context) error
	MarkStale()
}

// RetrainTrigger schedules a background retrain without blocking.
type RetrainTrigger interface {
	Trigger()
}

// Pending describes a transaction the engine could not categorise on its own.
type Pending struct {
	Description string
	Direction   model.Direction
	Kind        model.Kind
	Options     []string
	Amount      decimal.Decimal
}

// Prompter resolves pending transactions with outside help, usually a person
// at a terminal. An empty category means the transaction is skipped.
type Prompter interface {
	ChooseCategory(ctx context.Context, pending Pending) (string, error)
}
