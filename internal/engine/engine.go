// Package engine implements the hybrid classification engine: keyword rules
// first, the statistical model second, and an optional prompter last.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/finsight/internal/classification"
	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/ml"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/service"
	"github.com/shopspring/decimal"
)

// DefaultConfidenceThreshold is the model confidence a prediction must exceed.
const DefaultConfidenceThreshold = 0.7

// Result is the outcome of classifying one transaction.
type Result struct {
	Category  *string
	Direction model.Direction
	Kind      model.Kind
	Source    model.ClassificationSource
	IsSaving  bool
}

// Config holds optional collaborators and tuning for the engine.
type Config struct {
	Prompter            Prompter
	Retrainer           RetrainTrigger
	ConfidenceThreshold float64
}

// Engine orchestrates classification, correction and training.
type Engine struct {
	storage   service.Storage
	rules     *classification.RuleClassifier
	predictor Predictor
	prompter  Prompter
	retrainer RetrainTrigger
	threshold float64
}

// New creates an engine. predictor may be nil, which disables the
// statistical fallback.
func New(storage service.Storage, rules *classification.RuleClassifier, predictor Predictor, cfg Config) *Engine {
	threshold := cfg.ConfidenceThreshold
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}

	return &Engine{
		storage:   storage,
		rules:     rules,
		predictor: predictor,
		prompter:  cfg.Prompter,
		retrainer: cfg.Retrainer,
		threshold: threshold,
	}
}

// SetPrompter replaces the prompter; nil disables prompting.
func (e *Engine) SetPrompter(p Prompter) {
	e.prompter = p
}

// Taxonomy exposes the rule taxonomy, e.g. for building category pickers.
func (e *Engine) Taxonomy() *classification.Taxonomy {
	return e.rules.Taxonomy()
}

// Classify decides the category of a single transaction. An unresolved
// transaction has a nil Category and SourceNone; that is not an error.
func (e *Engine) Classify(ctx context.Context, description string, amount decimal.Decimal, direction model.Direction) (Result, error) {
	if !direction.IsValid() {
		return Result{}, fmt.Errorf("%w: direction %q", common.ErrInvalidInput, direction)
	}

	normalized := classification.Normalize(description)

	if direction == model.DirectionCredit {
		return e.classifyCredit(ctx, normalized, description, amount)
	}
	return e.classifyDebit(ctx, normalized, description, amount)
}

func (e *Engine) classifyCredit(ctx context.Context, normalized, raw string, amount decimal.Decimal) (Result, error) {
	result := Result{
		Direction: model.DirectionCredit,
		Kind:      model.KindIncome,
		Source:    model.SourceNone,
	}

	if category, ok := e.rules.ClassifyIn(model.KindIncome, normalized); ok {
		result.Category = &category
		result.Source = model.SourceRule
		return result, nil
	}

	return e.ask(ctx, result, raw, amount)
}

func (e *Engine) classifyDebit(ctx context.Context, normalized, raw string, amount decimal.Decimal) (Result, error) {
	result := Result{
		Direction: model.DirectionDebit,
		Source:    model.SourceNone,
	}

	kind, category, ok := e.rules.Classify(normalized)
	if ok && (kind == model.KindExpense || kind == model.KindSavings) {
		result.Kind = kind
		result.Category = &category
		result.IsSaving = kind == model.KindSavings
		result.Source = model.SourceRule
		return result, nil
	}

	// An income keyword on a debit says nothing about what kind of debit it is.
	kind, err := e.debitKind(ctx, normalized)
	if err != nil {
		return Result{}, err
	}
	result.Kind = kind
	result.IsSaving = kind == model.KindSavings

	category, err = e.predictCategory(ctx, kind, normalized)
	if err != nil {
		return Result{}, err
	}
	if category != "" {
		result.Category = &category
		result.Source = model.SourceModel
		return result, nil
	}

	return e.ask(ctx, result, raw, amount)
}

// debitKind asks the model whether a debit is an expense or a saving,
// defaulting to expense when it is unsure.
func (e *Engine) debitKind(ctx context.Context, normalized string) (model.Kind, error) {
	if e.predictor == nil {
		return model.KindExpense, nil
	}

	p, err := e.predictor.PredictDebitType(ctx, normalized)
	if err != nil {
		return model.KindNone, fmt.Errorf("failed to predict debit type: %w", err)
	}

	if p.Confidence > e.threshold && model.Kind(p.Label) == model.KindSavings {
		return model.KindSavings, nil
	}
	return model.KindExpense, nil
}

// predictCategory returns a category only when the model is confident and
// the label is usable for kind.
func (e *Engine) predictCategory(ctx context.Context, kind model.Kind, normalized string) (string, error) {
	if e.predictor == nil {
		return "", nil
	}

	var (
		p   ml.Prediction
		err error
	)
	if kind == model.KindSavings {
		p, err = e.predictor.PredictSavingsCategory(ctx, normalized)
	} else {
		p, err = e.predictor.PredictExpenseCategory(ctx, normalized)
	}
	if err != nil {
		return "", fmt.Errorf("failed to predict %s category: %w", strings.ToLower(string(kind)), err)
	}

	if p.Label == "" || p.Label == model.OtherCategory || p.Confidence <= e.threshold {
		return "", nil
	}
	// Feedback may contain income labels; never give one to a debit.
	if universe := e.rules.Taxonomy().UniverseOf(p.Label); universe != model.KindNone && universe != kind {
		slog.Debug("Ignoring prediction from another universe", "label", p.Label, "kind", kind)
		return "", nil
	}

	return p.Label, nil
}

// ask hands an unresolved transaction to the prompter, if there is one.
func (e *Engine) ask(ctx context.Context, result Result, raw string, amount decimal.Decimal) (Result, error) {
	if e.prompter == nil {
		return result, nil
	}

	category, err := e.prompter.ChooseCategory(ctx, Pending{
		Description: raw,
		Amount:      amount,
		Direction:   result.Direction,
		Kind:        result.Kind,
		Options:     e.rules.Taxonomy().Categories(result.Kind),
	})
	if err != nil {
		return Result{}, fmt.Errorf("prompter failed: %w", err)
	}

	category = strings.TrimSpace(category)
	if category == "" {
		return result, nil
	}

	result.Category = &category
	result.Source = model.SourceUser
	return result, nil
}

// Correct applies a manual category to a stored transaction, records the
// feedback and schedules a retrain.
func (e *Engine) Correct(ctx context.Context, hash, category string, isSaving bool) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return fmt.Errorf("%w: category is required", common.ErrInvalidInput)
	}

	txn, err := e.storage.GetTransactionByHash(ctx, hash)
	if err != nil {
		return err
	}

	if txn.Direction == model.DirectionCredit {
		isSaving = false
	}

	if err := e.storage.UpdateTransactionCategory(ctx, hash, category, isSaving); err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	sample := model.FeedbackSample{
		Description: classification.Normalize(txn.Description),
		Category:    category,
	}
	if err := e.storage.AddFeedback(ctx, sample); err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}

	slog.Info("Transaction corrected", "hash", hash, "category", category, "is_saving", isSaving)

	e.FeedbackAdded()
	return nil
}

// FeedbackAdded marks the model stale and schedules a background retrain.
func (e *Engine) FeedbackAdded() {
	if e.predictor != nil {
		e.predictor.MarkStale()
	}
	if e.retrainer != nil {
		e.retrainer.Trigger()
	}
}

// Train synchronously retrains the statistical model.
func (e *Engine) Train(ctx context.Context) error {
	if e.predictor == nil {
		return nil
	}
	return e.predictor.Train(ctx)
}

// PredictDebitType exposes the debit-type head.
func (e *Engine) PredictDebitType(ctx context.Context, description string) (ml.Prediction, error) {
	if e.predictor == nil {
		return ml.Prediction{}, nil
	}
	return e.predictor.PredictDebitType(ctx, classification.Normalize(description))
}

// PredictExpenseCategory exposes the expense-category head.
func (e *Engine) PredictExpenseCategory(ctx context.Context, description string) (ml.Prediction, error) {
	if e.predictor == nil {
		return ml.Prediction{}, nil
	}
	return e.predictor.PredictExpenseCategory(ctx, classification.Normalize(description))
}

// PredictSavingsCategory exposes the savings-category head.
func (e *Engine) PredictSavingsCategory(ctx context.Context, description string) (ml.Prediction, error) {
	if e.predictor == nil {
		return ml.Prediction{}, nil
	}
	return e.predictor.PredictSavingsCategory(ctx, classification.Normalize(description))
}

// Uncategorized lists transactions still waiting for a category.
func (e *Engine) Uncategorized(ctx context.Context) ([]model.Transaction, error) {
	return e.storage.ListUncategorized(ctx)
}
