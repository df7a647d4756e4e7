// Package analytics derives trends, anomalies and forecasts from the ledger.
//
// Every computation is a pure function over a slice of transactions; Engine
// loads the ledger and applies them.
package analytics

import (
	"context"
	"fmt"

	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/service"
)

// Engine runs analytics over the stored ledger.
type Engine struct {
	ledger        service.LedgerReader
	anomalyFactor float64
}

// NewEngine creates an analytics engine. A non-positive anomalyFactor uses
// DefaultAnomalyFactor.
func NewEngine(ledger service.LedgerReader, anomalyFactor float64) *Engine {
	if anomalyFactor <= 0 {
		anomalyFactor = DefaultAnomalyFactor
	}
	return &Engine{ledger: ledger, anomalyFactor: anomalyFactor}
}

func (e *Engine) load(ctx context.Context) ([]model.Transaction, error) {
	txns, err := e.ledger.ListLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return txns, nil
}

// MonthlyTrends returns monthly totals with moving averages.
func (e *Engine) MonthlyTrends(ctx context.Context) ([]model.MonthlyMetric, error) {
	txns, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	return MonthlyTrends(txns), nil
}

// DetectAnomalies flags category spikes. A non-positive factor uses the
// engine's configured factor.
func (e *Engine) DetectAnomalies(ctx context.Context, factor float64) ([]model.Anomaly, error) {
	txns, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	if factor <= 0 {
		factor = e.anomalyFactor
	}
	return DetectAnomalies(txns, factor), nil
}

// ForecastNextMonth projects next month's debits and credits.
func (e *Engine) ForecastNextMonth(ctx context.Context) (*model.Forecast, error) {
	txns, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	return ForecastNextMonth(txns)
}

// CategoryGrowthRates ranks categories by spending growth.
func (e *Engine) CategoryGrowthRates(ctx context.Context) ([]model.GrowthRate, error) {
	txns, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	return CategoryGrowthRates(txns), nil
}

// SeasonalPatterns summarizes spending per calendar month.
func (e *Engine) SeasonalPatterns(ctx context.Context) ([]model.SeasonalPattern, error) {
	txns, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	return SeasonalPatterns(txns), nil
}

// Summary returns overall totals.
func (e *Engine) Summary(ctx context.Context) (model.LedgerSummary, error) {
	txns, err := e.load(ctx)
	if err != nil {
		return model.LedgerSummary{}, err
	}
	return Summary(txns), nil
}

// CategoryBreakdown sums per category for one direction, or both when empty.
func (e *Engine) CategoryBreakdown(ctx context.Context, direction model.Direction) ([]model.CategoryTotal, error) {
	txns, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	return CategoryBreakdown(txns, direction), nil
}

// MonthlyBreakdown returns plain monthly totals.
func (e *Engine) MonthlyBreakdown(ctx context.Context) ([]model.MonthlyMetric, error) {
	txns, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	return MonthlyBreakdown(txns), nil
}

// DailySpending returns recent per-day debit totals.
func (e *Engine) DailySpending(ctx context.Context, monthsBack int) ([]model.DailyTotal, error) {
	txns, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	return DailySpending(txns, monthsBack), nil
}
