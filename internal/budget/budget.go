// Package budget manages monthly category limits and compares them with
// actual spending.
package budget

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/service"
	"github.com/shopspring/decimal"
)

// Store is the persistence the budget service needs.
type Store interface {
	UpsertBudget(ctx context.Context, category string, monthlyLimit float64) error
	GetBudgets(ctx context.Context) ([]model.Budget, error)
	DeleteBudget(ctx context.Context, category string) error
	ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error)
}

// Policy holds the warning threshold and the income split ratios.
type Policy struct {
	WarningRatio float64
	NeedsRatio   float64
	WantsRatio   float64
	SavingsRatio float64
}

// DefaultPolicy is the classic 50/30/20 split with a warning at 80% of a limit.
func DefaultPolicy() Policy {
	return Policy{WarningRatio: 0.8, NeedsRatio: 0.5, WantsRatio: 0.3, SavingsRatio: 0.2}
}

// Service implements budget operations.
type Service struct {
	store  Store
	now    func() time.Time
	policy Policy
}

// NewService creates a budget service.
func NewService(store Store, policy Policy) *Service {
	if policy.WarningRatio <= 0 {
		policy.WarningRatio = DefaultPolicy().WarningRatio
	}
	return &Service{store: store, policy: policy, now: time.Now}
}

// Set creates or replaces the monthly limit for a category.
func (s *Service) Set(ctx context.Context, category string, limit float64) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return fmt.Errorf("%w: category is required", common.ErrInvalidInput)
	}
	if limit <= 0 {
		return fmt.Errorf("%w: monthly limit must be positive, got %v", common.ErrInvalidInput, limit)
	}

	if err := s.store.UpsertBudget(ctx, category, limit); err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}

	slog.Info("Budget set", "category", category, "limit", limit)
	return nil
}

// List returns every budget ordered by category.
func (s *Service) List(ctx context.Context) ([]model.Budget, error) {
	return s.store.GetBudgets(ctx)
}

// Delete removes a category's budget.
func (s *Service) Delete(ctx context.Context, category string) error {
	return s.store.DeleteBudget(ctx, strings.TrimSpace(category))
}

// VsActual compares each budget with the month's debits in its category.
// An empty month means the current one. Results are sorted by utilization,
// highest first.
func (s *Service) VsActual(ctx context.Context, month string) ([]model.BudgetUsage, error) {
	if month == "" {
		month = s.now().Format("2006-01")
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		return nil, fmt.Errorf("%w: month must be YYYY-MM, got %q", common.ErrInvalidInput, month)
	}

	budgets, err := s.store.GetBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load budgets: %w", err)
	}
	if len(budgets) == 0 {
		return []model.BudgetUsage{}, nil
	}

	debits, err := s.store.ListTransactions(ctx, service.TransactionFilter{
		Month:     month,
		Direction: model.DirectionDebit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	spentBy := make(map[string]decimal.Decimal)
	for i := range debits {
		if debits[i].Category != nil {
			spentBy[*debits[i].Category] = spentBy[*debits[i].Category].Add(debits[i].Amount)
		}
	}

	usage := make([]model.BudgetUsage, 0, len(budgets))
	for _, b := range budgets {
		spent := spentBy[b.Category].InexactFloat64()
		u := model.BudgetUsage{
			Category:  b.Category,
			Budget:    b.MonthlyLimit,
			Spent:     round(spent, 2),
			Remaining: round(b.MonthlyLimit-spent, 2),
			Status:    s.status(spent, b.MonthlyLimit),
		}
		if b.MonthlyLimit > 0 {
			u.UtilizationPct = round(spent/b.MonthlyLimit*100, 1)
		}
		usage = append(usage, u)
	}

	sort.SliceStable(usage, func(i, j int) bool {
		return usage[i].UtilizationPct > usage[j].UtilizationPct
	})
	return usage, nil
}

func (s *Service) status(spent, limit float64) model.BudgetStatus {
	switch {
	case spent > limit:
		return model.BudgetOver
	case spent > limit*s.policy.WarningRatio:
		return model.BudgetWarning
	default:
		return model.BudgetOK
	}
}

// FiftyThirtyTwenty splits a monthly income into needs, wants and savings.
func (s *Service) FiftyThirtyTwenty(income float64) model.Allocation {
	return model.Allocation{
		Needs:   round(income*s.policy.NeedsRatio, 2),
		Wants:   round(income*s.policy.WantsRatio, 2),
		Savings: round(income*s.policy.SavingsRatio, 2),
		Descriptions: map[string]string{
			"needs":   "Essentials: Rent, Groceries, Utilities, Transportation, Healthcare",
			"wants":   "Discretionary: Dining, Shopping, Entertainment, Subscriptions",
			"savings": "Savings & Investments: SIP, FD, Insurance, Emergency Fund",
		},
	}
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
