// Package suggestion produces personalised expense reduction hints from the
// ledger and the budgets.
package suggestion

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/service"
	"github.com/shopspring/decimal"
)

// Priorities, most urgent first.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Suggestion types.
const (
	TypeBudgetOverrun     = "budget_overrun"
	TypeBudgetWarning     = "budget_warning"
	TypeDiscretionary     = "discretionary_spending"
	TypeSubscriptionAudit = "subscription_audit"
	TypeSpendingRatio     = "spending_ratio"
	TypeSavingsLow        = "savings_low"
)

var priorityRank = map[string]int{PriorityHigh: 0, PriorityMedium: 1, PriorityLow: 2}

// BudgetReporter reports budget usage for a month ("" for the current one).
type BudgetReporter interface {
	VsActual(ctx context.Context, month string) ([]model.BudgetUsage, error)
}

// Policy holds the configurable heuristics.
type Policy struct {
	CurrencySymbol          string
	SubscriptionSavingRatio float64
	WantsPctLimit           float64
	SavingsPctFloor         float64
}

// DefaultPolicy returns the stock heuristics.
func DefaultPolicy() Policy {
	return Policy{
		CurrencySymbol:          "₹",
		SubscriptionSavingRatio: 0.2,
		WantsPctLimit:           35,
		SavingsPctFloor:         15,
	}
}

// DiscretionaryTotal is the spending on one discretionary category.
type DiscretionaryTotal struct {
	Category  string  `json:"category"`
	Total     float64 `json:"total"`
	AvgAmount float64 `json:"avg_amount"`
	TxnCount  int     `json:"txn_count"`
}

// Subscription is a recurring debit found by the audit.
type Subscription struct {
	Description     string  `json:"description"`
	FirstSeen       string  `json:"first_seen"`
	LastSeen        string  `json:"last_seen"`
	TotalSpent      float64 `json:"total_spent"`
	AvgAmount       float64 `json:"avg_amount"`
	EstimatedAnnual float64 `json:"estimated_annual"`
	Occurrences     int     `json:"occurrences"`
}

// WhatIfResult projects the saving from cutting a category.
type WhatIfResult struct {
	Category          string  `json:"category"`
	CurrentMonthlyAvg float64 `json:"current_monthly_avg"`
	ReductionPct      float64 `json:"reduction_pct"`
	MonthlySaving     float64 `json:"monthly_saving"`
	AnnualSaving      float64 `json:"annual_saving"`
	NewMonthlyAvg     float64 `json:"new_monthly_avg"`
}

// RatioAnalysis compares the actual needs/wants/savings split with the ideal.
type RatioAnalysis struct {
	Ideal      map[string]float64 `json:"ideal"`
	Income     float64            `json:"income"`
	Needs      float64            `json:"needs"`
	Wants      float64            `json:"wants"`
	Savings    float64            `json:"savings"`
	NeedsPct   float64            `json:"needs_pct"`
	WantsPct   float64            `json:"wants_pct"`
	SavingsPct float64            `json:"savings_pct"`
}

// Service generates suggestions.
type Service struct {
	ledger  service.LedgerReader
	budgets BudgetReporter
	policy  Policy
}

// NewService creates a suggestion service. budgets may be nil.
func NewService(ledger service.LedgerReader, budgets BudgetReporter, policy Policy) *Service {
	defaults := DefaultPolicy()
	if policy.CurrencySymbol == "" {
		policy.CurrencySymbol = defaults.CurrencySymbol
	}
	return &Service{ledger: ledger, budgets: budgets, policy: policy}
}

func (s *Service) load(ctx context.Context) ([]model.Transaction, error) {
	txns, err := s.ledger.ListLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return txns, nil
}

// TopDiscretionary ranks discretionary categories by total debit spend.
func (s *Service) TopDiscretionary(ctx context.Context) ([]DiscretionaryTotal, error) {
	txns, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	for i := range txns {
		txn := &txns[i]
		if txn.Direction != model.DirectionDebit || !slices.Contains(DiscretionaryCategories, txn.CategoryName()) {
			continue
		}
		totals[*txn.Category] = totals[*txn.Category].Add(txn.Amount)
		counts[*txn.Category]++
	}

	result := make([]DiscretionaryTotal, 0, len(totals))
	for category, total := range totals {
		t := total.InexactFloat64()
		result = append(result, DiscretionaryTotal{
			Category:  category,
			Total:     t,
			TxnCount:  counts[category],
			AvgAmount: round(t/float64(counts[category]), 2),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Total != result[j].Total {
			return result[i].Total > result[j].Total
		}
		return result[i].Category < result[j].Category
	})
	return result, nil
}

// SubscriptionAudit finds debits that recur at least twice under the same
// narration and look like subscriptions.
func (s *Service) SubscriptionAudit(ctx context.Context) ([]Subscription, error) {
	txns, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	byDesc := make(map[string]*Subscription)
	var order []string
	sums := make(map[string]decimal.Decimal)
	for i := range txns {
		txn := &txns[i]
		if txn.Direction != model.DirectionDebit || !looksLikeSubscription(txn) {
			continue
		}
		sub, ok := byDesc[txn.Description]
		if !ok {
			sub = &Subscription{Description: txn.Description, FirstSeen: txn.Date, LastSeen: txn.Date}
			byDesc[txn.Description] = sub
			order = append(order, txn.Description)
		}
		sub.Occurrences++
		sums[txn.Description] = sums[txn.Description].Add(txn.Amount)
		if txn.Date < sub.FirstSeen {
			sub.FirstSeen = txn.Date
		}
		if txn.Date > sub.LastSeen {
			sub.LastSeen = txn.Date
		}
	}

	result := []Subscription{}
	for _, desc := range order {
		sub := byDesc[desc]
		if sub.Occurrences < 2 {
			continue
		}
		sub.TotalSpent = sums[desc].InexactFloat64()
		avg := sub.TotalSpent / float64(sub.Occurrences)
		sub.AvgAmount = round(avg, 2)
		sub.EstimatedAnnual = round(avg*12, 2)
		result = append(result, *sub)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].TotalSpent > result[j].TotalSpent })
	return result, nil
}

func looksLikeSubscription(txn *model.Transaction) bool {
	if txn.CategoryName() == "Subscriptions" {
		return true
	}
	desc := strings.ToUpper(txn.Description)
	return strings.Contains(desc, "SUBSCRIPTION") || strings.Contains(desc, "RECURRING")
}

// WhatIf projects the saving from reducing a category's average monthly
// spend by reductionPct percent.
func (s *Service) WhatIf(ctx context.Context, category string, reductionPct float64) (*WhatIfResult, error) {
	if reductionPct < 0 || reductionPct > 100 {
		return nil, fmt.Errorf("%w: reduction must be between 0 and 100, got %v", common.ErrInvalidInput, reductionPct)
	}

	txns, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	var total decimal.Decimal
	months := make(map[string]struct{})
	for i := range txns {
		txn := &txns[i]
		if txn.Direction == model.DirectionDebit && txn.CategoryName() == category {
			total = total.Add(txn.Amount)
			months[txn.Month()] = struct{}{}
		}
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: no spending data found for %s", common.ErrInsufficientData, category)
	}

	monthlyAvg := total.InexactFloat64() / float64(len(months))
	monthlySaving := monthlyAvg * reductionPct / 100

	return &WhatIfResult{
		Category:          category,
		CurrentMonthlyAvg: round(monthlyAvg, 2),
		ReductionPct:      reductionPct,
		MonthlySaving:     round(monthlySaving, 2),
		AnnualSaving:      round(monthlySaving*12, 2),
		NewMonthlyAvg:     round(monthlyAvg-monthlySaving, 2),
	}, nil
}

// SpendingRatio compares actual needs, wants and savings with 50/30/20.
// Expenses outside the needs categories count as wants.
func (s *Service) SpendingRatio(ctx context.Context) (*RatioAnalysis, error) {
	txns, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	var income, expenses, savings, needs decimal.Decimal
	for i := range txns {
		txn := &txns[i]
		switch {
		case txn.Direction == model.DirectionCredit:
			income = income.Add(txn.Amount)
		case txn.IsSaving:
			savings = savings.Add(txn.Amount)
		default:
			expenses = expenses.Add(txn.Amount)
			if slices.Contains(NeedsCategories, txn.CategoryName()) {
				needs = needs.Add(txn.Amount)
			}
		}
	}
	if !income.IsPositive() {
		return nil, fmt.Errorf("%w: no income recorded", common.ErrInsufficientData)
	}

	inc := income.InexactFloat64()
	n := needs.InexactFloat64()
	w := expenses.Sub(needs).InexactFloat64()
	sv := savings.InexactFloat64()

	return &RatioAnalysis{
		Income:     round(inc, 2),
		Needs:      round(n, 2),
		Wants:      round(w, 2),
		Savings:    round(sv, 2),
		NeedsPct:   round(n/inc*100, 1),
		WantsPct:   round(w/inc*100, 1),
		SavingsPct: round(sv/inc*100, 1),
		Ideal:      map[string]float64{"needs": 50, "wants": 30, "savings": 20},
	}, nil
}

// Generate merges budget alerts, discretionary hints, the subscription
// audit and ratio warnings, most urgent first.
func (s *Service) Generate(ctx context.Context) ([]model.Suggestion, error) {
	suggestions := []model.Suggestion{}
	sym := s.policy.CurrencySymbol

	if s.budgets != nil {
		usage, err := s.budgets.VsActual(ctx, "")
		if err != nil {
			return nil, err
		}
		for _, u := range usage {
			switch u.Status {
			case model.BudgetOver:
				over := round(u.Spent-u.Budget, 2)
				suggestions = append(suggestions, model.Suggestion{
					Priority: PriorityHigh,
					Category: u.Category,
					Type:     TypeBudgetOverrun,
					Message: fmt.Sprintf("You've exceeded your %s budget by %s (%.1f%% used). Consider reducing spending here.",
						u.Category, common.FormatAmount(sym, over), u.UtilizationPct),
					PotentialSaving: &over,
				})
			case model.BudgetWarning:
				suggestions = append(suggestions, model.Suggestion{
					Priority: PriorityMedium,
					Category: u.Category,
					Type:     TypeBudgetWarning,
					Message: fmt.Sprintf("%s spending is at %.1f%% of budget. Only %s remaining.",
						u.Category, u.UtilizationPct, common.FormatAmount(sym, u.Remaining)),
				})
			}
		}
	}

	discretionary, err := s.TopDiscretionary(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range discretionary[:min(3, len(discretionary))] {
		suggestions = append(suggestions, model.Suggestion{
			Priority: PriorityMedium,
			Category: d.Category,
			Type:     TypeDiscretionary,
			Message: fmt.Sprintf("%s is one of your top discretionary expenses (total: %s). %s",
				d.Category, common.FormatAmount(sym, d.Total), firstTip(d.Category)),
		})
	}

	subs, err := s.SubscriptionAudit(ctx)
	if err != nil {
		return nil, err
	}
	if len(subs) > 0 {
		var annual float64
		for _, sub := range subs {
			annual += sub.EstimatedAnnual
		}
		saving := round(annual*s.policy.SubscriptionSavingRatio, 2)
		suggestions = append(suggestions, model.Suggestion{
			Priority: PriorityMedium,
			Category: "Subscriptions",
			Type:     TypeSubscriptionAudit,
			Message: fmt.Sprintf("You have %d recurring subscriptions costing ~%s/year. Review and cancel unused ones.",
				len(subs), common.FormatAmount(sym, annual)),
			PotentialSaving: &saving,
		})
	}

	ratio, err := s.SpendingRatio(ctx)
	switch {
	case err == nil:
		if ratio.WantsPct > s.policy.WantsPctLimit {
			suggestions = append(suggestions, model.Suggestion{
				Priority: PriorityHigh,
				Category: "Overall",
				Type:     TypeSpendingRatio,
				Message: fmt.Sprintf("Your discretionary spending (%.1f%%) exceeds the recommended 30%%. Try to redirect some towards savings.",
					ratio.WantsPct),
			})
		}
		if ratio.SavingsPct < s.policy.SavingsPctFloor {
			suggestions = append(suggestions, model.Suggestion{
				Priority: PriorityHigh,
				Category: "Overall",
				Type:     TypeSavingsLow,
				Message: fmt.Sprintf("Your savings rate (%.1f%%) is below the recommended 20%%. Consider automating savings via SIPs or RDs.",
					ratio.SavingsPct),
			})
		}
	case !errors.Is(err, common.ErrInsufficientData):
		return nil, err
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return priorityRank[suggestions[i].Priority] < priorityRank[suggestions[j].Priority]
	})
	return suggestions, nil
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
