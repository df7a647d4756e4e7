package model

import "time"

// Budget is a monthly spending limit for one category.
type Budget struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Category     string
	MonthlyLimit float64
	ID           int64
}

// BudgetStatus describes how close spending is to its limit.
type BudgetStatus string

const (
	// BudgetOK means spending is comfortably within the limit.
	BudgetOK BudgetStatus = "ok"
	// BudgetWarning means spending is approaching the limit.
	BudgetWarning BudgetStatus = "warning"
	// BudgetOver means spending exceeded the limit.
	BudgetOver BudgetStatus = "over"
)

// BudgetUsage compares a budget against actual spending in a month.
type BudgetUsage struct {
	Category       string       `json:"category"`
	Status         BudgetStatus `json:"status"`
	Budget         float64      `json:"budget"`
	Spent          float64      `json:"spent"`
	Remaining      float64      `json:"remaining"`
	UtilizationPct float64      `json:"utilization_pct"`
}

// Allocation is a recommended split of monthly income.
type Allocation struct {
	Descriptions map[string]string `json:"description"`
	Needs        float64           `json:"needs"`
	Wants        float64           `json:"wants"`
	Savings      float64           `json:"savings"`
}

// Festival is a recurring date that tends to drive extra spending.
type Festival struct {
	Name         string
	ID           int64
	Month        int
	Day          int
	DurationDays int
	IsActive     bool
}

// Suggestion is a personalised expense reduction hint.
type Suggestion struct {
	Priority        string   `json:"priority"`
	Category        string   `json:"category"`
	Type            string   `json:"type"`
	Message         string   `json:"message"`
	PotentialSaving *float64 `json:"potential_saving,omitempty"`
}
