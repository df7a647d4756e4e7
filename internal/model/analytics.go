package model

// MonthlyMetric summarizes one calendar month of the ledger.
type MonthlyMetric struct {
	Month       string  `json:"month"`
	Income      float64 `json:"income"`
	Expenses    float64 `json:"expenses"`
	Savings     float64 `json:"savings"`
	ExpenseMA3  float64 `json:"expense_ma3"`
	ExpenseMA6  float64 `json:"expense_ma6"`
	SavingsRate float64 `json:"savings_rate"`
}

// Anomaly flags a month where a category spiked above its usual level.
type Anomaly struct {
	Month    string  `json:"month"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Average  float64 `json:"average"`
	SpikePct float64 `json:"spike_pct"`
}

// Forecast is a one-month-ahead linear projection.
type Forecast struct {
	ExpenseTrend          string  `json:"expense_trend"`
	IncomeTrend           string  `json:"income_trend"`
	ForecastExpenses      float64 `json:"forecast_expenses"`
	ForecastIncome        float64 `json:"forecast_income"`
	ExpenseChangePerMonth float64 `json:"expense_change_per_month"`
	IncomeChangePerMonth  float64 `json:"income_change_per_month"`
	MonthsAnalyzed        int     `json:"months_analyzed"`
}

// GrowthRate compares a category's earlier and later spending.
type GrowthRate struct {
	Category  string  `json:"category"`
	GrowthPct float64 `json:"growth_pct"`
	RecentAvg float64 `json:"recent_avg"`
}

// SeasonalPattern aggregates debit spending for one calendar month across years.
type SeasonalPattern struct {
	MonthName     string  `json:"month_name"`
	CalMonth      int     `json:"cal_month"`
	AvgDailySpend float64 `json:"avg_daily_spend"`
	TotalSpend    float64 `json:"total_spend"`
	TxnCount      int     `json:"txn_count"`
	VsAveragePct  float64 `json:"vs_average_pct"`
}

// LedgerSummary holds overall totals across the ledger.
type LedgerSummary struct {
	TotalIncome   float64 `json:"total_income"`
	TotalExpenses float64 `json:"total_expenses"`
	TotalSavings  float64 `json:"total_savings"`
	TotalCount    int     `json:"total_count"`
}

// CategoryTotal is the summed amount for a single category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// DailyTotal is the summed debit amount for one day.
type DailyTotal struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// MonthTotal is a summed amount for one YYYY-MM month.
type MonthTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}
