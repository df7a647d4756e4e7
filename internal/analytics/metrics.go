package analytics

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/shopspring/decimal"
)

// DefaultAnomalyFactor is used when DetectAnomalies gets a non-positive factor.
const DefaultAnomalyFactor = 1.5

var monthNames = [...]string{
	"", "January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

type monthTotals struct {
	month    string
	income   decimal.Decimal
	expenses decimal.Decimal // debits that are not savings
	savings  decimal.Decimal
	debits   decimal.Decimal
}

// groupByMonth buckets the ledger by YYYY-MM, in ascending month order.
func groupByMonth(txns []model.Transaction) []*monthTotals {
	byMonth := make(map[string]*monthTotals)
	for i := range txns {
		txn := &txns[i]
		month := txn.Month()
		mt, ok := byMonth[month]
		if !ok {
			mt = &monthTotals{month: month}
			byMonth[month] = mt
		}

		if txn.Direction == model.DirectionCredit {
			mt.income = mt.income.Add(txn.Amount)
			continue
		}
		mt.debits = mt.debits.Add(txn.Amount)
		if txn.IsSaving {
			mt.savings = mt.savings.Add(txn.Amount)
		} else {
			mt.expenses = mt.expenses.Add(txn.Amount)
		}
	}

	months := make([]*monthTotals, 0, len(byMonth))
	for _, mt := range byMonth {
		months = append(months, mt)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].month < months[j].month })
	return months
}

// MonthlyBreakdown returns income, expenses and savings per month.
func MonthlyBreakdown(txns []model.Transaction) []model.MonthlyMetric {
	months := groupByMonth(txns)
	metrics := make([]model.MonthlyMetric, 0, len(months))
	for _, mt := range months {
		metrics = append(metrics, model.MonthlyMetric{
			Month:    mt.month,
			Income:   mt.income.InexactFloat64(),
			Expenses: mt.expenses.InexactFloat64(),
			Savings:  mt.savings.InexactFloat64(),
		})
	}
	return metrics
}

// MonthlyDebitTotals returns the total of all debits per month, savings
// included, in ascending month order.
func MonthlyDebitTotals(txns []model.Transaction) []model.MonthTotal {
	months := groupByMonth(txns)
	totals := make([]model.MonthTotal, 0, len(months))
	for _, mt := range months {
		if mt.debits.IsZero() {
			continue
		}
		totals = append(totals, model.MonthTotal{Month: mt.month, Total: mt.debits.InexactFloat64()})
	}
	return totals
}

// MonthlyTrends adds trailing 3 and 6 month expense averages and the
// savings rate to the monthly breakdown. Windows are partial at the start.
func MonthlyTrends(txns []model.Transaction) []model.MonthlyMetric {
	metrics := MonthlyBreakdown(txns)

	expenses := make([]float64, len(metrics))
	for i, m := range metrics {
		expenses[i] = m.Expenses
	}

	for i := range metrics {
		metrics[i].ExpenseMA3 = round(trailingMean(expenses, i, 3), 2)
		metrics[i].ExpenseMA6 = round(trailingMean(expenses, i, 6), 2)
		if metrics[i].Income > 0 {
			metrics[i].SavingsRate = round(metrics[i].Savings/metrics[i].Income*100, 1)
		}
	}
	return metrics
}

func trailingMean(values []float64, end, window int) float64 {
	start := max(0, end-window+1)
	var sum float64
	for _, v := range values[start : end+1] {
		sum += v
	}
	return sum / float64(end-start+1)
}

// DetectAnomalies flags (month, category) debit totals above factor times
// that category's average across the months it appears in.
func DetectAnomalies(txns []model.Transaction, factor float64) []model.Anomaly {
	if factor <= 0 {
		factor = DefaultAnomalyFactor
	}

	type key struct{ month, category string }
	totals := make(map[key]decimal.Decimal)
	for i := range txns {
		txn := &txns[i]
		if txn.Direction != model.DirectionDebit {
			continue
		}
		category := txn.CategoryName()
		if category == "" {
			category = model.UncategorizedLabel
		}
		k := key{txn.Month(), category}
		totals[k] = totals[k].Add(txn.Amount)
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for k, total := range totals {
		sums[k.category] += total.InexactFloat64()
		counts[k.category]++
	}

	anomalies := []model.Anomaly{}
	for k, t := range totals {
		total := t.InexactFloat64()
		avg := sums[k.category] / float64(counts[k.category])
		if avg > 0 && total > avg*factor {
			anomalies = append(anomalies, model.Anomaly{
				Month:    k.month,
				Category: k.category,
				Amount:   round(total, 2),
				Average:  round(avg, 2),
				SpikePct: round((total/avg-1)*100, 1),
			})
		}
	}

	sort.Slice(anomalies, func(i, j int) bool {
		if anomalies[i].Month != anomalies[j].Month {
			return anomalies[i].Month < anomalies[j].Month
		}
		return anomalies[i].Category < anomalies[j].Category
	})
	return anomalies
}

// ForecastNextMonth fits a least-squares line through monthly debit and
// credit totals and projects the following month. It needs two months.
func ForecastNextMonth(txns []model.Transaction) (*model.Forecast, error) {
	months := groupByMonth(txns)
	n := len(months)
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 months of data for forecasting, have %d", common.ErrInsufficientData, n)
	}

	debits := make([]float64, n)
	income := make([]float64, n)
	for i, mt := range months {
		debits[i] = mt.debits.InexactFloat64()
		income[i] = mt.income.InexactFloat64()
	}

	expSlope, expIntercept := linearRegression(debits)
	incSlope, incIntercept := linearRegression(income)

	next := float64(n)
	return &model.Forecast{
		ForecastExpenses:      round(max(0, expSlope*next+expIntercept), 2),
		ForecastIncome:        round(max(0, incSlope*next+incIntercept), 2),
		ExpenseTrend:          trend(expSlope),
		IncomeTrend:           trend(incSlope),
		ExpenseChangePerMonth: round(expSlope, 2),
		IncomeChangePerMonth:  round(incSlope, 2),
		MonthsAnalyzed:        n,
	}, nil
}

func trend(slope float64) string {
	if slope > 0 {
		return "increasing"
	}
	return "decreasing"
}

// CategoryGrowthRates compares the earlier and later halves of each
// categorized debit series. Categories seen in fewer than two months are
// left out.
func CategoryGrowthRates(txns []model.Transaction) []model.GrowthRate {
	series := make(map[string]map[string]decimal.Decimal)
	for i := range txns {
		txn := &txns[i]
		if txn.Direction != model.DirectionDebit || txn.Category == nil {
			continue
		}
		byMonth, ok := series[*txn.Category]
		if !ok {
			byMonth = make(map[string]decimal.Decimal)
			series[*txn.Category] = byMonth
		}
		month := txn.Month()
		byMonth[month] = byMonth[month].Add(txn.Amount)
	}

	rates := []model.GrowthRate{}
	for category, byMonth := range series {
		if len(byMonth) < 2 {
			continue
		}

		months := make([]string, 0, len(byMonth))
		for m := range byMonth {
			months = append(months, m)
		}
		sort.Strings(months)

		split := len(months) / 2
		var early, late float64
		for i, m := range months {
			if i < split {
				early += byMonth[m].InexactFloat64()
			} else {
				late += byMonth[m].InexactFloat64()
			}
		}

		var growth float64
		switch {
		case early > 0:
			growth = (late - early) / early * 100
		case late > 0:
			growth = 100
		}

		rates = append(rates, model.GrowthRate{
			Category:  category,
			GrowthPct: round(growth, 1),
			RecentAvg: round(late/float64(len(months)-split), 2),
		})
	}

	sort.Slice(rates, func(i, j int) bool {
		if rates[i].GrowthPct != rates[j].GrowthPct {
			return rates[i].GrowthPct > rates[j].GrowthPct
		}
		return rates[i].Category < rates[j].Category
	})
	return rates
}

// SeasonalPatterns groups debits by calendar month across all years.
func SeasonalPatterns(txns []model.Transaction) []model.SeasonalPattern {
	var totals [13]decimal.Decimal
	var counts [13]int
	for i := range txns {
		txn := &txns[i]
		if txn.Direction != model.DirectionDebit {
			continue
		}
		calMonth := calendarMonth(txn.Date)
		if calMonth == 0 {
			continue
		}
		totals[calMonth] = totals[calMonth].Add(txn.Amount)
		counts[calMonth]++
	}

	patterns := []model.SeasonalPattern{}
	var grand float64
	for m := 1; m <= 12; m++ {
		if counts[m] == 0 {
			continue
		}
		total := totals[m].InexactFloat64()
		grand += total
		patterns = append(patterns, model.SeasonalPattern{
			CalMonth:      m,
			MonthName:     monthNames[m],
			TotalSpend:    round(total, 2),
			TxnCount:      counts[m],
			AvgDailySpend: round(total/float64(counts[m]), 2),
		})
	}
	if len(patterns) == 0 {
		return patterns
	}

	grandAvg := grand / float64(len(patterns))
	for i := range patterns {
		if grandAvg > 0 {
			patterns[i].VsAveragePct = round((totals[patterns[i].CalMonth].InexactFloat64()/grandAvg-1)*100, 1)
		}
	}
	return patterns
}

// calendarMonth extracts the month from a YYYY-MM-DD date, or 0.
func calendarMonth(date string) int {
	if len(date) < 7 {
		return 0
	}
	m, err := strconv.Atoi(date[5:7])
	if err != nil || m < 1 || m > 12 {
		return 0
	}
	return m
}

// Summary returns overall ledger totals. Expenses exclude savings.
func Summary(txns []model.Transaction) model.LedgerSummary {
	var income, expenses, savings decimal.Decimal
	for i := range txns {
		txn := &txns[i]
		switch {
		case txn.Direction == model.DirectionCredit:
			income = income.Add(txn.Amount)
		case txn.IsSaving:
			savings = savings.Add(txn.Amount)
		default:
			expenses = expenses.Add(txn.Amount)
		}
	}
	return model.LedgerSummary{
		TotalIncome:   income.InexactFloat64(),
		TotalExpenses: expenses.InexactFloat64(),
		TotalSavings:  savings.InexactFloat64(),
		TotalCount:    len(txns),
	}
}

// CategoryBreakdown sums amounts per category, largest first. An empty
// direction includes both.
func CategoryBreakdown(txns []model.Transaction, direction model.Direction) []model.CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	for i := range txns {
		txn := &txns[i]
		if direction != "" && txn.Direction != direction {
			continue
		}
		category := txn.CategoryName()
		if category == "" {
			category = model.UncategorizedLabel
		}
		totals[category] = totals[category].Add(txn.Amount)
	}

	breakdown := make([]model.CategoryTotal, 0, len(totals))
	for category, total := range totals {
		breakdown = append(breakdown, model.CategoryTotal{Category: category, Total: total.InexactFloat64()})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Total != breakdown[j].Total {
			return breakdown[i].Total > breakdown[j].Total
		}
		return breakdown[i].Category < breakdown[j].Category
	})
	return breakdown
}

// DailySpending returns per-day debit totals, newest first, covering
// roughly monthsBack months of active days.
func DailySpending(txns []model.Transaction, monthsBack int) []model.DailyTotal {
	if monthsBack <= 0 {
		monthsBack = 3
	}

	totals := make(map[string]decimal.Decimal)
	for i := range txns {
		txn := &txns[i]
		if txn.Direction == model.DirectionDebit {
			totals[txn.Date] = totals[txn.Date].Add(txn.Amount)
		}
	}

	days := make([]model.DailyTotal, 0, len(totals))
	for date, total := range totals {
		days = append(days, model.DailyTotal{Date: date, Total: total.InexactFloat64()})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date > days[j].Date })

	if limit := monthsBack * 31; len(days) > limit {
		days = days[:limit]
	}
	return days
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
