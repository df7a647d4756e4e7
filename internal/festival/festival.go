// Package festival tracks recurring festivals and warns ahead of the ones
// that historically push spending up.
package festival

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/finsight/internal/analytics"
	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/service"
	"github.com/shopspring/decimal"
)

// Store is the festival persistence the service needs.
type Store interface {
	AddFestival(ctx context.Context, festival *model.Festival) error
	SeedFestival(ctx context.Context, festival *model.Festival) error
	GetActiveFestivals(ctx context.Context) ([]model.Festival, error)
	DeactivateFestival(ctx context.Context, id int64) error
}

// Config tunes the alerts.
type Config struct {
	CurrencySymbol  string
	AlertDaysBefore int
	BufferRatio     float64
}

// Alert describes an upcoming festival and what it usually costs.
type Alert struct {
	Name               string  `json:"name"`
	Date               string  `json:"date"`
	Message            string  `json:"message"`
	DaysUntil          int     `json:"days_until"`
	DurationDays       int     `json:"duration_days"`
	HistoricalAvgSpend float64 `json:"historical_avg_spend"`
	NormalAvgSpend     float64 `json:"normal_avg_spend"`
	ExtraSpend         float64 `json:"extra_spend"`
	SuggestedSaving    float64 `json:"suggested_saving"`
}

// SpendingAnalysis compares months containing a festival with the rest.
type SpendingAnalysis struct {
	FestiveMonthsAvg   float64 `json:"festive_months_avg"`
	NormalMonthsAvg    float64 `json:"normal_months_avg"`
	Difference         float64 `json:"difference"`
	DifferencePct      float64 `json:"difference_pct"`
	FestiveMonthsCount int     `json:"festive_months_count"`
	NormalMonthsCount  int     `json:"normal_months_count"`
}

// Service manages the festival calendar.
type Service struct {
	store  Store
	ledger service.LedgerReader
	cfg    Config
}

// NewService creates a festival service.
func NewService(store Store, ledger service.LedgerReader, cfg Config) *Service {
	if cfg.CurrencySymbol == "" {
		cfg.CurrencySymbol = "₹"
	}
	if cfg.AlertDaysBefore <= 0 {
		cfg.AlertDaysBefore = 21
	}
	return &Service{store: store, ledger: ledger, cfg: cfg}
}

// SeedDefaults inserts the given festivals unless they are already known.
// Festivals the user removed stay removed.
func (s *Service) SeedDefaults(ctx context.Context, festivals []model.Festival) error {
	for i := range festivals {
		f := festivals[i]
		if err := s.store.SeedFestival(ctx, &f); err != nil {
			return fmt.Errorf("failed to seed festival %s: %w", f.Name, err)
		}
	}
	return nil
}

// List returns the active festivals in calendar order.
func (s *Service) List(ctx context.Context) ([]model.Festival, error) {
	return s.store.GetActiveFestivals(ctx)
}

// Add registers a festival, reactivating it if it was removed.
func (s *Service) Add(ctx context.Context, name string, month, day, durationDays int) (*model.Festival, error) {
	if durationDays <= 0 {
		durationDays = 1
	}
	f := &model.Festival{
		Name:         strings.TrimSpace(name),
		Month:        month,
		Day:          day,
		DurationDays: durationDays,
		IsActive:     true,
	}
	if err := s.store.AddFestival(ctx, f); err != nil {
		return nil, err
	}

	slog.Info("Festival added", "name", f.Name, "month", month, "day", day)
	return f, nil
}

// Remove deactivates a festival.
func (s *Service) Remove(ctx context.Context, id int64) error {
	return s.store.DeactivateFestival(ctx, id)
}

// Upcoming returns festivals falling within daysAhead days of now, soonest
// first. A negative daysAhead uses the configured alert window. Dates are
// compared by calendar day, and a festival already past this year is
// considered for next year.
func (s *Service) Upcoming(ctx context.Context, now time.Time, daysAhead int) ([]Alert, error) {
	if daysAhead < 0 {
		daysAhead = s.cfg.AlertDaysBefore
	}

	festivals, err := s.store.GetActiveFestivals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load festivals: %w", err)
	}

	monthly, err := s.monthlyDebits(ctx)
	if err != nil {
		return nil, err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	alerts := []Alert{}
	for _, f := range festivals {
		date, ok := nextOccurrence(today, f.Month, f.Day)
		if !ok {
			continue
		}
		daysUntil := int(date.Sub(today).Hours() / 24)
		if daysUntil > daysAhead {
			continue
		}

		alert := Alert{
			Name:         f.Name,
			Date:         date.Format(time.DateOnly),
			DaysUntil:    daysUntil,
			DurationDays: f.DurationDays,
		}
		s.fillHistory(&alert, monthly, f.Month)
		alert.Message = s.message(alert)
		alerts = append(alerts, alert)
	}

	sort.SliceStable(alerts, func(i, j int) bool { return alerts[i].DaysUntil < alerts[j].DaysUntil })
	return alerts, nil
}

// nextOccurrence returns the festival date on or after today. Dates that do
// not exist in a year, such as 29 February, are skipped for that year.
func nextOccurrence(today time.Time, month, day int) (time.Time, bool) {
	for year := today.Year(); year <= today.Year()+4; year++ {
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if date.Month() != time.Month(month) || date.Day() != day {
			continue
		}
		if !date.Before(today) {
			return date, true
		}
	}
	return time.Time{}, false
}

func (s *Service) monthlyDebits(ctx context.Context) ([]model.MonthTotal, error) {
	txns, err := s.ledger.ListLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return analytics.MonthlyDebitTotals(txns), nil
}

// fillHistory compares the festival's calendar month with all months.
func (s *Service) fillHistory(alert *Alert, monthly []model.MonthTotal, month int) {
	var festivalSum, overallSum float64
	var festivalCount int
	for _, m := range monthly {
		overallSum += m.Total
		if calendarMonth(m.Month) == month {
			festivalSum += m.Total
			festivalCount++
		}
	}

	var festivalAvg, overallAvg float64
	if festivalCount > 0 {
		festivalAvg = festivalSum / float64(festivalCount)
	}
	if len(monthly) > 0 {
		overallAvg = overallSum / float64(len(monthly))
	}
	extra := max(0, festivalAvg-overallAvg)

	alert.HistoricalAvgSpend = round(festivalAvg, 2)
	alert.NormalAvgSpend = round(overallAvg, 2)
	alert.ExtraSpend = round(extra, 2)
	alert.SuggestedSaving = round(extra*(1+s.cfg.BufferRatio), 2)
}

func (s *Service) message(a Alert) string {
	sym := s.cfg.CurrencySymbol

	var when string
	switch a.DaysUntil {
	case 0:
		when = "is today"
	case 1:
		when = "is tomorrow"
	default:
		when = fmt.Sprintf("is in %d days", a.DaysUntil)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s!", a.Name, when)

	if a.HistoricalAvgSpend <= 0 {
		b.WriteString(" Plan ahead and set aside some extra savings for festive expenses.")
		return b.String()
	}

	fmt.Fprintf(&b, " Based on your history, you typically spend around %s during this period",
		common.FormatAmount(sym, a.HistoricalAvgSpend))
	if a.ExtraSpend > 0 {
		fmt.Fprintf(&b, " (%s more than normal months). Consider saving %s extra.",
			common.FormatAmount(sym, a.ExtraSpend), common.FormatAmount(sym, a.SuggestedSaving))
	} else {
		b.WriteString(".")
	}
	return b.String()
}

// FestiveSpendingAnalysis compares average monthly debits in months that
// host an active festival against the other months.
func (s *Service) FestiveSpendingAnalysis(ctx context.Context) (*SpendingAnalysis, error) {
	festivals, err := s.store.GetActiveFestivals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load festivals: %w", err)
	}
	festive := make(map[int]bool, len(festivals))
	for _, f := range festivals {
		festive[f.Month] = true
	}

	monthly, err := s.monthlyDebits(ctx)
	if err != nil {
		return nil, err
	}

	var festiveSum, normalSum float64
	var festiveCount, normalCount int
	for _, m := range monthly {
		if festive[calendarMonth(m.Month)] {
			festiveSum += m.Total
			festiveCount++
		} else {
			normalSum += m.Total
			normalCount++
		}
	}

	var festiveAvg, normalAvg float64
	if festiveCount > 0 {
		festiveAvg = festiveSum / float64(festiveCount)
	}
	if normalCount > 0 {
		normalAvg = normalSum / float64(normalCount)
	}

	analysis := &SpendingAnalysis{
		FestiveMonthsAvg:   round(festiveAvg, 2),
		NormalMonthsAvg:    round(normalAvg, 2),
		Difference:         round(festiveAvg-normalAvg, 2),
		FestiveMonthsCount: festiveCount,
		NormalMonthsCount:  normalCount,
	}
	if normalAvg > 0 {
		analysis.DifferencePct = round((festiveAvg-normalAvg)/normalAvg*100, 1)
	}
	return analysis, nil
}

func calendarMonth(yearMonth string) int {
	t, err := time.Parse("2006-01", yearMonth)
	if err != nil {
		return 0
	}
	return int(t.Month())
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
