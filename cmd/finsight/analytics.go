package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/cli"
	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
)

func analyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Trends, anomalies and forecasts over the ledger",
	}

	cmd.PersistentFlags().Bool("json", false, "print results as JSON")

	cmd.AddCommand(trendsCmd())
	cmd.AddCommand(anomaliesCmd())
	cmd.AddCommand(forecastCmd())
	cmd.AddCommand(growthCmd())
	cmd.AddCommand(seasonalCmd())
	cmd.AddCommand(summaryCmd())
	cmd.AddCommand(breakdownCmd())
	cmd.AddCommand(dailyCmd())

	return cmd
}

func jsonFlag(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func trendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trends",
		Short: "Monthly income, expenses and savings with moving averages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				metrics, err := a.analytics.MonthlyTrends(cmd.Context())
				if err != nil {
					return err
				}
				if jsonFlag(cmd) {
					return writeJSON(cmd.OutOrStdout(), metrics)
				}
				if len(metrics) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No transactions yet. Import a statement first."))
					return nil
				}

				sym := a.cfg.Currency.Symbol
				rows := make([][]string, 0, len(metrics))
				for _, m := range metrics {
					rows = append(rows, []string{
						m.Month,
						common.FormatAmount(sym, m.Income),
						common.FormatAmount(sym, m.Expenses),
						common.FormatAmount(sym, m.Savings),
						common.FormatAmount(sym, m.ExpenseMA3),
						common.FormatAmount(sym, m.ExpenseMA6),
						fmt.Sprintf("%.1f%%", m.SavingsRate),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
					[]string{"Month", "Income", "Expenses", "Savings", "Expense MA3", "Expense MA6", "Savings rate"}, rows))
				return nil
			})
		},
	}
}

func anomaliesCmd() *cobra.Command {
	var factor float64

	cmd := &cobra.Command{
		Use:   "anomalies",
		Short: "Months where a category spiked above its average",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				anomalies, err := a.analytics.DetectAnomalies(cmd.Context(), factor)
				if err != nil {
					return err
				}
				if jsonFlag(cmd) {
					return writeJSON(cmd.OutOrStdout(), anomalies)
				}
				if len(anomalies) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("No spending spikes found"))
					return nil
				}

				sym := a.cfg.Currency.Symbol
				rows := make([][]string, 0, len(anomalies))
				for _, an := range anomalies {
					rows = append(rows, []string{
						an.Month,
						an.Category,
						common.FormatAmount(sym, an.Amount),
						common.FormatAmount(sym, an.Average),
						cli.WarningStyle.Render(fmt.Sprintf("+%.1f%%", an.SpikePct)),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
					[]string{"Month", "Category", "Spent", "Average", "Spike"}, rows))
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&factor, "factor", 0, "spike threshold as a multiple of the category average (default: analytics.anomaly_factor)")

	return cmd
}

const insufficientForecastHistory = "at least two months of history are needed for a forecast"

func forecastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forecast",
		Short: "Project next month's income and expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				forecast, err := a.analytics.ForecastNextMonth(cmd.Context())
				if errors.Is(err, common.ErrInsufficientData) {
					if jsonFlag(cmd) {
						return writeJSON(cmd.OutOrStdout(), map[string]string{"error": insufficientForecastHistory})
					}
					return common.NewUserError(insufficientForecastHistory, err)
				}
				if err != nil {
					return err
				}
				if jsonFlag(cmd) {
					return writeJSON(cmd.OutOrStdout(), forecast)
				}

				sym := a.cfg.Currency.Symbol
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
					[]string{"", "Forecast", "Change per month", "Trend"},
					[][]string{
						{"Expenses", common.FormatAmount(sym, forecast.ForecastExpenses), common.FormatAmount(sym, forecast.ExpenseChangePerMonth), forecast.ExpenseTrend},
						{"Income", common.FormatAmount(sym, forecast.ForecastIncome), common.FormatAmount(sym, forecast.IncomeChangePerMonth), forecast.IncomeTrend},
					}))
				fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render(fmt.Sprintf("Based on %d months", forecast.MonthsAnalyzed)))
				return nil
			})
		},
	}
}

func growthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "growth",
		Short: "Category growth between the earlier and recent half of history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				rates, err := a.analytics.CategoryGrowthRates(cmd.Context())
				if err != nil {
					return err
				}
				if jsonFlag(cmd) {
					return writeJSON(cmd.OutOrStdout(), rates)
				}
				if len(rates) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Not enough history to compare categories"))
					return nil
				}

				rows := make([][]string, 0, len(rates))
				for _, r := range rates {
					growth := fmt.Sprintf("%+.1f%%", r.GrowthPct)
					if r.GrowthPct > 0 {
						growth = cli.WarningStyle.Render(growth)
					} else {
						growth = cli.SuccessStyle.Render(growth)
					}
					rows = append(rows, []string{r.Category, growth, common.FormatAmount(a.cfg.Currency.Symbol, r.RecentAvg)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Category", "Growth", "Recent monthly avg"}, rows))
				return nil
			})
		},
	}
}

func seasonalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seasonal",
		Short: "Average daily spend for each calendar month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				patterns, err := a.analytics.SeasonalPatterns(cmd.Context())
				if err != nil {
					return err
				}
				if jsonFlag(cmd) {
					return writeJSON(cmd.OutOrStdout(), patterns)
				}

				sym := a.cfg.Currency.Symbol
				rows := make([][]string, 0, len(patterns))
				for _, p := range patterns {
					rows = append(rows, []string{
						p.MonthName,
						common.FormatAmount(sym, p.AvgDailySpend),
						common.FormatAmount(sym, p.TotalSpend),
						fmt.Sprint(p.TxnCount),
						fmt.Sprintf("%+.1f%%", p.VsAveragePct),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
					[]string{"Month", "Avg daily", "Total", "Transactions", "Vs average"}, rows))
				return nil
			})
		},
	}
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Total income, expenses and savings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				summary, err := a.analytics.Summary(cmd.Context())
				if err != nil {
					return err
				}
				if jsonFlag(cmd) {
					return writeJSON(cmd.OutOrStdout(), summary)
				}

				sym := a.cfg.Currency.Symbol
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle("Ledger summary"))
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
					[]string{"Income", "Expenses", "Savings", "Transactions"},
					[][]string{{
						common.FormatAmount(sym, summary.TotalIncome),
						common.FormatAmount(sym, summary.TotalExpenses),
						common.FormatAmount(sym, summary.TotalSavings),
						fmt.Sprint(summary.TotalCount),
					}}))
				return nil
			})
		},
	}
}

func breakdownCmd() *cobra.Command {
	var credit bool

	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Totals per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			direction := model.DirectionDebit
			if credit {
				direction = model.DirectionCredit
			}
			return withApp(cmd.Context(), func(a *app) error {
				totals, err := a.analytics.CategoryBreakdown(cmd.Context(), direction)
				if err != nil {
					return err
				}
				if jsonFlag(cmd) {
					return writeJSON(cmd.OutOrStdout(), totals)
				}

				rows := make([][]string, 0, len(totals))
				for _, t := range totals {
					rows = append(rows, []string{t.Category, common.FormatAmount(a.cfg.Currency.Symbol, t.Total)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Category", "Total"}, rows))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&credit, "credit", false, "break down money received instead of spent")

	return cmd
}

func dailyCmd() *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Recent spending per day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				days, err := a.analytics.DailySpending(cmd.Context(), months)
				if err != nil {
					return err
				}
				if jsonFlag(cmd) {
					return writeJSON(cmd.OutOrStdout(), days)
				}

				rows := make([][]string, 0, len(days))
				for _, d := range days {
					rows = append(rows, []string{d.Date, common.FormatAmount(a.cfg.Currency.Symbol, d.Total)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Date", "Spent"}, rows))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&months, "months", 3, "how many months back to include")

	return cmd
}
