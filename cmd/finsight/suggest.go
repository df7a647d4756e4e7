package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/cli"
	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/suggestion"
)

func suggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Personalised ways to cut spending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				suggestions, err := a.suggestions.Generate(cmd.Context())
				if err != nil {
					return err
				}
				if jsonFlag(cmd) {
					return writeJSON(cmd.OutOrStdout(), suggestions)
				}
				if len(suggestions) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Nothing to flag. Spending looks healthy."))
					return nil
				}

				rows := make([][]string, 0, len(suggestions))
				for _, s := range suggestions {
					saving := "-"
					if s.PotentialSaving != nil {
						saving = common.FormatAmount(a.cfg.Currency.Symbol, *s.PotentialSaving)
					}
					rows = append(rows, []string{priorityLabel(s.Priority), s.Category, s.Message, saving})
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Priority", "Category", "Suggestion", "Could save"}, rows))
				return nil
			})
		},
	}

	cmd.PersistentFlags().Bool("json", false, "print results as JSON")

	cmd.AddCommand(whatIfCmd())
	cmd.AddCommand(subscriptionsCmd())
	cmd.AddCommand(ratioCmd())

	return cmd
}

func priorityLabel(p string) string {
	switch p {
	case suggestion.PriorityHigh:
		return cli.ErrorStyle.Render(p)
	case suggestion.PriorityMedium:
		return cli.WarningStyle.Render(p)
	default:
		return cli.InfoStyle.Render(p)
	}
}

func whatIfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "what-if <category> <reduction-percent>",
		Short: "Project the saving from cutting a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pct, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("invalid percentage %q", args[1]), common.ErrInvalidInput)
			}
			return withApp(cmd.Context(), func(a *app) error {
				result, err := a.suggestions.WhatIf(cmd.Context(), args[0], pct)
				if errors.Is(err, common.ErrInsufficientData) {
					return common.NewUserError("no spending recorded for "+args[0], err)
				}
				if err != nil {
					return err
				}
				if jsonFlag(cmd) {
					return writeJSON(cmd.OutOrStdout(), result)
				}

				sym := a.cfg.Currency.Symbol
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(
					fmt.Sprintf("Cutting %s by %.0f%%", result.Category, result.ReductionPct),
					fmt.Sprintf("Current monthly average: %s\nNew monthly average:     %s\nMonthly saving:          %s\nAnnual saving:           %s",
						common.FormatAmount(sym, result.CurrentMonthlyAvg),
						common.FormatAmount(sym, result.NewMonthlyAvg),
						cli.SuccessStyle.Render(common.FormatAmount(sym, result.MonthlySaving)),
						cli.SuccessStyle.Render(common.FormatAmount(sym, result.AnnualSaving)))))
				return nil
			})
		},
	}
}

func subscriptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subscriptions",
		Short: "Audit recurring subscription debits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				subs, err := a.suggestions.SubscriptionAudit(cmd.Context())
				if err != nil {
					return err
				}
				if jsonFlag(cmd) {
					return writeJSON(cmd.OutOrStdout(), subs)
				}
				if len(subs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No recurring subscriptions found"))
					return nil
				}

				sym := a.cfg.Currency.Symbol
				rows := make([][]string, 0, len(subs))
				for _, s := range subs {
					rows = append(rows, []string{
						s.Description,
						fmt.Sprint(s.Occurrences),
						common.FormatAmount(sym, s.AvgAmount),
						common.FormatAmount(sym, s.EstimatedAnnual),
						s.LastSeen,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
					[]string{"Subscription", "Charges", "Average", "Per year", "Last seen"}, rows))
				return nil
			})
		},
	}
}

func ratioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ratio",
		Short: "Compare your needs/wants/savings split with the ideal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				ratio, err := a.suggestions.SpendingRatio(cmd.Context())
				if errors.Is(err, common.ErrInsufficientData) {
					return common.NewUserError("no income recorded yet", err)
				}
				if err != nil {
					return err
				}
				if jsonFlag(cmd) {
					return writeJSON(cmd.OutOrStdout(), ratio)
				}

				sym := a.cfg.Currency.Symbol
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
					[]string{"Bucket", "Spent", "Share", "Ideal"},
					[][]string{
						{"Needs", common.FormatAmount(sym, ratio.Needs), fmt.Sprintf("%.1f%%", ratio.NeedsPct), fmt.Sprintf("%.0f%%", ratio.Ideal["needs"])},
						{"Wants", common.FormatAmount(sym, ratio.Wants), fmt.Sprintf("%.1f%%", ratio.WantsPct), fmt.Sprintf("%.0f%%", ratio.Ideal["wants"])},
						{"Savings", common.FormatAmount(sym, ratio.Savings), fmt.Sprintf("%.1f%%", ratio.SavingsPct), fmt.Sprintf("%.0f%%", ratio.Ideal["savings"])},
					}))
				return nil
			})
		},
	}
}
