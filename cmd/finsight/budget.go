package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/cli"
	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage monthly category budgets",
	}

	cmd.PersistentFlags().Bool("json", false, "print results as JSON")

	cmd.AddCommand(budgetSetCmd())
	cmd.AddCommand(budgetListCmd())
	cmd.AddCommand(budgetDeleteCmd())
	cmd.AddCommand(budgetStatusCmd())
	cmd.AddCommand(budgetRuleCmd())

	return cmd
}

func budgetSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> <monthly-limit>",
		Short: "Create or update a category budget",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("invalid limit %q", args[1]), common.ErrInvalidInput)
			}
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.budgets.Set(cmd.Context(), args[0], limit); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Budget for %s set to %s",
					args[0], common.FormatAmount(a.cfg.Currency.Symbol, limit))))
				return nil
			})
		},
	}
}

func budgetListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List budgets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				budgets, err := a.budgets.List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonFlag(cmd) {
					return writeJSON(cmd.OutOrStdout(), budgets)
				}
				if len(budgets) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No budgets yet. Use 'finsight budget set <category> <limit>'."))
					return nil
				}

				rows := make([][]string, 0, len(budgets))
				for _, b := range budgets {
					rows = append(rows, []string{b.Category, common.FormatAmount(a.cfg.Currency.Symbol, b.MonthlyLimit)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Category", "Monthly limit"}, rows))
				return nil
			})
		},
	}
}

func budgetDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <category>",
		Short: "Remove a category budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.budgets.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Budget removed for "+args[0]))
				return nil
			})
		},
	}
}

func budgetStatusCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Compare budgets with actual spending for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				usage, err := a.budgets.VsActual(cmd.Context(), month)
				if err != nil {
					return err
				}
				if jsonFlag(cmd) {
					return writeJSON(cmd.OutOrStdout(), usage)
				}
				printBudgetUsage(cmd.OutOrStdout(), usage, a.cfg.Currency.Symbol)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month to check as YYYY-MM (default: current month)")

	return cmd
}

func printBudgetUsage(w io.Writer, usage []model.BudgetUsage, symbol string) {
	if len(usage) == 0 {
		fmt.Fprintln(w, cli.FormatInfo("No budgets to compare"))
		return
	}

	rows := make([][]string, 0, len(usage))
	for _, u := range usage {
		status := string(u.Status)
		switch u.Status {
		case model.BudgetOver:
			status = cli.ErrorStyle.Render(status)
		case model.BudgetWarning:
			status = cli.WarningStyle.Render(status)
		default:
			status = cli.SuccessStyle.Render(status)
		}
		rows = append(rows, []string{
			u.Category,
			common.FormatAmount(symbol, u.Budget),
			common.FormatAmount(symbol, u.Spent),
			common.FormatAmount(symbol, u.Remaining),
			fmt.Sprintf("%.1f%%", u.UtilizationPct),
			status,
		})
	}
	fmt.Fprintln(w, cli.RenderTable([]string{"Category", "Budget", "Spent", "Remaining", "Used", "Status"}, rows))
}

func budgetRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rule <monthly-income>",
		Short: "Split an income with the needs/wants/savings rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			income, err := strconv.ParseFloat(args[0], 64)
			if err != nil || income < 0 {
				return common.NewUserError(fmt.Sprintf("invalid income %q", args[0]), common.ErrInvalidInput)
			}
			return withApp(cmd.Context(), func(a *app) error {
				alloc := a.budgets.FiftyThirtyTwenty(income)
				if jsonFlag(cmd) {
					return writeJSON(cmd.OutOrStdout(), alloc)
				}

				sym := a.cfg.Currency.Symbol
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
					[]string{"Bucket", "Amount", "Covers"},
					[][]string{
						{"Needs", common.FormatAmount(sym, alloc.Needs), alloc.Descriptions["needs"]},
						{"Wants", common.FormatAmount(sym, alloc.Wants), alloc.Descriptions["wants"]},
						{"Savings", common.FormatAmount(sym, alloc.Savings), alloc.Descriptions["savings"]},
					}))
				return nil
			})
		},
	}
}
