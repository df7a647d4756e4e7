package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/cli"
	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/festival"
)

func festivalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "festivals",
		Aliases: []string{"festival"},
		Short:   "Festival calendar and spending alerts",
	}

	cmd.PersistentFlags().Bool("json", false, "print results as JSON")

	cmd.AddCommand(festivalListCmd())
	cmd.AddCommand(festivalAddCmd())
	cmd.AddCommand(festivalRemoveCmd())
	cmd.AddCommand(festivalUpcomingCmd())
	cmd.AddCommand(festivalAnalysisCmd())

	return cmd
}

func festivalListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active festivals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				festivals, err := a.festivals.List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonFlag(cmd) {
					return writeJSON(cmd.OutOrStdout(), festivals)
				}

				rows := make([][]string, 0, len(festivals))
				for _, f := range festivals {
					rows = append(rows, []string{
						fmt.Sprint(f.ID),
						f.Name,
						time.Month(f.Month).String()[:3] + " " + strconv.Itoa(f.Day),
						fmt.Sprintf("%d days", f.DurationDays),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"ID", "Festival", "Date", "Duration"}, rows))
				return nil
			})
		},
	}
}

func festivalAddCmd() *cobra.Command {
	var duration int

	cmd := &cobra.Command{
		Use:   "add <name> <month> <day>",
		Short: "Add a festival to the calendar",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			month, err := strconv.Atoi(args[1])
			if err != nil {
				return common.NewUserError(fmt.Sprintf("invalid month %q", args[1]), common.ErrInvalidInput)
			}
			day, err := strconv.Atoi(args[2])
			if err != nil {
				return common.NewUserError(fmt.Sprintf("invalid day %q", args[2]), common.ErrInvalidInput)
			}
			return withApp(cmd.Context(), func(a *app) error {
				f, err := a.festivals.Add(cmd.Context(), args[0], month, day, duration)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s (id %d)", f.Name, f.ID)))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&duration, "duration", 1, "how many days the festival lasts")

	return cmd
}

func festivalRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a festival from the calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("invalid festival id %q", args[0]), common.ErrInvalidInput)
			}
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.festivals.Remove(cmd.Context(), id); err != nil {
					if errors.Is(err, common.ErrNotFound) {
						return common.NewUserError(fmt.Sprintf("no festival with id %d", id), err)
					}
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Festival removed"))
				return nil
			})
		},
	}
}

func festivalUpcomingCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Festivals coming up and what they usually cost",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				alerts, err := a.festivals.Upcoming(cmd.Context(), time.Now(), days)
				if err != nil {
					return err
				}
				if jsonFlag(cmd) {
					return writeJSON(cmd.OutOrStdout(), alerts)
				}
				printAlerts(cmd.OutOrStdout(), alerts)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", -1, "look-ahead window in days (default: festivals.alert_days_before)")

	return cmd
}

func printAlerts(w io.Writer, alerts []festival.Alert) {
	if len(alerts) == 0 {
		fmt.Fprintln(w, cli.FormatInfo("No festivals coming up"))
		return
	}
	for _, alert := range alerts {
		fmt.Fprintln(w, cli.RenderBox(
			fmt.Sprintf("%s %s on %s", cli.BellIcon, alert.Name, alert.Date),
			alert.Message))
	}
}

func festivalAnalysisCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analysis",
		Short: "Compare spending in festive months with the rest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				analysis, err := a.festivals.FestiveSpendingAnalysis(cmd.Context())
				if err != nil {
					return err
				}
				if jsonFlag(cmd) {
					return writeJSON(cmd.OutOrStdout(), analysis)
				}

				sym := a.cfg.Currency.Symbol
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
					[]string{"", "Monthly average", "Months"},
					[][]string{
						{"Festive months", common.FormatAmount(sym, analysis.FestiveMonthsAvg), fmt.Sprint(analysis.FestiveMonthsCount)},
						{"Other months", common.FormatAmount(sym, analysis.NormalMonthsAvg), fmt.Sprint(analysis.NormalMonthsCount)},
					}))
				fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render(fmt.Sprintf("Difference: %s (%+.1f%%)",
					common.FormatAmount(sym, analysis.Difference), analysis.DifferencePct)))
				return nil
			})
		},
	}
}
