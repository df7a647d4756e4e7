package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/cli"
	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/service"
)

func transactionsCmd() *cobra.Command {
	var (
		filter     service.TransactionFilter
		direction  string
		exportPath string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List or export stored transactions",
		Long: `List stored transactions ordered by date. Narrow the list by month, type or a
search term matched against the narration and category. With --export the
matching rows are written to a CSV file instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if direction != "" {
				d, err := parseDirection(direction)
				if err != nil {
					return err
				}
				filter.Direction = d
			}
			if filter.Limit < 0 || filter.Offset < 0 {
				return common.NewUserError("--limit and --offset must not be negative", common.ErrInvalidInput)
			}

			return withApp(cmd.Context(), func(a *app) error {
				txns, err := a.storage.ListTransactions(cmd.Context(), filter)
				if err != nil {
					return err
				}

				if exportPath != "" {
					if err := exportTransactions(exportPath, txns); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
						fmt.Sprintf("Exported %d transactions to %s", len(txns), exportPath)))
					return nil
				}
				if jsonOutput {
					if txns == nil {
						txns = []model.Transaction{}
					}
					return writeJSON(cmd.OutOrStdout(), txns)
				}
				if len(txns) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No matching transactions."))
					return nil
				}

				rows := make([][]string, 0, len(txns))
				for _, txn := range txns {
					rows = append(rows, []string{
						txn.Date,
						string(txn.Direction),
						common.FormatAmount(a.cfg.Currency.Symbol, txn.Amount.InexactFloat64()),
						txn.CategoryName(),
						txn.Description,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
					[]string{"Date", "Type", "Amount", "Category", "Description"}, rows))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filter.Month, "month", "", "only transactions in this month (YYYY-MM)")
	cmd.Flags().StringVar(&direction, "type", "", "only debit or credit transactions")
	cmd.Flags().StringVar(&filter.Search, "search", "", "only transactions whose narration or category contains this text")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum number of rows (0 for all)")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "rows to skip, used with --limit")
	cmd.Flags().StringVar(&exportPath, "export", "", "write the matching rows to this CSV file")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the transactions as JSON")

	return cmd
}

func parseDirection(s string) (model.Direction, error) {
	switch strings.ToLower(s) {
	case "debit":
		return model.DirectionDebit, nil
	case "credit":
		return model.DirectionCredit, nil
	default:
		return "", common.NewUserError(fmt.Sprintf("unknown transaction type %q, expected debit or credit", s), common.ErrInvalidInput)
	}
}

func exportTransactions(path string, txns []model.Transaction) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close export file: %w", cerr)
		}
	}()

	return writeTransactionsCSV(f, txns)
}

func writeTransactionsCSV(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Narration", "Type", "Amount", "Category", "Is Saving", "Hash"}); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}
	for _, txn := range txns {
		record := []string{
			txn.Date,
			txn.Description,
			string(txn.Direction),
			txn.Amount.StringFixed(2),
			txn.CategoryName(),
			fmt.Sprintf("%t", txn.IsSaving),
			txn.Hash,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}
	return nil
}
