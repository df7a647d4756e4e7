package main

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/cli"
	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/engine"
	"github.com/Veraticus/finsight/internal/ml"
	"github.com/Veraticus/finsight/internal/model"
)

type classifyOutput struct {
	Category  string `json:"category"`
	Direction string `json:"type"`
	Kind      string `json:"kind"`
	Source    string `json:"source"`
	IsSaving  bool   `json:"is_saving"`
}

func newClassifyOutput(r engine.Result) classifyOutput {
	out := classifyOutput{
		Direction: string(r.Direction),
		Kind:      string(r.Kind),
		Source:    string(r.Source),
		IsSaving:  r.IsSaving,
	}
	if r.Category != nil {
		out.Category = *r.Category
	}
	return out
}

func classifyCmd() *cobra.Command {
	var (
		amount     string
		credit     bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "classify <description>",
		Short: "Show how a narration would be categorised",
		Long: `Run a single narration through the keyword rules and the trained model
without storing anything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("invalid amount %q", amount), common.ErrInvalidInput)
			}
			direction := model.DirectionDebit
			if credit {
				direction = model.DirectionCredit
			}

			return withApp(cmd.Context(), func(a *app) error {
				result, err := a.engine.Classify(cmd.Context(), args[0], value, direction)
				if err != nil {
					return err
				}

				out := newClassifyOutput(result)
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), out)
				}
				printClassification(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "0", "transaction amount")
	cmd.Flags().BoolVar(&credit, "credit", false, "treat the narration as money received")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")

	return cmd
}

func printClassification(w io.Writer, out classifyOutput) {
	category := out.Category
	if category == "" {
		category = cli.SubtleStyle.Render("(uncategorized)")
	}
	fmt.Fprintln(w, cli.RenderTable(
		[]string{"Category", "Type", "Kind", "Source", "Saving"},
		[][]string{{category, out.Direction, out.Kind, out.Source, fmt.Sprint(out.IsSaving)}},
	))
}

func correctCmd() *cobra.Command {
	var saving bool

	cmd := &cobra.Command{
		Use:   "correct <hash> <category>",
		Short: "Set the category of a stored transaction",
		Long: `Assign a category to a stored transaction. The correction becomes a
training sample and the model is retrained in the background.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.engine.Correct(cmd.Context(), args[0], args[1], saving); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Categorised as %s", args[1])))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&saving, "saving", false, "mark the debit as a savings or investment outflow")

	return cmd
}

func uncategorizedCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "uncategorized",
		Short: "List transactions that still need a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				txns, err := a.engine.Uncategorized(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), txns)
				}
				if len(txns) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Every transaction has a category"))
					return nil
				}

				rows := make([][]string, 0, len(txns))
				for _, txn := range txns {
					rows = append(rows, []string{
						txn.Hash,
						txn.Date,
						string(txn.Direction),
						common.FormatAmount(a.cfg.Currency.Symbol, txn.Amount.InexactFloat64()),
						txn.Description,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Hash", "Date", "Type", "Amount", "Description"}, rows))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the transactions as JSON")

	return cmd
}

func trainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Retrain the model from all recorded corrections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.engine.Train(cmd.Context()); err != nil {
					return fmt.Errorf("failed to train model: %w", err)
				}
				samples, err := a.storage.CountFeedback(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
					fmt.Sprintf("Model %s from %d samples", a.classifier.State(), samples)))
				return nil
			})
		},
	}
}

type predictOutput struct {
	Description     string        `json:"description"`
	DebitType       ml.Prediction `json:"debit_type"`
	ExpenseCategory ml.Prediction `json:"expense_category"`
	SavingsCategory ml.Prediction `json:"savings_category"`
}

func predictCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "predict <description>",
		Short: "Show raw model predictions for a narration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				ctx := cmd.Context()
				out := predictOutput{Description: args[0]}

				var err error
				out.DebitType, err = a.engine.PredictDebitType(ctx, args[0])
				if err != nil {
					return err
				}
				out.ExpenseCategory, err = a.engine.PredictExpenseCategory(ctx, args[0])
				if err != nil {
					return err
				}
				out.SavingsCategory, err = a.engine.PredictSavingsCategory(ctx, args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), out)
				}

				rows := [][]string{
					predictionRow("Debit type", out.DebitType),
					predictionRow("Expense category", out.ExpenseCategory),
					predictionRow("Savings category", out.SavingsCategory),
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Head", "Label", "Confidence"}, rows))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the predictions as JSON")

	return cmd
}

func predictionRow(head string, p ml.Prediction) []string {
	if p.Label == "" {
		return []string{head, cli.SubtleStyle.Render("(no model)"), "-"}
	}
	return []string{head, p.Label, fmt.Sprintf("%.2f", p.Confidence)}
}
