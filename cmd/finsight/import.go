package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/cli"
	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/ingest"
)

type importOptions struct {
	format      string
	interactive bool
	jsonOutput  bool
	noProgress  bool
}

func importCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <statement>",
		Short: "Import a bank statement (CSV or OFX/QFX)",
		Long: `Import a bank statement into the ledger.

CSV statements need Date, Narration, Debit Amount and Credit Amount columns.
OFX and QFX downloads are detected by extension. Rows already in the ledger
are skipped, so importing the same statement twice is safe.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "", "statement format: csv or ofx (default: from file extension)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "ask for a category when the rules and model cannot decide")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print the import summary as JSON")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "hide the progress bar")

	return cmd
}

func runImport(cmd *cobra.Command, path string, opts importOptions) error {
	format, err := statementFormat(path, opts.format)
	if err != nil {
		return err
	}

	f, err := os.Open(path) //nolint:gosec // statement path comes from the user
	if err != nil {
		return common.NewUserError(fmt.Sprintf("cannot open statement %s", path), err)
	}
	defer func() { _ = f.Close() }()

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := handler.HandleInterrupts(cmd.Context(), true)

	return withApp(ctx, func(a *app) error {
		if opts.interactive {
			a.engine.SetPrompter(cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), a.cfg.Currency.Symbol))
		} else if !opts.noProgress && !opts.jsonOutput {
			a.pipeline.SetProgress(cli.NewProgressBar(cmd.ErrOrStderr(), "Importing "+filepath.Base(path)))
		}

		summary, err := ingestStatement(ctx, a.pipeline, format, f)
		if handler.WasInterrupted() {
			return nil
		}
		if err != nil {
			if summary != nil && summary.Inserted > 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(fmt.Sprintf("%d rows were stored before the failure", summary.Inserted)))
			}
			return err
		}

		if opts.jsonOutput {
			return writeJSON(cmd.OutOrStdout(), summary)
		}
		printImportSummary(cmd.OutOrStdout(), summary, a.cfg.Currency.Symbol)
		return nil
	})
}

func ingestStatement(ctx context.Context, p *ingest.Pipeline, format string, r io.Reader) (*ingest.Summary, error) {
	if format == "ofx" {
		return p.IngestOFX(ctx, r)
	}
	return p.Ingest(ctx, r)
}

func statementFormat(path, explicit string) (string, error) {
	format := strings.ToLower(explicit)
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ofx", ".qfx":
			format = "ofx"
		default:
			format = "csv"
		}
	}
	if format != "csv" && format != "ofx" {
		return "", common.NewUserError(fmt.Sprintf("unknown statement format %q (want csv or ofx)", explicit), common.ErrInvalidInput)
	}
	return format, nil
}

func printImportSummary(w io.Writer, s *ingest.Summary, symbol string) {
	fmt.Fprintln(w, cli.FormatSuccess("Import complete"))
	fmt.Fprintln(w, cli.RenderTable(
		[]string{"Rows", "Inserted", "Duplicates", "Uncategorized", "Training samples"},
		[][]string{{
			fmt.Sprint(s.TotalRows),
			fmt.Sprint(s.Inserted),
			fmt.Sprint(s.SkippedDuplicates),
			fmt.Sprint(len(s.Uncategorized)),
			fmt.Sprint(s.FeedbackAdded),
		}},
	))

	if len(s.Uncategorized) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.FormatWarning("These rows need a category. Fix them with 'finsight correct <hash> <category>':"))
	rows := make([][]string, 0, len(s.Uncategorized))
	for _, item := range s.Uncategorized {
		rows = append(rows, []string{
			item.Hash,
			string(item.Direction),
			common.FormatAmount(symbol, item.Amount.InexactFloat64()),
			item.Description,
		})
	}
	fmt.Fprintln(w, cli.RenderTable([]string{"Hash", "Type", "Amount", "Description"}, rows))
}
