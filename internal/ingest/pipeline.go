// Package ingest turns bank statements into classified ledger entries.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/finsight/internal/classification"
	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/engine"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Classifier decides categories and is told when new feedback exists.
type Classifier interface {
	Classify(ctx context.Context, description string, amount decimal.Decimal, direction model.Direction) (engine.Result, error)
	FeedbackAdded()
}

// ProgressReporter receives per-row progress during an ingest.
type ProgressReporter interface {
	Start(total int)
	Advance()
	Finish()
}

// UncategorizedItem describes a stored row that still needs a category.
type UncategorizedItem struct {
	Description string          `json:"description"`
	Direction   model.Direction `json:"type"`
	Hash        string          `json:"hash"`
	Amount      decimal.Decimal `json:"amount"`
}

// Summary reports the outcome of one ingest.
type Summary struct {
	Uncategorized     []UncategorizedItem `json:"uncategorized"`
	TotalRows         int                 `json:"total_rows"`
	Inserted          int                 `json:"inserted"`
	SkippedDuplicates int                 `json:"skipped"`
	FeedbackAdded     int                 `json:"feedback_added"`
}

// Pipeline ingests statements into storage.
type Pipeline struct {
	storage    service.Storage
	classifier Classifier
	progress   ProgressReporter
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(storage service.Storage, classifier Classifier) *Pipeline {
	return &Pipeline{
		storage:    storage,
		classifier: classifier,
	}
}

// SetProgress attaches a progress reporter; nil disables reporting.
func (p *Pipeline) SetProgress(reporter ProgressReporter) {
	p.progress = reporter
}

// Ingest reads a CSV statement with Date, Narration, Debit Amount and
// Credit Amount columns. An unusable file returns a *common.InputError and
// persists nothing.
func (p *Pipeline) Ingest(ctx context.Context, r io.Reader) (*Summary, error) {
	rows, err := ReadCSV(r)
	if err != nil {
		return nil, err
	}
	return p.IngestRows(ctx, rows)
}

// IngestOFX reads an OFX or QFX statement.
func (p *Pipeline) IngestOFX(ctx context.Context, r io.Reader) (*Summary, error) {
	rows, err := ReadOFX(r)
	if err != nil {
		return nil, &common.InputError{Err: err}
	}
	return p.IngestRows(ctx, rows)
}

// IngestRows classifies and stores already-parsed rows. Rows seen before
// are skipped, so repeating an ingest changes nothing. On error the
// returned summary covers the rows processed so far.
func (p *Pipeline) IngestRows(ctx context.Context, rows []Row) (*Summary, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: nil context", common.ErrInvalidInput)
	}

	summary := &Summary{
		TotalRows:     len(rows),
		Uncategorized: []UncategorizedItem{},
	}

	if p.progress != nil {
		p.progress.Start(len(rows))
		defer p.progress.Finish()
	}

	var err error
	for _, row := range rows {
		if err = ctx.Err(); err != nil {
			break
		}
		if err = p.ingestRow(ctx, row, summary); err != nil {
			break
		}
		if p.progress != nil {
			p.progress.Advance()
		}
	}

	// Samples already written still deserve a retrain, even after a failure.
	if summary.FeedbackAdded > 0 {
		p.classifier.FeedbackAdded()
	}

	if err != nil {
		common.LogError(err, "Statement ingest stopped", common.Fields{
			"total_rows":     summary.TotalRows,
			"inserted":       summary.Inserted,
			"skipped":        summary.SkippedDuplicates,
			"feedback_added": summary.FeedbackAdded,
		})
		return summary, fmt.Errorf("ingest stopped after %d rows: %w", summary.Inserted+summary.SkippedDuplicates, err)
	}

	slog.Info("Statement ingested",
		"total_rows", summary.TotalRows,
		"inserted", summary.Inserted,
		"skipped", summary.SkippedDuplicates,
		"uncategorized", len(summary.Uncategorized),
		"feedback_added", summary.FeedbackAdded)

	return summary, nil
}

func (p *Pipeline) ingestRow(ctx context.Context, row Row, summary *Summary) error {
	var (
		amount    decimal.Decimal
		direction model.Direction
	)
	credit, debit := row.Credit.Round(2), row.Debit.Round(2)
	switch {
	case credit.IsPositive():
		amount, direction = credit, model.DirectionCredit
	case debit.IsPositive():
		amount, direction = debit, model.DirectionDebit
	default:
		return nil
	}

	date := ParseDate(row.Date)
	normalized := classification.Normalize(row.Narration)
	hash := model.ContentHash(date, normalized, amount, direction)

	exists, err := p.storage.TransactionExists(ctx, hash)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate: %w", err)
	}
	if exists {
		summary.SkippedDuplicates++
		return nil
	}

	result, err := p.classifier.Classify(ctx, row.Narration, amount, direction)
	if err != nil {
		return fmt.Errorf("failed to classify %q: %w", row.Narration, err)
	}

	txn := &model.Transaction{
		ID:          uuid.NewString(),
		Date:        date,
		Description: row.Narration,
		Amount:      amount,
		Direction:   direction,
		Category:    result.Category,
		IsSaving:    result.IsSaving,
		Hash:        hash,
	}

	if err := p.storage.InsertTransaction(ctx, txn); err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) {
			summary.SkippedDuplicates++
			return nil
		}
		return fmt.Errorf("failed to store transaction: %w", err)
	}
	summary.Inserted++

	if txn.Category == nil {
		summary.Uncategorized = append(summary.Uncategorized, UncategorizedItem{
			Description: txn.Description,
			Amount:      amount,
			Direction:   direction,
			Hash:        hash,
		})
		return nil
	}

	sample := model.FeedbackSample{Description: normalized, Category: *txn.Category}
	if err := p.storage.AddFeedback(ctx, sample); err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}
	summary.FeedbackAdded++

	return nil
}
