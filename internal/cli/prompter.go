package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/engine"
)

const maxRecentCategories = 10

// PromptStats counts how pending transactions were resolved at the terminal.
type PromptStats struct {
	Prompted int
	Chosen   int
	Custom   int
	Skipped  int
}

// Prompter asks a person at the terminal to categorise transactions the
// engine could not resolve on its own.
type Prompter struct {
	writer  io.Writer
	reader  *NonBlockingReader
	symbol  string
	recent  []string
	stats   PromptStats
	closed  bool
	statsMu sync.Mutex
}

var _ engine.Prompter = (*Prompter)(nil)

// NewPrompter creates a terminal prompter reading answers from reader.
func NewPrompter(reader io.Reader, writer io.Writer, currencySymbol string) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: NewNonBlockingReader(reader),
		writer: writer,
		symbol: currencySymbol,
	}
}

// ChooseCategory shows the transaction with its numbered category options
// and returns the answer. An empty result means the transaction was skipped.
// Once input is exhausted every later transaction is skipped silently.
func (p *Prompter) ChooseCategory(ctx context.Context, pending engine.Pending) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.closed {
		p.record(func(s *PromptStats) { s.Skipped++ })
		return "", nil
	}
	p.record(func(s *PromptStats) { s.Prompted++ })

	if _, err := fmt.Fprintln(p.writer, RenderBox("Transaction Details", p.formatPending(pending))); err != nil {
		return "", fmt.Errorf("failed to write transaction box: %w", err)
	}
	if err := p.writeOptions(pending.Options); err != nil {
		return "", err
	}

	for {
		if _, err := fmt.Fprint(p.writer, FormatPrompt("Choice")); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := p.readLine(ctx)
		if err != nil {
			return "", err
		}
		if p.closed {
			p.record(func(s *PromptStats) { s.Skipped++ })
			return "", nil
		}

		category, done, err := p.resolve(ctx, input, pending.Options)
		if err != nil {
			return "", err
		}
		if done {
			return category, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Invalid choice. Please try again.")); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}

// Stats returns a snapshot of the prompt counters.
func (p *Prompter) Stats() PromptStats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.stats
}

// resolve maps one line of input to a category. done is false when the
// input was not understood and the user should be asked again.
func (p *Prompter) resolve(ctx context.Context, input string, options []string) (string, bool, error) {
	choice := strings.ToLower(input)
	switch choice {
	case "", "s":
		p.record(func(s *PromptStats) { s.Skipped++ })
		return "", true, nil
	case "c":
		category, err := p.promptCustomCategory(ctx)
		if err != nil {
			return "", false, err
		}
		if category == "" {
			p.record(func(s *PromptStats) { s.Skipped++ })
			return "", true, nil
		}
		p.remember(category)
		p.record(func(s *PromptStats) { s.Custom++ })
		return category, true, nil
	}

	if n, err := strconv.Atoi(choice); err == nil {
		if n < 1 || n > len(options) {
			return "", false, nil
		}
		p.remember(options[n-1])
		p.record(func(s *PromptStats) { s.Chosen++ })
		return options[n-1], true, nil
	}

	for _, option := range options {
		if strings.EqualFold(option, input) {
			p.remember(option)
			p.record(func(s *PromptStats) { s.Chosen++ })
			return option, true, nil
		}
	}
	return "", false, nil
}

func (p *Prompter) formatPending(pending engine.Pending) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render("Description:"), pending.Description)
	fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render("Amount:"), common.FormatAmount(p.symbol, pending.Amount.InexactFloat64()))
	fmt.Fprintf(&b, "%s %s", BoldStyle.Render("Type:"), pending.Direction)
	if pending.Kind != "" {
		fmt.Fprintf(&b, " (%s)", SubtleStyle.Render(string(pending.Kind)))
	}
	return b.String()
}

func (p *Prompter) writeOptions(options []string) error {
	lines := []string{FormatPrompt("Category options:")}
	for i, option := range options {
		lines = append(lines, fmt.Sprintf("  [%d] %s", i+1, option))
	}
	lines = append(lines,
		"  [C] Enter custom category",
		"  [S] Skip this transaction (or press Enter)",
		"",
	)
	if _, err := fmt.Fprintln(p.writer, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("failed to write category options: %w", err)
	}
	return nil
}

func (p *Prompter) promptCustomCategory(ctx context.Context) (string, error) {
	if len(p.recent) > 0 {
		if _, err := fmt.Fprintln(p.writer, FormatInfo("Recent categories: "+strings.Join(p.recent, ", "))); err != nil {
			slog.Warn("Failed to write recent categories", "error", err)
		}
	}

	if _, err := fmt.Fprint(p.writer, FormatPrompt("Enter category")); err != nil {
		return "", fmt.Errorf("failed to write category prompt: %w", err)
	}
	return p.readLine(ctx)
}

// readLine reads one answer. End of input is not an error: it marks the
// prompter closed and returns an empty answer.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	line, err := p.reader.ReadLine(ctx)
	if errors.Is(err, io.EOF) {
		p.closed = true
		if _, werr := fmt.Fprintln(p.writer); werr != nil {
			slog.Warn("Failed to write newline", "error", werr)
		}
		return "", nil
	}
	if errors.Is(err, ErrInputCancelled) {
		return "", ctx.Err()
	}
	return line, err
}

func (p *Prompter) remember(category string) {
	for i, c := range p.recent {
		if c == category {
			p.recent = append(p.recent[:i], p.recent[i+1:]...)
			break
		}
	}
	p.recent = append([]string{category}, p.recent...)
	if len(p.recent) > maxRecentCategories {
		p.recent = p.recent[:maxRecentCategories]
	}
}

func (p *Prompter) record(update func(*PromptStats)) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	update(&p.stats)
}
