package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/finsight/internal/ingest"
)

// ProgressBar reports statement ingestion on the terminal.
type ProgressBar struct {
	writer      io.Writer
	bar         *progressbar.ProgressBar
	description string
}

var _ ingest.ProgressReporter = (*ProgressBar)(nil)

// NewProgressBar creates a progress reporter writing to writer.
func NewProgressBar(writer io.Writer, description string) *ProgressBar {
	if writer == nil {
		writer = os.Stderr
	}
	return &ProgressBar{writer: writer, description: description}
}

// Start resets the bar for total rows.
func (p *ProgressBar) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+p.description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(p.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// Advance moves the bar forward by one row.
func (p *ProgressBar) Advance() {
	if p.bar == nil {
		return
	}
	if err := p.bar.Add(1); err != nil {
		slog.Debug("Failed to update progress bar", "error", err)
	}
}

// Finish completes the bar.
func (p *ProgressBar) Finish() {
	if p.bar == nil {
		return
	}
	if err := p.bar.Finish(); err != nil {
		slog.Debug("Failed to finish progress bar", "error", err)
	}
}
