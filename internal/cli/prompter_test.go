package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finsight/internal/engine"
	"github.com/Veraticus/finsight/internal/model"
)

func pendingDebit() engine.Pending {
	return engine.Pending{
		Description: "UPI-SWIGGY-BANGALORE",
		Amount:      decimal.NewFromInt(1250),
		Direction:   model.DirectionDebit,
		Kind:        model.KindExpense,
		Options:     []string{"Food & Dining", "Groceries", "Transport"},
	}
}

func TestPrompter_ChooseCategory(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		stats    PromptStats
	}{
		{
			name:     "numbered option",
			input:    "2\n",
			expected: "Groceries",
			stats:    PromptStats{Prompted: 1, Chosen: 1},
		},
		{
			name:     "option typed by name",
			input:    "transport\n",
			expected: "Transport",
			stats:    PromptStats{Prompted: 1, Chosen: 1},
		},
		{
			name:     "custom category",
			input:    "c\nPet Care\n",
			expected: "Pet Care",
			stats:    PromptStats{Prompted: 1, Custom: 1},
		},
		{
			name:     "enter skips",
			input:    "\n",
			expected: "",
			stats:    PromptStats{Prompted: 1, Skipped: 1},
		},
		{
			name:     "explicit skip",
			input:    "S\n",
			expected: "",
			stats:    PromptStats{Prompted: 1, Skipped: 1},
		},
		{
			name:     "invalid then valid",
			input:    "9\nnonsense\n1\n",
			expected: "Food & Dining",
			stats:    PromptStats{Prompted: 1, Chosen: 1},
		},
		{
			name:     "end of input skips",
			input:    "",
			expected: "",
			stats:    PromptStats{Prompted: 1, Skipped: 1},
		},
		{
			name:     "empty custom category skips",
			input:    "c\n\n",
			expected: "",
			stats:    PromptStats{Prompted: 1, Skipped: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out, "₹")

			got, err := p.ChooseCategory(context.Background(), pendingDebit())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.stats, p.Stats())
		})
	}
}

func TestPrompter_RendersTransaction(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("1\n"), &out, "₹")

	_, err := p.ChooseCategory(context.Background(), pendingDebit())
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "UPI-SWIGGY-BANGALORE")
	assert.Contains(t, output, "₹1,250")
	assert.Contains(t, output, "Debit")
	assert.Contains(t, output, "[1] Food & Dining")
	assert.Contains(t, output, "[3] Transport")
	assert.Contains(t, output, "[C] Enter custom category")
}

func TestPrompter_InvalidChoiceMessage(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("x\n1\n"), &out, "₹")

	_, err := p.ChooseCategory(context.Background(), pendingDebit())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Invalid choice")
}

func TestPrompter_SkipsAfterInputCloses(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("1\n"), &out, "₹")
	ctx := context.Background()

	first, err := p.ChooseCategory(ctx, pendingDebit())
	require.NoError(t, err)
	assert.Equal(t, "Food & Dining", first)

	second, err := p.ChooseCategory(ctx, pendingDebit())
	require.NoError(t, err)
	assert.Empty(t, second)

	before := out.Len()
	third, err := p.ChooseCategory(ctx, pendingDebit())
	require.NoError(t, err)
	assert.Empty(t, third)
	assert.Equal(t, before, out.Len(), "closed prompter should not render")

	assert.Equal(t, PromptStats{Prompted: 2, Chosen: 1, Skipped: 2}, p.Stats())
}

func TestPrompter_RecentCategories(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("2\nc\nGifts\n"), &out, "₹")
	ctx := context.Background()

	_, err := p.ChooseCategory(ctx, pendingDebit())
	require.NoError(t, err)
	got, err := p.ChooseCategory(ctx, pendingDebit())
	require.NoError(t, err)

	assert.Equal(t, "Gifts", got)
	assert.Contains(t, out.String(), "Recent categories: Groceries")
	assert.Equal(t, []string{"Gifts", "Groceries"}, p.recent)
}

func TestPrompter_CanceledContext(t *testing.T) {
	p := NewPrompter(strings.NewReader("1\n"), &bytes.Buffer{}, "₹")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ChooseCategory(ctx, pendingDebit())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderTable(t *testing.T) {
	table := RenderTable(
		[]string{"Category", "Spent"},
		[][]string{
			{"Groceries", "₹4,200"},
			{"Transport"},
		},
	)

	lines := strings.Split(table, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Category")
	assert.Contains(t, lines[1], "Groceries")
	assert.Contains(t, lines[1], "₹4,200")
	assert.Contains(t, lines[2], "Transport")
}

func TestProgressBar(t *testing.T) {
	var out bytes.Buffer
	bar := NewProgressBar(&out, "Importing")

	bar.Advance()
	bar.Finish()
	assert.Empty(t, out.String(), "no output before Start")

	bar.Start(2)
	bar.Advance()
	bar.Advance()
	bar.Finish()
	assert.Contains(t, out.String(), "Importing")
}
