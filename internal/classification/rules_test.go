package classification

import (
	"strings"
	"testing"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleClassifier_Classify(t *testing.T) {
	rc := NewRuleClassifier(DefaultTaxonomy())

	tests := []struct {
		name         string
		description  string
		wantKind     model.Kind
		wantCategory string
		wantOK       bool
	}{
		{
			name:         "savings keyword",
			description:  "SIP MUTUAL FUND INVESTNOWIP",
			wantKind:     model.KindSavings,
			wantCategory: "Mutual Fund SIP",
			wantOK:       true,
		},
		{
			name:        "no match",
			description: "RANDOM TRANSACTION XYZ",
			wantKind:    model.KindNone,
		},
		{
			name:         "expense keyword",
			description:  "ZOMATO ORDER",
			wantKind:     model.KindExpense,
			wantCategory: "Food & Dining",
			wantOK:       true,
		},
		{
			name:         "income keyword",
			description:  "SALARY CREDIT",
			wantKind:     model.KindIncome,
			wantCategory: "Salary",
			wantOK:       true,
		},
		{
			name:         "expense wins over income",
			description:  "NEFT NETFLIX",
			wantKind:     model.KindExpense,
			wantCategory: "Subscriptions",
			wantOK:       true,
		},
		{
			name:        "matching is case sensitive",
			description: "zomato order",
			wantKind:    model.KindNone,
		},
		{
			name:        "empty description",
			description: "",
			wantKind:    model.KindNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, category, ok := rc.Classify(tt.description)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantCategory, category)
		})
	}
}

func TestRuleClassifier_DeclaredOrderWins(t *testing.T) {
	tax, err := NewTaxonomy([]Rule{
		{Universe: model.KindExpense, Category: "First", Keywords: []string{"SHARED"}},
		{Universe: model.KindExpense, Category: "Second", Keywords: []string{"SHARED", "ONLY"}},
		{Universe: model.KindIncome, Category: "Pay", Keywords: []string{"SHARED"}},
	})
	require.NoError(t, err)
	rc := NewRuleClassifier(tax)

	_, category, ok := rc.Classify("SHARED ONLY")
	require.True(t, ok)
	assert.Equal(t, "First", category)

	category, ok = rc.ClassifyIn(model.KindIncome, "SHARED")
	require.True(t, ok)
	assert.Equal(t, "Pay", category)

	_, ok = rc.ClassifyIn(model.KindSavings, "SHARED")
	assert.False(t, ok)
}

func TestNewTaxonomy_Errors(t *testing.T) {
	tests := []struct {
		name  string
		rules []Rule
	}{
		{
			name: "category in two universes",
			rules: []Rule{
				{Universe: model.KindExpense, Category: "Gold"},
				{Universe: model.KindSavings, Category: "Gold"},
			},
		},
		{
			name:  "unknown universe",
			rules: []Rule{{Universe: model.Kind("Transfer"), Category: "X"}},
		},
		{
			name:  "empty category",
			rules: []Rule{{Universe: model.KindIncome, Category: " "}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTaxonomy(tt.rules)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestDefaultTaxonomy(t *testing.T) {
	tax := DefaultTaxonomy()

	assert.Equal(t, "Food & Dining", tax.Categories(model.KindExpense)[0])
	assert.Equal(t, "Mutual Fund SIP", tax.Categories(model.KindSavings)[0])
	assert.Equal(t, "Salary", tax.Categories(model.KindIncome)[0])

	assert.True(t, tax.IsSavings("Insurance"))
	assert.False(t, tax.IsSavings("Groceries"))
	assert.Equal(t, model.KindIncome, tax.UniverseOf("Refund"))
	assert.Equal(t, model.KindNone, tax.UniverseOf("Nope"))
}

func TestLoadTaxonomy(t *testing.T) {
	doc := `
expense:
  - category: Coffee
    keywords: [starbucks, "blue tokai"]
  - category: Pets
    keywords: [SUPERTAILS]
savings:
  - category: Index Funds
    keywords: [NIFTY]
income:
  - category: Salary
    keywords: [SALARY]
`
	tax, err := LoadTaxonomy(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, []string{"Coffee", "Pets"}, tax.Categories(model.KindExpense))

	rc := NewRuleClassifier(tax)
	kind, category, ok := rc.Classify(Normalize("Blue Tokai Coffee"))
	require.True(t, ok)
	assert.Equal(t, model.KindExpense, kind)
	assert.Equal(t, "Coffee", category)

	_, err = LoadTaxonomy(strings.NewReader("expense: [}"))
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	_, err = LoadTaxonomy(strings.NewReader("unknown: []"))
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoadTaxonomyFile_EmptyPathUsesDefaults(t *testing.T) {
	tax, err := LoadTaxonomyFile("")
	require.NoError(t, err)
	assert.NotEmpty(t, tax.Categories(model.KindExpense))
}
