package classification

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
	"gopkg.in/yaml.v3"
)

// Rule maps one category to the keywords that trigger it.
type Rule struct {
	Universe model.Kind `yaml:"-"`
	Category string     `yaml:"category"`
	Keywords []string   `yaml:"keywords"`
}

// Taxonomy holds the three disjoint label universes. Rules are kept in
// declaration order, which is also match priority within a universe.
type Taxonomy struct {
	universe map[string]model.Kind
	rules    map[model.Kind][]Rule
}

// universeOrder is the order the rule classifier searches universes in.
var universeOrder = []model.Kind{model.KindExpense, model.KindSavings, model.KindIncome}

// NewTaxonomy builds a taxonomy from ordered rules. Category names must be
// unique across all universes.
func NewTaxonomy(rules []Rule) (*Taxonomy, error) {
	t := &Taxonomy{
		universe: make(map[string]model.Kind, len(rules)),
		rules:    make(map[model.Kind][]Rule, len(universeOrder)),
	}

	for _, r := range rules {
		switch r.Universe {
		case model.KindExpense, model.KindSavings, model.KindIncome:
		default:
			return nil, fmt.Errorf("%w: category %q has unknown universe %q", common.ErrInvalidConfig, r.Category, r.Universe)
		}
		if strings.TrimSpace(r.Category) == "" {
			return nil, fmt.Errorf("%w: empty category name in %s universe", common.ErrInvalidConfig, r.Universe)
		}
		if existing, ok := t.universe[r.Category]; ok {
			return nil, fmt.Errorf("%w: category %q declared in both %s and %s", common.ErrInvalidConfig, r.Category, existing, r.Universe)
		}

		keywords := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			// Narrations are normalized before matching, so keywords must be too.
			if kw = Normalize(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}

		t.universe[r.Category] = r.Universe
		t.rules[r.Universe] = append(t.rules[r.Universe], Rule{
			Universe: r.Universe,
			Category: r.Category,
			Keywords: keywords,
		})
	}

	return t, nil
}

// taxonomyFile is the on-disk YAML shape. Sequences keep declaration order.
type taxonomyFile struct {
	Expense []Rule `yaml:"expense"`
	Savings []Rule `yaml:"savings"`
	Income  []Rule `yaml:"income"`
}

// LoadTaxonomy parses a YAML taxonomy document.
func LoadTaxonomy(r io.Reader) (*Taxonomy, error) {
	var file taxonomyFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: failed to parse taxonomy: %v", common.ErrInvalidConfig, err)
	}

	var rules []Rule
	add := func(kind model.Kind, list []Rule) {
		for _, r := range list {
			r.Universe = kind
			rules = append(rules, r)
		}
	}
	add(model.KindExpense, file.Expense)
	add(model.KindSavings, file.Savings)
	add(model.KindIncome, file.Income)

	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: taxonomy declares no categories", common.ErrInvalidConfig)
	}

	return NewTaxonomy(rules)
}

// LoadTaxonomyFile reads a taxonomy override. An empty path returns the
// built-in defaults.
func LoadTaxonomyFile(path string) (*Taxonomy, error) {
	if path == "" {
		return DefaultTaxonomy(), nil
	}

	f, err := os.Open(path) //nolint:gosec // path comes from user config
	if err != nil {
		return nil, fmt.Errorf("failed to open taxonomy file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return LoadTaxonomy(f)
}

// Rules returns the rules of one universe in priority order.
func (t *Taxonomy) Rules(kind model.Kind) []Rule {
	return t.rules[kind]
}

// Categories lists the category names of one universe in declared order.
func (t *Taxonomy) Categories(kind model.Kind) []string {
	rules := t.rules[kind]
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Category)
	}
	return names
}

// UniverseOf returns the universe a category belongs to, or KindNone.
func (t *Taxonomy) UniverseOf(category string) model.Kind {
	return t.universe[category]
}

// IsSavings reports whether a category belongs to the savings universe.
func (t *Taxonomy) IsSavings(category string) bool {
	return t.universe[category] == model.KindSavings
}
