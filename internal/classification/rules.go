package classification

import (
	"strings"

	"github.com/Veraticus/finsight/internal/model"
)

// RuleClassifier matches normalized narrations against a taxonomy.
// Expense rules are consulted first, then savings, then income; within a
// universe the first declared category with a matching keyword wins.
type RuleClassifier struct {
	taxonomy *Taxonomy
}

// NewRuleClassifier creates a rule classifier over the given taxonomy.
func NewRuleClassifier(taxonomy *Taxonomy) *RuleClassifier {
	return &RuleClassifier{taxonomy: taxonomy}
}

// Taxonomy returns the taxonomy the classifier matches against.
func (rc *RuleClassifier) Taxonomy() *Taxonomy {
	return rc.taxonomy
}

// Classify returns the kind and category of the first matching rule.
func (rc *RuleClassifier) Classify(normalized string) (model.Kind, string, bool) {
	for _, kind := range universeOrder {
		if category, ok := rc.ClassifyIn(kind, normalized); ok {
			return kind, category, true
		}
	}
	return model.KindNone, "", false
}

// ClassifyIn restricts matching to a single universe.
func (rc *RuleClassifier) ClassifyIn(kind model.Kind, normalized string) (string, bool) {
	if normalized == "" {
		return "", false
	}

	for _, rule := range rc.taxonomy.Rules(kind) {
		for _, keyword := range rule.Keywords {
			if strings.Contains(normalized, keyword) {
				return rule.Category, true
			}
		}
	}
	return "", false
}
