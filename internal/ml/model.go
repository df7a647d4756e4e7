package ml

import (
	"crypto/md5" //nolint:gosec // corpus fingerprint, not a security boundary
	"encoding/hex"
	"math"
	"sort"
	"time"

	"github.com/Veraticus/finsight/internal/model"
	"github.com/jbrukh/bayesian"
)

// Head names one of the classifier's prediction heads.
type Head string

const (
	// HeadDebitType predicts Expense vs Savings/Investment.
	HeadDebitType Head = "debit_type"
	// HeadExpense predicts an expense category.
	HeadExpense Head = "expense"
	// HeadSavings predicts a savings or investment category.
	HeadSavings Head = "savings"
)

// Heads lists every head in a stable order.
var Heads = []Head{HeadDebitType, HeadExpense, HeadSavings}

// Prediction is a head's best label and its posterior probability.
// The zero value means "no prediction".
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Model is an immutable trained artifact. Heads with fewer than two classes
// in the corpus are absent from the map.
type Model struct {
	TrainedAt   time.Time
	Vectorizer  *Vectorizer
	heads       map[Head]*bayesian.Classifier
	Fingerprint string
	Samples     int
}

// HasHead reports whether the head was trained.
func (m *Model) HasHead(h Head) bool {
	_, ok := m.heads[h]
	return ok
}

// Predict returns the most probable label of a head for desc.
func (m *Model) Predict(h Head, desc string) Prediction {
	cl, ok := m.heads[h]
	if !ok || m.Vectorizer == nil {
		return Prediction{}
	}

	scores, inx, _, err := cl.SafeProbScores(m.Vectorizer.Transform(desc))
	if err != nil || inx < 0 || inx >= len(scores) {
		return Prediction{}
	}

	confidence := scores[inx]
	if math.IsNaN(confidence) {
		return Prediction{}
	}
	confidence = math.Max(0, math.Min(1, confidence))

	return Prediction{
		Label:      string(cl.Classes[inx]),
		Confidence: confidence,
	}
}

// Fingerprint identifies a training corpus. Any change to a description,
// a label or their order changes it.
func Fingerprint(samples []model.FeedbackSample) string {
	h := md5.New() //nolint:gosec // see import
	for _, s := range samples {
		_, _ = h.Write([]byte(s.Description))
		_, _ = h.Write([]byte{'|'})
		_, _ = h.Write([]byte(s.Category))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// headLabel remaps a feedback category onto the label space of a head.
func headLabel(h Head, category string, isSavings func(string) bool) string {
	switch h {
	case HeadDebitType:
		if isSavings(category) {
			return string(model.KindSavings)
		}
		return string(model.KindExpense)
	case HeadExpense:
		if isSavings(category) {
			return model.OtherCategory
		}
		return category
	case HeadSavings:
		if isSavings(category) {
			return category
		}
		return model.OtherCategory
	}
	return ""
}

// fitModel trains the vectorizer and every head that has at least two classes.
func fitModel(samples []model.FeedbackSample, fingerprint string, isSavings func(string) bool) *Model {
	docs := make([]string, len(samples))
	for i, s := range samples {
		docs[i] = s.Description
	}

	vec := NewVectorizer()
	vec.Fit(docs)

	terms := make([][]string, len(samples))
	for i, doc := range docs {
		terms[i] = vec.Transform(doc)
	}

	m := &Model{
		TrainedAt:   time.Now().UTC(),
		Vectorizer:  vec,
		heads:       make(map[Head]*bayesian.Classifier, len(Heads)),
		Fingerprint: fingerprint,
		Samples:     len(samples),
	}

	for _, h := range Heads {
		labels := make([]string, len(samples))
		distinct := make(map[string]struct{})
		for i, s := range samples {
			labels[i] = headLabel(h, s.Category, isSavings)
			distinct[labels[i]] = struct{}{}
		}
		if len(distinct) < 2 {
			continue
		}

		classes := make([]bayesian.Class, 0, len(distinct))
		for label := range distinct {
			classes = append(classes, bayesian.Class(label))
		}
		sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

		cl := bayesian.NewClassifier(classes...)
		for i := range samples {
			cl.Learn(terms[i], bayesian.Class(labels[i]))
		}
		m.heads[h] = cl
	}

	return m
}
