// Package ml implements the statistical fallback classifier: a shared text
// vectorizer feeding three naive Bayes heads trained from user feedback.
package ml

import (
	"regexp"
	"sort"
	"strings"
)

// Terms are runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`\w\w+`)

// Tokenize lowercases a document and returns its word unigrams followed by
// its adjacent-word bigrams.
func Tokenize(doc string) []string {
	words := tokenPattern.FindAllString(strings.ToLower(doc), -1)
	if len(words) == 0 {
		return nil
	}

	terms := make([]string, 0, 2*len(words)-1)
	terms = append(terms, words...)
	for i := 0; i+1 < len(words); i++ {
		terms = append(terms, words[i]+" "+words[i+1])
	}
	return terms
}

// Vectorizer maps documents onto a vocabulary learned from the training corpus.
type Vectorizer struct {
	Vocabulary map[string]int `json:"vocabulary"`
}

// NewVectorizer creates an empty vectorizer.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{Vocabulary: make(map[string]int)}
}

// Fit builds the vocabulary from docs. Term indices follow sorted term order
// so that fitting the same corpus always yields the same vocabulary.
func (v *Vectorizer) Fit(docs []string) {
	seen := make(map[string]struct{})
	for _, doc := range docs {
		for _, term := range Tokenize(doc) {
			seen[term] = struct{}{}
		}
	}

	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v.Vocabulary = make(map[string]int, len(terms))
	for i, term := range terms {
		v.Vocabulary[term] = i
	}
}

// Transform tokenizes doc and drops out-of-vocabulary terms.
func (v *Vectorizer) Transform(doc string) []string {
	terms := Tokenize(doc)
	kept := terms[:0]
	for _, term := range terms {
		if _, ok := v.Vocabulary[term]; ok {
			kept = append(kept, term)
		}
	}
	return kept
}

// Len returns the vocabulary size.
func (v *Vectorizer) Len() int {
	return len(v.Vocabulary)
}
