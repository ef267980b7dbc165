package tfidf

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"recsys/internal/domain"
)

// Vectorizer implements a TF-IDF vector space over already normalized text.
// Vocabulary and IDF weights are fixed by Fit; a new corpus needs a new Fit.
type Vectorizer struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
	fitted     bool
}

// NewVectorizer creates an unfitted TF-IDF vectorizer.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{vocabulary: make(map[string]int)}
}

// Fit builds the vocabulary and smoothed IDF values from the corpus.
func (v *Vectorizer) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return fmt.Errorf("tfidf fit: %w: no documents", domain.ErrEmptyCorpus)
	}
	// Build vocabulary and document frequencies
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return fmt.Errorf("tfidf fit: %w: vocabulary is empty", domain.ErrEmptyCorpus)
	}
	// Stable ordering for vocabulary columns
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v.terms = terms
	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	v.fitted = true
	return nil
}

// Transform computes the L2-normalized TF-IDF vector of one document.
// Terms outside the vocabulary are ignored; a document without known terms
// yields the zero vector.
func (v *Vectorizer) Transform(text string) (domain.FeatureVector, error) {
	if !v.fitted {
		return domain.FeatureVector{}, fmt.Errorf("tfidf transform: %w", domain.ErrNotFitted)
	}
	counts := make(map[int]int)
	for _, tok := range tokenize(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return domain.FeatureVector{}, nil
	}
	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	norm := 0.0
	for i, idx := range indices {
		w := float64(counts[idx]) * v.idf[idx]
		values[i] = w
		norm += w * w
	}
	// L2 normalize
	norm = math.Sqrt(norm)
	for i := range values {
		values[i] /= norm
	}
	return domain.FeatureVector{Indices: indices, Values: values}, nil
}

// FitTransform fits the corpus and returns one vector per document, in order.
func (v *Vectorizer) FitTransform(documents []string) ([]domain.FeatureVector, error) {
	if err := v.Fit(documents); err != nil {
		return nil, err
	}
	out := make([]domain.FeatureVector, len(documents))
	for i, doc := range documents {
		vec, err := v.Transform(doc)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimension returns the vocabulary size.
func (v *Vectorizer) Dimension() int { return len(v.terms) }

// Vocabulary returns the terms ordered by column index.
func (v *Vectorizer) Vocabulary() []string { return append([]string(nil), v.terms...) }

// IDF returns the inverse document frequency weights by column index.
func (v *Vectorizer) IDF() []float64 { return append([]float64(nil), v.idf...) }

// Restore rebuilds a fitted vectorizer from a saved vocabulary and IDF weights.
func Restore(terms []string, idf []float64) (*Vectorizer, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("tfidf restore: %w: vocabulary is empty", domain.ErrEmptyCorpus)
	}
	if len(terms) != len(idf) {
		return nil, fmt.Errorf("tfidf restore: %d terms but %d idf weights", len(terms), len(idf))
	}
	v := &Vectorizer{
		terms:      append([]string(nil), terms...),
		idf:        append([]float64(nil), idf...),
		vocabulary: make(map[string]int, len(terms)),
		fitted:     true,
	}
	for i, term := range terms {
		v.vocabulary[term] = i
	}
	return v, nil
}

// tokenize splits normalized text on whitespace.
func tokenize(text string) []string {
	return strings.Fields(text)
}
