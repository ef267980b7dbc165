// Package textnorm turns raw descriptions into normalized token streams:
// lower-case, tokenize, drop stopwords, drop punctuation, stem, join.
package textnorm

import "strings"

var apostrophes = strings.NewReplacer("’", "'", "‘", "'")

// Normalizer cleans free text. It holds no per-document state and is safe
// for concurrent use as long as its collaborators are.
type Normalizer struct {
	tokenizer Tokenizer
	stemmer   Stemmer
	stopwords StopwordSet
}

// Option customizes a Normalizer.
type Option func(*Normalizer)

// WithTokenizer replaces the default Unicode word tokenizer.
func WithTokenizer(t Tokenizer) Option { return func(n *Normalizer) { n.tokenizer = t } }

// WithStemmer replaces the default Porter stemmer.
func WithStemmer(s Stemmer) Option { return func(n *Normalizer) { n.stemmer = s } }

// WithStopwords replaces the default English stopword set.
func WithStopwords(s StopwordSet) Option { return func(n *Normalizer) { n.stopwords = s } }

// New creates a Normalizer with English defaults.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		tokenizer: SegmentTokenizer{},
		stemmer:   PorterStemmer{},
		stopwords: English(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize returns the processed form of text. Empty or whitespace-only
// input yields "".
func (n *Normalizer) Normalize(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return ""
	}
	tokens := n.tokenizer.Tokenize(apostrophes.Replace(lower))
	out := tokens[:0]
	for _, tok := range tokens {
		if n.stopwords.Contains(tok) {
			continue
		}
		if isPunctuation(tok) {
			continue
		}
		if stem := n.stemmer.Stem(tok); stem != "" {
			out = append(out, stem)
		}
	}
	return strings.Join(out, " ")
}

// NormalizeAll normalizes every text independently, preserving order.
func (n *Normalizer) NormalizeAll(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = n.Normalize(t)
	}
	return out
}
