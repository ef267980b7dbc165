package textnorm

import porterstemmer "github.com/blevesearch/go-porterstemmer"

// Stemmer reduces a token to its root form.
type Stemmer interface {
	Stem(token string) string
}

// PorterStemmer applies the Porter algorithm.
type PorterStemmer struct{}

// Stem implements Stemmer.
func (PorterStemmer) Stem(token string) string {
	return porterstemmer.StemString(token)
}
