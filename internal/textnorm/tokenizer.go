package textnorm

import (
	"strings"
	"unicode"

	"github.com/blevesearch/segment"
)

// Tokenizer splits text into word-level tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// SegmentTokenizer splits on Unicode word boundaries (UAX #29). Punctuation is
// emitted as separate tokens and whitespace is discarded. A trailing
// possessive "'s" is dropped.
type SegmentTokenizer struct{}

// Tokenize implements Tokenizer.
func (SegmentTokenizer) Tokenize(text string) []string {
	seg := segment.NewWordSegmenterDirect([]byte(text))
	var out []string
	for seg.Segment() {
		tok := string(seg.Bytes())
		if seg.Type() == segment.None && strings.TrimSpace(tok) == "" {
			continue
		}
		if word, ok := strings.CutSuffix(tok, "'s"); ok && word != "" {
			out = append(out, word)
			continue
		}
		out = append(out, tok)
	}
	if seg.Err() != nil {
		return strings.Fields(text)
	}
	return out
}

// isPunctuation reports whether every rune of tok is punctuation or a symbol.
func isPunctuation(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}
