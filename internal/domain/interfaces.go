package domain

// Item is a single catalog entry. Position is its stable row index.
type Item struct {
	Position    int
	Title       string
	Description string
}

// Catalog is the ordered, load-time-immutable list of items.
type Catalog []Item

// Descriptions returns the raw descriptions in row order.
func (c Catalog) Descriptions() []string {
	out := make([]string, len(c))
	for i, it := range c {
		out[i] = it.Description
	}
	return out
}

// FeatureVector is a sparse TF-IDF vector. Indices are strictly increasing
// vocabulary columns and Values holds the matching weights.
type FeatureVector struct {
	Indices []int
	Values  []float64
}

// IsZero reports whether the vector has no non-zero weights.
func (v FeatureVector) IsZero() bool { return len(v.Indices) == 0 }

// Neighbor is a ranked row of the similarity index.
type Neighbor struct {
	Index int
	Score float64
}

// Recommendation is a catalog item returned for a query together with its score.
type Recommendation struct {
	Item  Item
	Score float64
}

// Snapshot is the persisted form of a fitted pipeline.
type Snapshot struct {
	Fingerprint string      `json:"fingerprint"`
	Metric      string      `json:"metric"`
	Vocabulary  []string    `json:"vocabulary"`
	IDF         []float64   `json:"idf"`
	Rows        [][]float64 `json:"-"`
}

// Normalizer cleans raw text into a space-joined stream of processed tokens.
type Normalizer interface {
	Normalize(text string) string
}

// Vectorizer builds a vector space from a corpus of processed documents.
// Output row i corresponds to input document i.
type Vectorizer interface {
	FitTransform(documents []string) ([]FeatureVector, error)
	Dimension() int
}

// Index answers top-K neighbor queries for a catalog row.
type Index interface {
	TopK(row, k int) ([]Neighbor, error)
	Len() int
}
