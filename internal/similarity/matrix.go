// Package similarity computes pairwise scores between feature vectors and
// answers top-K neighbor queries.
package similarity

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"recsys/internal/domain"
)

// Builder constructs an index over fitted vectors.
type Builder func(vectors []domain.FeatureVector, metric Metric) (domain.Index, error)

// DenseBuilder is the default Builder; it returns a *Matrix.
func DenseBuilder(vectors []domain.FeatureVector, metric Metric) (domain.Index, error) {
	return Build(vectors, metric)
}

// Matrix is a dense N×N score matrix, built once and read-only afterwards.
//
// Build costs O(N²·nnz) time and the matrix holds N² float64 values, so
// memory grows quadratically with the catalog. It suits catalogs of a few
// tens of thousands of items; larger catalogs need an approximate index
// plugged in through Builder.
type Matrix struct {
	n      int
	metric Metric
	scores []float64
}

// Build computes all pairwise scores. Entries are computed once per
// unordered pair and mirrored, so the matrix is exactly symmetric.
func Build(vectors []domain.FeatureVector, metric Metric) (*Matrix, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("similarity build: %w: no vectors", domain.ErrEmptyCorpus)
	}
	if metric != Cosine && metric != Euclidean {
		return nil, fmt.Errorf("similarity build: unknown metric %q", metric)
	}
	n := len(vectors)
	m := &Matrix{n: n, metric: metric, scores: make([]float64, n*n)}

	sq := make([]float64, n)
	for i := range vectors {
		sq[i] = dot(vectors[i], vectors[i])
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var s float64
			switch {
			case metric == Cosine:
				s = dot(vectors[i], vectors[j])
			case i == j:
				s = 0
			default:
				// ||a-b||² = ||a||² + ||b||² - 2a·b, clamped against rounding
				d2 := sq[i] + sq[j] - 2*dot(vectors[i], vectors[j])
				s = math.Sqrt(math.Max(d2, 0))
			}
			m.scores[i*n+j] = s
			m.scores[j*n+i] = s
		}
	}
	return m, nil
}

// FromRows rebuilds a matrix from persisted rows.
func FromRows(rows [][]float64, metric Metric) (*Matrix, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("similarity restore: %w: no rows", domain.ErrEmptyCorpus)
	}
	m := &Matrix{n: n, metric: metric, scores: make([]float64, 0, n*n)}
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("similarity restore: row %d has %d columns, want %d", i, len(row), n)
		}
		m.scores = append(m.scores, row...)
	}
	return m, nil
}

// Len returns the number of rows.
func (m *Matrix) Len() int { return m.n }

// Metric returns the metric the matrix was built with.
func (m *Matrix) Metric() Metric { return m.metric }

// At returns the score between rows i and j.
func (m *Matrix) At(i, j int) float64 { return m.scores[i*m.n+j] }

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	return append([]float64(nil), m.scores[i*m.n:(i+1)*m.n]...)
}

// Rows returns a copy of every row, in order.
func (m *Matrix) Rows() [][]float64 {
	out := make([][]float64, m.n)
	for i := range out {
		out[i] = m.Row(i)
	}
	return out
}

// TopK returns up to k neighbors of row, best first, excluding row itself.
// Ties keep catalog order. Fewer than k results are returned when the
// catalog is smaller than k+1.
func (m *Matrix) TopK(row, k int) ([]domain.Neighbor, error) {
	if row < 0 || row >= m.n {
		return nil, fmt.Errorf("%w: row %d outside [0, %d)", domain.ErrInvalidQuery, row, m.n)
	}
	if k <= 0 {
		return []domain.Neighbor{}, nil
	}
	scores := m.scores[row*m.n : (row+1)*m.n]
	candidates := make([]int, 0, m.n-1)
	for j := 0; j < m.n; j++ {
		if j != row {
			candidates = append(candidates, j)
		}
	}
	desc := m.metric.HigherIsBetter()
	slices.SortStableFunc(candidates, func(a, b int) int {
		if desc {
			return cmp.Compare(scores[b], scores[a])
		}
		return cmp.Compare(scores[a], scores[b])
	})
	if k > len(candidates) {
		k = len(candidates)
	}
	out := make([]domain.Neighbor, k)
	for i := 0; i < k; i++ {
		j := candidates[i]
		out[i] = domain.Neighbor{Index: j, Score: scores[j]}
	}
	return out, nil
}

// dot multiplies two sparse vectors with sorted indices.
func dot(a, b domain.FeatureVector) float64 {
	sum := 0.0
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

var _ domain.Index = (*Matrix)(nil)
