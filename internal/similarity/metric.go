package similarity

import (
	"fmt"
	"strings"
)

// Metric selects how two feature vectors are compared.
type Metric string

const (
	// Cosine scores by dot product of unit vectors; higher is more similar.
	Cosine Metric = "cosine"
	// Euclidean scores by straight-line distance; lower is more similar.
	Euclidean Metric = "euclidean"
)

// ParseMetric resolves a configured metric name. Empty means cosine.
func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case Cosine, "":
		return Cosine, nil
	case Euclidean:
		return Euclidean, nil
	default:
		return "", fmt.Errorf("unknown metric: %q", s)
	}
}

// HigherIsBetter reports whether larger scores rank first.
func (m Metric) HigherIsBetter() bool { return m != Euclidean }

func (m Metric) String() string { return string(m) }
