// Package recommender wires normalization, TF-IDF vectorization and the
// similarity index into a query-by-title pipeline.
//
// A Pipeline is Unfitted until Fit (or Restore) succeeds and then stays
// Fitted until Reset. Fitted state is read-only, so concurrent Recommend
// calls share a read lock; Fit, Restore and Reset take the write lock.
package recommender

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"recsys/internal/domain"
	"recsys/internal/embedding/tfidf"
	"recsys/internal/logging"
	"recsys/internal/metrics"
	"recsys/internal/similarity"
	"recsys/internal/textnorm"
)

// State is the lifecycle state of a Pipeline.
type State int

const (
	Unfitted State = iota
	Fitted
)

func (s State) String() string {
	if s == Fitted {
		return "fitted"
	}
	return "unfitted"
}

// DefaultTopK is used when neither the caller nor the options give a k.
const DefaultTopK = 10

// Pipeline is the content-based recommender.
type Pipeline struct {
	mu sync.RWMutex

	normalizer    domain.Normalizer
	newVectorizer func() domain.Vectorizer
	build         similarity.Builder
	customIndex   bool
	metric        similarity.Metric
	defaultK      int
	log           zerolog.Logger

	state      State
	catalog    domain.Catalog
	processed  []string
	vectorizer domain.Vectorizer
	index      domain.Index
	titles     map[string]int
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithNormalizer replaces the default English normalizer.
func WithNormalizer(n domain.Normalizer) Option { return func(p *Pipeline) { p.normalizer = n } }

// WithVectorizer sets the factory used to create a fresh vectorizer per fit.
func WithVectorizer(f func() domain.Vectorizer) Option {
	return func(p *Pipeline) { p.newVectorizer = f }
}

// WithIndexBuilder swaps the dense matrix for another index implementation.
// Snapshots only cover the dense matrix, so a pipeline with a custom builder
// cannot Snapshot or Restore.
func WithIndexBuilder(b similarity.Builder) Option {
	return func(p *Pipeline) {
		p.build = b
		p.customIndex = true
	}
}

// WithMetric selects the similarity metric.
func WithMetric(m similarity.Metric) Option { return func(p *Pipeline) { p.metric = m } }

// WithDefaultK sets the k used when Recommend is called with k <= 0.
func WithDefaultK(k int) Option {
	return func(p *Pipeline) {
		if k > 0 {
			p.defaultK = k
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(l zerolog.Logger) Option { return func(p *Pipeline) { p.log = l } }

// New creates an unfitted pipeline. Defaults: English normalizer, TF-IDF,
// dense cosine matrix, k = DefaultTopK.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		normalizer:    textnorm.New(),
		newVectorizer: func() domain.Vectorizer { return tfidf.NewVectorizer() },
		build:         similarity.DenseBuilder,
		metric:        similarity.Cosine,
		defaultK:      DefaultTopK,
		log:           logging.With().Str("component", "recommender").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fit normalizes every description, builds the vector space and the
// similarity index. It is a no-op when the pipeline is already fitted.
func (p *Pipeline) Fit(catalog domain.Catalog) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Fitted {
		p.log.Debug().Msg("fit skipped: pipeline already fitted")
		metrics.RecordFitOutcome("skipped")
		return nil
	}
	if len(catalog) == 0 {
		metrics.RecordFitOutcome("error")
		return fmt.Errorf("fit: %w: catalog has no items", domain.ErrEmptyCorpus)
	}

	start := time.Now()
	items := copyCatalog(catalog)
	processed := p.normalizeAll(items)

	vectorizer := p.newVectorizer()
	vectors, err := vectorizer.FitTransform(processed)
	if err != nil {
		metrics.RecordFitOutcome("error")
		return fmt.Errorf("fit: vectorize: %w", err)
	}
	index, err := p.build(vectors, p.metric)
	if err != nil {
		metrics.RecordFitOutcome("error")
		return fmt.Errorf("fit: build index: %w", err)
	}

	p.install(items, processed, vectorizer, index)
	elapsed := time.Since(start)
	metrics.RecordFit(p.metric.String(), elapsed, len(items), vectorizer.Dimension())
	p.log.Info().
		Int("items", len(items)).
		Int("vocabulary", vectorizer.Dimension()).
		Str("metric", p.metric.String()).
		Dur("duration", elapsed).
		Msg("pipeline fitted")
	return nil
}

// Reset discards all fitted state so the next Fit rebuilds from scratch.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = Unfitted
	p.catalog = nil
	p.processed = nil
	p.vectorizer = nil
	p.index = nil
	p.titles = nil
}

// Recommend returns up to k items most similar to the item titled title.
func (p *Pipeline) Recommend(title string, k int) ([]domain.Item, error) {
	recs, err := p.RecommendScored(title, k)
	if err != nil {
		return nil, err
	}
	return lo.Map(recs, func(r domain.Recommendation, _ int) domain.Item { return r.Item }), nil
}

// RecommendScored is Recommend with the similarity score of each result.
// Title matching is exact and case-sensitive; the first matching row wins.
func (p *Pipeline) RecommendScored(title string, k int) ([]domain.Recommendation, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.state != Fitted {
		metrics.RecordRecommendation("not_fitted")
		return nil, domain.ErrNotFitted
	}
	row, ok := p.titles[title]
	if !ok {
		metrics.RecordRecommendation("not_found")
		p.log.Debug().Str("title", title).Msg("title not in catalog")
		return nil, fmt.Errorf("%w: %q", domain.ErrTitleNotFound, title)
	}
	if k <= 0 {
		k = p.defaultK
	}
	neighbors, err := p.index.TopK(row, k)
	if err != nil {
		metrics.RecordRecommendation("error")
		return nil, err
	}
	metrics.RecordRecommendation("ok")
	return lo.Map(neighbors, func(n domain.Neighbor, _ int) domain.Recommendation {
		return domain.Recommendation{Item: p.catalog[n.Index], Score: n.Score}
	}), nil
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Metric returns the configured metric.
func (p *Pipeline) Metric() similarity.Metric { return p.metric }

// DefaultK returns the k used for non-positive requests.
func (p *Pipeline) DefaultK() int { return p.defaultK }

// Len returns the number of fitted catalog items.
func (p *Pipeline) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.catalog)
}

// VocabularySize returns the number of fitted terms, or 0 when unfitted.
func (p *Pipeline) VocabularySize() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.vectorizer == nil {
		return 0
	}
	return p.vectorizer.Dimension()
}

// Catalog returns a copy of the fitted catalog.
func (p *Pipeline) Catalog() domain.Catalog {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return copyCatalog(p.catalog)
}

// ProcessedText returns the normalized description of every fitted item.
func (p *Pipeline) ProcessedText() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.processed...)
}

type vocabularySource interface {
	Vocabulary() []string
	IDF() []float64
}

type rowSource interface {
	Rows() [][]float64
}

var errSnapshotUnsupported = errors.New("snapshot unsupported by configured vectorizer or index")

// Snapshot exports the fitted state for persistence.
func (p *Pipeline) Snapshot() (*domain.Snapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.state != Fitted {
		return nil, domain.ErrNotFitted
	}
	vocab, ok := p.vectorizer.(vocabularySource)
	if !ok {
		return nil, errSnapshotUnsupported
	}
	rows, ok := p.index.(rowSource)
	if !ok {
		return nil, errSnapshotUnsupported
	}
	return &domain.Snapshot{
		Fingerprint: Fingerprint(p.catalog, p.metric),
		Metric:      p.metric.String(),
		Vocabulary:  vocab.Vocabulary(),
		IDF:         vocab.IDF(),
		Rows:        rows.Rows(),
	}, nil
}

// Restore installs a previously exported snapshot for catalog, skipping
// vectorization and matrix construction. Like Fit, it is a no-op when the
// pipeline is already fitted.
func (p *Pipeline) Restore(catalog domain.Catalog, snap *domain.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Fitted {
		metrics.RecordFitOutcome("skipped")
		return nil
	}
	if p.customIndex {
		return errSnapshotUnsupported
	}
	if snap == nil {
		return domain.ErrSnapshotNotFound
	}
	if snap.Fingerprint != Fingerprint(catalog, p.metric) || snap.Metric != p.metric.String() {
		return fmt.Errorf("restore: %w: fingerprint %s", domain.ErrSnapshotMismatch, snap.Fingerprint)
	}
	if len(snap.Rows) != len(catalog) {
		return fmt.Errorf("restore: %w: %d rows for %d items", domain.ErrSnapshotMismatch, len(snap.Rows), len(catalog))
	}
	vectorizer, err := tfidf.Restore(snap.Vocabulary, snap.IDF)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	index, err := similarity.FromRows(snap.Rows, p.metric)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	items := copyCatalog(catalog)
	p.install(items, p.normalizeAll(items), vectorizer, index)
	metrics.RecordFitOutcome("restored")
	metrics.CatalogItems.Set(float64(len(items)))
	metrics.VocabularySize.Set(float64(vectorizer.Dimension()))
	p.log.Info().
		Int("items", len(items)).
		Str("fingerprint", snap.Fingerprint).
		Msg("pipeline restored from snapshot")
	return nil
}

// install must be called with the write lock held.
func (p *Pipeline) install(items domain.Catalog, processed []string, v domain.Vectorizer, idx domain.Index) {
	titles := make(map[string]int, len(items))
	for i, it := range items {
		if _, dup := titles[it.Title]; !dup {
			titles[it.Title] = i
		}
	}
	p.catalog = items
	p.processed = processed
	p.vectorizer = v
	p.index = idx
	p.titles = titles
	p.state = Fitted
}

func (p *Pipeline) normalizeAll(items domain.Catalog) []string {
	descriptions := items.Descriptions()
	for i, d := range descriptions {
		descriptions[i] = p.normalizer.Normalize(d)
	}
	return descriptions
}

// copyCatalog copies items and pins Position to the row index.
func copyCatalog(c domain.Catalog) domain.Catalog {
	out := make(domain.Catalog, len(c))
	for i, it := range c {
		it.Position = i
		out[i] = it
	}
	return out
}

// Fingerprint identifies a catalog's content together with the metric.
func Fingerprint(c domain.Catalog, m similarity.Metric) string {
	h := sha1.New()
	h.Write([]byte(m))
	for _, it := range c {
		h.Write([]byte{0x1e})
		h.Write([]byte(it.Title))
		h.Write([]byte{0x1f})
		h.Write([]byte(it.Description))
	}
	return hex.EncodeToString(h.Sum(nil))
}
