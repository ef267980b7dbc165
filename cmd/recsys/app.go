package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"recsys/internal/catalog"
	"recsys/internal/config"
	"recsys/internal/domain"
	"recsys/internal/logging"
	"recsys/internal/recommender"
	"recsys/internal/similarity"
	"recsys/internal/store"
)

// buildPipeline fits a pipeline for items, restoring from and saving to the
// snapshot store when one is configured.
func buildPipeline(cfg *config.AppConfig, items domain.Catalog) (*recommender.Pipeline, error) {
	metric, err := similarity.ParseMetric(cfg.Index.Metric)
	if err != nil {
		return nil, err
	}
	p := recommender.New(
		recommender.WithMetric(metric),
		recommender.WithDefaultK(cfg.Recommend.TopK),
	)
	if cfg.Store.Path == "" {
		return p, p.Fit(items)
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close snapshot store")
		}
	}()
	return p, fitWithStore(p, st, items)
}

type snapshotStore interface {
	Load(fingerprint string) (*domain.Snapshot, error)
	Save(snap *domain.Snapshot) error
	Delete(fingerprint string) error
}

// fitWithStore restores p from st when a matching snapshot exists and
// otherwise fits p and saves the result. Store failures never fail the fit.
func fitWithStore(p *recommender.Pipeline, st snapshotStore, items domain.Catalog) error {
	fp := recommender.Fingerprint(items, p.Metric())
	snap, err := st.Load(fp)
	switch {
	case err == nil:
		err = p.Restore(items, snap)
		if err == nil {
			return nil
		}
		logging.Warn().Err(err).Str("fingerprint", fp).Msg("discarding unusable snapshot")
		if derr := st.Delete(fp); derr != nil {
			logging.Warn().Err(derr).Msg("failed to delete snapshot")
		}
	case errors.Is(err, domain.ErrSnapshotNotFound):
		logging.Debug().Str("fingerprint", fp).Msg("no snapshot for catalog")
	default:
		logging.Warn().Err(err).Msg("failed to read snapshot")
	}

	if err := p.Fit(items); err != nil {
		return err
	}
	snap, err = p.Snapshot()
	if err != nil {
		logging.Warn().Err(err).Msg("snapshot export failed")
		return nil
	}
	if err := st.Save(snap); err != nil {
		logging.Warn().Err(err).Msg("failed to save snapshot")
	}
	return nil
}

// queryTitle picks the one-shot query: -title, or a random title with -random.
func queryTitle(opts options, items domain.Catalog) (string, error) {
	if opts.title != "" && opts.random {
		return "", errors.New("-title and -random are mutually exclusive")
	}
	if opts.random {
		return catalog.RandomTitle(items, nil)
	}
	return opts.title, nil
}

type scoredRecommender interface {
	RecommendScored(title string, k int) ([]domain.Recommendation, error)
}

// printRecommendations writes a rank/title/score table for title.
func printRecommendations(w io.Writer, rec scoredRecommender, title string, k int) error {
	recs, err := rec.RecommendScored(title, k)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Because you liked %q:\n", title)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rank", "Title", "Score"})
	for i, r := range recs {
		table.Append([]string{strconv.Itoa(i + 1), r.Item.Title, strconv.FormatFloat(r.Score, 'f', 4, 64)})
	}
	table.Render()
	return nil
}
