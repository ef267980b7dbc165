package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"recsys/internal/api"
	"recsys/internal/catalog"
	"recsys/internal/config"
	"recsys/internal/logging"
	"recsys/internal/tui"
)

type options struct {
	configPath string
	catalog    string
	metric     string
	k          int
	title      string
	random     bool
	serve      bool
	tui        bool
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to YAML config file (optional; uses ~/.config/recsys/config.yaml if not provided)")
	flag.StringVar(&opts.catalog, "catalog", "", "Path to the catalog CSV (overrides config)")
	flag.StringVar(&opts.metric, "metric", "", "Similarity metric: cosine or euclidean (overrides config)")
	flag.IntVar(&opts.k, "k", 0, "Number of recommendations (overrides config)")
	flag.StringVar(&opts.title, "title", "", "Print recommendations for this exact title and exit")
	flag.BoolVar(&opts.random, "random", false, "Print recommendations for a random title and exit")
	flag.BoolVar(&opts.serve, "serve", false, "Serve the HTTP API")
	flag.BoolVar(&opts.tui, "tui", false, "Start the interactive terminal UI (default when no other mode is given)")
	flag.Parse()

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})

	items, err := catalog.Load(cfg.Catalog.Path, catalog.Columns{
		Title:       cfg.Catalog.TitleColumn,
		Description: cfg.Catalog.DescriptionColumn,
	})
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("failed to load catalog")
	}
	logging.Info().Int("items", len(items)).Str("path", cfg.Catalog.Path).Msg("catalog loaded")

	pipeline, err := buildPipeline(cfg, items)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to fit recommender")
	}

	switch {
	case opts.serve:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := api.NewServer(pipeline).ListenAndServe(ctx, cfg.Server.Addr); err != nil {
			logging.Fatal().Err(err).Msg("http server failed")
		}
	case opts.title != "" || opts.random:
		title, err := queryTitle(opts, items)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		if err := printRecommendations(os.Stdout, pipeline, title, cfg.Recommend.TopK); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	default:
		// disable console logging while the alternate screen is active
		logging.Init(logging.Config{Level: "disabled"})
		summary := fmt.Sprintf("%d items, %d terms, metric=%s", pipeline.Len(), pipeline.VocabularySize(), pipeline.Metric())
		m := tui.New(pipeline, summary, cfg.Recommend.TopK)
		if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

// loadConfig resolves configuration: file, then RECSYS_* env, then flags.
func loadConfig(opts options) (*config.AppConfig, error) {
	var cfg *config.AppConfig
	var err error
	if opts.configPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(opts.configPath)
	}
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if opts.catalog != "" {
		cfg.Catalog.Path = opts.catalog
	}
	if opts.metric != "" {
		cfg.Index.Metric = opts.metric
	}
	if opts.k > 0 {
		cfg.Recommend.TopK = opts.k
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
