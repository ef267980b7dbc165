package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := "catalog:\n  path: movies.csv\n  description_column: Overview\nindex:\n  metric: euclidean\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "movies.csv", cfg.Catalog.Path)
	assert.Equal(t, "Title", cfg.Catalog.TitleColumn)
	assert.Equal(t, "Overview", cfg.Catalog.DescriptionColumn)
	assert.Equal(t, "euclidean", cfg.Index.Metric)
	assert.Equal(t, 10, cfg.Recommend.TopK)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	require.NoError(t, cfg.Validate())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog: [\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Store.Path = "/var/lib/recsys"
	cfg.Recommend.TopK = 5
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("RECSYS_METRIC", "euclidean")
	t.Setenv("RECSYS_TOP_K", "3")
	t.Setenv("RECSYS_STORE_PATH", "/tmp/snapshots")

	cfg := defaultConfig()
	require.NoError(t, ApplyEnv(cfg))
	assert.Equal(t, "euclidean", cfg.Index.Metric)
	assert.Equal(t, 3, cfg.Recommend.TopK)
	assert.Equal(t, "/tmp/snapshots", cfg.Store.Path)
	assert.Equal(t, "Title", cfg.Catalog.TitleColumn)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"unknown metric", func(c *AppConfig) { c.Index.Metric = "manhattan" }},
		{"zero top_k", func(c *AppConfig) { c.Recommend.TopK = 0 }},
		{"negative top_k", func(c *AppConfig) { c.Recommend.TopK = -1 }},
		{"empty title column", func(c *AppConfig) { c.Catalog.TitleColumn = "" }},
		{"bad log format", func(c *AppConfig) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
