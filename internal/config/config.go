package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// CatalogConfig locates the catalog CSV and names its columns.
type CatalogConfig struct {
	Path              string `yaml:"path"`
	TitleColumn       string `yaml:"title_column" validate:"required"`
	DescriptionColumn string `yaml:"description_column" validate:"required"`
}

// IndexConfig selects the similarity metric.
type IndexConfig struct {
	Metric string `yaml:"metric" validate:"oneof=cosine euclidean"`
}

// RecommendConfig holds query defaults.
type RecommendConfig struct {
	TopK int `yaml:"top_k" validate:"gt=0"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `yaml:"format" validate:"omitempty,oneof=json console"`
}

// StoreConfig configures the snapshot store. An empty path disables it.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Index     IndexConfig     `yaml:"index"`
	Recommend RecommendConfig `yaml:"recommend"`
	Log       LogConfig       `yaml:"log"`
	Store     StoreConfig     `yaml:"store"`
	Server    ServerConfig    `yaml:"server"`
}

// envOverrides are read from the process environment after the file.
// Empty or zero values leave the file setting alone.
type envOverrides struct {
	CatalogPath       string `env:"RECSYS_CATALOG_PATH"`
	TitleColumn       string `env:"RECSYS_TITLE_COLUMN"`
	DescriptionColumn string `env:"RECSYS_DESCRIPTION_COLUMN"`
	Metric            string `env:"RECSYS_METRIC"`
	TopK              int    `env:"RECSYS_TOP_K"`
	LogLevel          string `env:"RECSYS_LOG_LEVEL"`
	LogFormat         string `env:"RECSYS_LOG_FORMAT"`
	StorePath         string `env:"RECSYS_STORE_PATH"`
	ServerAddr        string `env:"RECSYS_SERVER_ADDR"`
}

var validate = validator.New()

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/recsys/config.yaml.
// If neither exists, it writes defaults to ~/.config/recsys/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overlays RECSYS_* environment variables onto cfg.
func ApplyEnv(cfg *AppConfig) error {
	var o envOverrides
	if _, err := env.UnmarshalFromEnviron(&o); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	setString(&cfg.Catalog.Path, o.CatalogPath)
	setString(&cfg.Catalog.TitleColumn, o.TitleColumn)
	setString(&cfg.Catalog.DescriptionColumn, o.DescriptionColumn)
	setString(&cfg.Index.Metric, o.Metric)
	setString(&cfg.Log.Level, o.LogLevel)
	setString(&cfg.Log.Format, o.LogFormat)
	setString(&cfg.Store.Path, o.StorePath)
	setString(&cfg.Server.Addr, o.ServerAddr)
	if o.TopK != 0 {
		cfg.Recommend.TopK = o.TopK
	}
	return nil
}

// Validate checks field constraints.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "recsys", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Catalog:   CatalogConfig{Path: "netflix_titles.csv", TitleColumn: "Title", DescriptionColumn: "Description"},
		Index:     IndexConfig{Metric: "cosine"},
		Recommend: RecommendConfig{TopK: 10},
		Log:       LogConfig{Level: "info", Format: "console"},
		Server:    ServerConfig{Addr: ":8080"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	d := defaultConfig()
	if cfg.Catalog.TitleColumn == "" {
		cfg.Catalog.TitleColumn = d.Catalog.TitleColumn
	}
	if cfg.Catalog.DescriptionColumn == "" {
		cfg.Catalog.DescriptionColumn = d.Catalog.DescriptionColumn
	}
	if cfg.Index.Metric == "" {
		cfg.Index.Metric = d.Index.Metric
	}
	if cfg.Recommend.TopK == 0 {
		cfg.Recommend.TopK = d.Recommend.TopK
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = d.Log.Format
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = d.Server.Addr
	}
}
