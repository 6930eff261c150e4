package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Matching MatchingConfig `yaml:"matching" mapstructure:"matching"`
	Extract  ExtractConfig  `yaml:"extract" mapstructure:"extract"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// PathsConfig names every file the engine touches. The engine never reads
// global constants; all paths are injected from here.
type PathsConfig struct {
	Catalog      string `yaml:"catalog" mapstructure:"catalog"`
	Offers       string `yaml:"offers" mapstructure:"offers"`
	LearnedStore string `yaml:"learned_store" mapstructure:"learned_store"`
	Input        string `yaml:"input" mapstructure:"input"`
	OutputDir    string `yaml:"output_dir" mapstructure:"output_dir"`
}

// StoreConfig configures the learned-mapping store backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // "file" or "sqlite"
}

// MatchingConfig holds the resolver tunables.
type MatchingConfig struct {
	FXRate              float64 `yaml:"fx_rate" mapstructure:"fx_rate"`
	FuzzyThreshold      float64 `yaml:"fuzzy_threshold" mapstructure:"fuzzy_threshold"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	RoundAbove          float64 `yaml:"round_above" mapstructure:"round_above"`
	BulkQuantity        int     `yaml:"bulk_quantity" mapstructure:"bulk_quantity"`
}

// ExtractConfig configures price and context detection.
type ExtractConfig struct {
	Currency       string `yaml:"currency" mapstructure:"currency"`
	CurrencyAbbrev string `yaml:"currency_abbrev" mapstructure:"currency_abbrev"`
	TargetCurrency string `yaml:"target_currency" mapstructure:"target_currency"`
	NameWindow     int    `yaml:"name_window" mapstructure:"name_window"`
	VintageWindow  int    `yaml:"vintage_window" mapstructure:"vintage_window"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("WINEMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "file")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("paths.catalog", "Stock Lines.xlsx")
	v.SetDefault("paths.offers", "OMT Main Offer List.xlsx")
	v.SetDefault("paths.learned_store", "wine_names_learning_db.txt")
	v.SetDefault("paths.input", "Multi.txt")
	v.SetDefault("paths.output_dir", "Outputs")
	v.SetDefault("matching.fx_rate", 1.08)
	v.SetDefault("matching.fuzzy_threshold", 1.0)
	v.SetDefault("matching.similarity_threshold", 0.5)
	v.SetDefault("matching.round_above", 300)
	v.SetDefault("matching.bulk_quantity", 36)
	v.SetDefault("extract.currency", "CHF")
	v.SetDefault("extract.currency_abbrev", "CH")
	v.SetDefault("extract.target_currency", "EUR")
	v.SetDefault("extract.name_window", 400)
	v.SetDefault("extract.vintage_window", 600)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the loaded configuration for values the engine cannot
// run with. All problems are reported at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Store.Driver != "file" && c.Store.Driver != "sqlite" {
		problems = append(problems, fmt.Sprintf("store.driver must be file or sqlite, got %q", c.Store.Driver))
	}
	if c.Paths.Catalog == "" {
		problems = append(problems, "paths.catalog is required")
	}
	if c.Paths.Offers == "" {
		problems = append(problems, "paths.offers is required")
	}
	if c.Paths.LearnedStore == "" {
		problems = append(problems, "paths.learned_store is required")
	}
	if c.Paths.OutputDir == "" {
		problems = append(problems, "paths.output_dir is required")
	}
	if c.Matching.FXRate <= 0 {
		problems = append(problems, "matching.fx_rate must be > 0")
	}
	if c.Matching.SimilarityThreshold < 0 || c.Matching.SimilarityThreshold > 1 {
		problems = append(problems, "matching.similarity_threshold must be between 0 and 1")
	}
	if c.Matching.FuzzyThreshold < 0 {
		problems = append(problems, "matching.fuzzy_threshold must be >= 0")
	}
	if c.Matching.BulkQuantity < 0 {
		problems = append(problems, "matching.bulk_quantity must be >= 0")
	}
	if c.Extract.Currency == "" || c.Extract.TargetCurrency == "" {
		problems = append(problems, "extract.currency and extract.target_currency are required")
	}
	if c.Extract.NameWindow <= 0 || c.Extract.VintageWindow <= 0 {
		problems = append(problems, "extract windows must be > 0")
	}

	if len(problems) > 0 {
		return eris.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
