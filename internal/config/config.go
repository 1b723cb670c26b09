// Package config resolves runtime settings for the advisor binaries.
//
// Precedence, lowest first: built-in defaults, the YAML file named by
// -config or ADVISOR_CONFIG, environment variables (a .env file in the
// working directory is loaded without overriding the real environment),
// then command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"auction-advisor/internal/domain"
)

// Dataset source kinds.
const (
	SourceCSV        = "csv"
	SourcePostgres   = "postgres"
	SourceClickHouse = "clickhouse"
	SourceSQLite     = "sqlite"
	SourceFixtures   = "fixtures"
)

// Defaults.
const (
	DefaultAddr         = ":8080"
	DefaultDataPath     = "final_predictions_clean_with_corrected_mileage.csv"
	DefaultModelURI     = "xgb_price_model_best"
	DefaultTable        = "auction_listings"
	DefaultModelTimeout = 10 * time.Second
	DefaultModelRetries = 3
)

// DatasetConfig selects where training statistics come from.
type DatasetConfig struct {
	Source        string `yaml:"source"`
	Path          string `yaml:"path"`
	Table         string `yaml:"table"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickHouseDSN string `yaml:"clickhouse_dsn"`
	SQLitePath    string `yaml:"sqlite_path"`
}

// ModelConfig selects and tunes the predictor.
type ModelConfig struct {
	URI        string        `yaml:"uri"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// LogConfig controls the root logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Config is the resolved configuration.
type Config struct {
	Addr    string               `yaml:"addr"`
	Dataset DatasetConfig        `yaml:"dataset"`
	Model   ModelConfig          `yaml:"model"`
	Timing  domain.AuctionTiming `yaml:"timing"`
	Log     LogConfig            `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr: DefaultAddr,
		Dataset: DatasetConfig{
			Source: SourceCSV,
			Path:   DefaultDataPath,
			Table:  DefaultTable,
		},
		Model: ModelConfig{
			URI:        DefaultModelURI,
			Timeout:    DefaultModelTimeout,
			MaxRetries: DefaultModelRetries,
		},
		Timing: domain.DefaultAuctionTiming,
		Log:    LogConfig{Level: "info"},
	}
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto cfg.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	str("ADVISOR_ADDR", &cfg.Addr)
	str("DATASET_SOURCE", &cfg.Dataset.Source)
	str("DATA_PATH", &cfg.Dataset.Path)
	str("DATASET_TABLE", &cfg.Dataset.Table)
	str("POSTGRES_DSN", &cfg.Dataset.PostgresDSN)
	str("CLICKHOUSE_DSN", &cfg.Dataset.ClickHouseDSN)
	str("SQLITE_PATH", &cfg.Dataset.SQLitePath)
	str("MODEL_URI", &cfg.Model.URI)
	str("LOG_LEVEL", &cfg.Log.Level)

	if v := getenv("MODEL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MODEL_TIMEOUT: %w", err)
		}
		cfg.Model.Timeout = d
	}
	if v := getenv("MODEL_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MODEL_MAX_RETRIES: %w", err)
		}
		cfg.Model.MaxRetries = n
	}
	if v := getenv("LOG_DEVELOPMENT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_DEVELOPMENT: %w", err)
		}
		cfg.Log.Development = b
	}
	return nil
}

// RegisterFlags binds cfg's fields to flags using their current values as
// flag defaults. The -config flag is registered so it shows in usage; its
// value is read before parsing by Load.
func RegisterFlags(flags *flag.FlagSet, cfg *Config) {
	flags.String("config", "", "YAML configuration file (env ADVISOR_CONFIG)")
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flags.StringVar(&cfg.Dataset.Source, "dataset-source", cfg.Dataset.Source, "Dataset source: csv, postgres, clickhouse, sqlite, fixtures")
	flags.StringVar(&cfg.Dataset.Path, "data", cfg.Dataset.Path, "Training dataset CSV path")
	flags.StringVar(&cfg.Dataset.Table, "table", cfg.Dataset.Table, "Dataset table for database sources")
	flags.StringVar(&cfg.Dataset.PostgresDSN, "postgres-dsn", cfg.Dataset.PostgresDSN, "PostgreSQL connection string")
	flags.StringVar(&cfg.Dataset.ClickHouseDSN, "clickhouse-dsn", cfg.Dataset.ClickHouseDSN, "ClickHouse connection string")
	flags.StringVar(&cfg.Dataset.SQLitePath, "sqlite-path", cfg.Dataset.SQLitePath, "SQLite database file")
	flags.StringVar(&cfg.Model.URI, "model", cfg.Model.URI, "Model URI: scoring server URL, MLflow model directory, or XGBoost JSON file")
	flags.DurationVar(&cfg.Model.Timeout, "model-timeout", cfg.Model.Timeout, "Scoring server request timeout")
	flags.IntVar(&cfg.Model.MaxRetries, "model-retries", cfg.Model.MaxRetries, "Scoring server retries")
	flags.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level: debug, info, warn, error")
	flags.BoolVar(&cfg.Log.Development, "log-dev", cfg.Log.Development, "Human-readable development logs")
}

// Load resolves the configuration for a binary. Callers register their own
// flags on flags first.
func Load(flags *flag.FlagSet, args []string) (Config, error) {
	if err := LoadEnvFile(".env"); err != nil {
		return Config{}, err
	}

	cfg := Default()
	path := configPath(args)
	if path == "" {
		path = os.Getenv("ADVISOR_CONFIG")
	}
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnv(&cfg, os.Getenv); err != nil {
		return Config{}, err
	}

	RegisterFlags(flags, &cfg)
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected dataset source has what it needs.
func (c Config) Validate() error {
	switch c.Dataset.Source {
	case SourceCSV:
		if c.Dataset.Path == "" {
			return errors.New("--data is required for the csv source")
		}
	case SourcePostgres:
		if c.Dataset.PostgresDSN == "" {
			return errors.New("--postgres-dsn is required for the postgres source")
		}
	case SourceClickHouse:
		if c.Dataset.ClickHouseDSN == "" {
			return errors.New("--clickhouse-dsn is required for the clickhouse source")
		}
	case SourceSQLite:
		if c.Dataset.SQLitePath == "" {
			return errors.New("--sqlite-path is required for the sqlite source")
		}
	case SourceFixtures:
	default:
		return fmt.Errorf("unknown dataset source %q", c.Dataset.Source)
	}
	if c.Dataset.Source != SourceCSV && c.Dataset.Source != SourceFixtures && c.Dataset.Table == "" {
		return errors.New("--table is required for database sources")
	}
	if c.Dataset.Source != SourceFixtures && c.Model.URI == "" {
		return errors.New("--model is required")
	}
	if c.Model.MaxRetries < 0 {
		return fmt.Errorf("model retries must be >= 0, got %d", c.Model.MaxRetries)
	}
	return nil
}

// configPath finds -config/--config in args without parsing other flags.
func configPath(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// LoadEnvFile loads environment variables from path if it exists.
// Existing variables are never overridden.
func LoadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if _, set := os.LookupEnv(key); !set {
			os.Setenv(key, value)
		}
	}
	return nil
}
