package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spektr-org/solutions/engine"
)

const (
	defaultAddr              = ":8080"
	defaultReadHeaderTimeout = 5 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
	defaultLogLevel          = "info"
	defaultSourceKind        = SourceCSV
	defaultSourcePath        = "data/beneficiaries.csv"
	defaultSourceDriver      = "sqlite"
	defaultSourceTable       = "beneficiaries"
)

// Source kinds.
const (
	SourceCSV = "csv"
	SourceSQL = "sql"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Source     SourceConfig             `yaml:"source"`
	Server     ServerConfig             `yaml:"server"`
	Log        LogConfig                `yaml:"log"`
	Indicators []engine.IndicatorTarget `yaml:"indicators"`
}

// SourceConfig selects where beneficiary records are read from.
type SourceConfig struct {
	Kind   string `yaml:"kind"`   // csv or sql
	Path   string `yaml:"path"`   // csv file
	Driver string `yaml:"driver"` // pgx or sqlite
	DSN    string `yaml:"dsn"`
	Table  string `yaml:"table"`
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Default returns the configuration used when no file or environment is given.
func Default() Config {
	return Config{
		Source: SourceConfig{
			Kind:   defaultSourceKind,
			Path:   defaultSourcePath,
			Driver: defaultSourceDriver,
			Table:  defaultSourceTable,
		},
		Server: ServerConfig{
			Addr:              defaultAddr,
			ReadHeaderTimeout: defaultReadHeaderTimeout,
			ShutdownTimeout:   defaultShutdownTimeout,
		},
		Log:        LogConfig{Level: defaultLogLevel},
		Indicators: append([]engine.IndicatorTarget(nil), engine.DefaultTargets...),
	}
}

// Load reads the optional YAML file at path over the defaults, then applies
// environment overrides and validates the result. A missing file is not an
// error when path is empty.
func Load(path string, opts ...Option) (Config, error) {
	options := loaderOptions{useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("config file %s not found", path)
			}
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		return "", false
	}

	cfg.Server.Addr = stringWithDefault(lookup, "SOLUTIONS_ADDR", cfg.Server.Addr)
	cfg.Source.Kind = stringWithDefault(lookup, "SOLUTIONS_SOURCE_KIND", cfg.Source.Kind)
	cfg.Source.Path = stringWithDefault(lookup, "SOLUTIONS_SOURCE_PATH", cfg.Source.Path)
	cfg.Source.DSN = stringWithDefault(lookup, "SOLUTIONS_SOURCE_DSN", cfg.Source.DSN)
	cfg.Source.Driver = stringWithDefault(lookup, "SOLUTIONS_SOURCE_DRIVER", cfg.Source.Driver)
	cfg.Source.Table = stringWithDefault(lookup, "SOLUTIONS_SOURCE_TABLE", cfg.Source.Table)
	cfg.Log.Level = stringWithDefault(lookup, "LOG_LEVEL", cfg.Log.Level)

	cfg.Source.Kind = strings.ToLower(strings.TrimSpace(cfg.Source.Kind))
	cfg.Source.Driver = strings.ToLower(strings.TrimSpace(cfg.Source.Driver))

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	switch cfg.Source.Kind {
	case SourceCSV:
		if strings.TrimSpace(cfg.Source.Path) == "" {
			missing = append(missing, "Source.Path")
		}
	case SourceSQL:
		if strings.TrimSpace(cfg.Source.DSN) == "" {
			missing = append(missing, "Source.DSN")
		}
		if cfg.Source.Driver != "pgx" && cfg.Source.Driver != "sqlite" {
			missing = append(missing, "Source.Driver")
		}
		if strings.TrimSpace(cfg.Source.Table) == "" {
			missing = append(missing, "Source.Table")
		}
	default:
		missing = append(missing, "Source.Kind")
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		missing = append(missing, "Server.Addr")
	}
	if cfg.Server.ReadHeaderTimeout <= 0 {
		missing = append(missing, "Server.ReadHeaderTimeout")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		missing = append(missing, "Server.ShutdownTimeout")
	}
	for i, t := range cfg.Indicators {
		if strings.TrimSpace(t.Key) == "" || t.Target < 0 {
			missing = append(missing, fmt.Sprintf("Indicators[%d]", i))
		}
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}
