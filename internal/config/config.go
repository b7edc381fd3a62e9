package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/zeusync/composer/internal/core/observability/log"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "COMPOSER_"

var ErrInvalidConfig = errors.New("invalid config")

// Config holds composer configuration
type Config struct {
	Log       Log       `yaml:"log" envPrefix:"LOG_"`
	Templates Templates `yaml:"templates" envPrefix:"TEMPLATES_"`
	Bus       Bus       `yaml:"bus" envPrefix:"BUS_"`
}

type Log struct {
	Level    string `yaml:"level" env:"LEVEL"`
	Encoding string `yaml:"encoding" env:"ENCODING"`
}

type Templates struct {
	// Paths are loaded before any path given on the command line.
	Paths []string `yaml:"paths" env:"PATHS" envSeparator:","`
	// Parallel parses template files concurrently.
	Parallel bool `yaml:"parallel" env:"PARALLEL"`
}

type Bus struct {
	// Observed enables bus metrics collection.
	Observed bool `yaml:"observed" env:"OBSERVED"`
}

// Default returns default configuration
func Default() Config {
	return Config{
		Log: Log{
			Level:    log.LevelInfo.String(),
			Encoding: "console",
		},
		Templates: Templates{
			Parallel: true,
		},
	}
}

// Load reads path (when not empty) over the defaults, then applies
// COMPOSER_* environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Encoding {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log encoding %q", c.Log.Encoding))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// LoggerConfig converts the log section for log.NewWithConfig.
func (c Config) LoggerConfig() log.Config {
	level, _ := log.ParseLevel(c.Log.Level)
	return log.Config{Level: level, Encoding: c.Log.Encoding}
}

// Workers is the file parsing bound for the template library.
func (c Config) Workers() int {
	if c.Templates.Parallel {
		return 0
	}
	return 1
}
