package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/keyphrase/internal/logger"
	"github.com/cognicore/keyphrase/pkg/keyphrase/internalerr"
	"github.com/cognicore/keyphrase/pkg/keyphrase/rank"
)

// Config is the engine and command configuration
type Config struct {
	Transitions string  `yaml:"transitions" toml:"transitions"`
	Rules       string  `yaml:"rules" toml:"rules"`
	Ranking     Ranking `yaml:"ranking" toml:"ranking"`
	Tagging     Tagging `yaml:"tagging" toml:"tagging"`
	Store       Store   `yaml:"store" toml:"store"`
	Log         Log     `yaml:"log" toml:"log"`
	Server      Server  `yaml:"server" toml:"server"`
}

// Ranking holds keyword weighting parameters
type Ranking struct {
	Threshold float64 `yaml:"threshold" toml:"threshold"`
	Exponent  float64 `yaml:"exponent" toml:"exponent"`
	Top       int     `yaml:"top" toml:"top"` // 0 keeps every keyword
}

// Tagging controls sentence decoding
type Tagging struct {
	Workers int `yaml:"workers" toml:"workers"`
}

// Store selects report persistence
type Store struct {
	Driver string `yaml:"driver" toml:"driver"` // memory | sqlite
	Path   string `yaml:"path" toml:"path"`
}

// Log configures the charm logger
type Log struct {
	Level     string `yaml:"level" toml:"level"`
	Format    string `yaml:"format" toml:"format"` // text | json | logfmt
	Caller    bool   `yaml:"caller" toml:"caller"`
	Timestamp bool   `yaml:"timestamp" toml:"timestamp"`
}

// Server configures kwserve
type Server struct {
	Addr           string   `yaml:"addr" toml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
}

// Default returns the built-in configuration
func Default() Config {
	w := rank.DefaultWeights()
	return Config{
		Ranking: Ranking{Threshold: w.Threshold, Exponent: w.Exponent},
		Tagging: Tagging{Workers: 4},
		Store:   Store{Driver: "memory"},
		Log:     Log{Level: "info", Format: "text", Timestamp: true},
		Server:  Server{Addr: ":8080", AllowedOrigins: []string{"*"}},
	}
}

// Load reads a YAML or TOML file over the defaults, chosen by extension
func Load(path string) (Config, error) {
	cfg := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
		}
	case ".toml":
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if os.IsNotExist(err) {
				return Config{}, err
			}
			return Config{}, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
		}
	default:
		return Config{}, fmt.Errorf("%w: unsupported config format %q", internalerr.ErrInvalidConfig, path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c Config) Validate() error {
	switch {
	case c.Ranking.Threshold < 0:
		return fmt.Errorf("%w: ranking.threshold must be >= 0", internalerr.ErrInvalidConfig)
	case c.Ranking.Exponent < 0:
		return fmt.Errorf("%w: ranking.exponent must be >= 0", internalerr.ErrInvalidConfig)
	case c.Ranking.Top < 0:
		return fmt.Errorf("%w: ranking.top must be >= 0", internalerr.ErrInvalidConfig)
	case c.Tagging.Workers <= 0:
		return fmt.Errorf("%w: tagging.workers must be > 0", internalerr.ErrInvalidConfig)
	}

	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("%w: store.path required for sqlite", internalerr.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store.driver %q", internalerr.ErrInvalidConfig, c.Store.Driver)
	}

	if _, err := formatter(c.Log.Format); err != nil {
		return err
	}
	return nil
}

// Weights returns the ranking parameters
func (c Config) Weights() rank.Weights {
	return rank.Weights{Threshold: c.Ranking.Threshold, Exponent: c.Ranking.Exponent}
}

// Logger builds a logger from the log section
func (c Config) Logger(prefix string) *log.Logger {
	f, err := formatter(c.Log.Format)
	if err != nil {
		f = log.TextFormatter
	}
	return logger.NewWithConfig(prefix, logger.ParseLevel(c.Log.Level), c.Log.Caller, c.Log.Timestamp, f)
}

func formatter(name string) (log.Formatter, error) {
	switch strings.ToLower(name) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	}
	return 0, fmt.Errorf("%w: unknown log.format %q", internalerr.ErrInvalidConfig, name)
}
