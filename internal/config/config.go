// Package config loads the gomassing application configuration: a YAML
// file, then GOMASSING_* environment overrides, then command line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/philipparndt/gomassing/internal/logging"
	"github.com/philipparndt/gomassing/pkg/analysis"
	"github.com/philipparndt/gomassing/pkg/parser"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no config file is given, if it exists
const DefaultPath = "gomassing.yaml"

// EnvPrefix prefixes every environment override
const EnvPrefix = "GOMASSING_"

// Limits mirrors parser.Limits in the config file
type Limits struct {
	MaxBytes     int64 `yaml:"max_bytes"`
	MaxDepth     int   `yaml:"max_depth"`
	MaxNodes     int   `yaml:"max_nodes"`
	MaxTriangles int   `yaml:"max_triangles"`
}

// Analysis configures the geometry analyzer
type Analysis struct {
	Workers           int  `yaml:"workers"`
	ParallelThreshold int  `yaml:"parallel_threshold"`
	InferCategories   bool `yaml:"infer_categories"`
}

// Watch configures the watch command
type Watch struct {
	Debounce    time.Duration `yaml:"debounce"`
	MetricsAddr string        `yaml:"metrics_addr"`
}

// Config is the application configuration
type Config struct {
	Logging  logging.Config `yaml:"logging"`
	Factors  string         `yaml:"factors"`
	Limits   Limits         `yaml:"limits"`
	Analysis Analysis       `yaml:"analysis"`
	Watch    Watch          `yaml:"watch"`
}

// Default returns the configuration used without a config file
func Default() Config {
	l := parser.DefaultLimits()
	return Config{
		Logging: logging.Config{Level: "info", Format: "console"},
		Limits: Limits{
			MaxBytes:     l.MaxBytes,
			MaxDepth:     l.MaxDepth,
			MaxNodes:     l.MaxNodes,
			MaxTriangles: l.MaxTriangles,
		},
		Analysis: Analysis{
			ParallelThreshold: analysis.DefaultParallelThreshold,
			InferCategories:   true,
		},
		Watch: Watch{Debounce: 300 * time.Millisecond},
	}
}

// Load reads the config file at path on top of Default and applies the
// environment. An empty path reads DefaultPath when it exists.
func Load(path string) (Config, error) {
	c := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, &c); err != nil {
			return c, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return c, fmt.Errorf("failed to read config: %w", err)
	}

	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func decode(data []byte, c *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from GOMASSING_* variables found by lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %q is not an integer", EnvPrefix, name, v)
		}
		*dst = n
		return nil
	}

	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)
	str("FACTORS", &c.Factors)
	str("METRICS_ADDR", &c.Watch.MetricsAddr)
	if err := num("WORKERS", &c.Analysis.Workers); err != nil {
		return err
	}
	if err := num("MAX_NODES", &c.Limits.MaxNodes); err != nil {
		return err
	}
	return num("MAX_DEPTH", &c.Limits.MaxDepth)
}

// Validate rejects negative limits and unknown log formats
func (c Config) Validate() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid log format %q, expected console or json", c.Logging.Format)
	}
	for name, v := range map[string]int64{
		"limits.max_bytes":            c.Limits.MaxBytes,
		"limits.max_depth":            int64(c.Limits.MaxDepth),
		"limits.max_nodes":            int64(c.Limits.MaxNodes),
		"limits.max_triangles":        int64(c.Limits.MaxTriangles),
		"analysis.workers":            int64(c.Analysis.Workers),
		"analysis.parallel_threshold": int64(c.Analysis.ParallelThreshold),
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}

// ParserLimits returns the parser limits
func (c Config) ParserLimits() parser.Limits {
	return parser.Limits{
		MaxBytes:     c.Limits.MaxBytes,
		MaxDepth:     c.Limits.MaxDepth,
		MaxNodes:     c.Limits.MaxNodes,
		MaxTriangles: c.Limits.MaxTriangles,
	}
}

// AnalysisOptions returns the analyzer options
func (c Config) AnalysisOptions() []analysis.Option {
	return []analysis.Option{
		analysis.WithWorkers(c.Analysis.Workers),
		analysis.WithParallelThreshold(c.Analysis.ParallelThreshold),
		analysis.WithCategoryInference(c.Analysis.InferCategories),
	}
}
