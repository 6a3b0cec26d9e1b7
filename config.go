package geobench

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/brunobiangulo/geobench/generator"
)

// Config holds all configuration for a benchmark run.
type Config struct {
	// RelationsDir holds dir, top and dis tables as .csv or .xlsx.
	RelationsDir string `json:"relations_dir" yaml:"relations_dir"`

	// ResultsDir receives binary/ and mcqs/ with per-driver and merged files.
	ResultsDir string `json:"results_dir" yaml:"results_dir"`

	// Seed drives every random draw. Each driver derives its own stream
	// from Seed and its name, so output does not depend on scheduling.
	Seed uint64 `json:"seed" yaml:"seed"`

	// Drivers selects generators by name. Empty means all, in merge order.
	Drivers []string `json:"drivers,omitempty" yaml:"drivers,omitempty"`

	// Sampling
	AtomicQuota     int  `json:"atomic_quota" yaml:"atomic_quota"`         // statements per single-concept token
	TripleQuota     int  `json:"triple_quota" yaml:"triple_quota"`         // statements per three-concept combination
	DistinctOptions bool `json:"distinct_options" yaml:"distinct_options"` // opt-in: never repeat a place among MCQ options

	// Concurrency caps how many drivers run at once. 1 runs them in sequence.
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// DBPath enables SQLite persistence of runs, facts, profiles and rows.
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`

	// XLSXPath enables an XLSX export of every per-driver and merged table.
	XLSXPath string `json:"xlsx_path,omitempty" yaml:"xlsx_path,omitempty"`

	// Logging
	LogLevel  string `json:"log_level" yaml:"log_level"`   // debug, info, warn, error
	LogFormat string `json:"log_format" yaml:"log_format"` // text, json
}

// DefaultConfig returns the settings of the published benchmark.
func DefaultConfig() Config {
	s := generator.DefaultSettings()
	return Config{
		RelationsDir: "geodata/relations",
		ResultsDir:   "geodata/results",
		Seed:         42,
		AtomicQuota:  s.AtomicQuota,
		TripleQuota:  s.TripleQuota,
		Concurrency:  len(generator.Names),
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// LoadConfig overlays the YAML file at path on DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and driver names.
func (c *Config) Validate() error {
	var problems []string
	if c.RelationsDir == "" {
		problems = append(problems, "relations_dir is empty")
	}
	if c.ResultsDir == "" {
		problems = append(problems, "results_dir is empty")
	}
	if c.AtomicQuota < 0 {
		problems = append(problems, "atomic_quota must be >= 0")
	}
	if c.TripleQuota < 0 {
		problems = append(problems, "triple_quota must be >= 0")
	}
	if c.Concurrency < 1 {
		problems = append(problems, "concurrency must be >= 1")
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log_format %q is not text or json", c.LogFormat))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}

	reg := generator.NewRegistry(c.Settings())
	if _, err := reg.Select(c.Drivers); err != nil {
		return err
	}
	return nil
}

// Settings returns the driver settings carried by c.
func (c *Config) Settings() generator.Settings {
	return generator.Settings{
		AtomicQuota:     c.AtomicQuota,
		TripleQuota:     c.TripleQuota,
		DistinctOptions: c.DistinctOptions,
	}
}
