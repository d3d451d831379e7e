// Package config loads the optional YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/mabhi256/migration-analyzer/internal/bytecode"
)

// DefaultPath is read from the working directory when no --config is given.
const DefaultPath = ".migration-analysis.yaml"

type Config struct {
	OutputType  string   `yaml:"output_type"`
	OutputPath  string   `yaml:"output_path"`
	Exclude     []string `yaml:"exclude"`
	Concurrency int      `yaml:"concurrency"`
	FailFast    bool     `yaml:"fail_fast"`
	LogLevel    string   `yaml:"log_level"`
	MetricsFile string   `yaml:"metrics_file"`
	Rules       Rules    `yaml:"rules"`
}

// Rules configures the bytecode rules. Lists given in the file replace
// the defaults rather than extending them.
type Rules struct {
	APIPackages    []string `yaml:"api_packages"`
	DeprecatedAPIs []string `yaml:"deprecated_apis"`
}

func (r Rules) RuleConfig() bytecode.RuleConfig {
	return bytecode.RuleConfig{
		APIPackages:    r.APIPackages,
		DeprecatedAPIs: r.DeprecatedAPIs,
	}
}

func Default() Config {
	return Config{
		OutputType:  "text",
		Concurrency: runtime.NumCPU(),
		LogLevel:    "warn",
		Rules: Rules{
			APIPackages:    bytecode.DefaultAPIPackages,
			DeprecatedAPIs: bytecode.DefaultDeprecatedAPIs,
		},
	}
}

// Load reads path over the defaults. An empty path reads DefaultPath if it
// exists; a path that was asked for must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config file '%s': %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0, got %d", c.Concurrency)
	}
	if c.OutputType == "" {
		return errors.New("output_type must not be empty")
	}
	return nil
}
