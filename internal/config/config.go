// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hanpama/typegraph/internal/check"
	"github.com/hanpama/typegraph/internal/consistency"
	"github.com/hanpama/typegraph/internal/engine"
	"github.com/hanpama/typegraph/internal/strategy"
)

// Config is the root configuration structure.
type Config struct {
	Strategy    StrategyConfig  `yaml:"strategy"`
	CheckMode   string          `yaml:"check_mode"`  // "strict" or "permissive"
	Environment string          `yaml:"environment"` // "development" or "production"
	Thorough    bool            `yaml:"thorough"`
	Schema      SchemaConfig    `yaml:"schema"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
	Logging     LoggingConfig   `yaml:"logging"`
}

// StrategyConfig selects the enabled resolution strategies. The three
// strategy keys are pointers because presence matters: supplying any one of
// them replaces the whole strategy selection instead of merging with the
// defaults.
type StrategyConfig struct {
	ResolveType   *bool `yaml:"resolve_type,omitempty"`
	IsTypeOf      *bool `yaml:"is_type_of,omitempty"`
	TypenameField *bool `yaml:"typename_field,omitempty"`
	RuntimeChecks *bool `yaml:"runtime_checks,omitempty"`
}

// SchemaConfig locates the SDL sources.
type SchemaConfig struct {
	Dir string `yaml:"dir"`
}

// TelemetryConfig configures tracing and metrics endpoints.
type TelemetryConfig struct {
	OTELEndpoint string `yaml:"otel_endpoint,omitempty"`
	MetricsAddr  string `yaml:"metrics_addr,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	return &cfg
}

// StrategyOptions converts the file representation into strategy options.
// Only keys present in the file are forwarded, preserving the
// replace-not-merge semantics of strategy.Configure.
func (c *Config) StrategyOptions() []strategy.Option {
	var opts []strategy.Option
	if c.Strategy.ResolveType != nil {
		opts = append(opts, strategy.WithResolveType(*c.Strategy.ResolveType))
	}
	if c.Strategy.IsTypeOf != nil {
		opts = append(opts, strategy.WithIsTypeOf(*c.Strategy.IsTypeOf))
	}
	if c.Strategy.TypenameField != nil {
		opts = append(opts, strategy.WithTypenameField(*c.Strategy.TypenameField))
	}
	if c.Strategy.RuntimeChecks != nil {
		opts = append(opts, strategy.WithRuntimeChecks(*c.Strategy.RuntimeChecks))
	}
	return opts
}

// EngineOptions converts the configuration into engine build options.
func (c *Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithStrategy(strategy.Configure(c.StrategyOptions()...)),
		engine.WithCheckMode(checkModes[c.CheckMode]),
		engine.WithEnvironment(environments[c.Environment]),
		engine.WithThorough(c.Thorough),
	}
}

var checkModes = map[string]check.Mode{
	"strict":     check.ModeStrict,
	"permissive": check.ModePermissive,
}

var environments = map[string]consistency.Environment{
	"development": consistency.EnvDevelopment,
	"production":  consistency.EnvProduction,
}

func setDefaults(cfg *Config) {
	if cfg.CheckMode == "" {
		cfg.CheckMode = "strict"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validate(cfg *Config) error {
	if _, ok := checkModes[cfg.CheckMode]; !ok {
		return strategy.Errorf("check_mode must be 'strict' or 'permissive', got %q", cfg.CheckMode)
	}
	if _, ok := environments[cfg.Environment]; !ok {
		return strategy.Errorf("environment must be 'development' or 'production', got %q", cfg.Environment)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return strategy.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}
	return nil
}
