// Package config loads the counter demo configuration.
// Values are layered: defaults -> optional YAML file -> SIMPLESTATE_ env vars.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "SIMPLESTATE_"

// Config holds all demo settings
type Config struct {
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Counter   CounterConfig   `koanf:"counter"`
}

// LogConfig holds structured logging settings
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig selects whether spans and metrics are written to stdout
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

// CounterConfig drives the demo store
type CounterConfig struct {
	Initial    int        `koanf:"initial"`
	Max        int        `koanf:"max"`
	Increments int        `koanf:"increments"`
	Rate       RateConfig `koanf:"rate"`
}

// RateConfig is a token bucket for the rate limiting middleware.
// A zero PerSecond disables rate limiting.
type RateConfig struct {
	PerSecond float64 `koanf:"per_second"`
	Burst     int     `koanf:"burst"`
}

// Option configures Load
type Option func(*loadOptions)

type loadOptions struct {
	path string
}

// WithFile loads path on top of the defaults. A missing file is an error.
func WithFile(path string) Option {
	return func(o *loadOptions) {
		o.path = path
	}
}

func defaults() map[string]any {
	return map[string]any{
		"log.level":  "info",
		"log.format": "text",

		"telemetry.enabled":      false,
		"telemetry.service_name": "simplestate-counter",

		"counter.initial":         0,
		"counter.max":             10,
		"counter.increments":      3,
		"counter.rate.per_second": 0.0,
		"counter.rate.burst":      1,
	}
}

// Load reads the configuration and validates it
func Load(opts ...Option) (*Config, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	k := koanf.New(".")

	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	if o.path != "" {
		if _, err := os.Stat(o.path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", o.path, err)
		}
		if err := k.Load(file.Provider(o.path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", o.path, err)
		}
	}

	// Map env names back onto known keys so that underscores inside a key
	// (per_second) are not mistaken for nesting.
	lookup := make(map[string]string)
	for _, key := range k.Keys() {
		lookup[strings.ReplaceAll(key, ".", "_")] = key
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			if known, ok := lookup[key]; ok {
				return known, value
			}
			return strings.ReplaceAll(key, "_", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// Validate checks all values and returns every problem found
func (c *Config) Validate() error {
	var errs []error

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text; got %q", c.Log.Format))
	}

	if c.Telemetry.Enabled && c.Telemetry.ServiceName == "" {
		errs = append(errs, errors.New("telemetry.service_name must not be empty when telemetry is enabled"))
	}

	if c.Counter.Max < c.Counter.Initial {
		errs = append(errs, fmt.Errorf("counter.max (%d) must be >= counter.initial (%d)", c.Counter.Max, c.Counter.Initial))
	}
	if c.Counter.Increments < 0 {
		errs = append(errs, fmt.Errorf("counter.increments must be >= 0, got %d", c.Counter.Increments))
	}
	if c.Counter.Rate.PerSecond < 0 {
		errs = append(errs, fmt.Errorf("counter.rate.per_second must be >= 0, got %f", c.Counter.Rate.PerSecond))
	}
	if c.Counter.Rate.PerSecond > 0 && c.Counter.Rate.Burst < 1 {
		errs = append(errs, fmt.Errorf("counter.rate.burst must be >= 1, got %d", c.Counter.Rate.Burst))
	}

	return errors.Join(errs...)
}
