// Package config loads and validates EngineConfig from TOML/YAML files with
// environment variable overrides, and watches a file for hot-reload.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/golobby/cast"
	"gopkg.in/yaml.v3"
)

// EngineConfig holds the engine's runtime-tunable knobs. Struct tags follow
// this repository's established convention: toml/yaml for file decoding,
// json for serialization, env for the environment-variable override name.
type EngineConfig struct {
	// MaxConcurrentExecutions bounds how many dispatch tasks may run at
	// once. Must be positive.
	MaxConcurrentExecutions int `json:"max_concurrent_executions" toml:"max_concurrent_executions" yaml:"max_concurrent_executions" env:"TRIGGER_MAX_CONCURRENT_EXECUTIONS"`

	// MaxListeners bounds how many diagnostic observers may be registered.
	MaxListeners int `json:"max_listeners" toml:"max_listeners" yaml:"max_listeners" env:"TRIGGER_MAX_LISTENERS"`

	// IDPrefix optionally prefixes auto-generated trigger ids; empty means
	// "use the event type" (the registry's default behavior).
	IDPrefix string `json:"id_prefix" toml:"id_prefix" yaml:"id_prefix" env:"TRIGGER_ID_PREFIX"`
}

// DefaultEngineConfig returns the engine's zero-config defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxConcurrentExecutions: 10,
		MaxListeners:            100,
	}
}

// Validate enforces the invariants NewEngine relies on.
func (c EngineConfig) Validate() error {
	if c.MaxConcurrentExecutions < 1 {
		return fmt.Errorf("config: max_concurrent_executions must be positive, got %d", c.MaxConcurrentExecutions)
	}
	if c.MaxListeners < 0 {
		return fmt.Errorf("config: max_listeners must not be negative, got %d", c.MaxListeners)
	}
	return nil
}

// Load reads an EngineConfig from a TOML or YAML file (selected by
// extension), starting from DefaultEngineConfig so a partial file only
// overrides the fields it sets, then applies environment variable overrides,
// then validates the result.
func Load(path string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return EngineConfig{}, err
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return EngineConfig{}, err
	}

	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *EngineConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("config: decoding toml %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("config: decoding yaml %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config: unsupported extension for %s (want .toml, .yaml, or .yml)", path)
	}
	return nil
}

// applyEnvOverrides reads the env vars named by each field's `env` tag and,
// when set, casts and applies them over the decoded file values using
// golobby/cast so overrides tolerate string-typed environment input.
func applyEnvOverrides(cfg *EngineConfig) error {
	intField := reflect.TypeOf(0)

	if v, ok := os.LookupEnv("TRIGGER_MAX_CONCURRENT_EXECUTIONS"); ok {
		n, err := cast.FromType(v, intField)
		if err != nil {
			return fmt.Errorf("config: TRIGGER_MAX_CONCURRENT_EXECUTIONS: %w", err)
		}
		cfg.MaxConcurrentExecutions = n.(int)
	}
	if v, ok := os.LookupEnv("TRIGGER_MAX_LISTENERS"); ok {
		n, err := cast.FromType(v, intField)
		if err != nil {
			return fmt.Errorf("config: TRIGGER_MAX_LISTENERS: %w", err)
		}
		cfg.MaxListeners = n.(int)
	}
	if v, ok := os.LookupEnv("TRIGGER_ID_PREFIX"); ok {
		cfg.IDPrefix = v
	}
	return nil
}
