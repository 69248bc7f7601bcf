// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Backend names accepted in GEOHUNT_BACKEND.
const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
)

// Schema generation names accepted in GEOHUNT_SCHEMA.
const (
	SchemaV1 = "v1"
	SchemaV2 = "v2"
)

// Config selects the store backend, the root namespace isolating this
// logical database inside the physical store, and the schema generation.
type Config struct {
	Backend   string `env:"GEOHUNT_BACKEND" envDefault:"memory"`
	Root      string `env:"GEOHUNT_ROOT" envDefault:"geohunt"`
	Schema    string `env:"GEOHUNT_SCHEMA" envDefault:"v2"`
	DSN       string `env:"GEOHUNT_DSN"`
	BadgerDir string `env:"GEOHUNT_BADGER_DIR" envDefault:"geohunt.db"`
}

// Load parses and validates configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.Backend {
	case BackendMemory, BackendBadger:
	case BackendPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("backend %s requires GEOHUNT_DSN", cfg.Backend)
		}
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if cfg.Schema != SchemaV1 && cfg.Schema != SchemaV2 {
		return nil, fmt.Errorf("unknown schema generation %q", cfg.Schema)
	}
	return &cfg, nil
}
