package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type TestConfig struct {
	TestPostgresDSN string `env:"TEST_POSTGRES_DSN"`
}

// LoadTest errors when no test database is configured so DB-backed tests
// can skip cleanly.
func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	if err := env.Parse(&cfg); err != nil {
		return TestConfig{}, err
	}
	if cfg.TestPostgresDSN == "" {
		return TestConfig{}, errors.New("TEST_POSTGRES_DSN not set")
	}
	return cfg, nil
}
