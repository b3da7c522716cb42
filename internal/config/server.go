package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	// Empty DSN runs the server without persistence: no journal, no
	// snapshots, rooms live and die with the process.
	PostgresDSN string `env:"POSTGRES_DSN"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	SnapshotInterval time.Duration `env:"SNAPSHOT_INTERVAL" envDefault:"5s"`
	SnapshotRetry    time.Duration `env:"SNAPSHOT_RETRY" envDefault:"1s"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
