package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// ServerConfig is read from the environment by the validation service.
type ServerConfig struct {
	HTTPAddr         string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath           string     `env:"DB_PATH" envDefault:"data/typerank.db"`
	LogLevel         slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	ClientSkewMs     int        `env:"CLIENT_SKEW_MS" envDefault:"10000"`
	LeaderboardLimit int        `env:"LEADERBOARD_LIMIT" envDefault:"100"`
}

// LoadServer parses the server configuration from the environment.
func LoadServer() (*ServerConfig, error) {
	cfg, err := env.ParseAs[ServerConfig]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.ClientSkewMs <= 0 {
		return nil, fmt.Errorf("CLIENT_SKEW_MS must be > 0")
	}
	if cfg.LeaderboardLimit <= 0 {
		return nil, fmt.Errorf("LEADERBOARD_LIMIT must be > 0")
	}
	return &cfg, nil
}
