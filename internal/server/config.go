package server

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the sonicwaved service configuration, read from the
// environment.
type Config struct {
	Addr             string        `env:"SONICWAVE_ADDR" envDefault:":8080"`
	GeminiAPIKey     string        `env:"SONICWAVE_GEMINI_API_KEY"`
	GeminiBaseURL    string        `env:"SONICWAVE_GEMINI_BASE_URL"`
	DirectoryBaseURL string        `env:"SONICWAVE_DIRECTORY_BASE_URL"`
	UpstreamTimeout  time.Duration `env:"SONICWAVE_UPSTREAM_TIMEOUT" envDefault:"25s"`
}

// LoadConfig parses the service configuration from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
