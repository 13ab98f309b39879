package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into a struct tagged with `env` tags.
// All service configuration arrives this way; see internal/config for the
// full set of variables.
//
// Example:
//
//	type Config struct {
//	    Port     int    `env:"HTTP_PORT" envDefault:"8080"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
