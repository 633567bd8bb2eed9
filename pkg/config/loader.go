package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct using `env`
// tags. Defaults come from `envDefault`; list values split on the tag's
// `envSeparator`.
//
// Example:
//
//	type Config struct {
//	    HTTPPort     int           `env:"HTTP_PORT" envDefault:"8080"`
//	    SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"168h"`
//	    KafkaBrokers []string      `env:"KAFKA_BROKERS" envSeparator:","`
//	}
//
// Validation beyond parsing (port ranges, secret policies) belongs to the
// caller; Load only maps the environment onto the struct.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
