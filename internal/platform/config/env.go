// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every variable the service reads.
const EnvPrefix = "EMOJI_FEEDBACK_"

// ParseEnv loads configuration from prefixed environment variables.
// A field tagged `env:"PORT"` reads EMOJI_FEEDBACK_PORT.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
