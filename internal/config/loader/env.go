package loader

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// LoadEnv overlays environment variables onto v. Fields are matched by their
// `env` tags, prefixed with prefix (e.g. "DRAWSTORM_"). Unset variables
// leave fields untouched.
func LoadEnv(prefix string, v any) error {
	return loadEnv(env.Options{Prefix: prefix}, v)
}

// LoadEnvFrom is LoadEnv reading from environ instead of the process
// environment.
func LoadEnvFrom(environ map[string]string, prefix string, v any) error {
	return loadEnv(env.Options{Prefix: prefix, Environment: environ}, v)
}

func loadEnv(opts env.Options, v any) error {
	if err := env.ParseWithOptions(v, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
