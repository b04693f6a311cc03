// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv for optional .env files and
// github.com/caarlos0/env/v11 for struct-tag based parsing. Each configuration
// type is parsed at most once per process; Reset drops the cache so tests can
// reload after changing the environment.
//
// # Usage
//
//	type StripeConfig struct {
//		SecretKey     string `env:"STRIPE_SECRET_KEY,required"`
//		WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`
//	}
//
//	cfg, err := config.Load[StripeConfig]()
//	if err != nil {
//		return err
//	}
//
// Sub-configurations that are only needed by an optional backend (for example
// Postgres or Redis) should be loaded lazily so their required fields do not
// block startup when the backend is disabled.
//
// # Errors
//
//   - ErrParsingConfig: env.Parse failed (missing required value, bad format).
//   - ErrLoadingEnvFile: an explicitly requested .env file could not be read.
package config
