package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nextweekend/nextweekend/pkg/config"
	"github.com/nextweekend/nextweekend/pkg/logger"
	"github.com/nextweekend/nextweekend/pkg/requestid"
)

func newRootCmd() *cobra.Command {
	var envFiles []string

	cmd := &cobra.Command{
		Use:           "nextweekend",
		Short:         "NextWeekend subscription and recommendations service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnv(envFiles...)
		},
	}
	cmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "load variables from these .env files (default ./.env if present)")

	cmd.AddCommand(newServeCmd(), newMigrateCmd(), newTokenCmd())
	return cmd
}

// baseConfig is shared by every subcommand.
type baseConfig struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Service string `env:"SERVICE_NAME" envDefault:"nextweekend"`
	Version string `env:"APP_VERSION" envDefault:"dev"`
}

func newLogger(cfg baseConfig) *slog.Logger {
	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.Service),
		logger.WithAttr(slog.String("version", cfg.Version)),
		logger.WithContextExtractors(logger.RequestIDExtractor(requestid.FromContext)),
	)
	logger.SetAsDefault(log)
	return log
}
