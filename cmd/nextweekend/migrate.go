package main

import (
	"context"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/nextweekend/nextweekend/db/migrations"
	"github.com/nextweekend/nextweekend/pkg/config"
	"github.com/nextweekend/nextweekend/pkg/pg"
)

var migrationsFS = migrations.FS

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the postgres profile schema",
	}
	cmd.AddCommand(
		migrateSubcommand("up", "Apply pending migrations", pg.Migrate),
		migrateSubcommand("status", "Print migration status", pg.Status),
	)
	return cmd
}

func migrateSubcommand(use, short string, run func(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, cfg pg.Config, log *slog.Logger) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := config.Load[baseConfig]()
			if err != nil {
				return err
			}
			pgCfg, err := config.Load[pg.Config]()
			if err != nil {
				return err
			}
			log := newLogger(base)

			pool, err := pg.Connect(cmd.Context(), pgCfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			return run(cmd.Context(), pool, migrationsFS, pgCfg, log)
		},
	}
}
