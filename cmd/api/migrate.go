package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/complyhub/internal/config"
	"github.com/bryanwahyu/complyhub/internal/infra/db/migrations"
	"github.com/bryanwahyu/complyhub/internal/logging"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the embedded SQL migrations",
	}

	run := func(fn func(ctx context.Context, db *sql.DB, driver string, log logging.Logger) error) func(*cobra.Command, []string) error {
		return func(c *cobra.Command, _ []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			if cfg.Database.Driver == config.DriverMemory {
				return fmt.Errorf("migrate: the memory driver has no schema")
			}
			db, err := openSQL(c.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			return fn(c.Context(), db, cfg.Database.Driver, log.Named("migrate"))
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: run(func(ctx context.Context, db *sql.DB, driver string, log logging.Logger) error {
				n, err := migrations.Up(ctx, db, driver)
				if err != nil {
					return err
				}
				log.Info("migrations applied", logging.Int("count", n))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: run(func(ctx context.Context, db *sql.DB, driver string, log logging.Logger) error {
				if err := migrations.Down(ctx, db, driver); err != nil {
					return err
				}
				log.Info("rolled back one migration")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: run(func(ctx context.Context, db *sql.DB, driver string, _ logging.Logger) error {
				v, err := migrations.Version(ctx, db, driver)
				if err != nil {
					return err
				}
				fmt.Println(v)
				return nil
			}),
		},
	)
	return cmd
}
