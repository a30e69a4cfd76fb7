// Command migrate applies the goose SQL migrations under db/migrations.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/urfave/cli/v3"

	"bookreviews/internal/config"
	"bookreviews/internal/logging"
)

func main() {
	logging.Init(logging.Config{Level: "info", Format: "console"})

	mc, err := loadMigrateConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}

	if err := newCommand(mc).Run(context.Background(), os.Args); err != nil {
		logging.Fatal().Err(err).Msg("migrate failed")
	}
}

func newCommand(mc migrateConfig) *cli.Command {
	dsnFlag := &cli.StringFlag{
		Name:        "dsn",
		Usage:       "PostgreSQL connection string",
		Value:       mc.DSN,
		DefaultText: config.RedactDSN(mc.DSN),
	}
	dirFlag := &cli.StringFlag{Name: "dir", Usage: "Migrations directory", Value: mc.Dir}

	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage database schema migrations",
		Flags: []cli.Flag{dsnFlag, dirFlag},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: withDB(func(ctx context.Context, db *sql.DB, dir string, _ *cli.Command) error {
					if err := goose.UpContext(ctx, db, dir); err != nil {
						return fmt.Errorf("apply migrations: %w", err)
					}
					logging.Info().Msg("migrations applied")
					return nil
				}),
			},
			{
				Name:  "down",
				Usage: "Roll back the most recent migration",
				Action: withDB(func(ctx context.Context, db *sql.DB, dir string, _ *cli.Command) error {
					if err := goose.DownContext(ctx, db, dir); err != nil {
						return fmt.Errorf("roll back migration: %w", err)
					}
					logging.Info().Msg("migration rolled back")
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "Print the status of all migrations",
				Action: withDB(func(ctx context.Context, db *sql.DB, dir string, _ *cli.Command) error {
					return goose.StatusContext(ctx, db, dir)
				}),
			},
			{
				Name:      "create",
				Usage:     "Create a new SQL migration",
				ArgsUsage: "<name>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					name := cmd.Args().First()
					if name == "" {
						return fmt.Errorf("a migration name is required")
					}
					if err := goose.Create(nil, cmd.String("dir"), name, "sql"); err != nil {
						return fmt.Errorf("create migration: %w", err)
					}
					return nil
				},
			},
		},
	}
}

type dbAction func(ctx context.Context, db *sql.DB, dir string, cmd *cli.Command) error

// withDB opens a database/sql handle over a pgx pool for goose.
func withDB(fn dbAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		pool, err := pgxpool.New(ctx, cmd.String("dsn"))
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		db := stdlib.OpenDBFromPool(pool)
		defer db.Close()

		if err := goose.SetDialect("postgres"); err != nil {
			return err
		}
		return fn(ctx, db, cmd.String("dir"), cmd)
	}
}
