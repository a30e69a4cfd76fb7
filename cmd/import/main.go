// Command import loads a books CSV (isbn,title,author,year) into the review store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v3"

	"bookreviews/internal/config"
	"bookreviews/internal/ingest"
	"bookreviews/internal/logging"
)

func main() {
	cfg, err := config.Read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand(cfg).Run(ctx, os.Args); err != nil {
		logging.Fatal().Err(err).Msg("import failed")
	}
}

func newCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import books from a CSV file",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "CSV file with an isbn,title,author,year header",
				Value:   "books.csv",
			},
			&cli.StringFlag{
				Name:        "dsn",
				Usage:       "PostgreSQL connection string",
				Value:       cfg.Database.DSN,
				DefaultText: cfg.Database.RedactedDSN(),
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Rows per insert batch",
				Value: cfg.Import.BatchSize,
			},
			&cli.DurationFlag{
				Name:  "query-timeout",
				Usage: "Timeout for each database round trip",
				Value: 30 * time.Second,
			},
		},
		Action: runImport,
	}
}

func runImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("file")
	if cmd.Args().Present() {
		path = cmd.Args().First()
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	pool, err := pgxpool.New(ctx, cmd.String("dsn"))
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	repo := ingest.NewPostgresRepo(pool, cmd.Duration("query-timeout"))
	svc := ingest.NewService(repo, int(cmd.Int("batch-size")))

	run, err := svc.Import(ctx, path, f)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "imported %d of %d rows from %s (%d skipped)\n",
		run.RowsInserted, run.RowsRead, path, run.RowsSkipped)
	return nil
}
