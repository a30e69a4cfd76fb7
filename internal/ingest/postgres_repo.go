package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) CreateRun(ctx context.Context, run *Run) error {
	const query = `
		INSERT INTO import_runs (source, status)
		VALUES ($1, $2)
		RETURNING id, started_at`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.QueryRow(timeoutCtx, query, run.Source, run.Status).Scan(&run.ID, &run.StartedAt)
}

func (r *PostgresRepo) FinishRun(ctx context.Context, run *Run) error {
	const query = `
		UPDATE import_runs SET
			finished_at = $1,
			status = $2,
			rows_read = $3,
			rows_inserted = $4,
			rows_skipped = $5,
			error = NULLIF($6, '')
		WHERE id = $7`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, query,
		run.FinishedAt, run.Status, run.RowsRead, run.RowsInserted, run.RowsSkipped, run.Error, run.ID)
	return err
}

func (r *PostgresRepo) InsertBooks(ctx context.Context, rows []Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	const query = `
		INSERT INTO books (isbn, title, author, year)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (isbn) DO NOTHING`

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(query, row.ISBN, row.Title, row.Author, row.Year)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(timeoutCtx) }()

	results := tx.SendBatch(timeoutCtx, batch)
	inserted := 0
	for i := range rows {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return 0, fmt.Errorf("insert %s: %w", rows[i].ISBN, err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, err
	}
	if err := tx.Commit(timeoutCtx); err != nil {
		return 0, err
	}
	return inserted, nil
}
