package ingest

import "context"

type Repository interface {
	CreateRun(ctx context.Context, run *Run) error
	FinishRun(ctx context.Context, run *Run) error
	// InsertBooks stores rows whose ISBN is not yet known and reports how many were new.
	InsertBooks(ctx context.Context, rows []Row) (int, error)
}
