package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"bookreviews/internal/logging"
	"bookreviews/internal/metrics"
)

type Service struct {
	repo      Repository
	batchSize int
	now       func() time.Time
}

func NewService(repo Repository, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{repo: repo, batchSize: batchSize, now: time.Now}
}

// Import reads a books CSV from in and inserts its rows in batches. Malformed records are
// skipped and counted; rows whose ISBN already exists are left untouched. The run is
// recorded whether or not the import succeeds.
func (s *Service) Import(ctx context.Context, source string, in io.Reader) (run *Run, err error) {
	run = &Run{Source: source, Status: StatusRunning, StartedAt: s.now()}
	if err := s.repo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create import run: %w", err)
	}
	log := logging.With().Str("run_id", run.ID).Str("source", source).Logger()
	duplicates := 0

	defer func() {
		now := s.now()
		run.FinishedAt = &now
		run.Status = StatusCompleted
		if err != nil {
			run.Status = StatusFailed
			run.Error = err.Error()
		}
		// The caller's context may already be cancelled; the run row should still be closed out.
		if finishErr := s.repo.FinishRun(context.WithoutCancel(ctx), run); finishErr != nil {
			log.Error().Err(finishErr).Msg("failed to record import run")
		}
		metrics.ImportedRows.WithLabelValues("inserted").Add(float64(run.RowsInserted))
		metrics.ImportedRows.WithLabelValues("duplicate").Add(float64(duplicates))
		metrics.ImportedRows.WithLabelValues("skipped").Add(float64(run.RowsSkipped))
	}()

	reader, err := NewReader(in)
	if err != nil {
		return run, err
	}

	batch := make([]Row, 0, s.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		inserted, err := s.repo.InsertBooks(ctx, batch)
		if err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}
		run.RowsInserted += inserted
		duplicates += len(batch) - inserted
		batch = batch[:0]
		return nil
	}

	for {
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			run.RowsRead++
			run.RowsSkipped++
			log.Warn().Int("line", rowErr.Line).Str("reason", rowErr.Reason).Msg("skipping row")
			continue
		}
		if err != nil {
			return run, fmt.Errorf("read csv: %w", err)
		}

		run.RowsRead++
		batch = append(batch, row)
		if len(batch) >= s.batchSize {
			if err := flush(); err != nil {
				return run, err
			}
		}
	}
	if err := flush(); err != nil {
		return run, err
	}

	log.Info().
		Int("rows_read", run.RowsRead).
		Int("rows_inserted", run.RowsInserted).
		Int("rows_skipped", run.RowsSkipped).
		Msg("import finished")
	return run, nil
}
