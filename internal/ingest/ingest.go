// Package ingest loads book rows from CSV files into the review store.
package ingest

import (
	"errors"
	"time"
)

const (
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"

	DefaultBatchSize = 500
)

var ErrMissingColumn = errors.New("csv header is missing a required column")

// Run is one import of one file, persisted in import_runs.
type Run struct {
	ID           string
	Source       string
	StartedAt    time.Time
	FinishedAt   *time.Time
	Status       string
	RowsRead     int
	RowsInserted int
	RowsSkipped  int
	Error        string
}

// Row is a parsed CSV record ready for insertion.
type Row struct {
	ISBN   string
	Title  string
	Author string
	Year   int
}
