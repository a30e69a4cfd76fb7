package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var requiredColumns = []string{"isbn", "title", "author", "year"}

// Reader yields Rows from a books CSV. The first record is the header; columns are
// located by name so their order in the file does not matter.
type Reader struct {
	csv    *csv.Reader
	header map[string]int
	width  int
}

func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rec, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	header := make(map[string]int, len(rec))
	for idx, name := range rec {
		header[strings.TrimSpace(strings.ToLower(strings.TrimPrefix(name, "\ufeff")))] = idx
	}
	for _, col := range requiredColumns {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return &Reader{csv: cr, header: header, width: len(rec)}, nil
}

// RowError describes a record that was skipped.
type RowError struct {
	Line   int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Next returns the next row, a *RowError for a record that must be skipped, or io.EOF.
func (r *Reader) Next() (Row, error) {
	rec, err := r.csv.Read()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return Row{}, &RowError{Line: parseErr.Line, Reason: parseErr.Err.Error()}
		}
		return Row{}, err
	}
	line, _ := r.csv.FieldPos(0)

	if len(rec) != r.width {
		return Row{}, &RowError{Line: line, Reason: fmt.Sprintf("expected %d columns, got %d", r.width, len(rec))}
	}

	row := Row{
		ISBN:   r.valueAt(rec, "isbn"),
		Title:  r.valueAt(rec, "title"),
		Author: r.valueAt(rec, "author"),
	}
	if row.ISBN == "" || row.Title == "" {
		return Row{}, &RowError{Line: line, Reason: "isbn and title are required"}
	}

	year, err := strconv.Atoi(r.valueAt(rec, "year"))
	if err != nil {
		return Row{}, &RowError{Line: line, Reason: fmt.Sprintf("year %q is not an integer", r.valueAt(rec, "year"))}
	}
	row.Year = year
	return row, nil
}

func (r *Reader) valueAt(rec []string, name string) string {
	return strings.TrimSpace(rec[r.header[name]])
}
