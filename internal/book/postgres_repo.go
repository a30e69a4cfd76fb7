package book

import (
	"context"
	"errors"
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

const bookColumns = "id, isbn, title, author, year, created_at"

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Year, &b.CreatedAt)
	return b, err
}

func searchClause(t SearchType) string {
	switch t {
	case SearchISBN:
		return "isbn ILIKE $1"
	case SearchTitle:
		return "title ILIKE $1"
	case SearchAuthor:
		return "author ILIKE $1"
	default:
		return "(isbn ILIKE $1 OR title ILIKE $1 OR author ILIKE $1)"
	}
}

func (r *PostgresRepo) Search(ctx context.Context, q Query) ([]Book, int, error) {
	where := "WHERE " + searchClause(q.Type)
	pattern := "%" + q.Q + "%"

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(timeoutCtx, "SELECT COUNT(*) FROM books "+where, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	dataSQL := fmt.Sprintf("SELECT %s FROM books %s ORDER BY title ASC, id ASC LIMIT $2 OFFSET $3", bookColumns, where)
	rows, err := r.db.Query(timeoutCtx, dataSQL, pattern, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("search books: %w", err)
	}
	defer rows.Close()

	out := make([]Book, 0, q.Limit)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	b, err := scanBook(r.db.QueryRow(timeoutCtx, "SELECT "+bookColumns+" FROM books WHERE isbn = $1", isbn))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

// ListRecent returns the most recently imported books first.
func (r *PostgresRepo) ListRecent(ctx context.Context, limit int) ([]Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx,
		"SELECT "+bookColumns+" FROM books ORDER BY created_at DESC, id DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("list recent books: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Book, error) {
		return scanBook(row)
	})
}
