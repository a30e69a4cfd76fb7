package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (repo *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, repo.timeout)
}

func (repo *PostgresRepo) Create(ctx context.Context, r *Review) error {
	const insertSQL = `
		INSERT INTO reviews (user_id, book_id, rating, review)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	timeoutCtx, cancel := repo.withTimeout(ctx)
	defer cancel()

	err := repo.db.QueryRow(timeoutCtx, insertSQL, r.UserID, r.BookID, r.Rating, r.Text).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyReviewed
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (repo *PostgresRepo) ListByBook(ctx context.Context, bookID string) ([]Review, error) {
	const query = `
		SELECT r.id, r.user_id, r.book_id, u.username, r.rating, r.review, r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.book_id = $1
		ORDER BY r.created_at DESC, r.id DESC`

	timeoutCtx, cancel := repo.withTimeout(ctx)
	defer cancel()

	rows, err := repo.db.Query(timeoutCtx, query, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.UserID, &r.BookID, &r.Username, &r.Rating, &r.Text, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (repo *PostgresRepo) GetByUserAndBook(ctx context.Context, userID, bookID string) (Review, error) {
	const query = `
		SELECT r.id, r.user_id, r.book_id, u.username, r.rating, r.review, r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.user_id = $1 AND r.book_id = $2`

	timeoutCtx, cancel := repo.withTimeout(ctx)
	defer cancel()

	var r Review
	err := repo.db.QueryRow(timeoutCtx, query, userID, bookID).
		Scan(&r.ID, &r.UserID, &r.BookID, &r.Username, &r.Rating, &r.Text, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Review{}, ErrNotFound
		}
		return Review{}, err
	}
	return r, nil
}
