package review

import (
	"context"

	"bookreviews/internal/book"
)

type Repository interface {
	// Create fills in ID and CreatedAt, or returns ErrAlreadyReviewed.
	Create(ctx context.Context, r *Review) error
	ListByBook(ctx context.Context, bookID string) ([]Review, error)
	GetByUserAndBook(ctx context.Context, userID, bookID string) (Review, error)
}

type BookFinder interface {
	GetByISBN(ctx context.Context, isbn string) (book.Book, error)
}
