package review

import (
	"errors"
	"time"

	"bookreviews/internal/book"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("user already reviewed this book")
)

// Review is one user's rating and text for one book. A user reviews a book at most once.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	Username  string    `json:"username"`
	Rating    int       `json:"rating"`
	Text      string    `json:"review"`
	CreatedAt time.Time `json:"created_at"`
}

type Stats struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// BookPage is a book with its reviews, newest first, and the caller's own review if any.
type BookPage struct {
	Book       book.Book `json:"book"`
	Reviews    []Review  `json:"reviews"`
	Stats      Stats     `json:"stats"`
	UserReview *Review   `json:"user_review"`
}

func statsOf(reviews []Review) Stats {
	if len(reviews) == 0 {
		return Stats{}
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return Stats{Count: len(reviews), Average: float64(sum) / float64(len(reviews))}
}
