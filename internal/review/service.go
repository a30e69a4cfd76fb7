package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrEmptyReview   = errors.New("review text is required")
)

type Service struct {
	repo  Repository
	books BookFinder
}

func NewService(repo Repository, books BookFinder) *Service {
	return &Service{repo: repo, books: books}
}

// BookPage loads a book by ISBN with its reviews. userID may be empty.
func (s *Service) BookPage(ctx context.Context, userID, isbn string) (BookPage, error) {
	b, err := s.books.GetByISBN(ctx, isbn)
	if err != nil {
		return BookPage{}, err
	}

	reviews, err := s.repo.ListByBook(ctx, b.ID)
	if err != nil {
		return BookPage{}, fmt.Errorf("list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []Review{}
	}

	page := BookPage{Book: b, Reviews: reviews, Stats: statsOf(reviews)}
	for i := range reviews {
		if userID != "" && reviews[i].UserID == userID {
			page.UserReview = &reviews[i]
			break
		}
	}
	return page, nil
}

// Create stores a review for the book with the given ISBN.
func (s *Service) Create(ctx context.Context, userID, isbn string, rating int, text string) (Review, error) {
	if rating < 1 || rating > 5 {
		return Review{}, ErrInvalidRating
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Review{}, ErrEmptyReview
	}

	b, err := s.books.GetByISBN(ctx, isbn)
	if err != nil {
		return Review{}, err
	}

	if _, err := s.repo.GetByUserAndBook(ctx, userID, b.ID); err == nil {
		return Review{}, ErrAlreadyReviewed
	} else if !errors.Is(err, ErrNotFound) {
		return Review{}, fmt.Errorf("check existing review: %w", err)
	}

	r := &Review{UserID: userID, BookID: b.ID, Rating: rating, Text: text}
	if err := s.repo.Create(ctx, r); err != nil {
		return Review{}, err
	}
	return *r, nil
}
