package popular

import (
	"context"
	"errors"
	"fmt"
)

var ErrInvalidLimit = errors.New("limit out of range")

type Service struct {
	books        BookLister
	pipeline     *Pipeline
	defaultLimit int
}

func NewService(books BookLister, pipeline *Pipeline, defaultLimit int) *Service {
	if defaultLimit <= 0 || defaultLimit > MaxResults {
		defaultLimit = 10
	}
	return &Service{books: books, pipeline: pipeline, defaultLimit: defaultLimit}
}

// Popular ranks up to limit of the most recently imported books. A limit of 0 means the default.
func (s *Service) Popular(ctx context.Context, limit int) ([]RankedBook, error) {
	if limit == 0 {
		limit = s.defaultLimit
	}
	if limit < 0 || limit > MaxResults {
		return nil, ErrInvalidLimit
	}

	books, err := s.books.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list candidate books: %w", err)
	}
	return s.pipeline.Rank(ctx, books), nil
}
