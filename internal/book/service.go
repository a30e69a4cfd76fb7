package book

import (
	"context"
)

// Service provides book-related business logic.
type Service struct {
	repo     Repository
	metadata MetadataProvider
}

// NewService creates a new book service. metadata may be nil when enrichment is not wired.
func NewService(repo Repository, metadata MetadataProvider) *Service {
	return &Service{repo: repo, metadata: metadata}
}

func (s *Service) Search(ctx context.Context, q Query) ([]Book, int, error) {
	return s.repo.Search(ctx, q)
}

// GetByISBN returns a book by its ISBN.
func (s *Service) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	return s.repo.GetByISBN(ctx, isbn)
}

// ListRecent returns up to limit books, newest import first.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]Book, error) {
	return s.repo.ListRecent(ctx, limit)
}

// Metadata looks up third-party data for a known book and summarizes its description
// when one exists. Only an unknown ISBN or a store failure is an error.
func (s *Service) Metadata(ctx context.Context, isbn string) (MetadataView, error) {
	b, err := s.repo.GetByISBN(ctx, isbn)
	if err != nil {
		return MetadataView{}, err
	}

	view := MetadataView{Book: b}
	if s.metadata == nil {
		return view, nil
	}

	md, ok := s.metadata.FetchMetadata(ctx, b.ISBN)
	if !ok {
		return view, nil
	}
	view.Available = true
	view.Metadata = md

	if md.Description != nil && *md.Description != "" {
		if summary, ok := s.metadata.Summarize(ctx, *md.Description); ok {
			view.Summary = &summary
		}
	}
	return view, nil
}
