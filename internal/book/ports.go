package book

import (
	"context"

	"bookreviews/internal/metadata"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	Search(ctx context.Context, q Query) ([]Book, int, error)
	GetByISBN(ctx context.Context, isbn string) (Book, error)
	ListRecent(ctx context.Context, limit int) ([]Book, error)
}

// MetadataProvider is the best-effort enrichment source.
type MetadataProvider interface {
	FetchMetadata(ctx context.Context, isbn string) (*metadata.Metadata, bool)
	Summarize(ctx context.Context, text string) (string, bool)
}
